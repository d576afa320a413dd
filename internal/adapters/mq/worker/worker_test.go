package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/careerstandings/internal/adapters/mq/queue"
	"github.com/okian/careerstandings/internal/domain/model"
	"github.com/okian/careerstandings/internal/domain/standings"
)

type mockBuilder struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
	delay time.Duration
}

func (b *mockBuilder) BuildRider(ctx context.Context, j Job) (standings.Result, error) {
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	b.mu.Lock()
	b.calls = append(b.calls, j.ParticipantID)
	err := b.fail[j.ParticipantID]
	b.mu.Unlock()
	if err != nil {
		return standings.Result{}, err
	}
	return standings.Result{
		Standings:    []model.StandingsEntry{{ParticipantID: j.ParticipantID, TotalPoints: 10}},
		TargetRank:   1,
		TargetPoints: 10,
	}, nil
}

type mockSink struct {
	mu     sync.Mutex
	put    map[string]standings.Result
	failed map[string]error
}

func newMockSink() *mockSink {
	return &mockSink{put: map[string]standings.Result{}, failed: map[string]error{}}
}

func (s *mockSink) Put(ctx context.Context, j Job, res standings.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put[j.ParticipantID] = res
}

func (s *mockSink) Fail(ctx context.Context, j Job, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[j.ParticipantID] = err
}

func (s *mockSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.put), len(s.failed)
}

func riderJob(id string) Job {
	return model.RiderJob{Generation: 1, ParticipantID: id, CompletedEvents: []int{1}}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading rider jobs", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		builder := &mockBuilder{fail: map[string]error{"broken": errors.New("boom")}}
		sink := newMockSink()
		w := NewInMemoryWorker(q, builder, sink, WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("It should hand built standings to the sink", func() {
			convey.So(q.Enqueue(ctx, riderJob("u1")), convey.ShouldBeNil)
			convey.So(waitFor(func() bool { p, _ := sink.counts(); return p == 1 }), convey.ShouldBeTrue)

			sink.mu.Lock()
			res := sink.put["u1"]
			sink.mu.Unlock()
			convey.So(res.TargetPoints, convey.ShouldEqual, 10)
			convey.So(w.Processed(), convey.ShouldEqual, 1)
		})

		convey.Convey("It should report build failures and keep going", func() {
			convey.So(q.Enqueue(ctx, riderJob("broken")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, riderJob("u2")), convey.ShouldBeNil)
			convey.So(waitFor(func() bool { p, f := sink.counts(); return p == 1 && f == 1 }), convey.ShouldBeTrue)

			sink.mu.Lock()
			err := sink.failed["broken"]
			sink.mu.Unlock()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldEqual, "boom")
		})

		convey.Convey("Shutdown should stop the loop", func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
			defer done()
			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
		})
	})
}

func TestInMemoryWorkerShutdownTimeout(t *testing.T) {
	convey.Convey("Given a worker that is never started", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1))
		w := NewInMemoryWorker(q, &mockBuilder{}, newMockSink())

		convey.Convey("Shutdown should give up when the context expires", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			err := w.Shutdown(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers sharing a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		builder := &mockBuilder{delay: time.Millisecond}
		sink := newMockSink()
		pool := NewPool(4, q, builder, sink)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
		for _, id := range ids {
			convey.So(q.Enqueue(ctx, riderJob(id)), convey.ShouldBeNil)
		}

		convey.Convey("Shutdown should drain every queued job", func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)

			put, failed := sink.counts()
			convey.So(put, convey.ShouldEqual, len(ids))
			convey.So(failed, convey.ShouldEqual, 0)
			convey.So(pool.Processed(), convey.ShouldEqual, int64(len(ids)))
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
		})
	})

	convey.Convey("A pool with no explicit size uses one worker per CPU", t, func() {
		pool := NewPool(0, queue.NewInMemoryQueue(), &mockBuilder{}, newMockSink())
		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
