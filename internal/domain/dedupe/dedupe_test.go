package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/careerstandings/internal/domain/dedupe"
	"github.com/okian/careerstandings/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When recording keys", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the key is new", func() {
				seen := d.SeenAndRecord(ctx, "1:abc")

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord(ctx, "1:abc")
				seen := d.SeenAndRecord(ctx, "1:abc")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key is unrecorded", func() {
				d.SeenAndRecord(ctx, "1:abc")
				d.Unrecord(ctx, "1:abc")
				d.Unrecord(ctx, "never-seen")

				Convey("Then it can be recorded again", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord(ctx, "1:abc"), ShouldBeFalse)
				})
			})
		})

		Convey("When the deduper is bounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for i := 0; i < 5; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
			}

			Convey("Then the oldest keys are evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "k4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "k0"), ShouldBeFalse)
			})
		})

		Convey("When the deduper is unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := 0; i < 10000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 10000)
			})
		})

		Convey("When used concurrently", func() {
			d := dedupe.NewInMemoryDeduper()
			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !d.SeenAndRecord(ctx, "shared") {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one caller records the key", func() {
				So(fresh, ShouldEqual, 1)
			})
		})
	})
}

func TestDigest(t *testing.T) {
	Convey("Given file contents", t, func() {
		a := dedupe.Digest([]byte("Position,Name,UID\n1,A,u1\n"))
		b := dedupe.Digest([]byte("Position,Name,UID\n1,A,u1\n"))
		c := dedupe.Digest([]byte("Position,Name,UID\n2,A,u1\n"))

		Convey("Then identical bytes share a digest", func() {
			So(a, ShouldEqual, b)
			So(a, ShouldNotEqual, c)
			So(len(a), ShouldEqual, 64)
		})
	})
}

func TestFirstWins(t *testing.T) {
	Convey("Given two rows for the same rider", t, func() {
		first := model.EventResult{ParticipantID: "u1", DisplayName: "Ana", FinishPosition: 4, EventNumber: 1}
		later := model.EventResult{ParticipantID: "u1", DisplayName: "Ana B", Team: "Velo", Rating: 1100, FinishPosition: 2, EventNumber: 1}

		Convey("When merged with FirstWins", func() {
			merged, out := dedupe.FirstWins{}.Merge(first, later)

			Convey("Then the first position is kept and gaps are filled", func() {
				So(merged.FinishPosition, ShouldEqual, model.Position(4))
				So(merged.DisplayName, ShouldEqual, "Ana")
				So(merged.Team, ShouldEqual, "Velo")
				So(merged.Rating, ShouldEqual, 1100)
			})

			Convey("And the disagreement is reported", func() {
				So(out.Conflict, ShouldBeTrue)
				So(out.Incoming, ShouldEqual, model.Position(2))
			})
		})

		Convey("When the kept row already has team and rating", func() {
			first.Team, first.Rating = "Alpha", 900
			merged, _ := dedupe.FirstWins{}.Merge(first, later)

			Convey("Then they are not overwritten", func() {
				So(merged.Team, ShouldEqual, "Alpha")
				So(merged.Rating, ShouldEqual, 900)
			})
		})

		Convey("When the rows agree on position", func() {
			later.FinishPosition = 4
			_, out := dedupe.FirstWins{}.Merge(first, later)

			Convey("Then there is no conflict", func() {
				So(out.Conflict, ShouldBeFalse)
			})
		})
	})
}

func TestSet(t *testing.T) {
	Convey("Given a set using the default strategy", t, func() {
		s := dedupe.NewSet(nil)
		s.Add(model.EventResult{ParticipantID: "b", FinishPosition: 2})
		s.Add(model.EventResult{ParticipantID: "a", FinishPosition: 1})
		merged, out := s.Add(model.EventResult{ParticipantID: "b", FinishPosition: 2, Team: "T"})

		Convey("Then duplicates collapse in first-seen order", func() {
			So(merged, ShouldBeTrue)
			So(out.Conflict, ShouldBeFalse)
			So(s.Len(), ShouldEqual, 2)
			rows := s.Results()
			So(rows[0].ParticipantID, ShouldEqual, "b")
			So(rows[0].Team, ShouldEqual, "T")
			So(rows[1].ParticipantID, ShouldEqual, "a")
		})

		Convey("Then Results is a copy", func() {
			rows := s.Results()
			rows[0].Team = "changed"
			So(s.Results()[0].Team, ShouldEqual, "T")
		})
	})
}
