package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/careerstandings/internal/domain/types"
	"github.com/okian/careerstandings/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering follows types.Entry.Less: points DESC, events ASC, then
// participant id ASC. "less" means ranks earlier, so in-order traversal
// yields the table from first to last. Node priorities are a hash of the
// participant id, which keeps the tree balanced in expectation and the shape
// reproducible.

const defaultTopCacheSize = 500

var _ Store = (*TreapStore)(nil)

// snapshot is an immutable copy of the leading rows, published after writes.
type snapshot struct {
	top   []types.Entry
	total int
}

// treap node
type node struct {
	e     types.Entry
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, e types.Entry, prio uint64) *node {
	if n == nil {
		return &node{e: e, prio: prio, size: 1}
	}
	if e.Less(n.e) {
		n.left = insert(n.left, e, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, e, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, e types.Entry) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.e.ParticipantID == e.ParticipantID:
		// Rotate the higher-priority child up until the node is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, e)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, e)
		}
	case e.Less(n.e):
		n.left = deleteNode(n.left, e)
	default:
		n.right = deleteNode(n.right, e)
	}
	fix(n)
	return n
}

// rankOf counts the rows ordered before e, plus one.
func rankOf(n *node, e types.Entry) int {
	rank := 1
	for n != nil {
		if n.e.ParticipantID == e.ParticipantID {
			return rank + nsize(n.left)
		}
		if e.Less(n.e) {
			n = n.left
		} else {
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectTopN appends up to limit rows in table order.
func collectTopN(n *node, limit int, out *[]types.Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		e := n.e
		e.Rank = len(*out) + 1
		*out = append(*out, e)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore is an in-memory Store safe for concurrent use.
type TreapStore struct {
	mu           sync.RWMutex
	root         *node
	byID         map[string]types.Entry
	topCacheSize int

	snap atomic.Pointer[snapshot]
}

// NewTreapStore constructs an empty season table.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:         make(map[string]types.Entry),
		topCacheSize: defaultTopCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(&snapshot{})
	return s
}

// Upsert implements Store.Upsert with O(log n) expected time.
func (s *TreapStore) Upsert(ctx context.Context, e types.Entry) error {
	if e.ParticipantID == "" {
		return ErrInvalidEntry
	}
	e.Rank = 0

	s.mu.Lock()
	if old, ok := s.byID[e.ParticipantID]; ok {
		s.root = deleteNode(s.root, old)
	}
	s.byID[e.ParticipantID] = e
	s.root = insert(s.root, e, priority(e.ParticipantID))
	s.publishLocked()
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateSeasonTableSize(count)
	return nil
}

// Replace implements Store.Replace. Rows with an empty id are rejected
// before anything changes.
func (s *TreapStore) Replace(ctx context.Context, entries []types.Entry) error {
	byID := make(map[string]types.Entry, len(entries))
	var root *node
	for _, e := range entries {
		if e.ParticipantID == "" {
			return ErrInvalidEntry
		}
		e.Rank = 0
		if old, ok := byID[e.ParticipantID]; ok {
			root = deleteNode(root, old)
		}
		byID[e.ParticipantID] = e
		root = insert(root, e, priority(e.ParticipantID))
	}

	s.mu.Lock()
	s.root = root
	s.byID = byID
	s.publishLocked()
	s.mu.Unlock()

	metrics.UpdateSeasonTableSize(len(byID))
	return nil
}

// Rank returns the participant's row in O(log n).
func (s *TreapStore) Rank(ctx context.Context, participantID string) (types.Entry, error) {
	start := time.Now()
	defer recordLatency(start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[participantID]
	if !ok {
		return types.Entry{}, ErrNotFound
	}
	e.Rank = rankOf(s.root, e)
	return e, nil
}

// TopN returns the first n rows, served from the snapshot when it covers n.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	start := time.Now()
	defer recordLatency(start)

	if n < 1 {
		return nil, ErrInvalidLimit
	}

	snap := s.snap.Load()
	if n <= len(snap.top) || len(snap.top) == snap.total {
		out := make([]types.Entry, min(n, len(snap.top)))
		copy(out, snap.top)
		return out, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &out)
	return out, nil
}

// Count returns the number of participants.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// publishLocked rebuilds the read snapshot. Callers hold the write lock.
func (s *TreapStore) publishLocked() {
	top := make([]types.Entry, 0, min(s.topCacheSize, len(s.byID)))
	collectTopN(s.root, s.topCacheSize, &top)
	s.snap.Store(&snapshot{top: top, total: len(s.byID)})
}

func recordLatency(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}
