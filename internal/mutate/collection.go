package mutate

import (
	"slices"
	"sync"
	"time"

	"github.com/juju/clock"
)

type opKind int

const (
	opUpsert opKind = iota
	opRemove
)

// Pending edits are bounded so a page whose polling is paused does not grow
// without limit. An edit older than maxPendingAge is assumed to be reflected
// by the server; past maxPending the oldest edits are dropped.
const (
	maxPending    = 256
	maxPendingAge = 10 * time.Minute
)

type pendingOp[T any] struct {
	kind      opKind
	id        string
	row       T
	settledAt time.Time
}

// Collection holds a page's rows: the last snapshot plus optimistic edits the
// server has not yet reflected.
//
// Apply replaces the rows wholesale. An optimistic edit that settled after the
// snapshot's request was issued is replayed on top of it, because that
// snapshot could not have seen it; edits that settled before the request are
// dropped since the snapshot is authoritative for them.
type Collection[T any] struct {
	id    func(T) string
	clock clock.Clock

	mu      sync.Mutex
	rows    []T
	pending []pendingOp[T]
	loaded  bool
}

// NewCollection returns an empty collection keyed by id. A nil clock uses the
// wall clock.
func NewCollection[T any](id func(T) string, clk clock.Clock) *Collection[T] {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Collection[T]{id: id, clock: clk}
}

// Rows returns a copy of the current rows.
func (c *Collection[T]) Rows() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.rows))
	copy(out, c.rows)
	return out
}

// Len returns the number of rows.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

// Loaded reports whether a snapshot or optimistic edit has populated the
// collection.
func (c *Collection[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Find returns the row with id.
func (c *Collection[T]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range c.rows {
		if c.id(row) == id {
			return row, true
		}
	}
	var zero T
	return zero, false
}

// Pending returns the number of optimistic edits awaiting a snapshot.
func (c *Collection[T]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Apply installs snapshot, fetched by a request issued at requestedAt.
func (c *Collection[T]) Apply(snapshot []T, requestedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := make([]T, len(snapshot))
	copy(rows, snapshot)
	c.rows = rows
	c.loaded = true

	kept := c.pending[:0]
	for _, op := range c.pending {
		if !op.settledAt.After(requestedAt) {
			continue
		}
		kept = append(kept, op)
		c.replayLocked(op)
	}
	c.pending = kept
}

// Upsert replaces the row with the same id, or appends row when none exists.
func (c *Collection[T]) Upsert(row T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	op := pendingOp[T]{kind: opUpsert, id: c.id(row), row: row, settledAt: c.clock.Now()}
	c.addLocked(op)
	c.replayLocked(op)
	c.loaded = true
}

// Remove drops the rows with the given ids.
func (c *Collection[T]) Remove(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	for _, id := range ids {
		op := pendingOp[T]{kind: opRemove, id: id, settledAt: now}
		c.addLocked(op)
		c.replayLocked(op)
	}
}

// addLocked records op. It supersedes any earlier edit of the same row, and
// expired or excess edits are pruned.
func (c *Collection[T]) addLocked(op pendingOp[T]) {
	kept := c.pending[:0]
	for _, p := range c.pending {
		if p.id == op.id || op.settledAt.Sub(p.settledAt) > maxPendingAge {
			continue
		}
		kept = append(kept, p)
	}
	kept = append(kept, op)
	if n := len(kept) - maxPending; n > 0 {
		kept = slices.Clone(kept[n:])
	}
	c.pending = kept
}

func (c *Collection[T]) replayLocked(op pendingOp[T]) {
	switch op.kind {
	case opUpsert:
		for i, row := range c.rows {
			if c.id(row) == op.id {
				c.rows[i] = op.row
				return
			}
		}
		c.rows = append(c.rows, op.row)
	case opRemove:
		out := c.rows[:0]
		for _, row := range c.rows {
			if c.id(row) != op.id {
				out = append(out, row)
			}
		}
		c.rows = out
	}
}
