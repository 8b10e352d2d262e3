package app

import (
	"sync"

	"github.com/google/uuid"
)

// lockEntry is one keyed mutex plus the number of holders and waiters
// currently interested in it.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// LockRegistry hands out one exclusive lock per entity ID. The bid
// pipeline, lot advancement, and the expiration monitor all serialize on
// the same lot lock, which is what keeps two bids (or a bid and a
// deactivation) from both reading a stale price. Locks are held only for
// one pipeline's read-modify-write; broadcasting happens after release.
//
// Entries are reference counted and removed when the last holder releases,
// so the registry stays proportional to the lots currently contended
// rather than every lot ever touched.
type LockRegistry struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

// NewLockRegistry creates an empty registry
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{locks: make(map[uuid.UUID]*lockEntry)}
}

// Lock acquires the exclusive lock for the given ID and returns the
// function that releases it.
func (r *LockRegistry) Lock(id uuid.UUID) func() {
	r.mu.Lock()
	e, ok := r.locks[id]
	if !ok {
		e = &lockEntry{}
		r.locks[id] = e
	}
	e.refs++
	r.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		r.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(r.locks, id)
		}
		r.mu.Unlock()
	}
}
