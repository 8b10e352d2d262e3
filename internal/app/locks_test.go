package app

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/check"
)

func TestLockRegistry_MutualExclusion(t *testing.T) {
	r := NewLockRegistry()
	id := uuid.New()

	// A plain int counter stays consistent only if the lock serializes
	// every goroutine touching it.
	counter := 0
	var wg sync.WaitGroup
	wg.Add(50)
	for i := 0; i < 50; i++ {
		go func() {
			defer wg.Done()
			unlock := r.Lock(id)
			counter++
			unlock()
		}()
	}
	wg.Wait()

	check.Equal(t, 50, counter)
}

func TestLockRegistry_EvictsReleasedEntries(t *testing.T) {
	r := NewLockRegistry()

	held := r.Lock(uuid.New())
	released := r.Lock(uuid.New())
	released()

	// Only the held entry survives; released IDs do not accumulate.
	r.mu.Lock()
	check.Equal(t, 1, len(r.locks))
	r.mu.Unlock()

	held()

	r.mu.Lock()
	check.Equal(t, 0, len(r.locks))
	r.mu.Unlock()
}

func TestLockRegistry_WaiterKeepsEntryAlive(t *testing.T) {
	r := NewLockRegistry()
	id := uuid.New()

	first := r.Lock(id)

	acquired := make(chan func())
	go func() {
		acquired <- r.Lock(id)
	}()

	// Give the second goroutine time to register as a waiter, then
	// release; the waiter must take over the same entry, not a fresh one.
	for {
		r.mu.Lock()
		e := r.locks[id]
		waiting := e != nil && e.refs == 2
		r.mu.Unlock()
		if waiting {
			break
		}
	}
	first()

	second := <-acquired
	second()

	r.mu.Lock()
	check.Equal(t, 0, len(r.locks))
	r.mu.Unlock()
}
