package vault

import (
	"sync"
	"sync/atomic"

	"github.com/haeli05/4626/internal/types"
)

// guard makes every state-mutating entry point atomic with respect to the
// external transfers it performs and to concurrent readers.
//
// The atomic flag catches re-entrancy: a currency transfer hands control to
// untrusted code that may call back in, and while an operation is in flight
// any nested entry into a guarded function fails with ErrReentrantCall
// instead of observing partially applied state. The flag is checked before
// the lock is taken, so the nested call errors out rather than deadlocking
// on a lock its own goroutine already holds.
//
// The RWMutex covers the state itself: mutators hold the write lock for the
// whole operation and read-only accessors (snapshots, previews, log copies)
// take the read lock, so background persisters never observe a half-applied
// mutation.
type guard struct {
	held atomic.Bool
	mu   sync.RWMutex
}

func (g *guard) enter() (func(), error) {
	if !g.held.CompareAndSwap(false, true) {
		return nil, types.ErrReentrantCall
	}
	g.mu.Lock()
	return func() {
		g.mu.Unlock()
		g.held.Store(false)
	}, nil
}

// read takes the shared lock and returns its release.
func (g *guard) read() func() {
	g.mu.RLock()
	return g.mu.RUnlock
}

// write takes the exclusive lock without re-entrancy tracking. Restore
// paths use it during bootstrap, before the ledger serves traffic.
func (g *guard) write() func() {
	g.mu.Lock()
	return g.mu.Unlock
}
