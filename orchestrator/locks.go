package orchestrator

import (
	"strings"
	"sync"
)

// orderLocks serializes orchestration per order hash. Operations on distinct
// orders run concurrently; re-entry on the same order blocks until the
// in-flight operation finishes.
type orderLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newOrderLocks() *orderLocks {
	return &orderLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// acquire locks the order's mutex and returns the matching unlock function.
func (l *orderLocks) acquire(orderHash string) func() {
	key := strings.ToLower(orderHash)

	l.mu.Lock()
	lock, exists := l.locks[key]
	if !exists {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
