package flatfile

import (
	"sync"

	"github.com/gosuda/cabinet/internal/tenant"
)

// Locker hands out one mutex per tenant. Holding it makes a
// read-modify-write cycle over the tenant's files exclusive within the
// process.
type Locker struct {
	mu sync.Mutex
	// One entry per tenant seen since start, never pruned; a practice has
	// a handful of tenants.
	locks map[tenant.ID]*sync.Mutex
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[tenant.ID]*sync.Mutex)}
}

// Lock blocks until the tenant's mutex is held and returns its release func.
func (l *Locker) Lock(t tenant.ID) func() {
	l.mu.Lock()
	m, ok := l.locks[t]
	if !ok {
		m = &sync.Mutex{}
		l.locks[t] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
