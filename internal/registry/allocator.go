// Package registry holds the shared state of a lobby: the id allocator, the
// connection table and the name table. Each is guarded by its own lock and no
// method holds more than one lock at a time.
package registry

import (
	"slices"
	"sync"

	"github.com/luciancaetano/lobby"
)

// Allocator hands out client ids. Released ids are reused in FIFO order
// before fresh ids are minted from a counter.
type Allocator struct {
	mu   sync.Mutex
	next lobby.ClientID
	free []lobby.ClientID
}

// NewAllocator returns an allocator whose first fresh id is 1.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate returns the oldest released id for which busy reports false, or a
// fresh id when there is none. busy may be nil. Ids skipped because they are
// busy stay in the pool in their original order.
//
// busy is called without the allocator lock held, so it may take other locks.
func (a *Allocator) Allocate(busy func(lobby.ClientID) bool) lobby.ClientID {
	a.mu.Lock()
	candidates := slices.Clone(a.free)
	a.mu.Unlock()

	for _, id := range candidates {
		if busy != nil && busy(id) {
			continue
		}
		if a.take(id) {
			return id
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.next++
	return a.next
}

func (a *Allocator) take(id lobby.ClientID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := slices.Index(a.free, id)
	if i < 0 {
		return false
	}
	a.free = slices.Delete(a.free, i, i+1)
	return true
}

// Release returns id to the back of the pool.
func (a *Allocator) Release(id lobby.ClientID) {
	a.mu.Lock()
	a.free = append(a.free, id)
	a.mu.Unlock()
}

// Free returns a snapshot of the pool in reuse order.
func (a *Allocator) Free() []lobby.ClientID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.free)
}
