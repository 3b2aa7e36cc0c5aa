package registry

import (
	"cmp"
	"slices"
	"sync"

	"github.com/luciancaetano/lobby"
)

// Table is a concurrency-safe map keyed by client id.
type Table[V any] struct {
	mu      sync.RWMutex
	entries map[lobby.ClientID]V
}

// NewTable returns an empty table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{entries: make(map[lobby.ClientID]V)}
}

// Insert stores v under id, replacing any previous value.
func (t *Table[V]) Insert(id lobby.ClientID, v V) {
	t.mu.Lock()
	t.entries[id] = v
	t.mu.Unlock()
}

// Get returns the value stored under id.
func (t *Table[V]) Get(id lobby.ClientID) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[id]
	return v, ok
}

// Has reports whether id is present.
func (t *Table[V]) Has(id lobby.ClientID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[id]
	return ok
}

// Remove deletes id and reports whether it was present.
func (t *Table[V]) Remove(id lobby.ClientID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[id]
	delete(t.entries, id)
	return ok
}

// Len returns the number of entries.
func (t *Table[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Entry is a snapshot of one table row.
type Entry[V any] struct {
	ID    lobby.ClientID
	Value V
}

// Snapshot copies every row, ordered by id. The caller may use the result
// freely after the lock is released.
func (t *Table[V]) Snapshot() []Entry[V] {
	t.mu.RLock()
	out := make([]Entry[V], 0, len(t.entries))
	for id, v := range t.entries {
		out = append(out, Entry[V]{ID: id, Value: v})
	}
	t.mu.RUnlock()

	slices.SortFunc(out, func(a, b Entry[V]) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
