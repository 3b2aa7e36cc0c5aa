package registry

import "github.com/luciancaetano/lobby"

// Names maps client ids to the names they sent in their handshake.
type Names struct {
	table *Table[string]
}

// NewNames returns an empty name table.
func NewNames() *Names {
	return &Names{table: NewTable[string]()}
}

// Set records the name for id.
func (n *Names) Set(id lobby.ClientID, name string) {
	n.table.Insert(id, name)
}

// Get returns the name recorded for id.
func (n *Names) Get(id lobby.ClientID) (string, bool) {
	return n.table.Get(id)
}

// Delete forgets the name recorded for id.
func (n *Names) Delete(id lobby.ClientID) {
	n.table.Remove(id)
}

// Len returns the number of recorded names.
func (n *Names) Len() int {
	return n.table.Len()
}
