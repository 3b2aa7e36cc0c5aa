// Package lobbytest provides helpers for tests that drive a lobby through Scan.
package lobbytest

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/luciancaetano/lobby"
)

// Event is a recorded Scan callback.
type Event struct {
	ID   lobby.ClientID
	Kind lobby.ResultKind
	Data []byte
	Err  error
	// Name is what Name(ID) returned while the callback ran.
	Name    string
	HasName bool
}

func (e Event) String() string {
	switch e.Kind {
	case lobby.Data:
		return fmt.Sprintf("%d:%s(%q)", e.ID, e.Kind, e.Data)
	case lobby.IoError:
		return fmt.Sprintf("%d:%s(%v)", e.ID, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%d:%s", e.ID, e.Kind)
	}
}

// Recorder accumulates the events of successive Scan calls.
type Recorder struct {
	Events []Event
}

// Scan runs one Scan call on l and records its callbacks. It returns the
// number of callbacks made.
func (r *Recorder) Scan(l lobby.Lobby) int {
	before := len(r.Events)
	l.Scan(func(id lobby.ClientID, res lobby.ScanResult) {
		name, ok := l.Name(id)
		r.Events = append(r.Events, Event{
			ID:      id,
			Kind:    res.Kind,
			Data:    res.Data,
			Err:     res.Err,
			Name:    name,
			HasName: ok,
		})
	})
	return len(r.Events) - before
}

// Until scans l repeatedly until done reports true for the recorded events,
// failing the test after timeout.
func (r *Recorder) Until(t testing.TB, l lobby.Lobby, timeout time.Duration, done func([]Event) bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		r.Scan(l)
		if done(r.Events) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %v waiting for scan events; got %v", timeout, r.Events)
		}
		time.Sleep(time.Millisecond)
	}
}

// For returns the recorded events of one client.
func (r *Recorder) For(id lobby.ClientID) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.ID == id {
			out = append(out, e)
		}
	}
	return out
}

// Stream concatenates the Data payloads recorded for id.
func (r *Recorder) Stream(id lobby.ClientID) []byte {
	var buf bytes.Buffer
	for _, e := range r.For(id) {
		if e.Kind == lobby.Data {
			buf.Write(e.Data)
		}
	}
	return buf.Bytes()
}

// Count returns how many events of kind were recorded for id.
func Count(events []Event, id lobby.ClientID, kind lobby.ResultKind) int {
	n := 0
	for _, e := range events {
		if e.ID == id && e.Kind == kind {
			n++
		}
	}
	return n
}

// HasKind reports whether any event of kind was recorded.
func HasKind(events []Event, kind lobby.ResultKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Connected returns the id of the first Connected event recorded for name.
func Connected(events []Event, name string) (lobby.ClientID, bool) {
	for _, e := range events {
		if e.Kind == lobby.Connected && e.Name == name {
			return e.ID, true
		}
	}
	return 0, false
}
