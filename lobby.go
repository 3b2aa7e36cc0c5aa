package lobby

import (
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/multierr"
)

// ClientID identifies one connection for its lifetime.
//
// Ids are small non-negative integers handed out by the server. Once a
// connection has ended and its Disconnected result has been delivered by Scan,
// its id returns to a pool and may be given to a later connection.
type ClientID uint32

// ResultKind tags the variant carried by a ScanResult.
type ResultKind int

const (
	// Connected reports that a client completed its name handshake.
	// Name(id) is readable from this point on.
	Connected ResultKind = iota + 1
	// Data carries bytes the client sent after its handshake.
	Data
	// IoError carries a read failure observed after the handshake.
	IoError
	// Disconnected reports that the connection's byte stream has ended.
	// It is the last result delivered for the connection.
	Disconnected
)

func (k ResultKind) String() string {
	switch k {
	case Connected:
		return "connected"
	case Data:
		return "data"
	case IoError:
		return "io-error"
	case Disconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// ScanResult is one event reported by Scan.
//
// Data is set only for Data results and Err only for IoError results.
// Chunk boundaries in Data carry no meaning; the bytes of consecutive Data
// results form the client's byte stream.
type ScanResult struct {
	Kind ResultKind
	Data []byte
	Err  error
}

// ScanFunc receives the results of a Scan call.
type ScanFunc = func(id ClientID, result ScanResult)

// Predicate selects the recipients of Message.
type Predicate = func(id ClientID) bool

// Failure pairs a client with the error its write returned.
type Failure struct {
	ID  ClientID
	Err error
}

func (f Failure) Error() string {
	return fmt.Sprintf("client %d: %v", f.ID, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Failures is the list of failed writes returned by the messaging operations.
// A nil or empty list means every selected client was written to.
type Failures []Failure

// Err combines the failures into a single error, or returns nil when there are none.
func (fs Failures) Err() error {
	var err error
	for _, f := range fs {
		err = multierr.Append(err, f)
	}
	return err
}

// ClientInfo describes a registered connection.
type ClientInfo struct {
	ID ClientID
	// Session is a random identifier unique to this connection. Unlike ID it
	// is never reused, which makes it suitable for correlating log lines.
	Session    string
	RemoteAddr string
	AcceptedAt time.Time
}

// Conn is a duplex byte connection accepted by a Listener.
//
// Read is only ever called from the connection's reader goroutine, while
// Write may be called concurrently with it. Any net.Conn satisfies Conn.
type Conn interface {
	io.ReadWriteCloser
	RemoteAddr() net.Addr
}

// Listener yields incoming connections. Accept must return an error wrapping
// net.ErrClosed once the listener has been closed.
type Listener interface {
	Accept() (Conn, error)
	Close() error
	Addr() net.Addr
}

// Lobby tracks connected clients under recyclable integer ids.
//
// The server accepts connections in the background. The embedding
// application polls for client activity with Scan and writes to clients with
// the Message family of methods.
//
// Example usage:
//
//	server, err := tcp.New("127.0.0.1:8080", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    server.Scan(func(id lobby.ClientID, result lobby.ScanResult) {
//	        name, _ := server.Name(id)
//	        switch result.Kind {
//	        case lobby.Connected:
//	            fmt.Printf("%s has connected.\n", name)
//	        case lobby.Data:
//	            server.MessageRest(id, result.Data)
//	        case lobby.IoError:
//	            fmt.Printf("%s ran into an IO error: %v\n", name, result.Err)
//	        case lobby.Disconnected:
//	            fmt.Printf("%s has disconnected.\n", name)
//	        }
//	    })
//	}
type Lobby interface {
	// Scan reports pending client activity to fn and returns without blocking.
	//
	// Newly connected clients are reported first, in the order their
	// handshakes completed. Then every registered client is visited exactly
	// once and at most one Data, IoError or Disconnected result is reported
	// for it. A client reported as Disconnected is removed from the lobby
	// after fn returns.
	//
	// Scan is meant to be driven from a single goroutine. fn may call any
	// other method of the Lobby.
	Scan(fn ScanFunc)

	// Message writes data to every registered client whose id satisfies pred.
	//
	// Writes are synchronous. Clients whose write fails stay registered; only
	// Scan removes clients.
	Message(pred Predicate, data []byte) Failures

	// MessageAll writes data to every registered client.
	MessageAll(data []byte) Failures

	// MessageOne writes data to the client with the given id, if registered.
	MessageOne(id ClientID, data []byte) Failures

	// MessageRest writes data to every registered client except id.
	// Useful for relaying one client's message to the others.
	MessageRest(id ClientID, data []byte) Failures

	// Name returns the name the client sent in its handshake.
	//
	// The name is available from the moment the Connected result is reported
	// until the Disconnected result for the same connection has been handled.
	Name(id ClientID) (string, bool)

	// Info returns details about a registered client.
	Info(id ClientID) (ClientInfo, bool)

	// Clients lists the registered clients ordered by id.
	Clients() []ClientInfo

	// Addr returns the address the lobby is listening on.
	Addr() net.Addr

	// Close stops accepting connections and closes every registered
	// connection. Their Disconnected results remain available to Scan.
	Close() error
}
