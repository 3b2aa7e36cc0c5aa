// Package lobby provides a connection-management core for chat rooms and game servers.
//
// A lobby accepts client connections in the background and tracks each one
// under a small integer id. Ids are recycled as clients disconnect. The
// embedding application never touches sockets directly: it polls for client
// activity with Scan and writes to clients with predicate-based messaging.
//
// # Quick Start
//
//	import (
//	    "github.com/luciancaetano/lobby"
//	    "github.com/luciancaetano/lobby/tcp"
//	)
//
//	server, err := tcp.New("127.0.0.1:8080", tcp.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//
//	for {
//	    server.Scan(func(id lobby.ClientID, result lobby.ScanResult) {
//	        if result.Kind == lobby.Data {
//	            name, _ := server.Name(id)
//	            server.MessageRest(id, []byte(name+": "+string(result.Data)+"\n"))
//	        }
//	    })
//	    time.Sleep(10 * time.Millisecond)
//	}
//
// # Wire Format
//
// The first thing a client sends is its name, UTF-8 encoded and terminated
// by a single 0 byte:
//
//	[N bytes: UTF-8 name][1 byte: 0x00][opaque byte stream...]
//
// The server does not reply to the handshake. Everything after the
// delimiter is delivered to the application as Data results, in chunks of
// arbitrary size. Chunk boundaries are not message boundaries.
//
// A client that disconnects or sends an invalid name before the delimiter is
// never reported as Connected. Its id still surfaces once as Disconnected.
//
// # Transports
//
// The tcp package serves plain TCP sockets. The ws package serves the same
// protocol over WebSocket, where every message received is a chunk of the
// client's byte stream. tcp.Serve runs a lobby on an existing net.Listener.
//
// # Read Errors
//
// After the handshake, a read error is reported as an IoError result. By
// default the reader keeps reading after an error, throttled by a token bucket
// so that a persistently failing socket cannot spin. Servers can instead
// choose to treat the first read error as the end of the connection.
//
// # Important
//
//   - Scan never blocks and never spawns goroutines; call it from your own loop
//   - Per-client queues are unbounded: a lobby that is never scanned grows without limit
//   - Names are not unique identifiers; two clients may send the same name
package lobby
