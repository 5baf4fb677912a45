package transport

import (
	"net"
)

// Conn is a duplex, message-oriented channel to an fcserver instance.
// Implemented by WSConn.
type Conn interface {
	// Send transmits one text frame. Safe for concurrent use.
	Send(data []byte) error

	// Receive blocks until the next text frame arrives or the
	// connection fails. Not safe for concurrent use; the client runs
	// exactly one receive loop.
	Receive() ([]byte, error)

	// RemoteAddr returns the remote network address.
	RemoteAddr() net.Addr

	// Close closes the connection. Safe to call multiple times.
	Close() error
}

// Compile-time interface satisfaction check.
var _ Conn = (*WSConn)(nil)
