// Package transport provides the WebSocket message channel underneath
// the fcserver client.
//
// fcserver exposes its control protocol as JSON text frames over a
// plain WebSocket. This package owns dialing, frame send/receive, and
// connection liveness (ping/pong keepalive); it knows nothing about
// message contents or correlation, which live in the wire and client
// packages.
//
// The Conn interface is small on purpose: the client package accepts
// any Conn, so tests substitute an in-memory implementation.
package transport
