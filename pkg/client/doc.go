// Package client implements the fcserver session: correlated
// request/response messaging over a single duplex connection, device
// enumeration, and the device-level operations built on top.
//
// # Correlation
//
// Each outgoing request is assigned the next sequence number from a
// strictly increasing counter (never reused within a session). The
// session keeps a pending table keyed by sequence number; the single
// receive loop dispatches each inbound reply to its waiting caller by
// lookup. Replies may arrive in any order relative to sends. Every
// request completes exactly once: with the reply, with a TimeoutError
// after its deadline, or with a connection error if the session dies.
// A reply for a sequence number that is unknown or already resolved is
// ignored.
//
// # Device Operations
//
// PushRawPixels issues three strictly sequential requests (options,
// unity color correction, pixel data) so raw bytes reach the hardware
// unmodified. AllLightsOff and IdentifyLight fan out one such chain
// per enumerated device; chains run concurrently, all chains run to
// completion, and the first error in device order is returned. Nothing
// already sent to hardware is rolled back.
package client
