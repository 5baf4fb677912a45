// Package connection provides dial lifecycle helpers for fcserver
// sessions: exponential backoff with jitter and a retrying dial loop.
//
// # Backoff Strategy
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s, 32s
//  3. Maximum delay: 60 seconds, held until success
//  4. Reset to 1s on successful connection
//
// Jitter of up to 25% of the base delay is added so that many clients
// recovering from the same server restart do not reconnect in
// lockstep.
//
// Only session establishment is retried here. Individual requests are
// never retried automatically; that policy belongs to the caller.
package connection
