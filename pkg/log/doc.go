// Package log provides structured protocol logging for the fcserver
// client.
//
// This package defines the Logger interface and Event types for
// capturing protocol-level events: frames on the wire, decoded
// messages, connection state changes, and errors. It is separate from
// operational logging (slog) - protocol capture provides a complete
// machine-readable trace of a session for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For analysis: write to binary file
//	cfg.Logger, _ = log.NewFileLogger("session.fclog")
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files use CBOR encoding with integer map keys; the Reader type
// streams and filters recorded events back out.
package log
