package client

import (
	"errors"
	"fmt"
	"time"
)

// Client errors.
var (
	ErrClosed        = errors.New("client closed")
	ErrUnknownDevice = errors.New("unknown device serial")
)

// ConnectionError indicates a transport-level failure. It is fatal to
// the session: once it occurs no further requests can be sent.
type ConnectionError struct {
	Op  string // "send", "receive", "open"
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError indicates a specific request went unanswered within its
// deadline. The session remains usable; retry policy is the caller's.
type TimeoutError struct {
	Sequence    uint32
	MessageType string
	Timeout     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %d (%s) not answered within %s",
		e.Sequence, e.MessageType, e.Timeout)
}

// ProtocolError indicates a malformed inbound frame. The frame is
// dropped and the session continues; the error is reported through the
// configured protocol error hook and the event logger.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// DeviceCommandError indicates a device-targeted request whose reply
// reports failure. Other devices' in-flight commands are unaffected.
type DeviceCommandError struct {
	Serial      string
	MessageType string
	Message     string
}

func (e *DeviceCommandError) Error() string {
	return fmt.Sprintf("device %s: %s failed: %s", e.Serial, e.MessageType, e.Message)
}
