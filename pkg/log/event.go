package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the session (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// RemoteAddr is the server address (host:port).
	RemoteAddr string `cbor:"5,keyasint,omitempty"`

	// DeviceSerial is the targeted controller board, when the event
	// concerns a device-addressed request.
	DeviceSerial string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Raw frames
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"` // Decoded messages
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Session state
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame is a raw frame on the transport.
	CategoryFrame Category = 0
	// CategoryMessage is a decoded request or reply.
	CategoryMessage Category = 1
	// CategoryState is a session state change.
	CategoryState Category = 2
	// CategoryError is an error at any layer.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MaxCapturedFrameBytes limits how much raw frame data is stored per
// event. Pixel uploads can be tens of kilobytes; the trace keeps a
// prefix and records the full size.
const MaxCapturedFrameBytes = 256

// FrameEvent captures a raw text frame.
type FrameEvent struct {
	// Size is the full frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data holds up to MaxCapturedFrameBytes of the frame.
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates Data is a prefix of the frame.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// NewFrameEvent builds a FrameEvent, truncating captured data.
func NewFrameEvent(frame []byte) *FrameEvent {
	ev := &FrameEvent{Size: len(frame)}
	if len(frame) > MaxCapturedFrameBytes {
		ev.Data = append([]byte(nil), frame[:MaxCapturedFrameBytes]...)
		ev.Truncated = true
	} else {
		ev.Data = append([]byte(nil), frame...)
	}
	return ev
}

// MessageEvent captures a decoded request or reply.
type MessageEvent struct {
	// Sequence is the correlation number.
	Sequence uint32 `cbor:"1,keyasint"`

	// Type is the request type string; empty for replies that do not
	// echo one.
	Type string `cbor:"2,keyasint,omitempty"`

	// Size is the encoded frame size in bytes.
	Size int `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures a session state transition.
type StateChangeEvent struct {
	OldState string `cbor:"1,keyasint"`
	NewState string `cbor:"2,keyasint"`

	// Reason is an optional human-readable cause.
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Context describes what was being done when the error occurred.
	Context string `cbor:"2,keyasint,omitempty"`

	// Sequence is the related request, if any.
	Sequence uint32 `cbor:"3,keyasint,omitempty"`
}
