package wire

import (
	"fmt"
)

// Request type strings understood by fcserver.
const (
	TypeListConnectedDevices  = "list_connected_devices"
	TypeDeviceOptions         = "device_options"
	TypeDeviceColorCorrection = "device_color_correction"
	TypeDevicePixels          = "device_pixels"
)

// Sequence 0 is never assigned to a request; replies carrying it
// cannot be correlated.
const UnassignedSequence uint32 = 0

// Request is implemented by all outgoing fcserver messages.
type Request interface {
	// MessageType returns the wire type string of the request.
	MessageType() string

	// Sequence returns the correlation number assigned to the request,
	// or UnassignedSequence if none has been assigned yet.
	Sequence() uint32

	// SetSequence assigns the correlation number. Called by the
	// connection immediately before the request is encoded.
	SetSequence(seq uint32)
}

// Envelope carries the fields common to every request. Embed it in
// concrete request types.
type Envelope struct {
	Type string `json:"type"`
	Seq  uint32 `json:"sequence,omitempty"`
}

// MessageType returns the wire type string.
func (e *Envelope) MessageType() string { return e.Type }

// Sequence returns the assigned correlation number.
func (e *Envelope) Sequence() uint32 { return e.Seq }

// SetSequence assigns the correlation number.
func (e *Envelope) SetSequence(seq uint32) { e.Seq = seq }

// ListConnectedDevices asks the server for the set of attached
// controller boards.
type ListConnectedDevices struct {
	Envelope
}

// NewListConnectedDevices creates a list_connected_devices request.
func NewListConnectedDevices() *ListConnectedDevices {
	return &ListConnectedDevices{Envelope{Type: TypeListConnectedDevices}}
}

// Options holds per-device processing options.
//
// LED controls the status LED override: nil leaves the LED under
// device control, true/false force it on or off. Dither and
// Interpolate toggle temporal dithering and keyframe interpolation.
// All three must be off (LED nil, Dither false, Interpolate false)
// for raw pixel pushes to reach the hardware unmodified.
type Options struct {
	LED         *bool `json:"led"`
	Dither      bool  `json:"dither"`
	Interpolate bool  `json:"interpolate"`
}

// DeviceOptions sets processing options on one device.
type DeviceOptions struct {
	Envelope
	Device  Device  `json:"device"`
	Options Options `json:"options"`
}

// NewDeviceOptions creates a device_options request.
func NewDeviceOptions(device Device, options Options) *DeviceOptions {
	return &DeviceOptions{
		Envelope: Envelope{Type: TypeDeviceOptions},
		Device:   device,
		Options:  options,
	}
}

// ColorCorrection holds per-device gamma and whitepoint settings.
type ColorCorrection struct {
	Gamma      float64    `json:"gamma"`
	Whitepoint [3]float64 `json:"whitepoint"`
}

// UnityColorCorrection returns the color correction that disables the
// gamma and whitepoint transform entirely.
func UnityColorCorrection() ColorCorrection {
	return ColorCorrection{Gamma: 1.0, Whitepoint: [3]float64{1, 1, 1}}
}

// DeviceColorCorrection sets color correction on one device.
type DeviceColorCorrection struct {
	Envelope
	Device Device          `json:"device"`
	Color  ColorCorrection `json:"color"`
}

// NewDeviceColorCorrection creates a device_color_correction request.
func NewDeviceColorCorrection(device Device, color ColorCorrection) *DeviceColorCorrection {
	return &DeviceColorCorrection{
		Envelope: Envelope{Type: TypeDeviceColorCorrection},
		Device:   device,
		Color:    color,
	}
}

// DevicePixels uploads a raw RGB framebuffer to one device.
type DevicePixels struct {
	Envelope
	Device Device `json:"device"`
	Pixels Pixels `json:"pixels"`
}

// NewDevicePixels creates a device_pixels request.
func NewDevicePixels(device Device, pixels Pixels) *DevicePixels {
	return &DevicePixels{
		Envelope: Envelope{Type: TypeDevicePixels},
		Device:   device,
		Pixels:   pixels,
	}
}

// Reply is a decoded server message. fcserver sends exactly one reply
// per request; fields beyond the sequence number are populated only
// for the request types that return data.
type Reply struct {
	// Sequence echoes the correlation number of the answered request.
	Sequence uint32 `json:"sequence"`

	// Type echoes the request type, when the server includes it.
	Type string `json:"type,omitempty"`

	// Devices is populated for list_connected_devices replies.
	Devices []Device `json:"devices,omitempty"`

	// Error carries a device-reported failure message, empty on success.
	Error string `json:"error,omitempty"`
}

// Err returns a non-nil error if the reply reports a failure.
func (r *Reply) Err() error {
	if r.Error == "" {
		return nil
	}
	return fmt.Errorf("device error: %s", r.Error)
}
