package wire

import (
	"sort"
)

// DeviceTypeFadecandy is the device type string fcserver reports for
// Fadecandy controller boards.
const DeviceTypeFadecandy = "fadecandy"

// Fixed hardware geometry of a Fadecandy controller board.
const (
	// LEDsPerStrip is the number of LEDs on one output strip.
	LEDsPerStrip = 64

	// LEDsPerDevice is the total addressable LEDs on one board
	// (8 strips of 64).
	LEDsPerDevice = 512
)

// Device identifies one physical controller board. Devices are
// immutable once enumerated; the serial number is the stable key.
type Device struct {
	Type    string `json:"type,omitempty"`
	Serial  string `json:"serial"`
	Version string `json:"version,omitempty"`
}

// String returns the device serial, the human-facing identifier.
func (d Device) String() string { return d.Serial }

// SortDevicesBySerial sorts devices ascending by serial string, giving
// a stable enumeration order independent of the order the server
// reported them in.
func SortDevicesBySerial(devices []Device) {
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Serial < devices[j].Serial
	})
}
