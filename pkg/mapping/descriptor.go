package mapping

import (
	"fmt"

	"github.com/fadecandy-protocol/fadecandy-go/pkg/wire"
)

// LED describes one physical LED position on a controller board.
type LED struct {
	// Serial identifies the board.
	Serial string

	// Index is the device-local pixel index, 0..511.
	Index int

	// Strip is the output strip the LED sits on, Index / 64.
	Strip int

	// StripPosition is the LED's offset within its strip, Index % 64.
	StripPosition int

	// Label is the wiring label, "<serial>-<index>" with the index
	// zero-padded to three digits.
	Label string
}

// Describe derives the descriptor for one device-local pixel index.
// Pure computation over the fixed board geometry.
func Describe(serial string, index int) LED {
	return LED{
		Serial:        serial,
		Index:         index,
		Strip:         index / wire.LEDsPerStrip,
		StripPosition: index % wire.LEDsPerStrip,
		Label:         fmt.Sprintf("%s-%03d", serial, index),
	}
}

// DeviceLEDs returns descriptors for all 512 LEDs of one board, in
// device index order.
func DeviceLEDs(serial string) []LED {
	leds := make([]LED, wire.LEDsPerDevice)
	for i := range leds {
		leds[i] = Describe(serial, i)
	}
	return leds
}

// FleetLEDs returns descriptors for every LED of every listed board,
// concatenated in list order.
func FleetLEDs(serials []string) []LED {
	leds := make([]LED, 0, len(serials)*wire.LEDsPerDevice)
	for _, serial := range serials {
		leds = append(leds, DeviceLEDs(serial)...)
	}
	return leds
}
