// Package layout reads YAML descriptions of how physical LED runs are
// wired to controller boards and registers them with a mapping
// compiler in declaration order.
//
// A layout file looks like:
//
//	devices:
//	  - serial: FCA00042
//	    runs:
//	      - start: 0
//	        count: 64
//	      - start: 128
//	        count: 64
//	  - serial: FCA00043
//	    runs:
//	      - start: 0
//	        count: 512
//
// Declaration order is the output order: the first declared run owns
// the lowest flat output indices. Contiguous runs on one device merge
// into single mapping entries automatically.
package layout

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fadecandy-protocol/fadecandy-go/pkg/mapping"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/wire"
)

// ErrEmptyLayout indicates a layout with no devices.
var ErrEmptyLayout = errors.New("layout declares no devices")

// Run is a contiguous range of device-local pixel indices.
type Run struct {
	Start int `yaml:"start"`
	Count int `yaml:"count"`
}

// DeviceLayout declares the pixel runs wired to one board.
type DeviceLayout struct {
	Serial string `yaml:"serial"`
	Runs   []Run  `yaml:"runs"`
}

// Layout is a parsed layout file.
type Layout struct {
	Devices []DeviceLayout `yaml:"devices"`
}

// Parse decodes and validates a YAML layout document.
func Parse(data []byte) (*Layout, error) {
	l := &Layout{}
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Load reads and parses a layout file.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Validate checks serials, run bounds, and board capacity.
func (l *Layout) Validate() error {
	if len(l.Devices) == 0 {
		return ErrEmptyLayout
	}
	seen := make(map[string]bool)
	for _, d := range l.Devices {
		if d.Serial == "" {
			return errors.New("device with empty serial")
		}
		if seen[d.Serial] {
			return fmt.Errorf("device %s declared twice", d.Serial)
		}
		seen[d.Serial] = true

		if len(d.Runs) == 0 {
			return fmt.Errorf("device %s declares no runs", d.Serial)
		}
		for _, r := range d.Runs {
			if r.Count < 1 {
				return fmt.Errorf("device %s: run count %d < 1", d.Serial, r.Count)
			}
			if r.Start < 0 || r.Start+r.Count > wire.LEDsPerDevice {
				return fmt.Errorf("device %s: run [%d, %d) outside [0, %d)",
					d.Serial, r.Start, r.Start+r.Count, wire.LEDsPerDevice)
			}
		}
	}
	return nil
}

// PixelCount returns the total number of pixels the layout declares.
func (l *Layout) PixelCount() int {
	total := 0
	for _, d := range l.Devices {
		for _, r := range d.Runs {
			total += r.Count
		}
	}
	return total
}

// Compile registers every declared pixel, in declaration order, into a
// fresh mapping compiler.
func (l *Layout) Compile() (*mapping.Compiler, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	c := mapping.NewCompiler()
	for _, d := range l.Devices {
		for _, r := range d.Runs {
			for i := 0; i < r.Count; i++ {
				c.RegisterPixel(d.Serial, r.Start+i)
			}
		}
	}
	return c, nil
}
