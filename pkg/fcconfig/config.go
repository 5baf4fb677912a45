package fcconfig

import (
	"encoding/json"
	"fmt"

	"github.com/fadecandy-protocol/fadecandy-go/pkg/mapping"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/wire"
)

// Defaults for generated configurations.
const (
	DefaultListenHost = "127.0.0.1"
	DefaultListenPort = 7890
	DefaultGamma      = 2.5
)

// Listen is the OPC listen address. fcserver encodes it as a
// two-element JSON array, ["host", port].
type Listen struct {
	Host string
	Port int
}

// MarshalJSON encodes the address in fcserver's [host, port] form.
func (l Listen) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{l.Host, l.Port})
}

// UnmarshalJSON decodes fcserver's [host, port] form.
func (l *Listen) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("listen: expected [host, port], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &l.Host); err != nil {
		return fmt.Errorf("listen host: %w", err)
	}
	if err := json.Unmarshal(raw[1], &l.Port); err != nil {
		return fmt.Errorf("listen port: %w", err)
	}
	return nil
}

// Color is the global color correction block.
type Color struct {
	Gamma      float64    `json:"gamma"`
	Whitepoint [3]float64 `json:"whitepoint"`
}

// MapRow is one compiled mapping range:
// [opcChannel, firstOutputIndex, firstDeviceIndex, length].
type MapRow [4]int

// Device is one controller board section of the configuration.
type Device struct {
	Type   string   `json:"type"`
	Serial string   `json:"serial"`
	Map    []MapRow `json:"map"`
}

// Config is a complete fcserver configuration.
type Config struct {
	Listen  Listen   `json:"listen"`
	Verbose bool     `json:"verbose"`
	Color   Color    `json:"color"`
	Devices []Device `json:"devices"`
}

// Default returns a configuration with fcserver's stock listen address
// and color correction, and no devices.
func Default() Config {
	return Config{
		Listen: Listen{Host: DefaultListenHost, Port: DefaultListenPort},
		Color: Color{
			Gamma:      DefaultGamma,
			Whitepoint: [3]float64{1, 1, 1},
		},
	}
}

// FromCompiler builds a configuration from compiled mapping tables,
// one device section per table in device insertion order, on top of
// the defaults.
func FromCompiler(c *mapping.Compiler) Config {
	cfg := Default()
	for _, dm := range c.Devices() {
		rows := make([]MapRow, len(dm.Entries))
		for i, e := range dm.Entries {
			rows[i] = MapRow{e.Channel, e.FirstOutputIndex, e.FirstDeviceIndex, e.Length}
		}
		cfg.Devices = append(cfg.Devices, Device{
			Type:   wire.DeviceTypeFadecandy,
			Serial: dm.Serial,
			Map:    rows,
		})
	}
	return cfg
}
