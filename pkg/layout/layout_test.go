package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadecandy-protocol/fadecandy-go/pkg/mapping"
)

const sampleLayout = `
devices:
  - serial: FCA00042
    runs:
      - start: 0
        count: 64
      - start: 128
        count: 64
  - serial: FCA00043
    runs:
      - start: 0
        count: 512
`

func TestParse(t *testing.T) {
	l, err := Parse([]byte(sampleLayout))
	require.NoError(t, err)

	require.Len(t, l.Devices, 2)
	assert.Equal(t, "FCA00042", l.Devices[0].Serial)
	assert.Equal(t, []Run{{Start: 0, Count: 64}, {Start: 128, Count: 64}}, l.Devices[0].Runs)
	assert.Equal(t, 640, l.PixelCount())
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"NotYAML", `devices: [`},
		{"Empty", `devices: []`},
		{"EmptySerial", "devices:\n  - serial: \"\"\n    runs: [{start: 0, count: 1}]"},
		{"DuplicateSerial", "devices:\n  - serial: A\n    runs: [{start: 0, count: 1}]\n  - serial: A\n    runs: [{start: 1, count: 1}]"},
		{"NoRuns", "devices:\n  - serial: A\n    runs: []"},
		{"ZeroCount", "devices:\n  - serial: A\n    runs: [{start: 0, count: 0}]"},
		{"NegativeStart", "devices:\n  - serial: A\n    runs: [{start: -1, count: 2}]"},
		{"PastBoardEnd", "devices:\n  - serial: A\n    runs: [{start: 500, count: 20}]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleLayout), 0o644))

	l, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, l.Devices, 2)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestCompile(t *testing.T) {
	l, err := Parse([]byte(sampleLayout))
	require.NoError(t, err)

	c, err := l.Compile()
	require.NoError(t, err)

	assert.Equal(t, 640, c.PixelCount())

	// Two runs with a device-index gap stay separate entries.
	first := c.Device("FCA00042")
	require.NotNil(t, first)
	require.Len(t, first.Entries, 2)
	assert.Equal(t, mapping.Entry{Channel: 0, FirstOutputIndex: 0, FirstDeviceIndex: 0, Length: 64}, first.Entries[0])
	assert.Equal(t, mapping.Entry{Channel: 0, FirstOutputIndex: 64, FirstDeviceIndex: 128, Length: 64}, first.Entries[1])

	// The full-board device compiles to a single 512-long entry
	// starting after the first device's pixels.
	second := c.Device("FCA00043")
	require.Len(t, second.Entries, 1)
	assert.Equal(t, mapping.Entry{Channel: 0, FirstOutputIndex: 128, FirstDeviceIndex: 0, Length: 512}, second.Entries[0])
}
