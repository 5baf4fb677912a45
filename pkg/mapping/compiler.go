package mapping

// OPCChannel is the Open Pixel Control channel recorded in every
// mapping entry. fcserver configurations generated here always use
// channel 0.
const OPCChannel = 0

// Entry is one run-length mapping range: Length consecutive output
// indices starting at FirstOutputIndex map 1:1 onto consecutive
// device-local indices starting at FirstDeviceIndex.
//
// Entries are ordered by creation time and Length is always >= 1.
type Entry struct {
	Channel          int
	FirstOutputIndex int
	FirstDeviceIndex int
	Length           int
}

// DeviceMap is the ordered mapping table for one controller board.
type DeviceMap struct {
	Serial  string
	Entries []Entry
}

// last returns the most recently added entry, or nil if none.
func (m *DeviceMap) last() *Entry {
	if len(m.Entries) == 0 {
		return nil
	}
	return &m.Entries[len(m.Entries)-1]
}

// Compiler incrementally builds per-device mapping tables and assigns
// each registered pixel a unique, strictly increasing flat output
// index. Not safe for concurrent use; registrations are sequential.
type Compiler struct {
	devices map[string]*DeviceMap
	order   []string // insertion order of device serials

	// nextOutputIndex only ever increments over a Compiler's lifetime.
	nextOutputIndex int
}

// NewCompiler creates an empty compiler with the output counter at 0.
func NewCompiler() *Compiler {
	return &Compiler{
		devices: make(map[string]*DeviceMap),
	}
}

// EnsureDevice returns the mapping table for serial, creating an empty
// one on first use. Idempotent; tables keep stable insertion order.
func (c *Compiler) EnsureDevice(serial string) *DeviceMap {
	if m, ok := c.devices[serial]; ok {
		return m
	}
	m := &DeviceMap{Serial: serial}
	c.devices[serial] = m
	c.order = append(c.order, serial)
	return m
}

// RegisterPixel assigns the next flat output index to the pixel at
// deviceIndex on the given device and returns it.
//
// Greedy single-lookback merge: only the most recent entry of the
// device's table is examined. When the new pixel is contiguous with it
// in both the output and device index spaces, that entry grows by one;
// otherwise a fresh length-1 entry is appended. This keeps tables
// byte-compatible with configurations compiled by existing tooling,
// which uses the same heuristic.
func (c *Compiler) RegisterPixel(serial string, deviceIndex int) int {
	outputIndex := c.nextOutputIndex
	c.nextOutputIndex++

	m := c.EnsureDevice(serial)
	if last := m.last(); last != nil &&
		last.FirstOutputIndex+last.Length == outputIndex &&
		last.FirstDeviceIndex+last.Length == deviceIndex {
		last.Length++
		return outputIndex
	}

	m.Entries = append(m.Entries, Entry{
		Channel:          OPCChannel,
		FirstOutputIndex: outputIndex,
		FirstDeviceIndex: deviceIndex,
		Length:           1,
	})
	return outputIndex
}

// PixelCount returns the total number of registered pixels, which is
// also the next output index to be assigned.
func (c *Compiler) PixelCount() int {
	return c.nextOutputIndex
}

// Device returns the mapping table for serial, or nil if the device
// has never been seen.
func (c *Compiler) Device(serial string) *DeviceMap {
	return c.devices[serial]
}

// Devices returns all mapping tables in device insertion order.
func (c *Compiler) Devices() []*DeviceMap {
	maps := make([]*DeviceMap, 0, len(c.order))
	for _, serial := range c.order {
		maps = append(maps, c.devices[serial])
	}
	return maps
}
