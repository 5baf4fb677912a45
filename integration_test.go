package fadecandy_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fadecandy-protocol/fadecandy-go/internal/fcemu"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/client"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/fcconfig"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/layout"
	fclog "github.com/fadecandy-protocol/fadecandy-go/pkg/log"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/transport"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/wire"
)

// TestE2E_SessionLifecycle dials an emulated fcserver over a real
// WebSocket, enumerates devices, and drives the full identify workflow.
func TestE2E_SessionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := fcemu.New(
		wire.Device{Type: wire.DeviceTypeFadecandy, Serial: "FCB200", Version: "1.07"},
		wire.Device{Type: wire.DeviceTypeFadecandy, Serial: "FCA100", Version: "1.07"},
	)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, srv.URL(), transport.Config{}, client.Config{})
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()

	// Enumeration is sorted regardless of the server's order.
	devices := c.Devices()
	if len(devices) != 2 || devices[0].Serial != "FCA100" || devices[1].Serial != "FCB200" {
		t.Fatalf("unexpected device enumeration: %+v", devices)
	}

	const index = 200
	if err := c.IdentifyLight(ctx, "FCB200", index); err != nil {
		t.Fatalf("identify failed: %v", err)
	}

	// The target board shows exactly one white LED.
	target := srv.Pixels("FCB200")
	if len(target) != wire.LEDsPerDevice*3 {
		t.Fatalf("expected a full framebuffer, got %d bytes", len(target))
	}
	for i, b := range target {
		want := byte(0)
		if i >= 3*index && i < 3*index+3 {
			want = 255
		}
		if b != want {
			t.Fatalf("FCB200 byte %d: expected %d, got %d", i, want, b)
		}
	}

	// The other board is blanked as part of the same command.
	for i, b := range srv.Pixels("FCA100") {
		if b != 0 {
			t.Fatalf("FCA100 byte %d not zero", i)
		}
	}

	// Each pixel upload is preceded by options and color correction so
	// the bytes reach the hardware unmodified.
	var opts, colors, pixels int
	for _, req := range srv.Requests() {
		switch req.Type {
		case wire.TypeDeviceOptions:
			opts++
		case wire.TypeDeviceColorCorrection:
			colors++
		case wire.TypeDevicePixels:
			pixels++
		}
	}
	if opts != 2 || colors != 2 || pixels != 2 {
		t.Errorf("expected 2 of each device request, got options=%d color=%d pixels=%d", opts, colors, pixels)
	}

	if err := c.AllLightsOff(ctx); err != nil {
		t.Fatalf("all lights off failed: %v", err)
	}
	for _, serial := range []string{"FCA100", "FCB200"} {
		for i, b := range srv.Pixels(serial) {
			if b != 0 {
				t.Fatalf("%s byte %d not zero after all lights off", serial, i)
			}
		}
	}
}

// TestE2E_RequestTimeout verifies that a server that stops answering
// fails the waiting request without killing the session.
func TestE2E_RequestTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := fcemu.New(wire.Device{Type: wire.DeviceTypeFadecandy, Serial: "FCA100"})
	srv.DropReplies(wire.TypeDevicePixels)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, srv.URL(), transport.Config{}, client.Config{
		RequestTimeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()

	device, err := c.Device("FCA100")
	if err != nil {
		t.Fatalf("device lookup failed: %v", err)
	}

	err = c.PushRawPixels(ctx, device, make(wire.Pixels, wire.LEDsPerDevice*3))
	var terr *client.TimeoutError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}

	// The session survives the timeout; a request the emulator does
	// answer still works.
	if _, err := c.Send(ctx, wire.NewListConnectedDevices()); err != nil {
		t.Fatalf("expected session to remain usable after timeout: %v", err)
	}
}

// TestE2E_ProtocolErrorRecovery verifies that malformed frames are
// reported and dropped while the session continues.
func TestE2E_ProtocolErrorRecovery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := fcemu.New(wire.Device{Type: wire.DeviceTypeFadecandy, Serial: "FCA100"})
	srv.MangleReplies(wire.TypeDeviceOptions)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	protocolErrs := make(chan error, 8)
	c, err := client.Dial(ctx, srv.URL(), transport.Config{}, client.Config{
		RequestTimeout:  200 * time.Millisecond,
		OnProtocolError: func(err error) { protocolErrs <- err },
	})
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()

	// The mangled reply is dropped, so the request times out.
	_, err = c.Send(ctx, wire.NewDeviceOptions(wire.Device{Serial: "FCA100"}, wire.Options{}))
	var terr *client.TimeoutError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TimeoutError for the dropped reply, got %v", err)
	}

	select {
	case <-protocolErrs:
	case <-time.After(time.Second):
		t.Fatal("protocol error hook never fired")
	}

	if _, err := c.Send(ctx, wire.NewListConnectedDevices()); err != nil {
		t.Fatalf("expected session to survive the malformed frame: %v", err)
	}
}

// TestE2E_ProtocolTrace verifies that a session logged to a CBOR file
// can be read back and filtered.
func TestE2E_ProtocolTrace(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := fcemu.New(wire.Device{Type: wire.DeviceTypeFadecandy, Serial: "FCA100"})
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "trace.fclog")
	logger, err := fclog.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to open trace file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, srv.URL(), transport.Config{}, client.Config{Logger: logger})
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	if err := c.AllLightsOff(ctx); err != nil {
		t.Fatalf("all lights off failed: %v", err)
	}
	sessionID := c.ID()
	c.Close()
	logger.Close()

	// Outbound messages of this session: enumeration plus the three
	// push steps.
	dir := fclog.DirectionOut
	cat := fclog.CategoryMessage
	reader, err := fclog.NewFilteredReader(path, fclog.Filter{
		ConnectionID: sessionID,
		Direction:    &dir,
		Category:     &cat,
	})
	if err != nil {
		t.Fatalf("failed to open trace: %v", err)
	}
	defer reader.Close()

	events, err := reader.All()
	if err != nil {
		t.Fatalf("failed to read trace: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 outbound messages, got %d", len(events))
	}
	if events[0].Message == nil || events[0].Message.Type != wire.TypeListConnectedDevices {
		t.Errorf("expected the trace to start with enumeration, got %+v", events[0].Message)
	}
	if last := events[len(events)-1]; last.Message.Type != wire.TypeDevicePixels || last.DeviceSerial != "FCA100" {
		t.Errorf("expected the trace to end with the pixel upload, got %+v", last.Message)
	}
}

// TestE2E_MapgenPipeline compiles a layout and saves the resulting
// fcserver configuration, exercising the offline half of the toolchain.
func TestE2E_MapgenPipeline(t *testing.T) {
	l, err := layout.Parse([]byte(`
devices:
  - serial: FCA100
    runs:
      - start: 0
        count: 64
  - serial: FCB200
    runs:
      - start: 64
        count: 128
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	compiler, err := l.Compile()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	cfg := fcconfig.FromCompiler(compiler)
	path := filepath.Join(t.TempDir(), "fcserver.json")
	if err := fcconfig.NewStore(path).Save(cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := fcconfig.NewStore(path).Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(loaded.Devices))
	}
	if loaded.Devices[0].Map[0] != (fcconfig.MapRow{0, 0, 0, 64}) {
		t.Errorf("unexpected first mapping row: %v", loaded.Devices[0].Map[0])
	}
	if loaded.Devices[1].Map[0] != (fcconfig.MapRow{0, 64, 64, 128}) {
		t.Errorf("unexpected second mapping row: %v", loaded.Devices[1].Map[0])
	}
}
