package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fadecandy-protocol/fadecandy-go/internal/fcemu"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/transport"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/wire"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"localhost", "ws://localhost:7890"},
		{"192.168.1.40", "ws://192.168.1.40:7890"},
		{"localhost:7000", "ws://localhost:7000"},
		{"ws://host:1234", "ws://host:1234"},
		{"wss://host:1234", "wss://host:1234"},
	}

	for _, tc := range cases {
		if got := transport.NormalizeURL(tc.in); got != tc.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDialAndRoundTrip(t *testing.T) {
	srv := fcemu.New(wire.Device{Type: wire.DeviceTypeFadecandy, Serial: "A1"})
	defer srv.Close()

	conn, err := transport.Dial(context.Background(), srv.URL(), transport.Config{})
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if conn.RemoteAddr() == nil {
		t.Error("expected a remote address")
	}

	req := wire.NewListConnectedDevices()
	req.SetSequence(1)
	data, err := wire.EncodeRequest(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if err := conn.Send(data); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	frame, err := conn.Receive()
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	reply, err := wire.DecodeReply(frame)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if reply.Sequence != 1 {
		t.Errorf("expected sequence 1, got %d", reply.Sequence)
	}
	if len(reply.Devices) != 1 || reply.Devices[0].Serial != "A1" {
		t.Errorf("unexpected device list: %+v", reply.Devices)
	}
}

func TestDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Nothing listens on this port.
	_, err := transport.Dial(ctx, "127.0.0.1:1", transport.Config{})
	if err == nil {
		t.Fatal("expected dial to a closed port to fail")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	srv := fcemu.New()
	defer srv.Close()

	conn, err := transport.Dial(context.Background(), srv.URL(), transport.Config{})
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Errorf("first close failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}

	if err := conn.Send([]byte("{}")); !errors.Is(err, transport.ErrConnectionClosed) {
		t.Errorf("expected ErrConnectionClosed on send after close, got %v", err)
	}
	if _, err := conn.Receive(); !errors.Is(err, transport.ErrConnectionClosed) {
		t.Errorf("expected ErrConnectionClosed on receive after close, got %v", err)
	}
}

func TestReceiveSurvivesKeepAlive(t *testing.T) {
	srv := fcemu.New()
	defer srv.Close()

	// Aggressive keepalive so several ping cycles pass during the test.
	conn, err := transport.Dial(context.Background(), srv.URL(), transport.Config{
		PingInterval: 20 * time.Millisecond,
		PongTimeout:  100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	time.Sleep(150 * time.Millisecond)

	// The connection is still healthy after several ping/pong rounds.
	data, _ := json.Marshal(map[string]any{"type": wire.TypeListConnectedDevices, "sequence": 2})
	if err := conn.Send(data); err != nil {
		t.Fatalf("send after keepalive rounds failed: %v", err)
	}
	if _, err := conn.Receive(); err != nil {
		t.Fatalf("receive after keepalive rounds failed: %v", err)
	}
}
