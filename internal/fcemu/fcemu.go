// Package fcemu is an in-process fcserver emulator for tests. It
// speaks the JSON WebSocket protocol, records every request, and can
// be scripted to misbehave: dropping replies, duplicating them,
// reporting device errors, or emitting malformed frames.
package fcemu

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/fadecandy-protocol/fadecandy-go/pkg/wire"
)

// Received is one recorded request.
type Received struct {
	Type     string
	Sequence uint32
	Serial   string
	Pixels   wire.Pixels
}

// Server is a scriptable fcserver emulator backed by httptest.
type Server struct {
	httpSrv  *httptest.Server
	upgrader websocket.Upgrader

	mu          sync.Mutex
	devices     []wire.Device
	dropTypes   map[string]bool
	failTypes   map[string]string
	mangleTypes map[string]bool
	duplicate   bool

	requests []Received
	pixels   map[string]wire.Pixels
}

// New starts an emulator reporting the given devices, in the order
// given (deliberately not sorted; clients sort for themselves).
func New(devices ...wire.Device) *Server {
	s := &Server{
		devices:     devices,
		dropTypes:   make(map[string]bool),
		failTypes:   make(map[string]string),
		mangleTypes: make(map[string]bool),
		pixels:      make(map[string]wire.Pixels),
	}
	s.httpSrv = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the ws:// address of the emulator.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.httpSrv.URL, "http")
}

// Close shuts the emulator down.
func (s *Server) Close() {
	s.httpSrv.Close()
}

// DropReplies makes the emulator swallow requests of the given type
// without answering, so they time out client-side.
func (s *Server) DropReplies(msgType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropTypes[msgType] = true
}

// FailType makes replies to the given type report a device error.
func (s *Server) FailType(msgType, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failTypes[msgType] = message
}

// MangleReplies makes replies to the given type unparsable JSON.
func (s *Server) MangleReplies(msgType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mangleTypes[msgType] = true
}

// DuplicateReplies makes the emulator send every reply twice.
func (s *Server) DuplicateReplies() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duplicate = true
}

// Requests returns a copy of all recorded requests in arrival order.
func (s *Server) Requests() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Received(nil), s.requests...)
}

// RequestsOfType returns recorded requests of one type.
func (s *Server) RequestsOfType(msgType string) []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Received
	for _, r := range s.requests {
		if r.Type == msgType {
			out = append(out, r)
		}
	}
	return out
}

// Pixels returns the last framebuffer pushed to the given device.
func (s *Server) Pixels(serial string) wire.Pixels {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(wire.Pixels(nil), s.pixels[serial]...)
}

// inboundMessage covers the union of fields across request types.
type inboundMessage struct {
	Type     string       `json:"type"`
	Sequence uint32       `json:"sequence"`
	Device   *wire.Device `json:"device"`
	Pixels   wire.Pixels  `json:"pixels"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		s.record(msg)

		s.mu.Lock()
		drop := s.dropTypes[msg.Type]
		failMsg := s.failTypes[msg.Type]
		mangle := s.mangleTypes[msg.Type]
		duplicate := s.duplicate
		devices := append([]wire.Device(nil), s.devices...)
		s.mu.Unlock()

		if drop {
			continue
		}

		if mangle {
			conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
			continue
		}

		reply := map[string]any{
			"type":     msg.Type,
			"sequence": msg.Sequence,
		}
		if msg.Type == wire.TypeListConnectedDevices {
			reply["devices"] = devices
		}
		if failMsg != "" {
			reply["error"] = failMsg
		}

		frame, err := json.Marshal(reply)
		if err != nil {
			continue
		}
		conn.WriteMessage(websocket.TextMessage, frame)
		if duplicate {
			conn.WriteMessage(websocket.TextMessage, frame)
		}
	}
}

func (s *Server) record(msg inboundMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Received{Type: msg.Type, Sequence: msg.Sequence}
	if msg.Device != nil {
		rec.Serial = msg.Device.Serial
	}
	if msg.Type == wire.TypeDevicePixels {
		rec.Pixels = append(wire.Pixels(nil), msg.Pixels...)
		if rec.Serial != "" {
			s.pixels[rec.Serial] = rec.Pixels
		}
	}
	s.requests = append(s.requests, rec)
}
