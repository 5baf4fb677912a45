package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fadecandy-protocol/fadecandy-go/pkg/log"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/transport"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/wire"
)

// DefaultRequestTimeout is the per-request deadline used when the
// configuration does not set one.
const DefaultRequestTimeout = 4 * time.Second

// Config configures an fcserver session.
// The zero value is usable.
type Config struct {
	// RequestTimeout is the default per-request deadline.
	RequestTimeout time.Duration

	// Logger receives protocol events. Nil disables capture.
	Logger log.Logger

	// OnProtocolError is invoked for each malformed inbound frame.
	// The frame is dropped and the session continues regardless.
	OnProtocolError func(err error)
}

func (c *Config) applyDefaults() {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

// Client is a session with one fcserver instance. All methods are safe
// for concurrent use; multiple requests may be in flight at once.
type Client struct {
	conn   transport.Conn
	config Config

	// id correlates this session's log events (UUID).
	id         string
	remoteAddr string

	// mu guards nextSeq, pending, closed, and closeErr.
	mu       sync.Mutex
	nextSeq  uint32
	pending  map[uint32]chan *wire.Reply
	closed   bool
	closeErr error

	// devices is populated once at Open, sorted by serial, then
	// immutable.
	devices []wire.Device

	closeOnce sync.Once
	readDone  chan struct{}
}

// Dial connects to the given fcserver address and opens a session.
func Dial(ctx context.Context, addr string, tconfig transport.Config, config Config) (*Client, error) {
	conn, err := transport.Dial(ctx, addr, tconfig)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Err: err}
	}
	return Open(ctx, conn, config)
}

// Open starts a session over an established connection. Its first
// action is a list_connected_devices request; on any failure the
// connection is closed and the session is not usable.
func Open(ctx context.Context, conn transport.Conn, config Config) (*Client, error) {
	config.applyDefaults()

	c := &Client{
		conn:     conn,
		config:   config,
		id:       uuid.NewString(),
		nextSeq:  1,
		pending:  make(map[uint32]chan *wire.Reply),
		readDone: make(chan struct{}),
	}
	if addr := conn.RemoteAddr(); addr != nil {
		c.remoteAddr = addr.String()
	}

	go c.readLoop()

	reply, err := c.Send(ctx, wire.NewListConnectedDevices())
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	if err := reply.Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}

	c.devices = append([]wire.Device(nil), reply.Devices...)
	wire.SortDevicesBySerial(c.devices)

	c.logState("", "OPEN", fmt.Sprintf("%d devices", len(c.devices)))
	return c, nil
}

// ID returns the session's log correlation ID.
func (c *Client) ID() string { return c.id }

// Devices returns the enumerated controller boards, sorted ascending
// by serial. The set is fixed for the lifetime of the session.
func (c *Client) Devices() []wire.Device {
	return append([]wire.Device(nil), c.devices...)
}

// Device looks up an enumerated board by serial.
func (c *Client) Device(serial string) (wire.Device, error) {
	for _, d := range c.devices {
		if d.Serial == serial {
			return d, nil
		}
	}
	return wire.Device{}, fmt.Errorf("%w: %q", ErrUnknownDevice, serial)
}

// Send transmits a request and waits for its reply using the default
// request timeout.
func (c *Client) Send(ctx context.Context, req wire.Request) (*wire.Reply, error) {
	return c.SendTimeout(ctx, req, c.config.RequestTimeout)
}

// SendTimeout transmits a request and waits for its reply, failing
// with a TimeoutError if no reply arrives within timeout.
//
// Completion is exactly-once: whichever of reply arrival, timeout, or
// context cancellation happens first wins, and the pending entry is
// removed either way. A fired timeout does not cancel other in-flight
// requests, nor the transmission already performed.
func (c *Client) SendTimeout(ctx context.Context, req wire.Request, timeout time.Duration) (*wire.Reply, error) {
	c.mu.Lock()
	if c.closed {
		err := c.closeErr
		c.mu.Unlock()
		return nil, err
	}
	seq := c.nextSeq
	c.nextSeq++
	respCh := make(chan *wire.Reply, 1)
	c.pending[seq] = respCh
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, seq)
		c.mu.Unlock()
	}()

	req.SetSequence(seq)
	data, err := wire.EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	c.logMessage(log.DirectionOut, seq, req.MessageType(), len(data), deviceSerialOf(req))

	if err := c.conn.Send(data); err != nil {
		return nil, &ConnectionError{Op: "send", Err: err}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		terr := &TimeoutError{Sequence: seq, MessageType: req.MessageType(), Timeout: timeout}
		c.logErrorEvent(terr.Error(), "request timeout", seq)
		return nil, terr
	case reply, ok := <-respCh:
		if !ok {
			// Session torn down while waiting
			c.mu.Lock()
			err := c.closeErr
			c.mu.Unlock()
			return nil, err
		}
		return reply, nil
	}
}

// Close tears down the session and the underlying connection.
// In-flight requests complete with ErrClosed. Safe to call multiple
// times.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.teardown(ErrClosed)
		err = c.conn.Close()
		<-c.readDone
	})
	return err
}

// readLoop is the single dispatch loop: it decodes each inbound frame
// and settles the pending request it answers.
func (c *Client) readLoop() {
	defer close(c.readDone)

	for {
		data, err := c.conn.Receive()
		if err != nil {
			c.teardown(&ConnectionError{Op: "receive", Err: err})
			return
		}

		reply, err := wire.DecodeReply(data)
		if err != nil {
			// Malformed frame: capture it for the trace, report,
			// drop, continue
			c.logFrame(log.DirectionIn, data)
			perr := &ProtocolError{Err: err}
			c.logErrorEvent(perr.Error(), "inbound frame dropped", 0)
			if c.config.OnProtocolError != nil {
				c.config.OnProtocolError(perr)
			}
			continue
		}

		c.dispatch(reply, len(data))
	}
}

// dispatch settles the pending request matching the reply's sequence
// number. Replies with no pending entry (late, duplicate, or never
// assigned) are ignored.
func (c *Client) dispatch(reply *wire.Reply, size int) {
	c.logMessage(log.DirectionIn, reply.Sequence, reply.Type, size, "")

	c.mu.Lock()
	respCh, ok := c.pending[reply.Sequence]
	if ok {
		delete(c.pending, reply.Sequence)
	}
	c.mu.Unlock()

	if !ok {
		return
	}

	select {
	case respCh <- reply:
	default:
		// Already settled
	}
}

// teardown marks the session closed and releases every waiting caller.
func (c *Client) teardown(reason error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.closeErr = reason
	for seq, respCh := range c.pending {
		close(respCh)
		delete(c.pending, seq)
	}
	c.mu.Unlock()

	c.logState("OPEN", "CLOSED", reason.Error())
}

// deviceSerialOf extracts the target serial from device-addressed
// requests, for log correlation.
func deviceSerialOf(req wire.Request) string {
	switch r := req.(type) {
	case *wire.DeviceOptions:
		return r.Device.Serial
	case *wire.DeviceColorCorrection:
		return r.Device.Serial
	case *wire.DevicePixels:
		return r.Device.Serial
	default:
		return ""
	}
}

func (c *Client) logEvent(event log.Event) {
	if c.config.Logger == nil {
		return
	}
	event.Timestamp = time.Now()
	event.ConnectionID = c.id
	event.RemoteAddr = c.remoteAddr
	c.config.Logger.Log(event)
}

func (c *Client) logMessage(dir log.Direction, seq uint32, msgType string, size int, serial string) {
	c.logEvent(log.Event{
		Direction:    dir,
		Category:     log.CategoryMessage,
		DeviceSerial: serial,
		Message:      &log.MessageEvent{Sequence: seq, Type: msgType, Size: size},
	})
}

// logFrame captures a raw frame, truncated per log.MaxCapturedFrameBytes.
// Only frames that failed to decode are captured; well-formed traffic is
// traced as message events.
func (c *Client) logFrame(dir log.Direction, frame []byte) {
	c.logEvent(log.Event{
		Direction: dir,
		Category:  log.CategoryFrame,
		Frame:     log.NewFrameEvent(frame),
	})
}

func (c *Client) logState(oldState, newState, reason string) {
	c.logEvent(log.Event{
		Category:    log.CategoryState,
		StateChange: &log.StateChangeEvent{OldState: oldState, NewState: newState, Reason: reason},
	})
}

func (c *Client) logErrorEvent(msg, context string, seq uint32) {
	c.logEvent(log.Event{
		Category: log.CategoryError,
		Error:    &log.ErrorEventData{Message: msg, Context: context, Sequence: seq},
	})
}
