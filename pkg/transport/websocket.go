package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport errors.
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrNonTextFrame     = errors.New("non-text frame received")
)

// Transport constants.
const (
	// DefaultPort is the port fcserver listens on.
	DefaultPort = 7890

	// DefaultDialTimeout is the WebSocket handshake timeout.
	DefaultDialTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds a single frame write.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultPingInterval is the interval between keepalive pings.
	DefaultPingInterval = 30 * time.Second

	// DefaultPongTimeout is how long after a ping a pong may arrive
	// before the connection is considered dead.
	DefaultPongTimeout = 10 * time.Second

	// DefaultMaxMessageSize limits inbound frames (1 MiB).
	DefaultMaxMessageSize = 1 << 20
)

// Config configures a WebSocket connection to fcserver.
// The zero value is usable; unset fields take defaults.
type Config struct {
	// DialTimeout is the WebSocket handshake timeout.
	DialTimeout time.Duration

	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration

	// PingInterval is the interval between keepalive pings.
	// Set negative to disable keepalive.
	PingInterval time.Duration

	// PongTimeout is the grace period for a pong after a ping.
	PongTimeout time.Duration

	// MaxMessageSize limits inbound frame size in bytes.
	MaxMessageSize int64
}

func (c *Config) applyDefaults() {
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = DefaultPingInterval
	}
	if c.PongTimeout == 0 {
		c.PongTimeout = DefaultPongTimeout
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
}

// NormalizeURL turns a user-supplied fcserver address into a WebSocket
// URL. Bare "host" or "host:port" forms get the ws scheme and default
// port added.
func NormalizeURL(addr string) string {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr
	}
	if !strings.Contains(addr, ":") {
		addr = fmt.Sprintf("%s:%d", addr, DefaultPort)
	}
	return "ws://" + addr
}

// Dial opens a WebSocket connection to the given fcserver URL.
func Dial(ctx context.Context, url string, config Config) (*WSConn, error) {
	config.applyDefaults()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.DialTimeout)
		defer cancel()
	}

	dialer := websocket.Dialer{HandshakeTimeout: config.DialTimeout}
	ws, _, err := dialer.DialContext(ctx, NormalizeURL(url), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	ws.SetReadLimit(config.MaxMessageSize)

	c := &WSConn{
		ws:      ws,
		config:  config,
		closeCh: make(chan struct{}),
	}

	if config.PingInterval > 0 {
		c.startKeepAlive()
	}

	return c, nil
}

// WSConn is a WebSocket connection to fcserver.
type WSConn struct {
	ws     *websocket.Conn
	config Config

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeCh   chan struct{}

	wg sync.WaitGroup
}

// Send transmits one text frame.
func (c *WSConn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}

	c.ws.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Receive blocks until the next text frame arrives. Binary frames are
// not part of the protocol and are skipped.
func (c *WSConn) Receive() ([]byte, error) {
	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.closeCh:
				return nil, ErrConnectionClosed
			default:
			}
			return nil, fmt.Errorf("read frame: %w", err)
		}
		if msgType != websocket.TextMessage {
			continue
		}
		return data, nil
	}
}

// RemoteAddr returns the remote network address.
func (c *WSConn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}

// Close sends a close frame (best effort) and tears down the
// connection. Safe to call multiple times.
func (c *WSConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)

		c.writeMu.Lock()
		deadline := time.Now().Add(c.config.WriteTimeout)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.writeMu.Unlock()

		err = c.ws.Close()
		c.wg.Wait()
	})
	return err
}

// startKeepAlive begins the ping loop. The read deadline advances on
// every pong; a missed pong fails the pending Receive with a deadline
// error, which the client treats as connection loss.
func (c *WSConn) startKeepAlive() {
	liveness := c.config.PingInterval + c.config.PongTimeout

	c.ws.SetReadDeadline(time.Now().Add(liveness))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(liveness))
	})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.config.PingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-c.closeCh:
				return
			case <-ticker.C:
				deadline := time.Now().Add(c.config.WriteTimeout)
				if err := c.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			}
		}
	}()
}
