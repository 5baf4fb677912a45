// Command fc-identify is an interactive console for locating physical
// LEDs on Fadecandy controller boards.
//
// It connects to a running fcserver instance, enumerates the attached
// boards, and then lights individual LEDs on request so an installer
// can match device-local pixel indices to positions in the physical
// installation.
//
// Usage:
//
//	fc-identify [flags]
//
// Flags:
//
//	-addr string      fcserver address (default "127.0.0.1:7890")
//	-discover         Discover fcserver via mDNS instead of -addr
//	-timeout duration Per-request reply timeout (default 4s)
//	-retries int      Dial attempts before giving up (default 5)
//	-log-file string  Capture protocol events to a CBOR log file
//	-debug            Echo protocol events to the console
//
// Examples:
//
//	# Connect to a local fcserver
//	fc-identify
//
//	# Connect to a remote fcserver and capture a protocol trace
//	fc-identify -addr 192.168.1.40:7890 -log-file trace.fclog
//
//	# Capture a trace and watch the events live
//	fc-identify -log-file trace.fclog -debug
//
//	# Find fcserver on the local network
//	fc-identify -discover
//
// Interactive Commands:
//
//	devices                 - List enumerated controller boards
//	identify <serial> <led> - Light one LED white, blank the rest
//	where <serial> <led>    - Print the wiring position of an LED
//	off                     - Blank every LED on every board
//	quit                    - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fadecandy-protocol/fadecandy-go/pkg/client"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/connection"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/discovery"
	fclog "github.com/fadecandy-protocol/fadecandy-go/pkg/log"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/transport"
)

type config struct {
	Addr     string
	Discover bool
	Timeout  time.Duration
	Retries  int
	LogFile  string
	Debug    bool
}

var cfg config

func init() {
	flag.StringVar(&cfg.Addr, "addr", "127.0.0.1:7890", "fcserver address")
	flag.BoolVar(&cfg.Discover, "discover", false, "Discover fcserver via mDNS instead of -addr")
	flag.DurationVar(&cfg.Timeout, "timeout", client.DefaultRequestTimeout, "Per-request reply timeout")
	flag.IntVar(&cfg.Retries, "retries", 5, "Dial attempts before giving up")
	flag.StringVar(&cfg.LogFile, "log-file", "", "Capture protocol events to a CBOR log file")
	flag.BoolVar(&cfg.Debug, "debug", false, "Echo protocol events to the console")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := cfg.Addr
	if cfg.Discover {
		log.Println("Browsing for fcserver...")
		browser := discovery.NewBrowser(discovery.BrowserConfig{})
		server, err := browser.FindFirst(ctx)
		if err != nil {
			log.Fatalf("Discovery failed: %v", err)
		}
		addr = server.Addr()
		log.Printf("Found %s at %s", server.Instance, addr)
	}

	clientConfig := client.Config{
		RequestTimeout: cfg.Timeout,
		OnProtocolError: func(err error) {
			log.Printf("Protocol error (frame dropped): %v", err)
		},
	}
	var loggers []fclog.Logger
	if cfg.LogFile != "" {
		fileLogger, err := fclog.NewFileLogger(cfg.LogFile)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer fileLogger.Close()
		loggers = append(loggers, fileLogger)
		log.Printf("Capturing protocol events to %s", cfg.LogFile)
	}
	if cfg.Debug {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, fclog.NewSlogAdapter(slog.New(handler)))
	}
	switch len(loggers) {
	case 0:
	case 1:
		clientConfig.Logger = loggers[0]
	default:
		clientConfig.Logger = fclog.NewMultiLogger(loggers...)
	}

	var c *client.Client
	err := connection.Retry(ctx, connection.RetryConfig{
		MaxAttempts: cfg.Retries,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			log.Printf("Dial attempt %d failed (%v), retrying in %s", attempt, err, delay)
		},
	}, func(ctx context.Context) error {
		var err error
		c, err = client.Dial(ctx, addr, transport.Config{}, clientConfig)
		return err
	})
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", addr, err)
	}
	defer c.Close()

	log.Printf("Connected to %s (%d devices)", addr, len(c.Devices()))

	console, err := newConsole(c)
	if err != nil {
		log.Fatalf("Failed to create console: %v", err)
	}
	// Route log output through readline so it does not clobber the prompt
	log.SetOutput(console.Stdout())
	go console.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
		// Cancelled by the quit command
	}

	log.SetOutput(os.Stderr)
	fmt.Println("Goodbye!")
}
