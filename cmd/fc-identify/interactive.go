package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/fadecandy-protocol/fadecandy-go/pkg/client"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/mapping"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/wire"
)

// commandTimeout bounds one console command end to end, including the
// per-device fan-out.
const commandTimeout = 30 * time.Second

// console is the interactive command loop around one fcserver session.
type console struct {
	client *client.Client
	rl     *readline.Instance
}

func newConsole(c *client.Client) (*console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "fc> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &console{client: c, rl: rl}, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
func (c *console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop.
func (c *console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "devices", "list", "ls":
			c.cmdDevices()

		case "identify", "id":
			c.cmdIdentify(ctx, args)

		case "where", "w":
			c.cmdWhere(args)

		case "off":
			c.cmdOff(ctx)

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Fadecandy Identify Commands:
  devices                 - List enumerated controller boards
  identify <serial> <led> - Light one LED white, blank the rest
  where <serial> <led>    - Print the wiring position of an LED
  off                     - Blank every LED on every board
  help                    - Show this help
  quit                    - Exit

  LED indices are device-local, 0..511 (8 strips of 64).`)
}

// cmdDevices handles the devices command.
func (c *console) cmdDevices() {
	devices := c.client.Devices()
	if len(devices) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No devices connected")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nConnected Devices (%d):\n", len(devices))
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	for _, d := range devices {
		fmt.Fprintf(c.rl.Stdout(), "  Serial:  %s\n", d.Serial)
		if d.Type != "" {
			fmt.Fprintf(c.rl.Stdout(), "      Type:    %s\n", d.Type)
		}
		if d.Version != "" {
			fmt.Fprintf(c.rl.Stdout(), "      Version: %s\n", d.Version)
		}
	}
	fmt.Fprintln(c.rl.Stdout())
}

// cmdIdentify handles the identify command.
func (c *console) cmdIdentify(ctx context.Context, args []string) {
	serial, index, ok := c.parseTarget(args, "identify")
	if !ok {
		return
	}

	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if err := c.client.IdentifyLight(cmdCtx, serial, index); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Identify failed: %v\n", err)
		return
	}

	led := mapping.Describe(serial, index)
	fmt.Fprintf(c.rl.Stdout(), "Lit %s (strip %d, position %d)\n",
		led.Label, led.Strip, led.StripPosition)
}

// cmdWhere handles the where command.
func (c *console) cmdWhere(args []string) {
	serial, index, ok := c.parseTarget(args, "where")
	if !ok {
		return
	}

	led := mapping.Describe(serial, index)
	fmt.Fprintf(c.rl.Stdout(), "  Label:    %s\n", led.Label)
	fmt.Fprintf(c.rl.Stdout(), "  Strip:    %d\n", led.Strip)
	fmt.Fprintf(c.rl.Stdout(), "  Position: %d\n", led.StripPosition)
}

// cmdOff handles the off command.
func (c *console) cmdOff(ctx context.Context) {
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if err := c.client.AllLightsOff(cmdCtx); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Failed to blank devices: %v\n", err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), "All lights off")
}

// parseTarget parses and validates a "<serial> <led>" argument pair.
func (c *console) parseTarget(args []string, usage string) (string, int, bool) {
	if len(args) < 2 {
		fmt.Fprintf(c.rl.Stdout(), "Usage: %s <serial> <led>\n", usage)
		fmt.Fprintln(c.rl.Stdout(), "  Use 'devices' to list serials")
		return "", 0, false
	}

	index, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid LED index: %v\n", err)
		return "", 0, false
	}
	if index < 0 || index >= wire.LEDsPerDevice {
		fmt.Fprintf(c.rl.Stdout(), "LED index %d out of range [0, %d)\n", index, wire.LEDsPerDevice)
		return "", 0, false
	}

	return args[0], index, true
}
