// Command fc-logdump views and analyzes Fadecandy protocol trace files.
//
// Trace files are created by running fc-identify (or any program using
// the protocol logging infrastructure) with a capture file configured.
//
// Usage:
//
//	fc-logdump <command> [flags] <file.fclog>
//
// Commands:
//
//	view     View trace in human-readable format
//	export   Export trace to JSONL or CSV
//	filter   Filter trace and write a new trace file
//	stats    Show statistics about the trace
//
// Examples:
//
//	# View all events
//	fc-logdump view session.fclog
//
//	# View only outbound messages
//	fc-logdump view -direction out -category message session.fclog
//
//	# Export to JSONL
//	fc-logdump export -format jsonl session.fclog
//
//	# Keep only one board's traffic
//	fc-logdump filter -device FCA00042 -o fca42.fclog session.fclog
//
//	# Show statistics
//	fc-logdump stats session.fclog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fadecandy-protocol/fadecandy-go/cmd/fc-logdump/commands"
)

const usage = `fc-logdump - Fadecandy Protocol Trace Analyzer

Usage:
  fc-logdump <command> [flags] <file.fclog>

Commands:
  view     View trace in human-readable format
  export   Export trace to JSONL or CSV
  filter   Filter trace and write a new trace file
  stats    Show statistics about the trace

Use "fc-logdump <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `fc-logdump view - View trace in human-readable format

Usage:
  fc-logdump view [flags] <file.fclog>

Flags:
`)
		fs.PrintDefaults()
	}

	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (frame, message, state, error)")
	device := fs.String("device", "", "Filter by device serial")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireFile(fs)

	filter, err := commands.BuildFilter(commands.FilterFlags{
		Direction: *direction,
		Category:  *category,
		Device:    *device,
	})
	if err != nil {
		fatal(err)
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fatal(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `fc-logdump export - Export trace to JSONL or CSV

Usage:
  fc-logdump export [flags] <file.fclog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireFile(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fatal(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `fc-logdump filter - Filter trace and write a new trace file

Usage:
  fc-logdump filter [flags] <file.fclog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	connID := fs.String("conn-id", "", "Filter by session ID")
	device := fs.String("device", "", "Filter by device serial")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (frame, message, state, error)")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}
	path := requireFile(fs)

	filter, err := commands.BuildFilter(commands.FilterFlags{
		ConnID:    *connID,
		Device:    *device,
		Direction: *direction,
		Category:  *category,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
	})
	if err != nil {
		fatal(err)
	}

	if err := commands.RunFilter(path, *output, filter); err != nil {
		fatal(err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `fc-logdump stats - Show statistics about the trace

Usage:
  fc-logdump stats <file.fclog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireFile(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fatal(err)
	}
}

func requireFile(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
