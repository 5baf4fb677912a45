// Command fc-mapgen compiles a YAML installation layout into an
// fcserver configuration file.
//
// The layout declares, per controller board, which device-local pixel
// runs the installation uses. fc-mapgen flattens those runs into a
// single OPC output index space, merges contiguous stretches into
// compact mapping rows, and writes a config file fcserver can load
// directly.
//
// Usage:
//
//	fc-mapgen -layout <layout.yaml> [flags]
//
// Flags:
//
//	-layout string  Layout YAML file to compile (required)
//	-out string     Output config file path (default "fcserver.json")
//	-host string    fcserver listen host (default "127.0.0.1")
//	-port int       fcserver listen port (default 7890)
//	-gamma float    Gamma correction exponent (default 2.5)
//	-verbose        Enable fcserver verbose logging in the config
//
// Examples:
//
//	# Compile a layout with defaults
//	fc-mapgen -layout installation.yaml
//
//	# Listen on all interfaces with a custom gamma
//	fc-mapgen -layout installation.yaml -host 0.0.0.0 -gamma 2.2 -out /etc/fcserver.json
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fadecandy-protocol/fadecandy-go/pkg/fcconfig"
	"github.com/fadecandy-protocol/fadecandy-go/pkg/layout"
)

type config struct {
	LayoutFile string
	OutFile    string
	Host       string
	Port       int
	Gamma      float64
	Verbose    bool
}

var cfg config

func init() {
	flag.StringVar(&cfg.LayoutFile, "layout", "", "Layout YAML file to compile (required)")
	flag.StringVar(&cfg.OutFile, "out", "fcserver.json", "Output config file path")
	flag.StringVar(&cfg.Host, "host", fcconfig.DefaultListenHost, "fcserver listen host")
	flag.IntVar(&cfg.Port, "port", fcconfig.DefaultListenPort, "fcserver listen port")
	flag.Float64Var(&cfg.Gamma, "gamma", fcconfig.DefaultGamma, "Gamma correction exponent")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable fcserver verbose logging in the config")
}

func main() {
	flag.Parse()
	log.SetFlags(0)

	if cfg.LayoutFile == "" {
		fmt.Fprintln(os.Stderr, "fc-mapgen: -layout is required")
		flag.Usage()
		os.Exit(2)
	}

	l, err := layout.Load(cfg.LayoutFile)
	if err != nil {
		log.Fatalf("Failed to load layout: %v", err)
	}

	compiler, err := l.Compile()
	if err != nil {
		log.Fatalf("Failed to compile layout: %v", err)
	}

	out := fcconfig.FromCompiler(compiler)
	out.Listen = fcconfig.Listen{Host: cfg.Host, Port: cfg.Port}
	out.Color.Gamma = cfg.Gamma
	out.Verbose = cfg.Verbose

	if err := fcconfig.NewStore(cfg.OutFile).Save(out); err != nil {
		log.Fatalf("Failed to write config: %v", err)
	}

	rows := 0
	for _, d := range out.Devices {
		rows += len(d.Map)
	}
	log.Printf("Compiled %d pixels across %d device(s) into %d mapping row(s)",
		compiler.PixelCount(), len(out.Devices), rows)
	log.Printf("Wrote %s", cfg.OutFile)
}
