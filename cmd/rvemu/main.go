// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ezrec/rvemu/machine"
	"github.com/ezrec/rvemu/statsview"
	"github.com/ezrec/rvemu/translate"
)

var f = translate.From

type options struct {
	config    string
	ramSize   uint
	batch     int
	maxCycles uint64
	source    bool
	verbose   bool
	dump      bool
	stats     string
}

func main() {
	var opts options

	flag.StringVar(&opts.config, "config", "", ".toml machine configuration")
	flag.UintVar(&opts.ramSize, "ram", 0, "RAM size in bytes, overrides the configuration")
	flag.IntVar(&opts.batch, "batch", 0, "Cycles per batch, overrides the configuration")
	flag.Uint64Var(&opts.maxCycles, "n", 0, "Stop after this many cycles, 0 for no limit")
	flag.BoolVar(&opts.source, "s", false, "Image is assembly source, not a raw binary")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose mode")
	flag.BoolVar(&opts.dump, "d", false, "Dump the CPU state on exit")
	flag.StringVar(&opts.stats, "statsview", "", "Serve runtime statistics over HTTP at this address")

	flag.Parse()

	log.SetPrefix("rvemu: ")

	if flag.NArg() != 1 {
		log.Fatal(f("%v: Expected one image file, got: %v", os.Args[0], flag.Args()))
	}

	if len(opts.stats) != 0 && !statsview.Available() {
		log.Fatal(f("%v: not built with the statsview tag", os.Args[0]))
	}

	err := run(flag.Arg(0), &opts)
	if err != nil {
		log.Fatal(err)
	}
}

// configure builds the machine configuration from the file and flags.
func configure(opts *options) (cfg machine.Config, err error) {
	cfg = machine.DefaultConfig()

	if len(opts.config) != 0 {
		cfg, err = machine.LoadConfig(opts.config)
		if err != nil {
			err = fmt.Errorf("%v: %w", opts.config, err)
			return
		}
	}

	if opts.ramSize != 0 {
		if opts.ramSize > math.MaxUint32 {
			err = fmt.Errorf("-ram %v: %w", opts.ramSize, machine.ErrRamSize)
			return
		}
		cfg.RamSize = uint32(opts.ramSize)
	}

	if opts.batch != 0 {
		cfg.Batch = opts.batch
	}

	cfg.Verbose = cfg.Verbose || opts.verbose

	return
}

// load places the image into the machine.
func load(m *machine.Machine, image string, source bool) (err error) {
	inf, err := os.Open(image)
	if err != nil {
		return
	}
	defer inf.Close()

	if !source {
		err = m.LoadBinary(inf)
		if err != nil {
			err = fmt.Errorf("%v: %w", image, err)
		}
		return
	}

	prog, err := m.Assembler().Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", image, err)
		return
	}

	err = m.LoadProgram(prog)
	if err != nil {
		err = fmt.Errorf("%v: %w", image, err)
	}

	return
}

// summary returns the end of run report lines.
func summary(m *machine.Machine, image string, elapsed time.Duration) (lines []string) {
	ips := float64(m.Cycle) / max(elapsed.Seconds(), 1e-9)
	lines = append(lines, f("%d cycles in %v, %.0f IPS", m.Cycle, elapsed.Round(time.Millisecond), ips))

	if lineno := m.LineNo(); lineno != 0 {
		lines = append(lines, f("%v:%d: pc 0x%08x", image, lineno, m.Pc))
	}

	return
}

func run(image string, opts *options) (err error) {
	cfg, err := configure(opts)
	if err != nil {
		return
	}

	if len(opts.stats) != 0 {
		defer statsview.Launch(opts.stats, os.Stderr)()
	}

	m, err := machine.NewMachine(cfg)
	if err != nil {
		return
	}

	err = load(m, image, opts.source)
	if err != nil {
		return
	}

	input, restore, err := consoleInput(os.Stdin)
	if err != nil {
		return
	}
	defer restore()

	m.Console.Input = input
	m.Console.Output = os.Stdout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	for ctx.Err() == nil && !m.Halted() {
		if opts.maxCycles != 0 && m.Cycle >= opts.maxCycles {
			break
		}

		_, err = m.Tick()
		if err != nil {
			return
		}
	}
	elapsed := time.Since(start)

	// Flush anything the final batch transmitted.
	err = m.Console.Pump(m.Uart)
	if err != nil {
		return
	}

	restore()

	if cfg.Verbose {
		for _, line := range summary(m, image, elapsed) {
			log.Print(line)
		}
	}

	if opts.dump {
		fmt.Fprint(os.Stderr, m.Cpu.String())
	}

	return
}
