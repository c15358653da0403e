// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/ezrec/ls8/config"
	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
)

// run loads and executes the program at path.
func run(ctx context.Context, cfg *config.Config, path string, output io.Writer) (err error) {
	mode, err := cfg.StackMode()
	if err != nil {
		return
	}

	interval, err := cfg.Duration()
	if err != nil {
		return
	}

	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	ld := &cpu.Loader{Verbose: cfg.Verbose}
	prog, err := ld.Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	emu := emulator.NewEmulator()
	emu.Verbose = cfg.Verbose
	emu.Program = prog
	emu.Console.Output = output
	emu.Interval = interval
	emu.Limit = cfg.Limit
	emu.Cpu.StackMode = mode

	err = emu.Reset()
	if err != nil {
		return
	}

	err = emu.SetBreak(cfg.Break)
	if err != nil {
		return
	}

	err = emu.Run(ctx)

	if len(cfg.Snapshot) != 0 {
		serr := writeSnapshot(emu, cfg.Snapshot)
		if err == nil {
			err = serr
		}
	}

	if cfg.Verbose {
		log.Printf("%v", emu.Cpu)
	}

	return
}

func writeSnapshot(emu *emulator.Emulator, path string) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}()

	err = emu.WriteSnapshot(ouf)
	return
}

var errUsage = errors.New("usage: ls8 [flags] infile")

// parseArgs parses the command line into a configuration and the
// program path. Flags given on the command line override the
// configuration file. Usage errors are reported on stderr.
func parseArgs(args []string, stderr io.Writer) (cfg *config.Config, path string, err error) {
	var configFile string
	var verbose bool
	var interval string
	var limit int
	var stack string
	var brk string
	var snapshot string

	flags := flag.NewFlagSet("ls8", flag.ContinueOnError)
	flags.SetOutput(stderr)

	flags.StringVar(&configFile, "c", "", "ls8.toml configuration file")
	flags.BoolVar(&verbose, "v", false, "Verbose mode")
	flags.StringVar(&interval, "t", config.DEFAULT_INTERVAL, "Step interval, 0s for no pacing")
	flags.IntVar(&limit, "l", 0, "Tick limit, 0 for none")
	flags.StringVar(&stack, "s", cpu.STACK_MODE_POP.String(), "Stack mode, pop or peek")
	flags.StringVar(&brk, "b", "", "Breakpoint expression")
	flags.StringVar(&snapshot, "d", "", ".cbor file to write the final machine state to")

	err = flags.Parse(args)
	if err != nil {
		fmt.Fprintln(stderr, errUsage)
		err = errors.Join(errUsage, err)
		return
	}

	if flags.NArg() != 1 {
		fmt.Fprintln(stderr, errUsage)
		err = errUsage
		return
	}

	cfg = config.Default()
	if len(configFile) != 0 {
		cfg, err = config.Load(configFile)
		if err != nil {
			return
		}
	}

	flags.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "v":
			cfg.Verbose = verbose
		case "t":
			cfg.Interval = interval
		case "l":
			cfg.Limit = limit
		case "s":
			cfg.Stack = stack
		case "b":
			cfg.Break = brk
		case "d":
			cfg.Snapshot = snapshot
		}
	})

	err = cfg.Validate()
	if err != nil {
		return
	}

	path = flags.Arg(0)
	return
}

func main() {
	cfg, infile, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, errUsage) {
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = run(ctx, cfg, infile, os.Stdout)
	if err != nil {
		stop()
		log.Fatalf("%v: %v", infile, err)
	}
}
