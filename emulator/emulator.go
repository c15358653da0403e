// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator drives an LS-8 CPU through a loaded program.
package emulator

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/io"
)

const (
	CLOCK_INTERVAL = 100 * time.Millisecond // Default step pacing.
)

var _emulator_defines = map[string]string{
	"MEMORY_SIZE":   fmt.Sprintf("%d", cpu.MEMORY_SIZE),
	"REGISTER_SIZE": fmt.Sprintf("%d", cpu.REGISTER_SIZE),
}

// Emulator state. CPU + program listing + console.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.

	Console io.Console // Output of PRN and PRA.

	Interval time.Duration // Pacing between steps in Run, 0 for none.
	Limit    int           // Maximum ticks in Run, 0 for no limit.

	brk    *Breakpoint
	resume bool // Skip the breakpoint on the next tick.
}

// NewEmulator creates a new emulator, with an empty program.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Cpu.SetOutput(&emu.Console)

	return
}

// Defines returns an iterator over all of the defines.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		cpu.Defines(),
	)
}

// Reset the CPU, and load the program into memory.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.resume = false

	emu.Cpu.Reset()

	err = emu.Cpu.Load(emu.Program.Origin, emu.Program.Binary())
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: %d bytes at 0x%02x", len(emu.Program.Lines), emu.Program.Origin)
	}

	return
}

// LineNo returns the source line number of the byte at PC.
func (emu *Emulator) LineNo() int {
	return emu.Program.LineNo(emu.Cpu.Pc)
}

// SetBreak sets the breakpoint expression. An empty expression clears it.
func (emu *Emulator) SetBreak(expr string) (err error) {
	if len(expr) == 0 {
		emu.brk = nil
		return
	}

	brk, err := NewBreakpoint(expr, emu.Defines())
	if err != nil {
		return
	}

	emu.brk = brk
	return
}

// Tick performs a single tick of the emulator.
// done is set once the CPU has halted or faulted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose
	emu.resume = false

	if emu.Cpu.Halted() {
		done = true
		return
	}

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Pc: pc, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	done = emu.Cpu.Halted()

	return
}

// Run ticks until the CPU halts or faults, the context is done, the tick
// limit is reached, or the breakpoint is hit. Calling Run again after a
// breakpoint resumes execution with the instruction it stopped at.
//
// If Interval is set, each instruction waits for the next tick of a
// ticker, otherwise instructions run back to back.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	var clock <-chan time.Time
	if emu.Interval > 0 {
		ticker := time.NewTicker(emu.Interval)
		defer ticker.Stop()
		clock = ticker.C
	}

	if emu.Verbose {
		log.Printf("emulator: run from 0x%02x", emu.Cpu.Pc)
	}

	for !emu.Cpu.Halted() {
		if clock != nil {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			case <-clock:
			}
		} else if err = ctx.Err(); err != nil {
			return
		}

		if emu.Limit > 0 && emu.Cpu.Ticks >= emu.Limit {
			err = ErrTickLimit
			return
		}

		if emu.brk != nil && !emu.resume {
			var hit bool
			hit, err = emu.brk.Eval(emu.Cpu)
			if err != nil {
				return
			}
			if hit {
				if emu.Verbose {
					log.Printf("emulator: break at 0x%02x line %d", emu.Cpu.Pc, emu.LineNo())
				}
				emu.resume = true
				err = ErrBreak
				return
			}
		}

		_, err = emu.Tick()
		if err != nil {
			return
		}
	}

	if emu.Cpu.Fault != nil {
		err = &ErrRuntime{LineNo: emu.LineNo(), Pc: emu.Cpu.Pc, Err: emu.Cpu.Fault}
	}

	return
}
