package emulator

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
)

var programAdd = []string{
	"# print 8 + 1",
	"00000010 # SET r0",
	"00000000",
	"00000100 # SAVE 8",
	"00001000",
	"00000010 # SET r1",
	"00000001",
	"00000100 # SAVE 1",
	"00000001",
	"00000111 # ADD r0, r1",
	"00000000",
	"00000001",
	"00000110 # PRN",
	"00000000 # HALT",
}

// PUSH and RET back to address 2 forever.
var programLoop = []string{
	"00000100 # SAVE 2",
	"00000010",
	"00001110 # PUSH",
	"01011111 # RET",
}

func newTestEmulator(t *testing.T, program []string) (emu *Emulator, out *bytes.Buffer) {
	assert := assert.New(t)

	ld := &cpu.Loader{}
	prog, err := ld.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)

	out = &bytes.Buffer{}

	emu = NewEmulator()
	emu.Program = prog
	emu.Console.Output = out

	err = emu.Reset()
	assert.NoError(err)

	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Program)
	assert.NoError(emu.Reset())
	assert.Equal(0, emu.LineNo())
	assert.Equal(cpu.STATE_RUNNING, emu.Cpu.State)
}

func TestEmulator_Defines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defines := internal.IterSeq2Collect(emu.Defines())

	assert.Equal("256", defines["MEMORY_SIZE"])
	assert.Equal("256", defines["REGISTER_SIZE"])
	assert.Equal("255", defines["SP"])
	assert.Equal("6", defines["PRN"])
	assert.Equal("0", defines["HALT"])
}

func TestEmulator_Tick(t *testing.T) {
	assert := assert.New(t)

	emu, out := newTestEmulator(t, programAdd)

	lines := []int{}
	for {
		lines = append(lines, emu.LineNo())
		done, err := emu.Tick()
		assert.NoError(err)
		if done {
			break
		}
	}

	assert.Equal([]int{2, 4, 6, 8, 10, 13, 14}, lines)
	assert.Equal("9\n", out.String())
	assert.Equal(7, emu.Cpu.Ticks)

	done, err := emu.Tick()
	assert.True(done)
	assert.NoError(err)
	assert.Equal(7, emu.Cpu.Ticks)
}

func TestEmulator_Run(t *testing.T) {
	assert := assert.New(t)

	emu, out := newTestEmulator(t, programAdd)

	err := emu.Run(context.Background())
	assert.NoError(err)
	assert.Equal("9\n", out.String())
	assert.Equal(cpu.STATE_HALTED, emu.Cpu.State)
	assert.Equal(2, emu.Console.Written)

	// Halted machines stay halted.
	assert.NoError(emu.Run(context.Background()))
	assert.Equal("9\n", out.String())

	// Reset reloads the program.
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run(context.Background()))
	assert.Equal("9\n9\n", out.String())
}

func TestEmulator_RunInterval(t *testing.T) {
	assert := assert.New(t)

	emu, out := newTestEmulator(t, programAdd)
	emu.Interval = time.Millisecond

	err := emu.Run(context.Background())
	assert.NoError(err)
	assert.Equal("9\n", out.String())
	assert.Equal(7, emu.Cpu.Ticks)
}

func TestEmulator_RunCanceled(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, programLoop)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := emu.Run(ctx)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(0, emu.Cpu.Ticks)

	emu.Interval = time.Millisecond
	err = emu.Run(ctx)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(0, emu.Cpu.Ticks)
}

func TestEmulator_RunDeadline(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, programLoop)
	emu.Interval = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := emu.Run(ctx)
	assert.ErrorIs(err, context.DeadlineExceeded)
	assert.Less(0, emu.Cpu.Ticks)
	assert.Equal(cpu.STATE_RUNNING, emu.Cpu.State)
}

func TestEmulator_RunLimit(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, programLoop)
	emu.Limit = 10

	err := emu.Run(context.Background())
	assert.ErrorIs(err, ErrTickLimit)
	assert.Equal(10, emu.Cpu.Ticks)
	assert.Equal(cpu.STATE_RUNNING, emu.Cpu.State)

	// Raising the limit continues from the same place.
	emu.Limit = 15
	err = emu.Run(context.Background())
	assert.ErrorIs(err, ErrTickLimit)
	assert.Equal(15, emu.Cpu.Ticks)
}

func TestEmulator_RunFault(t *testing.T) {
	assert := assert.New(t)

	emu, out := newTestEmulator(t, []string{
		"# bad opcode",
		"00000010 # SET r3",
		"00000011",
		"11111111",
		"00000000 # HALT",
	})

	err := emu.Run(context.Background())
	assert.Error(err)
	assert.ErrorIs(err, cpu.ErrOpcodeInvalid{})

	var rt *ErrRuntime
	if assert.True(errors.As(err, &rt)) {
		assert.Equal(4, rt.LineNo)
		assert.Equal(2, rt.Pc)
	}

	assert.Equal(cpu.STATE_FAULTED, emu.Cpu.State)
	assert.Equal("", out.String())

	// Faulted machines report the fault again.
	err = emu.Run(context.Background())
	assert.ErrorIs(err, cpu.ErrOpcodeInvalid{})

	done, err := emu.Tick()
	assert.True(done)
	assert.NoError(err)
}

func TestEmulator_ResetOversize(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = &cpu.Program{Origin: 0xff}
	emu.Program.Lines = []cpu.Line{
		{LineNo: 1, Address: 0xff, Value: 0},
		{LineNo: 2, Address: 0x100, Value: 0},
	}

	err := emu.Reset()
	assert.ErrorIs(err, cpu.ErrProgramSize)
}
