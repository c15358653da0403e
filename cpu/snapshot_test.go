package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot_Restore(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, OP_SET, 4, OP_SAVE, 0x44, OP_PUSH, OP_CMP, 4, OP_HALT)
	assert.NoError(cpu.Tick())
	assert.NoError(cpu.Tick())
	assert.NoError(cpu.Tick())

	snap := cpu.Snapshot()
	assert.Equal(5, snap.Pc)
	assert.Equal(byte(4), snap.CurReg)
	assert.Equal(3, snap.Ticks)
	assert.Equal(STATE_RUNNING, snap.State)
	assert.Equal(byte(0x44), snap.Register[4])
	assert.Equal(byte(0x44), snap.Memory[0xff])

	// The snapshot is a copy.
	cpu.Register[4] = 0
	assert.Equal(byte(0x44), snap.Register[4])

	other := NewCpu()
	assert.NoError(other.Restore(snap))
	assert.Equal(snap, other.Snapshot())

	assert.NoError(other.Run())
	assert.Equal(Flags{Valid: true, Equal: true}, other.Flags)
	assert.Equal(5, other.Ticks)
}

func TestSnapshot_RestoreFaulted(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, 0xff)
	assert.Error(cpu.Tick())

	other := NewCpu()
	assert.NoError(other.Restore(cpu.Snapshot()))
	assert.Equal(STATE_HALTED, other.State)
	assert.Nil(other.Fault)
	assert.ErrorIs(other.Tick(), ErrHalted)
}

func TestSnapshot_RestoreInvalid(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	good := cpu.Snapshot()

	snap := good
	snap.Memory = snap.Memory[:10]
	assert.ErrorIs(cpu.Restore(snap), ErrSnapshot)

	snap = good
	snap.Pc = 300
	assert.ErrorIs(cpu.Restore(snap), ErrAddress{})

	snap = good
	snap.State = CpuState(9)
	assert.ErrorIs(cpu.Restore(snap), ErrSnapshot)

	snap = good
	snap.StackMode = StackMode(5)
	assert.ErrorIs(cpu.Restore(snap), ErrStackMode)
}
