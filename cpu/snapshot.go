package cpu

import (
	"fmt"
)

// Snapshot is the serializable state of a CPU.
type Snapshot struct {
	Pc        int       `cbor:"pc"`
	CurReg    byte      `cbor:"cur"`
	Flags     Flags     `cbor:"flags"`
	State     CpuState  `cbor:"state"`
	StackMode StackMode `cbor:"stack"`
	Ticks     int       `cbor:"ticks"`
	Register  []byte    `cbor:"reg"`
	Memory    []byte    `cbor:"mem"`
}

// Snapshot captures the current CPU state.
func (cpu *Cpu) Snapshot() (snap Snapshot) {
	snap = Snapshot{
		Pc:        cpu.Pc,
		CurReg:    cpu.CurReg,
		Flags:     cpu.Flags,
		State:     cpu.State,
		StackMode: cpu.StackMode,
		Ticks:     cpu.Ticks,
		Register:  append([]byte(nil), cpu.Register[:]...),
		Memory:    append([]byte(nil), cpu.Memory[:]...),
	}

	return
}

// Restore replaces the CPU state with a snapshot.
// A faulted snapshot restores as halted, since the fault is not kept.
func (cpu *Cpu) Restore(snap Snapshot) (err error) {
	if len(snap.Register) != REGISTER_SIZE || len(snap.Memory) != MEMORY_SIZE {
		err = fmt.Errorf("%w: %d registers, %d bytes of memory", ErrSnapshot, len(snap.Register), len(snap.Memory))
		return
	}
	if snap.State < STATE_RUNNING || snap.State > STATE_FAULTED {
		err = fmt.Errorf("%w: %v", ErrSnapshot, snap.State)
		return
	}
	if snap.Pc < 0 || snap.Pc >= MEMORY_SIZE {
		err = ErrAddress{Pc: snap.Pc, Address: snap.Pc}
		return
	}
	if _, err = ParseStackMode(snap.StackMode.String()); err != nil {
		return
	}

	cpu.Pc = snap.Pc
	cpu.CurReg = snap.CurReg
	cpu.Flags = snap.Flags
	cpu.StackMode = snap.StackMode
	cpu.Ticks = snap.Ticks
	copy(cpu.Register[:], snap.Register)
	copy(cpu.Memory[:], snap.Memory)

	cpu.Fault = nil
	cpu.State = snap.State
	if cpu.State == STATE_FAULTED {
		cpu.State = STATE_HALTED
	}

	return
}
