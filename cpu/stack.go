package cpu

import (
	"fmt"
)

// StackMode selects the stack discipline.
type StackMode int

//go:generate go tool stringer -linecomment -type=StackMode
const (
	// STACK_MODE_POP is a conventional descending stack. PUSH decrements
	// the stack pointer then stores at the address it holds, POP loads
	// from that address then increments it.
	STACK_MODE_POP = StackMode(0) // pop
	// STACK_MODE_PEEK reproduces the original LS-8 machine. PUSH
	// decrements the stack pointer but always stores to the fixed cell
	// at SP, POP loads from the address in the stack pointer without
	// moving it, and RET loads the fixed cell then increments the
	// stack pointer.
	STACK_MODE_PEEK = StackMode(1) // peek
)

// ParseStackMode converts a stack mode name to a StackMode.
func ParseStackMode(name string) (mode StackMode, err error) {
	switch name {
	case "", "pop":
		mode = STACK_MODE_POP
	case "peek":
		mode = STACK_MODE_PEEK
	default:
		err = fmt.Errorf("%w: %q", ErrStackMode, name)
	}
	return
}

// push a value onto the stack.
func (cpu *Cpu) push(value byte) {
	cpu.dec(SP)
	switch cpu.StackMode {
	case STACK_MODE_PEEK:
		cpu.Memory[SP] = value
	default:
		cpu.Memory[cpu.Register[SP]] = value
	}
}

// pop a value off of the stack.
func (cpu *Cpu) pop() (value byte) {
	switch cpu.StackMode {
	case STACK_MODE_PEEK:
		value = cpu.Memory[SP]
	default:
		value = cpu.Memory[cpu.Register[SP]]
	}
	cpu.inc(SP)
	return
}

// top returns the value addressed by the stack pointer.
func (cpu *Cpu) top() byte {
	return cpu.Memory[cpu.Register[SP]]
}

func (cpu *Cpu) opPush() (err error) {
	cpu.push(cpu.Register[cpu.CurReg])
	return
}

func (cpu *Cpu) opPop() (err error) {
	switch cpu.StackMode {
	case STACK_MODE_PEEK:
		cpu.Register[cpu.CurReg] = cpu.top()
	default:
		cpu.Register[cpu.CurReg] = cpu.pop()
	}
	return
}

// opCall pushes the address after the CALL, and jumps to the address
// held in the current register.
func (cpu *Cpu) opCall() (err error) {
	next, err := cpu.nextAddress()
	if err != nil {
		return
	}
	cpu.push(next)
	cpu.Pc = int(cpu.Register[cpu.CurReg])
	return
}

func (cpu *Cpu) opRet() (err error) {
	cpu.Pc = int(cpu.pop())
	return
}
