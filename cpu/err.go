package cpu

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted       = errors.New(f("cpu halted"))
	ErrDivideByZero = errors.New(f("division by zero"))
	ErrOutput       = errors.New(f("output failed"))
	ErrStackMode    = errors.New(f("stack mode unknown"))
	ErrSnapshot     = errors.New(f("snapshot invalid"))

	// Loader errors
	ErrProgramSize = errors.New(f("program exceeds memory"))
	ErrParseBinary = errors.New(f("not an 8-bit binary value"))
)

// ErrOpcodeInvalid is raised when the fetched byte is not an instruction.
type ErrOpcodeInvalid struct {
	Pc     int
	Opcode Code
}

func (err ErrOpcodeInvalid) Error() string {
	return f("invalid instruction 0b%08b at pc 0x%02x", byte(err.Opcode), err.Pc)
}

func (err ErrOpcodeInvalid) Is(target error) (ok bool) {
	_, ok = target.(ErrOpcodeInvalid)
	return
}

// ErrAddress is raised for a memory or register index outside of [0,255].
type ErrAddress struct {
	Pc      int
	Address int
}

func (err ErrAddress) Error() string {
	return f("address %d out of range at pc 0x%02x", err.Address, err.Pc)
}

func (err ErrAddress) Is(target error) (ok bool) {
	_, ok = target.(ErrAddress)
	return
}

// ErrInstruction locates a fault raised while executing an instruction.
type ErrInstruction struct {
	Pc     int
	Opcode Code
	Err    error
}

func (err ErrInstruction) Error() string {
	return f("pc 0x%02x %v: %v", err.Pc, err.Opcode, err.Err)
}

func (err ErrInstruction) Unwrap() error {
	return err.Err
}

// ErrSyntax is a program text error.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
