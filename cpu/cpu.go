// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

// Output is the sink for the PRN and PRA instructions.
type Output interface {
	// Number emits the value as a decimal number and a line separator.
	Number(value byte) error
	// Char emits the value as a character code, with no separator.
	Char(value byte) error
}

// discard is the Output of a CPU with no sink attached.
type discard struct{}

func (discard) Number(value byte) error { return nil }
func (discard) Char(value byte) error   { return nil }

// CpuState is the execution state of the CPU.
type CpuState int

//go:generate go tool stringer -linecomment -type=CpuState
const (
	STATE_RUNNING = CpuState(0) // running
	STATE_HALTED  = CpuState(1) // halted
	STATE_FAULTED = CpuState(2) // faulted
)

// Flags are the condition flags, set by CMP and consumed by JEQ and JNE.
type Flags struct {
	Valid bool `cbor:"valid"` // False until the first comparison.
	Equal bool `cbor:"equal"`
}

func (flags Flags) String() string {
	if !flags.Valid {
		return "-"
	}
	if flags.Equal {
		return "equal"
	}
	return "unequal"
}

// handler executes one decoded instruction.
type handler func(cpu *Cpu) error

// Cpu is the simulation context for the LS-8 processor.
type Cpu struct {
	Verbose   bool      // Set to enable verbose logging.
	StackMode StackMode // Stack discipline of PUSH, POP, CALL and RET.

	Pc       int                 // Program counter.
	CurReg   byte                // Current register selector.
	Flags    Flags               // Condition flags.
	Register [REGISTER_SIZE]byte // Register bank. Register[SP] is the stack pointer.
	Memory   [MEMORY_SIZE]byte   // Main memory.

	State CpuState // Execution state.
	Fault error    // Error that moved the CPU to STATE_FAULTED.
	Ticks int      // Instructions executed since reset.

	output Output
	table  [256]handler
}

// NewCpu creates a new CPU, with all state zeroed and no output attached.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		output: discard{},
	}
	cpu.table = newTable()

	return
}

// newTable builds the opcode dispatch table. Unlisted opcodes are nil.
func newTable() (table [256]handler) {
	table[OP_HALT] = (*Cpu).opHalt
	table[OP_INIT] = (*Cpu).opInit
	table[OP_SET] = (*Cpu).opSet
	table[OP_SAVE] = (*Cpu).opSave
	table[OP_MUL] = func(cpu *Cpu) error { return cpu.opAlu(OP_MUL) }
	table[OP_ADD] = func(cpu *Cpu) error { return cpu.opAlu(OP_ADD) }
	table[OP_SUB] = func(cpu *Cpu) error { return cpu.opAlu(OP_SUB) }
	table[OP_DIV] = func(cpu *Cpu) error { return cpu.opAlu(OP_DIV) }
	table[OP_INC] = (*Cpu).opInc
	table[OP_DEC] = (*Cpu).opDec
	table[OP_PRN] = (*Cpu).opPrn
	table[OP_PRA] = (*Cpu).opPra
	table[OP_PUSH] = (*Cpu).opPush
	table[OP_POP] = (*Cpu).opPop
	table[OP_CALL] = (*Cpu).opCall
	table[OP_RET] = (*Cpu).opRet
	table[OP_LD] = (*Cpu).opLd
	table[OP_ST] = (*Cpu).opSt
	table[OP_LDRI] = (*Cpu).opLdri
	table[OP_STRI] = (*Cpu).opStri
	table[OP_JMP] = (*Cpu).opJmp
	table[OP_CMP] = (*Cpu).opCmp
	table[OP_JEQ] = (*Cpu).opJeq
	table[OP_JNE] = (*Cpu).opJne

	return
}

// SetOutput attaches the sink used by PRN and PRA. A nil output discards.
func (cpu *Cpu) SetOutput(out Output) {
	if out == nil {
		out = discard{}
	}
	cpu.output = out
}

// Reset the CPU state.
// - Clears memory, registers, flags and the current register.
// - Zeros the tick counter.
// - Sets PC to 0 and the state to running.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Memory[:])
	clear(cpu.Register[:])
	cpu.Pc = 0
	cpu.CurReg = 0
	cpu.Flags = Flags{}
	cpu.State = STATE_RUNNING
	cpu.Fault = nil
	cpu.Ticks = 0
}

// Poke writes a byte to memory.
func (cpu *Cpu) Poke(address int, value byte) (err error) {
	if address < 0 || address >= MEMORY_SIZE {
		err = ErrAddress{Pc: cpu.Pc, Address: address}
		return
	}

	cpu.Memory[address] = value
	return
}

// Peek reads a byte from memory.
func (cpu *Cpu) Peek(address int) (value byte, err error) {
	if address < 0 || address >= MEMORY_SIZE {
		err = ErrAddress{Pc: cpu.Pc, Address: address}
		return
	}

	value = cpu.Memory[address]
	return
}

// Load pokes data into sequential addresses starting at origin.
func (cpu *Cpu) Load(origin int, data []byte) (err error) {
	if origin < 0 || origin+len(data) > MEMORY_SIZE {
		err = ErrProgramSize
		return
	}

	for n, value := range data {
		err = cpu.Poke(origin+n, value)
		if err != nil {
			return
		}
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes at 0x%02x", len(data), origin)
	}

	return
}

// Halted returns true once the CPU is in a terminal state.
func (cpu *Cpu) Halted() bool {
	return cpu.State != STATE_RUNNING
}

// Fetch returns the opcode at PC.
func (cpu *Cpu) Fetch() (code Code, err error) {
	if cpu.Pc < 0 || cpu.Pc >= MEMORY_SIZE {
		err = ErrAddress{Pc: cpu.Pc, Address: cpu.Pc}
		return
	}

	code = Code(cpu.Memory[cpu.Pc])
	return
}

// Tick executes a single CPU instruction cycle.
// Any error moves the CPU to STATE_FAULTED, and is saved in Fault.
func (cpu *Cpu) Tick() (err error) {
	if cpu.State != STATE_RUNNING {
		err = ErrHalted
		return
	}

	defer func() {
		if err != nil {
			cpu.State = STATE_FAULTED
			cpu.Fault = err
			if cpu.Verbose {
				log.Printf("cpu: fault: %v", err)
			}
		}
	}()

	pc := cpu.Pc
	code, err := cpu.Fetch()
	if err != nil {
		return
	}

	exec := cpu.table[code]
	if exec == nil {
		err = ErrOpcodeInvalid{Pc: pc, Opcode: code}
		return
	}

	if cpu.Verbose {
		log.Printf("%02x: %v", pc, code)
	}

	err = exec(cpu)
	if err != nil {
		err = ErrInstruction{Pc: pc, Opcode: code, Err: err}
		return
	}

	cpu.Pc += code.Width()
	cpu.Ticks++

	return
}

// Run ticks the CPU until it halts or faults.
// Returns nil on HALT, and the fault otherwise.
func (cpu *Cpu) Run() (err error) {
	for cpu.State == STATE_RUNNING {
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	err = cpu.Fault
	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "% 6s: %v\n", "state", cpu.State)
	fmt.Fprintf(&sb, "% 6s: %02x\n", "pc", cpu.Pc)
	fmt.Fprintf(&sb, "% 6s: %02x\n", "cur", cpu.CurReg)
	fmt.Fprintf(&sb, "% 6s: %02x\n", "sp", cpu.Register[SP])
	fmt.Fprintf(&sb, "% 6s: %v\n", "flags", cpu.Flags)
	fmt.Fprintf(&sb, "% 6s: %d\n", "ticks", cpu.Ticks)
	for n, val := range cpu.Register[:SP] {
		if val == 0 {
			continue
		}
		fmt.Fprintf(&sb, "% 6s: %02x\n", fmt.Sprintf("r%d", n), val)
	}

	text = sb.String()
	return
}

// operand reads the byte n places after the opcode.
func (cpu *Cpu) operand(n int) (value byte, err error) {
	address := cpu.Pc + n
	if address >= MEMORY_SIZE {
		err = ErrAddress{Pc: cpu.Pc, Address: address}
		return
	}

	value = cpu.Memory[address]
	return
}

// nextAddress returns PC+1 as a byte, for the instructions that use the
// operand position itself rather than its content.
func (cpu *Cpu) nextAddress() (address byte, err error) {
	next := cpu.Pc + 1
	if next >= MEMORY_SIZE {
		err = ErrAddress{Pc: cpu.Pc, Address: next}
		return
	}

	address = byte(next)
	return
}

func (cpu *Cpu) opHalt() (err error) {
	cpu.State = STATE_HALTED
	if cpu.Verbose {
		log.Printf("cpu: halt at 0x%02x", cpu.Pc)
	}
	return
}

func (cpu *Cpu) opInit() (err error) {
	cpu.CurReg = 0
	return
}

func (cpu *Cpu) opSet() (err error) {
	cpu.CurReg, err = cpu.operand(1)
	return
}

func (cpu *Cpu) opSave() (err error) {
	imm, err := cpu.operand(1)
	if err != nil {
		return
	}
	cpu.Register[cpu.CurReg] = imm
	return
}

// opAlu performs ADD, SUB, MUL and DIV on two register operands.
func (cpu *Cpu) opAlu(code Code) (err error) {
	r0, err := cpu.operand(1)
	if err != nil {
		return
	}
	r1, err := cpu.operand(2)
	if err != nil {
		return
	}

	output, err := doAlu(code, cpu.Register[r0], cpu.Register[r1])
	if err != nil {
		return
	}

	cpu.Register[cpu.CurReg] = output
	return
}

// doAlu performs the requested ALU action. Results wrap modulo 256.
func doAlu(code Code, a byte, b byte) (output byte, err error) {
	switch code {
	case OP_ADD:
		output = a + b
	case OP_SUB:
		output = a - b
	case OP_MUL:
		output = a * b
	case OP_DIV:
		if b == 0 {
			err = ErrDivideByZero
			return
		}
		output = a / b
	default:
		err = ErrOpcodeInvalid{Opcode: code}
	}

	return
}

// opInc increments the register named by the byte after the opcode.
// INC is one byte wide, so that operand byte is also the next opcode.
func (cpu *Cpu) opInc() (err error) {
	reg, err := cpu.operand(1)
	if err != nil {
		return
	}
	cpu.inc(reg)
	return
}

// opDec decrements the register named by the byte after the opcode.
// DEC is one byte wide, so that operand byte is also the next opcode.
func (cpu *Cpu) opDec() (err error) {
	reg, err := cpu.operand(1)
	if err != nil {
		return
	}
	cpu.dec(reg)
	return
}

// inc increments a register, wrapping 255 to 0.
func (cpu *Cpu) inc(reg byte) {
	cpu.Register[reg]++
}

// dec decrements a register, wrapping 0 to 255.
func (cpu *Cpu) dec(reg byte) {
	cpu.Register[reg]--
}

func (cpu *Cpu) opPrn() (err error) {
	err = cpu.output.Number(cpu.Register[cpu.CurReg])
	if err != nil {
		err = errors.Join(ErrOutput, err)
	}
	return
}

func (cpu *Cpu) opPra() (err error) {
	err = cpu.output.Char(cpu.Register[cpu.CurReg])
	if err != nil {
		err = errors.Join(ErrOutput, err)
	}
	return
}

func (cpu *Cpu) opLd() (err error) {
	address, err := cpu.operand(1)
	if err != nil {
		return
	}
	cpu.Register[cpu.CurReg] = cpu.Memory[address]
	return
}

func (cpu *Cpu) opSt() (err error) {
	address, err := cpu.operand(1)
	if err != nil {
		return
	}
	cpu.Memory[address] = cpu.Register[cpu.CurReg]
	return
}

// opLdri loads through the register numbered PC+1. The operand byte
// itself is not read.
func (cpu *Cpu) opLdri() (err error) {
	reg, err := cpu.nextAddress()
	if err != nil {
		return
	}
	cpu.Register[cpu.CurReg] = cpu.Memory[cpu.Register[reg]]
	return
}

// opStri stores through the register numbered PC+1.
func (cpu *Cpu) opStri() (err error) {
	reg, err := cpu.nextAddress()
	if err != nil {
		return
	}
	cpu.Memory[cpu.Register[reg]] = cpu.Register[cpu.CurReg]
	return
}

// opJmp sets PC to the operand position, PC+1.
func (cpu *Cpu) opJmp() (err error) {
	address, err := cpu.nextAddress()
	if err != nil {
		return
	}
	cpu.Pc = int(address)
	return
}

func (cpu *Cpu) opCmp() (err error) {
	reg, err := cpu.operand(1)
	if err != nil {
		return
	}
	cpu.Flags = Flags{
		Valid: true,
		Equal: cpu.Register[cpu.CurReg] == cpu.Register[reg],
	}
	return
}

func (cpu *Cpu) opJeq() (err error) {
	return cpu.jumpIf(cpu.Flags.Equal)
}

func (cpu *Cpu) opJne() (err error) {
	return cpu.jumpIf(!cpu.Flags.Equal)
}

// jumpIf jumps like JMP when cond holds, and skips the two byte
// instruction otherwise.
func (cpu *Cpu) jumpIf(cond bool) (err error) {
	if cond {
		return cpu.opJmp()
	}
	cpu.Pc += 2
	return
}
