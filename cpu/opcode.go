// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"iter"
	"maps"
)

// Code is an LS-8 opcode byte.
type Code byte

// Instruction opcodes.
const (
	OP_HALT = Code(0b00000000) // HALT
	OP_INIT = Code(0b00000001) // INIT
	OP_SET  = Code(0b00000010) // SET
	OP_SAVE = Code(0b00000100) // SAVE
	OP_MUL  = Code(0b00000101) // MUL
	OP_PRN  = Code(0b00000110) // PRN
	OP_ADD  = Code(0b00000111) // ADD
	OP_SUB  = Code(0b00001111) // SUB
	OP_DIV  = Code(0b00011111) // DIV
	OP_INC  = Code(0b00101110) // INC
	OP_DEC  = Code(0b00111110) // DEC
	OP_PRA  = Code(0b00111111) // PRA
	OP_PUSH = Code(0b00001110) // PUSH
	OP_POP  = Code(0b00011110) // POP
	OP_CALL = Code(0b00010011) // CALL
	OP_RET  = Code(0b01011111) // RET
	OP_LD   = Code(0b11111110) // LD
	OP_ST   = Code(0b10111110) // ST
	OP_LDRI = Code(0b10110110) // LDRI
	OP_STRI = Code(0b10100110) // STRI
	OP_JMP  = Code(0b01011110) // JMP
	OP_CMP  = Code(0b01010110) // CMP
	OP_JEQ  = Code(0b01010010) // JEQ
	OP_JNE  = Code(0b01000010) // JNE
)

const (
	MEMORY_SIZE   = 256  // Bytes of memory.
	REGISTER_SIZE = 256  // Number of registers.
	SP            = 0xff // Stack pointer register, and the fixed stack cell in peek mode.
)

// codeInfo describes the static shape of an opcode.
type codeInfo struct {
	Name  string
	Width int // Bytes consumed, 0 if the opcode sets PC itself.
}

var _code_info = map[Code]codeInfo{
	OP_HALT: {"HALT", 0},
	OP_INIT: {"INIT", 1},
	OP_SET:  {"SET", 2},
	OP_SAVE: {"SAVE", 2},
	OP_MUL:  {"MUL", 3},
	OP_PRN:  {"PRN", 1},
	OP_ADD:  {"ADD", 3},
	OP_SUB:  {"SUB", 3},
	OP_DIV:  {"DIV", 3},
	OP_INC:  {"INC", 1},
	OP_DEC:  {"DEC", 1},
	OP_PRA:  {"PRA", 1},
	OP_PUSH: {"PUSH", 1},
	OP_POP:  {"POP", 1},
	OP_CALL: {"CALL", 0},
	OP_RET:  {"RET", 0},
	OP_LD:   {"LD", 2},
	OP_ST:   {"ST", 2},
	OP_LDRI: {"LDRI", 2},
	OP_STRI: {"STRI", 2},
	OP_JMP:  {"JMP", 0},
	OP_CMP:  {"CMP", 2},
	OP_JEQ:  {"JEQ", 0},
	OP_JNE:  {"JNE", 0},
}

// Valid returns true if the opcode is part of the instruction set.
func (code Code) Valid() (ok bool) {
	_, ok = _code_info[code]
	return
}

// Width returns the number of bytes a non-branching instruction consumes.
// Instructions that always set PC themselves (HALT, CALL, RET, JMP) and
// conditional jumps return 0.
func (code Code) Width() int {
	return _code_info[code].Width
}

// String returns the mnemonic of the opcode.
func (code Code) String() string {
	info, ok := _code_info[code]
	if !ok {
		return fmt.Sprintf("Code(0b%08b)", byte(code))
	}
	return info.Name
}

// Codes iterates over every valid opcode by mnemonic.
func Codes() iter.Seq2[string, Code] {
	return func(yield func(string, Code) bool) {
		for code, info := range _code_info {
			if !yield(info.Name, code) {
				return
			}
		}
	}
}

// Defines for the cpu: every mnemonic, and the stack pointer register.
func Defines() iter.Seq2[string, string] {
	defines := map[string]string{
		"SP": fmt.Sprintf("%d", SP),
	}
	for name, code := range Codes() {
		defines[name] = fmt.Sprintf("%d", byte(code))
	}
	return maps.All(defines)
}
