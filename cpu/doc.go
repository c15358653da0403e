// Package cpu implements the LS-8 virtual processor and its program loader.
//
// The CPU consists of a program counter (PC), 256 bytes of memory, a bank of
// 256 byte-wide registers, a current register selector that is the implicit
// operand of most instructions, and an 'equal' condition flag. Register 255
// is the stack pointer.
//
// The loader reads the LS-8 program text format: one binary byte per line,
// with '#' comments and blank lines ignored.
package cpu
