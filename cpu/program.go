package cpu

import (
	"iter"
)

// Line is a single byte of a program, and where it came from.
type Line struct {
	LineNo  int    // Source line number, 1-based.
	Address int    // Memory address of the byte.
	Text    string // Source text, comments and whitespace stripped.
	Value   byte
}

// Program is a loaded program listing.
type Program struct {
	Origin int // Address of the first byte.
	Lines  []Line
}

// Binary returns the program bytes, in address order from Origin.
func (prog *Program) Binary() (bins []byte) {
	for _, value := range prog.Bytes() {
		bins = append(bins, value)
	}

	return
}

// Bytes iterates over the address and value of each program byte.
func (prog *Program) Bytes() iter.Seq2[int, byte] {
	return func(yield func(address int, value byte) bool) {
		for _, line := range prog.Lines {
			if !yield(line.Address, line.Value) {
				return
			}
		}
	}
}

// Debug returns the source line of the byte at address, or nil.
func (prog *Program) Debug(address int) (line *Line) {
	for n := range prog.Lines {
		if prog.Lines[n].Address == address {
			line = &prog.Lines[n]
			break
		}
	}

	return
}

// LineNo returns the source line number of the byte at address, or 0.
func (prog *Program) LineNo(address int) int {
	line := prog.Debug(address)
	if line == nil {
		return 0
	}
	return line.LineNo
}
