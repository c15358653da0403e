// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"
)

// Loader parses LS-8 program text.
//
// Each non-blank line holds one byte written as binary digits, such as
// "10000010". A '#' starts a comment that runs to the end of the line.
type Loader struct {
	Verbose bool // If set, verbosely logs each byte loaded.
	Origin  int  // Address of the first byte.
}

// Parse a program from a reader.
func (ld *Loader) Parse(in io.Reader) (prog *Program, err error) {
	prog = &Program{Origin: ld.Origin}

	address := ld.Origin
	lineno := 0

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lineno++
		line := scanner.Text()

		text, _, _ := strings.Cut(line, "#")
		text = strings.TrimSpace(text)
		if len(text) == 0 {
			continue
		}

		var value uint64
		value, err = strconv.ParseUint(text, 2, 8)
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: errors.Join(ErrParseBinary, err)}
			return
		}

		if address >= MEMORY_SIZE {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: ErrProgramSize}
			return
		}

		if ld.Verbose {
			log.Printf("%02x: %08b ; line %d", address, value, lineno)
		}

		prog.Lines = append(prog.Lines, Line{
			LineNo:  lineno,
			Address: address,
			Text:    text,
			Value:   byte(value),
		})
		address++
	}

	err = scanner.Err()
	return
}
