// Package io provides the output devices of the LS-8 emulator.
package io

import (
	"errors"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/ezrec/ls8/cpu"
)

// Console is the character and numeric output of the LS-8.
// It wraps an io.Writer, a nil Output discards everything written.
type Console struct {
	Output io.Writer

	Written int // Total bytes written to Output.
}

var _ cpu.Output = (*Console)(nil)

// Number writes the decimal value followed by a newline.
func (con *Console) Number(value byte) (err error) {
	buf := strconv.AppendUint(nil, uint64(value), 10)
	buf = append(buf, '\n')
	return con.write(buf)
}

// Char writes the character with code point value, UTF-8 encoded.
func (con *Console) Char(value byte) (err error) {
	buf := utf8.AppendRune(nil, rune(value))
	return con.write(buf)
}

func (con *Console) write(buf []byte) (err error) {
	if con.Output == nil {
		return
	}

	n, err := con.Output.Write(buf)
	con.Written += n
	if err == nil && n != len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		err = errors.Join(ErrConsoleWrite, err)
	}

	return
}
