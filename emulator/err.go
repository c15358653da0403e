package emulator

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Emulator errors
	ErrBreak     = errors.New(f("breakpoint"))
	ErrTickLimit = errors.New(f("tick limit reached"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Pc     int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d pc 0x%02x %v", err.LineNo, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrBreakExpression is a breakpoint expression that failed to evaluate.
type ErrBreakExpression struct {
	Expr string
	Err  error
}

func (err *ErrBreakExpression) Error() string {
	return f("break '%v' %v", err.Expr, err.Err)
}

func (err *ErrBreakExpression) Unwrap() error {
	return err.Err
}
