package emulator

import (
	"iter"
	"strconv"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/ls8/cpu"
)

// Breakpoint is a Starlark expression evaluated before each instruction.
//
// The expression sees the CPU as the names pc, cur, sp, op, equal and
// ticks, the builtins reg(n) and mem(n), and every integer define by name.
type Breakpoint struct {
	Expr string

	program *starlark.Program
	pred    starlark.StringDict
	state   *cpu.Cpu // CPU under evaluation, read by reg() and mem().
}

// NewBreakpoint compiles a breakpoint expression, with integer defines
// available as constants.
func NewBreakpoint(expr string, defines iter.Seq2[string, string]) (brk *Breakpoint, err error) {
	brk = &Breakpoint{
		Expr: expr,
		pred: starlark.StringDict{},
	}

	if defines != nil {
		for key, str := range defines {
			value, perr := strconv.Atoi(str)
			if perr != nil {
				// Non-integer defines are not constants.
				continue
			}
			brk.pred[key] = starlark.MakeInt(value)
		}
	}

	for _, name := range []string{"pc", "cur", "sp", "op", "equal", "ticks"} {
		brk.pred[name] = starlark.None
	}
	brk.pred["reg"] = brk.builtin("reg", func(state *cpu.Cpu) []byte { return state.Register[:] })
	brk.pred["mem"] = brk.builtin("mem", func(state *cpu.Cpu) []byte { return state.Memory[:] })

	opts := syntax.FileOptions{}
	prog := "rc=" + expr + "\n"
	_, brk.program, err = starlark.SourceProgramOptions(&opts, "break", prog, brk.pred.Has)
	if err != nil {
		err = &ErrBreakExpression{Expr: expr, Err: err}
		brk = nil
		return
	}

	// Evaluate once against a reset CPU to catch errors in the builtins.
	_, err = brk.Eval(cpu.NewCpu())
	if err != nil {
		brk = nil
		return
	}

	return
}

// builtin returns a Starlark builtin that indexes an array of the CPU
// under evaluation.
func (brk *Breakpoint) builtin(name string, array func(state *cpu.Cpu) []byte) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
		var index int
		err = starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &index)
		if err != nil {
			return
		}
		data := array(brk.state)
		if index < 0 || index >= len(data) {
			err = cpu.ErrAddress{Pc: -1, Address: index}
			return
		}
		value = starlark.MakeInt(int(data[index]))
		return
	})
}

// Eval evaluates the breakpoint against the CPU state.
func (brk *Breakpoint) Eval(state *cpu.Cpu) (hit bool, err error) {
	defer func() {
		if err != nil {
			err = &ErrBreakExpression{Expr: brk.Expr, Err: err}
		}
	}()

	brk.state = state
	defer func() { brk.state = nil }()

	var op starlark.Value = starlark.None
	code, ferr := state.Fetch()
	if ferr == nil {
		op = starlark.MakeInt(int(code))
	}

	brk.pred["pc"] = starlark.MakeInt(state.Pc)
	brk.pred["cur"] = starlark.MakeInt(int(state.CurReg))
	brk.pred["sp"] = starlark.MakeInt(int(state.Register[cpu.SP]))
	brk.pred["op"] = op
	brk.pred["equal"] = starlark.Bool(state.Flags.Equal)
	brk.pred["ticks"] = starlark.MakeInt(state.Ticks)

	thread := starlark.Thread{Name: "break"}
	globals, err := brk.program.Init(&thread, brk.pred)
	if err != nil {
		return
	}

	rc, ok := globals["rc"]
	if !ok {
		return
	}

	hit = bool(rc.Truth())
	return
}
