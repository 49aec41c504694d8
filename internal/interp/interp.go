package interp

import (
	"fmt"
	"io"

	"github.com/cellang/jsvm/internal/cell"
)

// Interpreter owns a Realm and the root environment new programs are
// evaluated against. One Interpreter corresponds to one JS "engine"
// instance (spec.md §6's library façade wraps exactly one of these).
type Interpreter struct {
	Realm *Realm
	Out   io.Writer

	// Trace, when set, receives a line per function call (name and arg
	// count) for the CLI's --trace flag (cmd/jsvm). Left nil in normal
	// operation so tracing costs nothing when not requested.
	Trace func(format string, args ...any)
}

// New creates an Interpreter with a fresh Realm, writing console/print
// output to out.
func New(out io.Writer) *Interpreter {
	realm := NewRealm()
	i := &Interpreter{Realm: realm, Out: out}
	SetFunctionCaller(func(fn *Function, args []Value, this Value) (Value, error) {
		return i.callFunction(fn, args, this)
	})
	return i
}

// GlobalEnvironment exposes the root environment (the same one as
// Realm.Global, which stdlib setup defines its globals on).
func (i *Interpreter) GlobalEnvironment() *Environment { return i.Realm.Global }

// Eval evaluates a whole program (the output of parser.ParseProgram)
// against the global environment and returns its completion value.
func (i *Interpreter) Eval(program *cell.Cell) (Value, error) {
	ctx := NewEvaluationContext(i.Realm)
	env := i.Realm.Global

	applyDirectivePrologue(program.NodeArgs(), env)
	i.hoist(program, env)

	var last Value = TheUndefined
	for _, stmt := range program.NodeArgs() {
		v := i.evalStatement(stmt, env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return nil, &ThrownError{Value: ctx.Signal.Value}
		}
		if v != nil {
			last = v
		}
		if ctx.Signal.Kind != SigNone {
			break
		}
	}
	return last, nil
}

// ThrownError wraps a user-thrown Value as a Go error so host code (the
// CLI, package stdlib) can surface it without the evaluator ever using Go
// panics for ordinary control flow (spec.md §9).
type ThrownError struct{ Value Value }

func (e *ThrownError) Error() string {
	if e.Value == nil {
		return "uncaught exception"
	}
	if obj, ok := e.Value.(*Object); ok {
		name := "Error"
		msg := ""
		if d, _ := obj.getOwn("name"); d != nil {
			name = ToPrimitiveString(d.Value)
		} else if p := obj.Proto; p != nil {
			if d, _ := p.getOwn("name"); d != nil {
				name = ToPrimitiveString(d.Value)
			}
		}
		if d, _ := obj.getOwn("message"); d != nil {
			msg = ToPrimitiveString(d.Value)
		}
		return fmt.Sprintf("Uncaught %s: %s", name, msg)
	}
	return "Uncaught " + e.Value.String()
}
