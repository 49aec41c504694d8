package interp

import "github.com/cellang/jsvm/internal/cell"

// GeneratorState backs a generator-function invocation with a real Go
// goroutine rather than a counter/replay scheme: the goroutine runs the
// generator body to completion, blocking at each `yield` until resumed.
// This gives `yield` correct semantics at any expression depth (inside
// nested loops, try/catch, recursive helper calls) for free, the same
// way a stackful coroutine would in a language with first-class
// continuations — see DESIGN.md for why this was chosen over the
// spec's originally sketched counter-based replay strategy.
type GeneratorState struct {
	interp *Interpreter
	fn     *Function
	args   []Value
	this   Value

	events  chan genEvent
	resume  chan resumeMsg
	started bool
	closed  bool
}

type genEvent struct {
	value Value
	done  bool
	err   error
}

type resumeMsg struct {
	kind  resumeKind
	value Value
}

type resumeKind int

const (
	resumeNext resumeKind = iota
	resumeReturn
	resumeThrow
)

func (i *Interpreter) makeGeneratorObject(fn *Function, args []Value, this Value) Value {
	g := &GeneratorState{
		interp: i,
		fn:     fn,
		args:   args,
		this:   this,
		events: make(chan genEvent),
		resume: make(chan resumeMsg),
	}

	obj := NewObject(i.Realm.ObjectProto)
	obj.Class = "Generator"
	obj.Internal = map[string]any{"generator": g}
	obj.SetHidden("next", i.nativeFn(func(callArgs []Value, _ Value) (Value, error) {
		return i.iterResult(g.next(firstArg(callArgs)))
	}))
	obj.SetHidden("return", i.nativeFn(func(callArgs []Value, _ Value) (Value, error) {
		return i.iterResult(g.returnGen(firstArg(callArgs)))
	}))
	obj.SetHidden("throw", i.nativeFn(func(callArgs []Value, _ Value) (Value, error) {
		return i.iterResult(g.throwGen(firstArg(callArgs)))
	}))
	return obj
}

func firstArg(args []Value) Value {
	if len(args) > 0 {
		return args[0]
	}
	return TheUndefined
}

func (i *Interpreter) iterResult(ev genEvent) (Value, error) {
	if ev.err != nil {
		return nil, ev.err
	}
	o := NewObject(i.Realm.ObjectProto)
	v := ev.value
	if v == nil {
		v = TheUndefined
	}
	o.Set("value", v)
	o.Set("done", Boolean(ev.done))
	return o, nil
}

// next resumes the generator with v as the result of the pending yield
// expression (or starts the goroutine on the first call).
func (g *GeneratorState) next(v Value) genEvent {
	return g.advance(resumeMsg{kind: resumeNext, value: v})
}

// returnGen implements the iterator protocol's `.return(v)`: if the
// generator hasn't started, it completes immediately with v; otherwise
// it injects a Return signal at the suspended yield point.
func (g *GeneratorState) returnGen(v Value) genEvent {
	if g.closed || !g.started {
		g.closed = true
		return genEvent{value: v, done: true}
	}
	return g.advance(resumeMsg{kind: resumeReturn, value: v})
}

// throwGen implements `.throw(v)`. For a generator that hasn't started
// yet, real engines run the body with the throw injected at entry; this
// kernel simplifies that corner case to an immediate, uncaught error
// (documented in DESIGN.md).
func (g *GeneratorState) throwGen(v Value) genEvent {
	if g.closed || !g.started {
		g.closed = true
		return genEvent{done: true, err: &ThrownError{Value: v}}
	}
	return g.advance(resumeMsg{kind: resumeThrow, value: v})
}

func (g *GeneratorState) advance(msg resumeMsg) genEvent {
	if g.closed {
		return genEvent{value: TheUndefined, done: true}
	}
	if !g.started {
		g.started = true
		go g.run()
	} else {
		g.resume <- msg
	}
	ev := <-g.events
	if ev.done {
		g.closed = true
	}
	return ev
}

func (g *GeneratorState) run() {
	i := g.interp
	env := NewEnclosedEnvironment(g.fn.Closure, true)
	env.Define("this", g.this, Binding{})
	env.Define("arguments", argumentsArray(g.args), Binding{})
	if g.fn.SuperProto != nil {
		env.Define("__superProto__", g.fn.SuperProto, Binding{})
	}
	if g.fn.SuperCtor != nil {
		env.Define("__superCtor__", g.fn.SuperCtor, Binding{})
	}
	ctx := NewEvaluationContext(i.Realm)
	ctx.Generator = g

	i.bindParams(g.fn.Params, g.args, env, ctx)
	if ctx.Signal.Kind == SigNone {
		if body, ok := g.fn.Body.(*cell.Cell); ok {
			if body.Is(cell.TagBlock) {
				i.hoist(body, env)
			}
			i.evalStatement(body, env, ctx)
		}
	}

	var final genEvent
	switch ctx.Signal.Kind {
	case SigThrow:
		final = genEvent{done: true, err: &ThrownError{Value: ctx.Signal.Value}}
	case SigReturn:
		final = genEvent{value: ctx.Signal.Value, done: true}
	default:
		final = genEvent{value: TheUndefined, done: true}
	}
	g.events <- final
}

// drain eagerly exhausts the generator for for-of/spread/destructuring,
// which consume an iterable as a plain Go slice (see iterate in
// properties.go).
func (g *GeneratorState) drain() []Value {
	var out []Value
	for {
		ev := g.next(TheUndefined)
		if ev.err != nil || ev.done {
			break
		}
		out = append(out, ev.value)
	}
	return out
}

// evalYield implements `yield`/`yield*` by handing control back to
// whichever goroutine is waiting on the generator's channel pair
// (spec.md §4.5 "Generators").
func (i *Interpreter) evalYield(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	g := ctx.Generator
	if g == nil {
		ctx.throwError("SyntaxError", "yield is only valid inside a generator function")
		return TheUndefined
	}
	if expr.Is(cell.TagYieldStar) {
		inner := i.evalExpr(expr.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		items, err := i.iterate(inner)
		if err != nil {
			ctx.throwError("TypeError", err.Error())
			return TheUndefined
		}
		var last Value = TheUndefined
		for _, item := range items {
			last = i.doYield(g, ctx, item)
			if ctx.Signal.Kind != SigNone {
				return TheUndefined
			}
		}
		return last
	}
	var v Value = TheUndefined
	if arg := expr.Nth(0); !arg.IsEmpty() {
		v = i.evalExpr(arg, env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
	}
	return i.doYield(g, ctx, v)
}

func (i *Interpreter) doYield(g *GeneratorState, ctx *EvaluationContext, v Value) Value {
	g.events <- genEvent{value: v, done: false}
	msg := <-g.resume
	switch msg.kind {
	case resumeReturn:
		ctx.setReturn(msg.value)
		return TheUndefined
	case resumeThrow:
		ctx.setThrow(msg.value)
		return TheUndefined
	default:
		return msg.value
	}
}
