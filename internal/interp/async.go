package interp

import "github.com/cellang/jsvm/internal/cell"

// invokeAsync runs an async function's body synchronously: there is no
// real I/O or timer source in this kernel, so there is nothing for the
// function to actually suspend on, and every `await` inside it resolves
// immediately. The body runs to completion via invokeFunctionBody and
// the outcome is wrapped into an already-settled Promise (spec.md §4.4
// "Async functions"). Fuller Promise combinators (.all/.race/...) build
// on this minimal shape in internal/stdlib.
func (i *Interpreter) invokeAsync(fn *Function, args []Value, this Value) (Value, error) {
	body, _ := fn.Body.(*cell.Cell)
	v, err := i.invokeFunctionBody(fn, body, args, this)
	if err != nil {
		if te, ok := err.(*ThrownError); ok {
			return i.newRejectedPromise(te.Value), nil
		}
		return i.newRejectedPromise(i.Realm.NewError(errKind(err), err.Error())), nil
	}
	if isPromise(v) {
		return v, nil
	}
	return i.newResolvedPromise(v), nil
}

// evalAwait unwraps an already-settled Promise, or passes any other
// value through unchanged (the implicit `Promise.resolve` coercion
// non-Promise operands get under `await`).
func (i *Interpreter) evalAwait(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	v := i.evalExpr(expr.Nth(0), env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	obj, ok := v.(*Object)
	if !ok || obj.Class != "Promise" {
		return v
	}
	state, _ := obj.Internal["state"].(string)
	result := obj.Internal["value"].(Value)
	switch state {
	case "rejected":
		ctx.setThrow(result)
		return TheUndefined
	default:
		return result
	}
}

func isPromise(v Value) bool {
	obj, ok := v.(*Object)
	return ok && obj.Class == "Promise"
}

func (i *Interpreter) newSettledPromise(state string, value Value) *Object {
	obj := NewObject(i.Realm.ObjectProto)
	obj.Class = "Promise"
	obj.Internal = map[string]any{"state": state, "value": value}
	obj.SetHidden("then", i.nativeFn(func(args []Value, _ Value) (Value, error) {
		onFulfilled, _ := firstArg(args).(*Function)
		var onRejected *Function
		if len(args) > 1 {
			onRejected, _ = args[1].(*Function)
		}
		return i.runPromiseReaction(obj, onFulfilled, onRejected), nil
	}))
	obj.SetHidden("catch", i.nativeFn(func(args []Value, _ Value) (Value, error) {
		onRejected, _ := firstArg(args).(*Function)
		return i.runPromiseReaction(obj, nil, onRejected), nil
	}))
	obj.SetHidden("finally", i.nativeFn(func(args []Value, _ Value) (Value, error) {
		if cb, ok := firstArg(args).(*Function); ok {
			i.callFunction(cb, nil, TheUndefined)
		}
		return obj, nil
	}))
	return obj
}

func (i *Interpreter) runPromiseReaction(p *Object, onFulfilled, onRejected *Function) Value {
	state, _ := p.Internal["state"].(string)
	value, _ := p.Internal["value"].(Value)
	if value == nil {
		value = TheUndefined
	}

	if state == "pending" {
		return p
	}
	var cb *Function
	if state == "rejected" {
		cb = onRejected
	} else {
		cb = onFulfilled
	}
	if cb == nil {
		return p
	}
	result, err := i.callFunction(cb, []Value{value}, TheUndefined)
	if err != nil {
		if te, ok := err.(*ThrownError); ok {
			return i.newRejectedPromise(te.Value)
		}
		return i.newRejectedPromise(i.Realm.NewError(errKind(err), err.Error()))
	}
	if isPromise(result) {
		return result
	}
	return i.newResolvedPromise(result)
}

func (i *Interpreter) newResolvedPromise(v Value) *Object { return i.newSettledPromise("fulfilled", v) }
func (i *Interpreter) newRejectedPromise(v Value) *Object { return i.newSettledPromise("rejected", v) }

// NewPendingPromise builds a Promise in the "pending" state along with
// the resolve/reject functions its executor receives, for the stdlib
// `new Promise(executor)` constructor (internal/stdlib). Since this
// kernel has no timer/microtask source, resolve/reject are expected to
// be invoked synchronously from within the executor; a Promise left
// pending after the executor returns stays pending (.then/.catch on it
// are no-ops, matching an engine that never drains further microtasks).
func (i *Interpreter) NewPendingPromise() (promise *Object, resolve, reject func(Value)) {
	obj := i.newSettledPromise("pending", TheUndefined)
	settle := func(state string, v Value) {
		if s, _ := obj.Internal["state"].(string); s != "pending" {
			return
		}
		if isPromise(v) && state == "fulfilled" {
			inner := v.(*Object)
			innerState, _ := inner.Internal["state"].(string)
			innerValue, _ := inner.Internal["value"].(Value)
			obj.Internal["state"] = innerState
			obj.Internal["value"] = innerValue
			return
		}
		obj.Internal["state"] = state
		obj.Internal["value"] = v
	}
	return obj, func(v Value) { settle("fulfilled", v) }, func(v Value) { settle("rejected", v) }
}
