package interp

import "github.com/cellang/jsvm/internal/cell"

// evalCall resolves the callee (tracking a `this` receiver for member
// calls, including `super.method()`) and dispatches through
// callWithReceiver (spec.md §4.3 "Calls").
func (i *Interpreter) evalCall(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	calleeCell := expr.Nth(0)
	var thisVal Value = TheUndefined
	var calleeVal Value

	switch calleeCell.HeadSymbol() {
	case cell.TagGetProperty:
		base := calleeCell.Nth(0)
		name, _ := calleeCell.Nth(1).AsString()
		if base.Is(cell.TagSuper) {
			thisVal, _ = env.Get("this")
			superProtoVal, _ := env.Get("__superProto__")
			if sp, ok := superProtoVal.(*Object); ok {
				calleeVal = i.getProperty(sp, name)
			} else {
				calleeVal = TheUndefined
			}
		} else {
			baseVal := i.evalExpr(base, env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
			if isNullish(baseVal) {
				ctx.throwError("TypeError", "Cannot read properties of "+baseVal.String()+" (reading '"+name+"')")
				return TheUndefined
			}
			thisVal = baseVal
			calleeVal = i.getProperty(baseVal, name)
		}
	case cell.TagGetIndex:
		baseVal := i.evalExpr(calleeCell.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		idx := i.evalExpr(calleeCell.Nth(1), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		if isNullish(baseVal) {
			ctx.throwError("TypeError", "Cannot read properties of "+baseVal.String())
			return TheUndefined
		}
		thisVal = baseVal
		calleeVal = i.getProperty(baseVal, ToPrimitiveString(idx))
	default:
		calleeVal = i.evalExpr(calleeCell, env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
	}
	return i.callWithReceiver(expr, calleeVal, thisVal, env, ctx)
}

// callWithReceiver evaluates a Call node's argument cells against an
// already-resolved callee/this pair, shared by evalCall's final step and
// by evalOptionalChain's `foo?.()` short-circuit branch.
func (i *Interpreter) callWithReceiver(callExpr *cell.Cell, calleeVal, thisVal Value, env *Environment, ctx *EvaluationContext) Value {
	args := i.evalArgs(callExpr.NodeArgs()[1:], env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	return i.invokeCallable(calleeVal, args, thisVal, ctx)
}

// invokeCallable calls callee (a *Function or a host *Object exposing
// Call) and folds any resulting Go error into ctx's Throw signal.
func (i *Interpreter) invokeCallable(callee Value, args []Value, this Value, ctx *EvaluationContext) Value {
	switch f := callee.(type) {
	case *Function:
		v, err := i.callFunction(f, args, this)
		if err != nil {
			i.propagateGoError(err, ctx)
			return TheUndefined
		}
		return v
	case *Object:
		if f.Call != nil {
			v, err := f.Call(args, this)
			if err != nil {
				i.propagateGoError(err, ctx)
				return TheUndefined
			}
			return v
		}
	}
	ctx.throwError("TypeError", ToPrimitiveString(callee)+" is not a function")
	return TheUndefined
}

// evalArgs evaluates a Call/New node's argument cells, expanding any
// Spread elements in place (spec.md §4.3 "Spread").
func (i *Interpreter) evalArgs(argCells []*cell.Cell, env *Environment, ctx *EvaluationContext) []Value {
	var out []Value
	for _, a := range argCells {
		if a.Is(cell.TagSpread) {
			v := i.evalExpr(a.Nth(0), env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return nil
			}
			items, err := i.iterate(v)
			if err != nil {
				ctx.throwError("TypeError", err.Error())
				return nil
			}
			out = append(out, items...)
			continue
		}
		v := i.evalExpr(a, env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// evalNew implements the `new` operator: construct a fresh object linked
// to the callee's `.prototype`, invoke the constructor with it bound as
// `this`, and return the constructor's own object result if it returned
// one (spec.md §4.3 "new").
func (i *Interpreter) evalNew(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	ctorVal := i.evalExpr(expr.Nth(0), env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	ctor, ok := ctorVal.(*Function)
	if !ok {
		ctx.throwError("TypeError", ToPrimitiveString(ctorVal)+" is not a constructor")
		return TheUndefined
	}
	args := i.evalArgs(expr.NodeArgs()[1:], env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}

	proto := i.Realm.ObjectProto
	if ctor.Overlay != nil {
		if d, ok := ctor.Overlay.getOwn("prototype"); ok {
			if p, ok := d.Value.(*Object); ok {
				proto = p
			}
		}
	}
	obj := NewObject(proto)
	result, err := i.callFunction(ctor, args, obj)
	if err != nil {
		i.propagateGoError(err, ctx)
		return TheUndefined
	}
	// spec.md §4.3 "`new` semantics": if the constructor returns an
	// object, that object supersedes the allocation. *Array/*Function/
	// *RegExp count too (e.g. stdlib's RegExp constructor returns a bare
	// *RegExp rather than wrapping it in the freshly allocated *Object).
	switch result.(type) {
	case *Object, *Array, *Function, *RegExp:
		return result
	}
	return obj
}

// evalSuperCall implements `super(...)` inside a derived constructor:
// invoke the superclass constructor with the current `this`.
func (i *Interpreter) evalSuperCall(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	superCtorVal, _ := env.Get("__superCtor__")
	superCtor, ok := superCtorVal.(*Function)
	if !ok {
		ctx.throwError("SyntaxError", "'super' keyword is only valid inside a derived class constructor")
		return TheUndefined
	}
	thisVal, _ := env.Get("this")
	args := i.evalArgs(expr.NodeArgs(), env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	_, err := i.callFunction(superCtor, args, thisVal)
	if err != nil {
		i.propagateGoError(err, ctx)
		return TheUndefined
	}
	return TheUndefined
}

// evalAssignTarget writes value into a property-access assignment
// target (`obj.x = v` / `obj[x] = v`), used by assignPattern for plain
// (non-destructuring) member targets.
func (i *Interpreter) evalAssignTarget(target *cell.Cell, value Value, env *Environment, ctx *EvaluationContext) {
	switch target.HeadSymbol() {
	case cell.TagGetProperty:
		base := i.evalExpr(target.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return
		}
		name, _ := target.Nth(1).AsString()
		if isNullish(base) {
			ctx.throwError("TypeError", "Cannot set properties of "+base.String())
			return
		}
		if err := i.setProperty(base, name, value, env.Strict); err != nil {
			ctx.throwError(errKind(err), err.Error())
		}
	case cell.TagGetIndex:
		base := i.evalExpr(target.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return
		}
		idx := i.evalExpr(target.Nth(1), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return
		}
		if isNullish(base) {
			ctx.throwError("TypeError", "Cannot set properties of "+base.String())
			return
		}
		if err := i.setProperty(base, ToPrimitiveString(idx), value, env.Strict); err != nil {
			ctx.throwError(errKind(err), err.Error())
		}
	}
}
