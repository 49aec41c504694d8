package interp

import "github.com/cellang/jsvm/internal/cell"

// makeFunction builds a *Function from a Function or Lambda node
// (spec.md §4.3 "Functions"). Named/anonymous `function` forms carry
// isAsync/isGenerator in their own flags argument; Lambda (arrow) nodes
// never do — async arrows arrive pre-wrapped in an Async node and go
// through makeAsyncFunction instead.
func (i *Interpreter) makeFunction(expr *cell.Cell, env *Environment) *Function {
	switch expr.HeadSymbol() {
	case cell.TagLambda:
		params, body := expr.Nth(0), expr.Nth(1)
		return i.makeFunctionFromParts("", params, body, env, true)
	case cell.TagFunction:
		nameCell, params, body, flags := expr.Nth(0), expr.Nth(1), expr.Nth(2), expr.Nth(3)
		name := ""
		if s, ok := nameCell.Nth(0).AsSymbol(); ok && s != nil {
			name = s.Name
		}
		fn := i.makeFunctionFromParts(name, params, body, env, false)
		fn.IsAsync = flagAt(flags, 0)
		fn.IsGenerator = flagAt(flags, 1)
		return fn
	}
	return i.makeFunctionFromParts("", cell.Empty, cell.Empty, env, true)
}

// makeAsyncFunction builds an async arrow from the bare Lambda node an
// Async wrapper carries (see evalExpr's TagAsync case).
func (i *Interpreter) makeAsyncFunction(inner *cell.Cell, env *Environment) *Function {
	fn := i.makeFunctionFromParts("", inner.Nth(0), inner.Nth(1), env, true)
	fn.IsAsync = true
	return fn
}

// makeFunctionFromParts assembles a *Function sharing closure env, used
// directly for methods/getters/setters (which have no separate node tag
// of their own to dispatch on in makeFunction). Non-arrow functions get
// a `.prototype` object so `new` has something to derive instances from.
func (i *Interpreter) makeFunctionFromParts(name string, paramsCell, bodyCell *cell.Cell, env *Environment, isArrow bool) *Function {
	fn := &Function{
		Name:    name,
		Params:  paramDescriptorsFromCell(paramsCell),
		Body:    bodyCell,
		Closure: env,
		IsArrow: isArrow,
	}
	if !isArrow {
		fn.Overlay = NewObject(i.Realm.FunctionProto)
		proto := NewObject(i.Realm.ObjectProto)
		proto.SetHidden("constructor", fn)
		fn.Overlay.Set("prototype", proto)
	}
	return fn
}

// paramDescriptorsFromCell converts a raw parameter list (built by
// cell.List, not a tagged node) into ParamDescriptors.
func paramDescriptorsFromCell(paramsCell *cell.Cell) []*ParamDescriptor {
	var out []*ParamDescriptor
	for _, p := range paramsCell.Args() {
		switch p.HeadSymbol() {
		case cell.TagRestElement:
			out = append(out, &ParamDescriptor{Target: p.Nth(0), Rest: true})
		case cell.TagParam:
			pd := &ParamDescriptor{Target: p.Nth(0)}
			if def := p.Nth(1); !def.IsEmpty() {
				pd.Default = def
			}
			out = append(out, pd)
		}
	}
	return out
}

// bindParams binds args to params in env, evaluating defaults and
// collecting a rest parameter if present (spec.md §4.3 "Destructuring").
func (i *Interpreter) bindParams(params []*ParamDescriptor, args []Value, env *Environment, ctx *EvaluationContext) {
	idx := 0
	for _, pd := range params {
		target, _ := pd.Target.(*cell.Cell)
		if pd.Rest {
			rest := NewArray(0)
			for ; idx < len(args); idx++ {
				rest.Elements = append(rest.Elements, args[idx])
			}
			i.bindPattern(target, rest, env, ctx, Binding{})
			return
		}
		var v Value = TheUndefined
		if idx < len(args) {
			v = args[idx]
		}
		idx++
		if _, isUndef := v.(Undefined); isUndef {
			if def, ok := pd.Default.(*cell.Cell); ok && def != nil {
				v = i.evalExpr(def, env, ctx)
				if ctx.Signal.Kind == SigThrow {
					return
				}
			}
		}
		i.bindPattern(target, v, env, ctx, Binding{})
		if ctx.Signal.Kind == SigThrow {
			return
		}
	}
}

// argumentsArray builds the `arguments` array-like available inside
// non-arrow function bodies.
func argumentsArray(args []Value) *Array {
	a := NewArray(len(args))
	copy(a.Elements, args)
	return a
}

// flagAt reads the nth boolean in a raw Pair chain built by the parser's
// methodFlags/staticFlag helpers (e.g. (isAsync isGen isStatic)). These
// chains are untagged lists, unlike ordinary AST nodes, so Nth/NodeArgs
// (which assume a tag head to skip) don't apply here.
func flagAt(c *cell.Cell, n int) bool {
	cur := c
	for k := 0; k < n; k++ {
		if cur.IsEmpty() {
			return false
		}
		cur = cur.Tail
	}
	if cur.IsEmpty() {
		return false
	}
	b, _ := cur.Head.(bool)
	return b
}

// callFunction invokes fn with args and this, dispatching to native
// builtins, generator construction, async wrapping, or a plain body
// evaluation (spec.md §4.3 "Functions" / §4.4 / §4.5).
func (i *Interpreter) callFunction(fn *Function, args []Value, this Value) (Value, error) {
	if i.Trace != nil {
		name := fn.Name
		if name == "" {
			name = "<anonymous>"
		}
		i.Trace("call %s(%d args)", name, len(args))
	}
	if fn.Native != nil {
		return fn.Native(args, this)
	}
	if fn.IsGenerator {
		return i.makeGeneratorObject(fn, args, this), nil
	}
	if fn.IsAsync {
		return i.invokeAsync(fn, args, this)
	}
	body, _ := fn.Body.(*cell.Cell)
	return i.invokeFunctionBody(fn, body, args, this)
}

// invokeFunctionBody runs a function's body to completion in a fresh
// call environment, converting Return into a normal value and Throw
// into a Go error carrying the thrown value (spec.md §4.3).
func (i *Interpreter) invokeFunctionBody(fn *Function, body *cell.Cell, args []Value, this Value) (Value, error) {
	env := NewEnclosedEnvironment(fn.Closure, true)
	if err := env.checkDepth(); err != nil {
		return nil, err
	}
	if !fn.IsArrow {
		env.Define("this", this, Binding{})
		env.Define("arguments", argumentsArray(args), Binding{})
		if fn.SuperProto != nil {
			env.Define("__superProto__", fn.SuperProto, Binding{})
		}
		if fn.SuperCtor != nil {
			env.Define("__superCtor__", fn.SuperCtor, Binding{})
		}
	}
	ctx := NewEvaluationContext(i.Realm)
	i.bindParams(fn.Params, args, env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return nil, &ThrownError{Value: ctx.Signal.Value}
	}
	if body.Is(cell.TagBlock) {
		applyDirectivePrologue(body.NodeArgs(), env)
		i.hoist(body, env)
	}
	i.evalStatement(body, env, ctx)
	switch ctx.Signal.Kind {
	case SigThrow:
		return nil, &ThrownError{Value: ctx.Signal.Value}
	case SigReturn:
		return ctx.Signal.Value, nil
	}
	return TheUndefined, nil
}

// propagateGoError converts a Go error surfaced by callFunction (either a
// *ThrownError carrying a realm value, or a "Kind: message" formatted
// error from a host operation) into ctx's Throw signal.
func (i *Interpreter) propagateGoError(err error, ctx *EvaluationContext) {
	if te, ok := err.(*ThrownError); ok {
		ctx.setThrow(te.Value)
		return
	}
	ctx.throwError(errKind(err), err.Error())
}

// nativeFn wraps a Go closure as a callable *Function with no user-level
// parameter list, used by generator/promise object construction.
func (i *Interpreter) nativeFn(fn func(args []Value, this Value) (Value, error)) *Function {
	return &Function{Native: fn}
}
