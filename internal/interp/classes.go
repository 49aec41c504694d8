package interp

import "github.com/cellang/jsvm/internal/cell"

// evalClass builds a constructor *Function from a Class node: it wires
// the prototype chain to the superclass (if any), installs instance and
// static methods/accessors, runs static blocks once at class-creation
// time, and synthesizes a default constructor when none is written
// (spec.md §4.3 "Classes").
//
// Field initializers (instance and static) run before the constructor
// body regardless of where an explicit `super(...)` call appears in a
// derived constructor; real engines run them immediately after
// `super()` returns. Tracking the call site precisely would need a
// dedicated pre-pass, so this is a documented simplification.
func (i *Interpreter) evalClass(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	members := expr.NodeArgs()
	nameCell, superCell := members[0], members[1]

	name := ""
	if s, ok := nameCell.Nth(0).AsSymbol(); ok && s != nil {
		name = s.Name
	}

	var superCtor *Function
	var superProto *Object
	if !superCell.IsEmpty() {
		superVal := i.evalExpr(superCell, env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		sf, ok := superVal.(*Function)
		if !ok {
			ctx.throwError("TypeError", "Class extends value is not a constructor")
			return TheUndefined
		}
		superCtor = sf
		if sf.Overlay != nil {
			if d, ok := sf.Overlay.getOwn("prototype"); ok {
				superProto, _ = d.Value.(*Object)
			}
		}
	}

	protoParent := i.Realm.ObjectProto
	if superProto != nil {
		protoParent = superProto
	}
	proto := NewObject(protoParent)

	classEnv := NewEnclosedEnvironment(env, false)

	ctorFn := &Function{Name: name, Overlay: NewObject(i.Realm.FunctionProto)}
	ctorFn.Overlay.Set("prototype", proto)
	proto.SetHidden("constructor", ctorFn)
	if superCtor != nil && superCtor.Overlay != nil {
		ctorFn.Overlay.Proto = superCtor.Overlay
	}
	if name != "" {
		classEnv.Define(name, ctorFn, Binding{Lexical: true, Const: true})
	}

	var ctorParams, ctorBody *cell.Cell = cell.Empty, cell.Empty
	haveCtor := false
	var fieldInits, staticFieldInits []*cell.Cell
	var staticBlocks []*cell.Cell

	for _, m := range members[2:] {
		switch m.HeadSymbol() {
		case cell.TagMethod:
			key := i.evalPropertyKey(m.Nth(0), classEnv, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
			flags := m.Nth(3)
			isStatic := flagAt(flags, 2)
			if key == "constructor" && !isStatic {
				ctorParams, ctorBody = m.Nth(1), m.Nth(2)
				haveCtor = true
				continue
			}
			fn := i.makeFunctionFromParts(key, m.Nth(1), m.Nth(2), classEnv, false)
			fn.IsAsync = flagAt(flags, 0)
			fn.IsGenerator = flagAt(flags, 1)
			fn.SuperProto = protoParent
			fn.SuperCtor = superCtor
			if isStatic {
				ctorFn.Overlay.Set(key, fn)
			} else {
				proto.Set(key, fn)
			}
		case cell.TagGetter, cell.TagSetter:
			key := i.evalPropertyKey(m.Nth(0), classEnv, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
			isStatic := flagAt(m.Nth(3), 0)
			fn := i.makeFunctionFromParts(key, m.Nth(1), m.Nth(2), classEnv, false)
			fn.SuperProto = protoParent
			fn.SuperCtor = superCtor
			target := proto
			if isStatic {
				target = ctorFn.Overlay
			}
			d, ok := target.getOwn(key)
			if !ok {
				d = &PropertyDescriptor{Enumerable: false, Configurable: true}
			}
			if m.Is(cell.TagGetter) {
				d.Get = fn
			} else {
				d.Set = fn
			}
			target.DefineOwn(key, d)
		case cell.TagProperty:
			if flagAt(m.Nth(2), 0) {
				staticFieldInits = append(staticFieldInits, m)
			} else {
				fieldInits = append(fieldInits, m)
			}
		case cell.TagStaticBlock:
			staticBlocks = append(staticBlocks, m.Nth(0))
		}
	}

	ctorFieldInits := fieldInits
	ctorParamList := paramDescriptorsFromCell(ctorParams)
	ctorFn.Native = func(args []Value, this Value) (Value, error) {
		callEnv := NewEnclosedEnvironment(classEnv, true)
		callEnv.Define("this", this, Binding{})
		callEnv.Define("arguments", argumentsArray(args), Binding{})
		if superCtor != nil {
			callEnv.Define("__superCtor__", superCtor, Binding{})
		}
		if protoParent != nil {
			callEnv.Define("__superProto__", protoParent, Binding{})
		}
		fctx := NewEvaluationContext(i.Realm)

		if !haveCtor && superCtor != nil {
			if _, err := i.callFunction(superCtor, args, this); err != nil {
				return nil, err
			}
		}
		if obj, ok := this.(*Object); ok {
			for _, f := range ctorFieldInits {
				key := i.evalPropertyKey(f.Nth(0), callEnv, fctx)
				var v Value = TheUndefined
				if initExpr := f.Nth(1); !initExpr.IsEmpty() {
					v = i.evalExpr(initExpr, callEnv, fctx)
				}
				if fctx.Signal.Kind == SigThrow {
					return nil, &ThrownError{Value: fctx.Signal.Value}
				}
				obj.Set(key, v)
			}
		}
		if !haveCtor {
			return TheUndefined, nil
		}

		i.bindParams(ctorParamList, args, callEnv, fctx)
		if fctx.Signal.Kind == SigThrow {
			return nil, &ThrownError{Value: fctx.Signal.Value}
		}
		if ctorBody.Is(cell.TagBlock) {
			i.hoist(ctorBody, callEnv)
		}
		i.evalStatement(ctorBody, callEnv, fctx)
		switch fctx.Signal.Kind {
		case SigThrow:
			return nil, &ThrownError{Value: fctx.Signal.Value}
		case SigReturn:
			return fctx.Signal.Value, nil
		}
		return TheUndefined, nil
	}

	for _, f := range staticFieldInits {
		senv := NewEnclosedEnvironment(classEnv, false)
		senv.Define("this", ctorFn, Binding{})
		key := i.evalPropertyKey(f.Nth(0), senv, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		var v Value = TheUndefined
		if initExpr := f.Nth(1); !initExpr.IsEmpty() {
			v = i.evalExpr(initExpr, senv, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
		}
		ctorFn.Overlay.Set(key, v)
	}
	for _, blk := range staticBlocks {
		senv := NewEnclosedEnvironment(classEnv, false)
		senv.Define("this", ctorFn, Binding{})
		i.evalStatement(blk, senv, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
	}

	return ctorFn
}
