package interp

import (
	"math/big"
	"strconv"

	"github.com/cellang/jsvm/internal/cell"
)

// evalExpr dispatches on expr's head symbol and evaluates it to a Value,
// setting ctx.Signal (Throw) on failure rather than returning a Go error
// for ordinary JS-level failures (spec.md §4.3).
func (i *Interpreter) evalExpr(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	if expr.IsEmpty() {
		return TheUndefined
	}
	switch expr.HeadSymbol() {
	case cell.TagNumberLit:
		f, _ := expr.Nth(0).AsFloat()
		return Number(f)
	case cell.TagBigIntLit:
		if n, ok := expr.Nth(0).Head.(*big.Int); ok {
			return NewBigInt(n)
		}
		return NewBigInt(big.NewInt(0))
	case cell.TagStringLit:
		s, _ := expr.Nth(0).AsString()
		return String(s)
	case cell.TagBoolLit:
		b, _ := expr.Nth(0).Head.(bool)
		return Boolean(b)
	case cell.TagNullLit:
		return TheNull
	case cell.TagUndefinedLit:
		return TheUndefined
	case cell.TagIdent:
		return i.evalIdent(expr, env, ctx)
	case cell.TagThis:
		v, _ := env.Get("this")
		return v
	case cell.TagTemplate:
		return i.evalTemplate(expr, env, ctx)
	case cell.TagRegexLit:
		body, _ := expr.Nth(0).AsString()
		flags, _ := expr.Nth(1).AsString()
		return &RegExp{Source: body, Flags: flags, Overlay: NewObject(i.Realm.ObjectProto)}
	case cell.TagArrayLiteral:
		return i.evalArrayLiteral(expr, env, ctx)
	case cell.TagObjectLiteral:
		return i.evalObjectLiteral(expr, env, ctx)
	case cell.TagFunction, cell.TagLambda:
		return i.makeFunction(expr, env)
	case cell.TagAsync:
		return i.makeAsyncFunction(expr.Nth(0), env)
	case cell.TagClass:
		return i.evalClass(expr, env, ctx)
	case cell.TagSequence:
		var last Value = TheUndefined
		for _, e := range expr.NodeArgs() {
			last = i.evalExpr(e, env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
		}
		return last
	case cell.TagAssign:
		return i.evalAssign(expr, env, ctx)
	case cell.TagCompoundAssig:
		return i.evalCompoundAssign(expr, env, ctx)
	case cell.TagTernary:
		cond := i.evalExpr(expr.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		if ToBoolean(cond) {
			return i.evalExpr(expr.Nth(1), env, ctx)
		}
		return i.evalExpr(expr.Nth(2), env, ctx)
	case cell.TagLogical:
		return i.evalLogical(expr, env, ctx)
	case cell.TagNullish:
		left := i.evalExpr(expr.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		if isNullish(left) {
			return i.evalExpr(expr.Nth(1), env, ctx)
		}
		return left
	case cell.TagOperatorNode:
		return i.evalBinary(expr, env, ctx)
	case cell.TagNot:
		v := i.evalExpr(expr.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		return Boolean(!ToBoolean(v))
	case cell.TagNegate:
		v := i.evalExpr(expr.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		if bi, ok := v.(BigInt); ok {
			return NewBigInt(new(big.Int).Neg(bi.V))
		}
		return Number(-ToNumber(v))
	case cell.TagPlus:
		v := i.evalExpr(expr.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		return Number(ToNumber(v))
	case cell.TagBitNot:
		v := i.evalExpr(expr.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		return Number(float64(^toInt32(ToNumber(v))))
	case cell.TagTypeof:
		return i.evalTypeof(expr.Nth(0), env, ctx)
	case cell.TagVoid:
		i.evalExpr(expr.Nth(0), env, ctx)
		return TheUndefined
	case cell.TagDelete:
		return i.evalDelete(expr.Nth(0), env, ctx)
	case cell.TagUpdate:
		return i.evalUpdate(expr, env, ctx)
	case cell.TagGetProperty:
		return i.evalGetProperty(expr, env, ctx)
	case cell.TagGetIndex:
		return i.evalGetIndex(expr, env, ctx)
	case cell.TagOptionalChain:
		return i.evalOptionalChain(expr, env, ctx)
	case cell.TagCall:
		return i.evalCall(expr, env, ctx)
	case cell.TagNew:
		return i.evalNew(expr, env, ctx)
	case cell.TagSuper:
		v, _ := env.Get("__superProto__")
		return v
	case cell.TagSuperCall:
		return i.evalSuperCall(expr, env, ctx)
	case cell.TagSpread:
		return i.evalExpr(expr.Nth(0), env, ctx)
	case cell.TagAwait:
		return i.evalAwait(expr, env, ctx)
	case cell.TagYield, cell.TagYieldStar:
		return i.evalYield(expr, env, ctx)
	case cell.TagTaggedTemp:
		return i.evalTaggedTemplate(expr, env, ctx)
	default:
		return TheUndefined
	}
}

func (i *Interpreter) evalIdent(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	name, _ := expr.Nth(0).AsSymbol()
	if name == nil {
		return TheUndefined
	}
	v, ok := env.Get(name.Name)
	if !ok {
		ctx.throwError("ReferenceError", name.Name+" is not defined")
		return TheUndefined
	}
	if _, tdz := v.(tdzSentinel); tdz {
		ctx.throwError("ReferenceError", "Cannot access '"+name.Name+"' before initialization")
		return TheUndefined
	}
	return v
}

func (i *Interpreter) evalTemplate(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	var out string
	for _, part := range expr.NodeArgs() {
		if part.Is(cell.TagStringLit) {
			s, _ := part.Nth(0).AsString()
			out += s
			continue
		}
		if part.Is(cell.TagSpread) {
			v := i.evalExpr(part.Nth(0), env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
			out += ToPrimitiveString(v)
		}
	}
	return String(out)
}

func (i *Interpreter) evalTaggedTemplate(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	tagExpr, tmpl := expr.Nth(0), expr.Nth(1)
	tagVal := i.evalExpr(tagExpr, env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	strs := NewArray(0)
	var values []Value
	for _, part := range tmpl.NodeArgs() {
		if part.Is(cell.TagStringLit) {
			s, _ := part.Nth(0).AsString()
			strs.Elements = append(strs.Elements, String(s))
			continue
		}
		v := i.evalExpr(part.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		values = append(values, v)
	}
	strs.Overlay.Set("raw", strs)
	args := append([]Value{strs}, values...)
	fn, ok := tagVal.(*Function)
	if !ok {
		ctx.throwError("TypeError", "tag is not a function")
		return TheUndefined
	}
	v, err := i.callFunction(fn, args, TheUndefined)
	if err != nil {
		i.propagateGoError(err, ctx)
		return TheUndefined
	}
	return v
}

func (i *Interpreter) evalArrayLiteral(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	arr := NewArray(0)
	for _, el := range expr.NodeArgs() {
		if el.Is(cell.TagElision) {
			arr.Elements = append(arr.Elements, Hole{})
			continue
		}
		if el.Is(cell.TagSpread) {
			v := i.evalExpr(el.Nth(0), env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
			items, err := i.iterate(v)
			if err != nil {
				ctx.throwError("TypeError", err.Error())
				return TheUndefined
			}
			arr.Elements = append(arr.Elements, items...)
			continue
		}
		v := i.evalExpr(el, env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		arr.Elements = append(arr.Elements, v)
	}
	return arr
}

func (i *Interpreter) evalPropertyKey(keyCell *cell.Cell, env *Environment, ctx *EvaluationContext) string {
	if keyCell.Is(cell.TagComputedKey) {
		v := i.evalExpr(keyCell.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return ""
		}
		return ToPrimitiveString(v)
	}
	s, _ := keyCell.AsString()
	return s
}

func (i *Interpreter) evalObjectLiteral(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	obj := NewObject(i.Realm.ObjectProto)
	for _, prop := range expr.NodeArgs() {
		switch prop.HeadSymbol() {
		case cell.TagSpread:
			v := i.evalExpr(prop.Nth(0), env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
			if src, ok := v.(*Object); ok {
				for _, k := range src.OwnKeys() {
					d, _ := src.getOwn(k)
					obj.Set(k, d.Value)
				}
			}
		case cell.TagProperty:
			key := i.evalPropertyKey(prop.Nth(0), env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
			v := i.evalExpr(prop.Nth(1), env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
			obj.Set(key, v)
		case cell.TagMethod:
			key := i.evalPropertyKey(prop.Nth(0), env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
			fn := i.makeFunctionFromParts(key, prop.Nth(1), prop.Nth(2), env, false)
			flags := prop.Nth(3)
			fn.IsAsync = flagAt(flags, 0)
			fn.IsGenerator = flagAt(flags, 1)
			obj.Set(key, fn)
		case cell.TagGetter:
			key := i.evalPropertyKey(prop.Nth(0), env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
			fn := i.makeFunctionFromParts(key, prop.Nth(1), prop.Nth(2), env, false)
			d, _ := obj.getOwn(key)
			if d == nil {
				d = &PropertyDescriptor{Enumerable: true, Configurable: true}
			}
			d.Get = fn
			obj.DefineOwn(key, d)
		case cell.TagSetter:
			key := i.evalPropertyKey(prop.Nth(0), env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
			fn := i.makeFunctionFromParts(key, prop.Nth(1), prop.Nth(2), env, false)
			d, _ := obj.getOwn(key)
			if d == nil {
				d = &PropertyDescriptor{Enumerable: true, Configurable: true}
			}
			d.Set = fn
			obj.DefineOwn(key, d)
		}
	}
	return obj
}

func isNullish(v Value) bool {
	switch v.(type) {
	case Undefined, Null:
		return true
	}
	return false
}

func (i *Interpreter) evalLogical(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	op := operatorName(expr.Nth(0))
	left := i.evalExpr(expr.Nth(1), env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	if op == "&&" {
		if !ToBoolean(left) {
			return left
		}
		return i.evalExpr(expr.Nth(2), env, ctx)
	}
	if ToBoolean(left) {
		return left
	}
	return i.evalExpr(expr.Nth(2), env, ctx)
}

func operatorName(opCell *cell.Cell) string {
	sym, ok := opCell.AsSymbol()
	if !ok || sym == nil {
		return ""
	}
	const prefix = "Operator:"
	if len(sym.Name) > len(prefix) {
		return sym.Name[len(prefix):]
	}
	return ""
}

func toInt32(f float64) int32 {
	if f != f || f == 0 {
		return 0
	}
	u := uint32(int64(f))
	return int32(u)
}

func toUint32(f float64) uint32 {
	if f != f || f == 0 {
		return 0
	}
	return uint32(int64(f))
}

func (i *Interpreter) evalUpdate(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	op := operatorName(expr.Nth(0))
	prefix, _ := expr.Nth(1).Head.(bool)
	target := expr.Nth(2)

	old := i.evalExpr(target, env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	oldNum := ToNumber(old)
	var newNum float64
	if op == "++" {
		newNum = oldNum + 1
	} else {
		newNum = oldNum - 1
	}
	i.assignPattern(target, Number(newNum), env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	if prefix {
		return Number(newNum)
	}
	return Number(oldNum)
}

func (i *Interpreter) evalTypeof(target *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	if target.Is(cell.TagIdent) {
		name, _ := target.Nth(0).AsSymbol()
		if name != nil {
			if v, ok := env.Get(name.Name); ok {
				if _, tdz := v.(tdzSentinel); !tdz {
					return String(typeofString(v))
				}
			} else {
				return String("undefined")
			}
		}
	}
	v := i.evalExpr(target, env, ctx)
	if ctx.Signal.Kind == SigThrow {
		ctx.clear()
		return String("undefined")
	}
	return String(typeofString(v))
}

func typeofString(v Value) string {
	switch v.(type) {
	case Undefined:
		return "undefined"
	case Null:
		return "object"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case BigInt:
		return "bigint"
	case String:
		return "string"
	case Symbol:
		return "symbol"
	case *Function:
		return "function"
	case *Object:
		return "object"
	default:
		return "object"
	}
}

func (i *Interpreter) evalDelete(target *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	switch target.HeadSymbol() {
	case cell.TagGetProperty:
		obj := i.evalExpr(target.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		name, _ := target.Nth(1).AsString()
		if o, ok := obj.(*Object); ok {
			return Boolean(o.Delete(name))
		}
		return Boolean(true)
	case cell.TagGetIndex:
		obj := i.evalExpr(target.Nth(0), env, ctx)
		idx := i.evalExpr(target.Nth(1), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		if o, ok := obj.(*Object); ok {
			return Boolean(o.Delete(ToPrimitiveString(idx)))
		}
		if a, ok := obj.(*Array); ok {
			if n, ok2 := indexOf(idx); ok2 && n >= 0 && n < len(a.Elements) {
				a.Elements[n] = Hole{}
			}
		}
		return Boolean(true)
	}
	return Boolean(true)
}

func indexOf(v Value) (int, bool) {
	n, ok := v.(Number)
	if !ok {
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	}
	return int(n), true
}
