package interp

import (
	"fmt"
	"strconv"

	"github.com/cellang/jsvm/internal/cell"
)

// getProperty implements the receiver-agnostic half of GetProperty /
// GetIndex: resolve key on v, walking the prototype chain and invoking a
// getter with `this` bound to v when the resolved descriptor has one
// (spec.md §4.3 "Property access").
func (i *Interpreter) getProperty(v Value, key string) Value {
	switch x := v.(type) {
	case *Object:
		d, owner := x.tryGetProperty(key)
		if d == nil {
			_ = owner
			return TheUndefined
		}
		if d.Get != nil {
			r, err := i.callFunction(d.Get, nil, x)
			if err != nil {
				return TheUndefined
			}
			return r
		}
		return d.Value
	case *Array:
		if key == "length" {
			return Number(float64(len(x.Elements)))
		}
		if n, err := strconv.Atoi(key); err == nil {
			return x.Get(n)
		}
		d, owner := x.Overlay.tryGetProperty(key)
		if d == nil {
			_ = owner
			if arrayMethod, ok := arrayPrototypeMethods[key]; ok {
				return i.bindArrayMethod(arrayMethod, x)
			}
			return TheUndefined
		}
		if d.Get != nil {
			r, _ := i.callFunction(d.Get, nil, x)
			return r
		}
		return d.Value
	case *Function:
		switch key {
		case "name":
			return String(x.Name)
		case "length":
			return Number(float64(len(x.Params)))
		}
		if x.Overlay != nil {
			d, owner := x.Overlay.tryGetProperty(key)
			if d != nil {
				_ = owner
				return d.Value
			}
		}
		return TheUndefined
	case String:
		if key == "length" {
			return Number(float64(len([]rune(string(x)))))
		}
		if n, err := strconv.Atoi(key); err == nil {
			runes := []rune(string(x))
			if n >= 0 && n < len(runes) {
				return String(string(runes[n]))
			}
			return TheUndefined
		}
		if m, ok := stringPrototypeMethods[key]; ok {
			return i.bindStringMethod(m, x)
		}
		return TheUndefined
	case *RegExp:
		ensureRegexEngine(x)
		switch key {
		case "source":
			return String(x.Source)
		case "flags":
			return String(x.Flags)
		}
		if x.Overlay != nil {
			d, _ := x.Overlay.tryGetProperty(key)
			if d != nil {
				return d.Value
			}
		}
		return TheUndefined
	default:
		return TheUndefined
	}
}

// setProperty implements the write side: respects setters, writable and
// frozen/sealed flags on the prototype chain (spec.md §4.3).
func (i *Interpreter) setProperty(v Value, key string, val Value, strict bool) error {
	switch x := v.(type) {
	case *Object:
		if d, owner := x.tryGetProperty(key); d != nil && d.Set != nil {
			_, err := i.callFunction(d.Set, []Value{val}, x)
			_ = owner
			return err
		}
		if x.Frozen {
			if strict {
				return fmt.Errorf("TypeError: Cannot assign to read only property '%s' of object", key)
			}
			return nil
		}
		if own, ok := x.getOwn(key); ok {
			if !own.Writable {
				if strict {
					return fmt.Errorf("TypeError: Cannot assign to read only property '%s'", key)
				}
				return nil
			}
			own.Value = val
			return nil
		}
		if x.Sealed || !x.Extensible {
			if strict {
				return fmt.Errorf("TypeError: Cannot add property %s, object is not extensible", key)
			}
			return nil
		}
		x.Set(key, val)
		return nil
	case *Array:
		if key == "length" {
			if n, ok := val.(Number); ok {
				x.SetLength(int(n))
			}
			return nil
		}
		if n, err := strconv.Atoi(key); err == nil {
			x.Set(n, val)
			return nil
		}
		x.Overlay.Set(key, val)
		return nil
	case *Function:
		if x.Overlay == nil {
			x.Overlay = NewObject(i.Realm.FunctionProto)
		}
		x.Overlay.Set(key, val)
		return nil
	}
	return nil
}

func (i *Interpreter) evalGetProperty(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	obj := i.evalExpr(expr.Nth(0), env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	name, _ := expr.Nth(1).AsString()
	if isNullish(obj) {
		ctx.throwError("TypeError", "Cannot read properties of "+obj.String()+" (reading '"+name+"')")
		return TheUndefined
	}
	return i.getProperty(obj, name)
}

func (i *Interpreter) evalGetIndex(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	obj := i.evalExpr(expr.Nth(0), env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	idx := i.evalExpr(expr.Nth(1), env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	if isNullish(obj) {
		ctx.throwError("TypeError", "Cannot read properties of "+obj.String())
		return TheUndefined
	}
	return i.getProperty(obj, ToPrimitiveString(idx))
}

// evalOptionalChain short-circuits to Undefined when the base of the
// wrapped GetProperty/GetIndex/Call is nullish, instead of throwing.
func (i *Interpreter) evalOptionalChain(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	inner := expr.Nth(0)
	base := inner.Nth(0)
	baseVal := i.evalExpr(base, env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	if isNullish(baseVal) {
		return TheUndefined
	}
	switch inner.HeadSymbol() {
	case cell.TagGetProperty:
		name, _ := inner.Nth(1).AsString()
		return i.getProperty(baseVal, name)
	case cell.TagGetIndex:
		idx := i.evalExpr(inner.Nth(1), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		return i.getProperty(baseVal, ToPrimitiveString(idx))
	case cell.TagCall:
		return i.callWithReceiver(inner, baseVal, baseVal, env, ctx)
	}
	return TheUndefined
}

// enumerableKeys implements the `for...in` key set: own enumerable
// string keys plus inherited enumerable keys walking the prototype
// chain, deduplicated, in encounter order.
func enumerableKeys(v Value) []string {
	obj, ok := v.(*Object)
	if !ok {
		if arr, ok2 := v.(*Array); ok2 {
			var out []string
			for _, idx := range arr.SortedIndexKeys() {
				out = append(out, strconv.Itoa(idx))
			}
			return out
		}
		return nil
	}
	seen := map[string]bool{}
	var out []string
	visited := map[*Object]bool{}
	for cur := obj; cur != nil && !visited[cur]; cur = cur.Proto {
		visited[cur] = true
		for _, k := range cur.OwnKeys() {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// iterate realizes the iteration protocol eagerly into a Go slice,
// sufficient for for-of, spread, and destructuring; generator instances
// are drained to completion through gen.drain (see generator.go).
func (i *Interpreter) iterate(v Value) ([]Value, error) {
	switch x := v.(type) {
	case *Array:
		out := make([]Value, len(x.Elements))
		for idx := range x.Elements {
			out[idx] = x.Get(idx)
		}
		return out, nil
	case String:
		runes := []rune(string(x))
		out := make([]Value, len(runes))
		for idx, r := range runes {
			out[idx] = String(string(r))
		}
		return out, nil
	case *Object:
		if gen, ok := x.Internal["generator"].(*GeneratorState); ok {
			return gen.drain(), nil
		}
		return nil, fmt.Errorf("value is not iterable")
	default:
		return nil, fmt.Errorf("value is not iterable")
	}
}
