package interp

import "github.com/cellang/jsvm/internal/cell"

// bindPattern recursively declares target's bindings (identifier, array
// pattern, or object pattern) in env with the given flags, evaluating
// defaults against value as needed (spec.md §4.3 "Destructuring").
func (i *Interpreter) bindPattern(target *cell.Cell, value Value, env *Environment, ctx *EvaluationContext, flags Binding) {
	if target.IsEmpty() {
		return
	}
	switch target.HeadSymbol() {
	case cell.TagIdent:
		name, _ := target.Nth(0).AsSymbol()
		if name == nil {
			return
		}
		env.Define(name.Name, value, flags)
	case cell.TagDefaultValue:
		v := value
		if _, isUndef := v.(Undefined); isUndef {
			v = i.evalExpr(target.Nth(1), env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return
			}
		}
		i.bindPattern(target.Nth(0), v, env, ctx, flags)
	case cell.TagArrayPattern:
		items, err := i.iterate(value)
		if err != nil {
			ctx.throwError("TypeError", err.Error())
			return
		}
		idx := 0
		for _, el := range target.NodeArgs() {
			if el.Is(cell.TagRestElement) {
				rest := NewArray(0)
				for ; idx < len(items); idx++ {
					rest.Elements = append(rest.Elements, items[idx])
				}
				i.bindPattern(el.Nth(0), rest, env, ctx, flags)
				return
			}
			var v Value = TheUndefined
			if idx < len(items) {
				v = items[idx]
			}
			idx++
			if el.Is(cell.TagElision) {
				continue
			}
			i.bindPattern(el, v, env, ctx, flags)
			if ctx.Signal.Kind == SigThrow {
				return
			}
		}
	case cell.TagObjectPattern:
		used := map[string]bool{}
		for _, prop := range target.NodeArgs() {
			if prop.Is(cell.TagRestElement) {
				rest := NewObject(i.Realm.ObjectProto)
				if obj, ok := value.(*Object); ok {
					for _, k := range obj.AllOwnKeys() {
						if !used[k] {
							d, _ := obj.getOwn(k)
							rest.Set(k, d.Value)
						}
					}
				}
				i.bindPattern(prop.Nth(0), rest, env, ctx, flags)
				continue
			}
			keyCell := prop.Nth(0)
			key := i.evalPropertyKey(keyCell, env, ctx)
			used[key] = true
			v := i.getProperty(value, key)
			i.bindPattern(prop.Nth(1), v, env, ctx, flags)
			if ctx.Signal.Kind == SigThrow {
				return
			}
		}
	}
}

// assignPattern is like bindPattern but targets existing bindings/object
// properties instead of declaring new ones, for plain `Assign` targets
// that happen to be array/object patterns.
func (i *Interpreter) assignPattern(target *cell.Cell, value Value, env *Environment, ctx *EvaluationContext) {
	if target.IsEmpty() {
		return
	}
	switch target.HeadSymbol() {
	case cell.TagIdent:
		name, _ := target.Nth(0).AsSymbol()
		if name == nil {
			return
		}
		if err := env.Assign(name.Name, value); err != nil {
			ctx.throwError(errKind(err), err.Error())
		}
	case cell.TagGetProperty, cell.TagGetIndex:
		i.evalAssignTarget(target, value, env, ctx)
	case cell.TagDefaultValue:
		v := value
		if _, isUndef := v.(Undefined); isUndef {
			v = i.evalExpr(target.Nth(1), env, ctx)
		}
		i.assignPattern(target.Nth(0), v, env, ctx)
	case cell.TagArrayPattern:
		items, err := i.iterate(value)
		if err != nil {
			ctx.throwError("TypeError", err.Error())
			return
		}
		idx := 0
		for _, el := range target.NodeArgs() {
			if el.Is(cell.TagRestElement) {
				rest := NewArray(0)
				for ; idx < len(items); idx++ {
					rest.Elements = append(rest.Elements, items[idx])
				}
				i.assignPattern(el.Nth(0), rest, env, ctx)
				return
			}
			var v Value = TheUndefined
			if idx < len(items) {
				v = items[idx]
			}
			idx++
			if el.Is(cell.TagElision) {
				continue
			}
			i.assignPattern(el, v, env, ctx)
		}
	case cell.TagObjectPattern:
		for _, prop := range target.NodeArgs() {
			if prop.Is(cell.TagRestElement) {
				continue
			}
			key := i.evalPropertyKey(prop.Nth(0), env, ctx)
			v := i.getProperty(value, key)
			i.assignPattern(prop.Nth(1), v, env, ctx)
		}
	}
}

func errKind(err error) string {
	msg := err.Error()
	for _, kind := range []string{"TypeError", "ReferenceError", "RangeError", "SyntaxError"} {
		if len(msg) >= len(kind) && msg[:len(kind)] == kind {
			return kind
		}
	}
	return "Error"
}
