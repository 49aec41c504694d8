package stdlib

import "github.com/cellang/jsvm/internal/interp"

// installObject wires the `Object` global spec.md §6 lists as a reserved
// identifier supplied by stdlib: a constructor plus the static methods
// the frozen/sealed/prototype-walk invariants of spec.md §4.3/§8 need
// (freeze, seal, isFrozen, isSealed, keys, values, entries, assign,
// getPrototypeOf, create, defineProperty). The underlying Frozen/Sealed/
// Extensible bookkeeping already lives on *interp.Object in the kernel
// (internal/interp/properties.go); this just gives user code a surface
// to flip those flags from.
func installObject(i *interp.Interpreter) {
	realm := i.Realm

	asObject := func(v interp.Value) (*interp.Object, bool) {
		o, ok := v.(*interp.Object)
		return o, ok
	}

	ctor := &interp.Function{
		Name:    "Object",
		Overlay: interp.NewObject(realm.FunctionProto),
		Native: func(args []interp.Value, _ interp.Value) (interp.Value, error) {
			if o, ok := asObject(argOrUndefined(args, 0)); ok {
				return o, nil
			}
			return interp.NewObject(realm.ObjectProto), nil
		},
	}

	def := func(name string, fn func(args []interp.Value) (interp.Value, error)) {
		ctor.Overlay.SetHidden(name, i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
			return fn(args)
		}))
	}

	def("freeze", func(args []interp.Value) (interp.Value, error) {
		if o, ok := asObject(argOrUndefined(args, 0)); ok {
			o.Frozen = true
			o.Sealed = true
			o.Extensible = false
		}
		return argOrUndefined(args, 0), nil
	})
	def("seal", func(args []interp.Value) (interp.Value, error) {
		if o, ok := asObject(argOrUndefined(args, 0)); ok {
			o.Sealed = true
			o.Extensible = false
		}
		return argOrUndefined(args, 0), nil
	})
	def("isFrozen", func(args []interp.Value) (interp.Value, error) {
		o, ok := asObject(argOrUndefined(args, 0))
		return interp.Boolean(!ok || o.Frozen), nil
	})
	def("isSealed", func(args []interp.Value) (interp.Value, error) {
		o, ok := asObject(argOrUndefined(args, 0))
		return interp.Boolean(!ok || o.Sealed), nil
	})
	def("keys", func(args []interp.Value) (interp.Value, error) {
		o, ok := asObject(argOrUndefined(args, 0))
		if !ok {
			return interp.NewArray(0), nil
		}
		keys := o.OwnKeys()
		elems := make([]interp.Value, len(keys))
		for idx, k := range keys {
			elems[idx] = interp.String(k)
		}
		return &interp.Array{Elements: elems, Overlay: interp.NewObject(nil)}, nil
	})
	def("values", func(args []interp.Value) (interp.Value, error) {
		o, ok := asObject(argOrUndefined(args, 0))
		if !ok {
			return interp.NewArray(0), nil
		}
		keys := o.OwnKeys()
		elems := make([]interp.Value, len(keys))
		for idx, k := range keys {
			elems[idx] = i.GetProperty(o, k)
		}
		return &interp.Array{Elements: elems, Overlay: interp.NewObject(nil)}, nil
	})
	def("entries", func(args []interp.Value) (interp.Value, error) {
		o, ok := asObject(argOrUndefined(args, 0))
		if !ok {
			return interp.NewArray(0), nil
		}
		keys := o.OwnKeys()
		elems := make([]interp.Value, len(keys))
		for idx, k := range keys {
			pair := &interp.Array{Elements: []interp.Value{interp.String(k), i.GetProperty(o, k)}, Overlay: interp.NewObject(nil)}
			elems[idx] = pair
		}
		return &interp.Array{Elements: elems, Overlay: interp.NewObject(nil)}, nil
	})
	def("assign", func(args []interp.Value) (interp.Value, error) {
		target, ok := asObject(argOrUndefined(args, 0))
		if !ok {
			return argOrUndefined(args, 0), nil
		}
		for _, src := range args[1:] {
			so, ok := asObject(src)
			if !ok {
				continue
			}
			for _, k := range so.OwnKeys() {
				if err := i.SetProperty(target, k, i.GetProperty(so, k)); err != nil {
					return nil, err
				}
			}
		}
		return target, nil
	})
	def("getPrototypeOf", func(args []interp.Value) (interp.Value, error) {
		o, ok := asObject(argOrUndefined(args, 0))
		if !ok || o.Proto == nil {
			return interp.TheNull, nil
		}
		return o.Proto, nil
	})
	def("create", func(args []interp.Value) (interp.Value, error) {
		proto, _ := asObject(argOrUndefined(args, 0))
		return interp.NewObject(proto), nil
	})
	def("defineProperty", func(args []interp.Value) (interp.Value, error) {
		o, ok := asObject(argOrUndefined(args, 0))
		if !ok {
			return nil, typeErr(realm, "Object.defineProperty called on non-object")
		}
		key := interp.ToPrimitiveString(argOrUndefined(args, 1))
		descObj, ok := asObject(argOrUndefined(args, 2))
		if !ok {
			return nil, typeErr(realm, "Property description must be an object")
		}
		d := &interp.PropertyDescriptor{}
		if v := i.GetProperty(descObj, "value"); v != interp.TheUndefined {
			d.Value = v
		}
		if get, ok := i.GetProperty(descObj, "get").(*interp.Function); ok {
			d.Get = get
		}
		if set, ok := i.GetProperty(descObj, "set").(*interp.Function); ok {
			d.Set = set
		}
		d.Writable = interp.ToBoolean(i.GetProperty(descObj, "writable"))
		d.Enumerable = interp.ToBoolean(i.GetProperty(descObj, "enumerable"))
		d.Configurable = interp.ToBoolean(i.GetProperty(descObj, "configurable"))
		o.DefineOwn(key, d)
		return o, nil
	})

	realm.Global.Define("Object", ctor, interp.Binding{})
}

func typeErr(realm *interp.Realm, msg string) error {
	return &interp.ThrownError{Value: realm.NewError("TypeError", msg)}
}
