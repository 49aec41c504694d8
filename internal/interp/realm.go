package interp

// Realm holds the intrinsic constructors and prototypes shared by all
// code evaluated within one engine instance (spec.md §9: "mutable globals
// in the source ... must be re-architected as explicit RealmState passed
// through the evaluator", not process-wide singletons).
type Realm struct {
	ObjectProto   *Object
	ArrayProto    *Object
	FunctionProto *Object
	ErrorProto    *Object

	ErrorCtors map[string]*Function // TypeError, RangeError, ReferenceError, SyntaxError, Error

	Global *Environment
}

// NewRealm builds a fresh realm with the minimal intrinsic surface the
// kernel itself depends on (instanceof checks against error constructors,
// prototype roots for plain objects/arrays/functions). The richer
// standard-library surface (Math, JSON, Promise, ...) is layered on top
// by package stdlib, which receives this Realm and extends Global.
func NewRealm() *Realm {
	r := &Realm{
		ObjectProto:   &Object{Class: "Object", props: map[string]*PropertyDescriptor{}, Extensible: true},
		FunctionProto: nil,
		ErrorCtors:    map[string]*Function{},
	}
	r.ArrayProto = NewObject(r.ObjectProto)
	r.ArrayProto.Class = "Array"
	r.FunctionProto = NewObject(r.ObjectProto)
	r.FunctionProto.Class = "Function"
	r.ErrorProto = NewObject(r.ObjectProto)
	r.ErrorProto.Class = "Error"
	r.ErrorProto.Set("name", String("Error"))
	r.ErrorProto.Set("message", String(""))

	r.Global = NewEnvironment()
	r.Global.Strict = false

	for _, kind := range []string{"Error", "TypeError", "RangeError", "ReferenceError", "SyntaxError"} {
		r.defineErrorCtor(kind)
	}

	r.Global.Define("undefined", TheUndefined, Binding{GlobalConstant: true})
	r.Global.Define("NaN", Number(nan()), Binding{GlobalConstant: true})
	r.Global.Define("Infinity", Number(inf()), Binding{GlobalConstant: true})

	return r
}

func (r *Realm) defineErrorCtor(kind string) {
	proto := NewObject(r.ErrorProto)
	proto.Set("name", String(kind))

	ctorName := kind
	fn := &Function{
		Name:    ctorName,
		Overlay: NewObject(r.FunctionProto),
		Native: func(args []Value, this Value) (Value, error) {
			msg := ""
			if len(args) > 0 {
				msg = ToPrimitiveString(args[0])
			}
			obj := NewObject(proto)
			obj.Class = "Error"
			obj.Set("message", String(msg))
			obj.Set("stack", String(kind+": "+msg))
			return obj, nil
		},
	}
	fn.Overlay.Set("prototype", proto)
	proto.SetHidden("constructor", fn)

	r.ErrorCtors[kind] = fn
	r.Global.Define(ctorName, fn, Binding{})
}

// NewError constructs a thrown error object of the given intrinsic kind,
// falling back to a bare Error when kind is unrecognized (internal
// faults wrapped per spec.md §4.3 "Error model").
func (r *Realm) NewError(kind, message string) Value {
	ctor, ok := r.ErrorCtors[kind]
	if !ok {
		ctor = r.ErrorCtors["Error"]
	}
	v, _ := ctor.Native(nil, TheUndefined)
	if obj, ok := v.(*Object); ok {
		obj.Set("message", String(message))
		obj.Set("stack", String(kind+": "+message))
	}
	return v
}

// InstanceOf implements the `instanceof` operator: walks v's prototype
// chain looking for ctor.Overlay's "prototype" value.
func InstanceOf(v Value, ctor *Function) bool {
	if ctor == nil || ctor.Overlay == nil {
		return false
	}
	protoDesc, ok := ctor.Overlay.getOwn("prototype")
	if !ok {
		return false
	}
	targetProto, ok := protoDesc.Value.(*Object)
	if !ok {
		return false
	}
	obj, ok := v.(*Object)
	if !ok {
		return false
	}
	seen := map[*Object]bool{}
	for p := obj.Proto; p != nil; p = p.Proto {
		if seen[p] {
			return false
		}
		seen[p] = true
		if p == targetProto {
			return true
		}
	}
	return false
}
