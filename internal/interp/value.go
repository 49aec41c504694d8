// Package interp implements the evaluator: lexical environments, value
// coercion, operator semantics, function invocation, new/prototype
// semantics, class desugaring, control-flow signals, and hoisting, as
// described by the kernel's data model.
package interp

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Value is the tagged-sum type every kernel operation produces and
// consumes. Each variant is a distinct Go type implementing this
// interface, mirroring the teacher's one-struct-per-variant Value model.
type Value interface {
	Type() string
	String() string
}

// Undefined is the sole value of the Undefined variant.
type Undefined struct{}

func (Undefined) Type() string   { return "undefined" }
func (Undefined) String() string { return "undefined" }

// Null is the sole value of the Null variant.
type Null struct{}

func (Null) Type() string   { return "null" }
func (Null) String() string { return "null" }

var (
	TheUndefined = Undefined{}
	TheNull      = Null{}
)

// Boolean wraps a JS boolean.
type Boolean bool

func (Boolean) Type() string      { return "boolean" }
func (b Boolean) String() string  { return strconv.FormatBool(bool(b)) }
func (b Boolean) Bool() bool      { return bool(b) }

// Number wraps a JS double. NaN and +/-Inf are represented with Go's
// math.NaN()/Inf() and compared per JS semantics in operators.go.
type Number float64

func (Number) Type() string { return "number" }
func (n Number) String() string {
	f := float64(n)
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// BigInt wraps an arbitrary-precision integer.
type BigInt struct{ V *big.Int }

func (BigInt) Type() string     { return "bigint" }
func (b BigInt) String() string { return b.V.String() }

func NewBigInt(v *big.Int) BigInt { return BigInt{V: v} }

// String wraps a JS string.
type String string

func (String) Type() string     { return "string" }
func (s String) String() string { return string(s) }

// Symbol wraps an interned kernel-level Symbol value (distinct from
// cell.Symbol, which tags AST nodes rather than runtime values).
type Symbol struct {
	Description string
	id          uint64
}

func (Symbol) Type() string { return "symbol" }
func (s Symbol) String() string {
	return fmt.Sprintf("Symbol(%s)", s.Description)
}

var symbolCounter uint64

// NewSymbol allocates a fresh, globally unique Symbol value.
func NewSymbol(desc string) Symbol {
	symbolCounter++
	return Symbol{Description: desc, id: symbolCounter}
}

// PropertyDescriptor models one property slot on an Object: either a data
// descriptor (Value set) or an accessor descriptor (Get/Set set).
type PropertyDescriptor struct {
	Value        Value
	Get          *Function
	Set          *Function
	Writable     bool
	Enumerable   bool
	Configurable bool
}

func dataDescriptor(v Value) *PropertyDescriptor {
	return &PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true}
}

// Object is the shared, mutable JS object: an ordered string-keyed
// property map with a single optional prototype, consulted by the
// evaluator's GetProperty/SetProperty and walked with a visited-set
// cycle guard (spec.md §3 invariant).
type Object struct {
	Class     string // diagnostic tag, e.g. "Object", "Error", "Promise"
	Proto     *Object
	props     map[string]*PropertyDescriptor
	keys      []string // insertion order, for enumeration
	Extensible bool
	Sealed     bool
	Frozen     bool

	// Internal slots used by host objects built on top of Object (Error
	// instances, Promise instances, boxed primitives, etc). The kernel
	// itself only reads these via the accessor helpers below; stdlib code
	// is free to stash extra state here.
	Internal map[string]any

	// Call, when non-nil, makes this object usable both as a plain object
	// and as a host-provided callable (e.g. bound functions, Proxy traps).
	Call func(args []Value, this Value) (Value, error)
}

func (*Object) Type() string { return "object" }
func (o *Object) String() string {
	if o.Class != "" && o.Class != "Object" {
		return "[object " + o.Class + "]"
	}
	return "[object Object]"
}

// NewObject creates an empty object with the given prototype (nil for
// none).
func NewObject(proto *Object) *Object {
	return &Object{Class: "Object", Proto: proto, props: map[string]*PropertyDescriptor{}, Extensible: true}
}

// OwnKeys returns the object's own enumerable property keys in insertion
// order.
func (o *Object) OwnKeys() []string {
	out := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		if d := o.props[k]; d != nil && d.Enumerable {
			out = append(out, k)
		}
	}
	return out
}

// AllOwnKeys returns every own key (including non-enumerable), insertion
// ordered, which is what Object.keys-equivalent iteration and rest-pattern
// collection both want for user-defined plain objects.
func (o *Object) AllOwnKeys() []string {
	return append([]string{}, o.keys...)
}

func (o *Object) getOwn(name string) (*PropertyDescriptor, bool) {
	d, ok := o.props[name]
	return d, ok
}

// GetOwnPropertyDescriptor implements the richer half of the
// PropertyAccessor host contract (spec.md §4.6).
func (o *Object) GetOwnPropertyDescriptor(name string) (*PropertyDescriptor, bool) {
	return o.getOwn(name)
}

// DefineOwn installs d as name's own descriptor, recording insertion
// order on first definition.
func (o *Object) DefineOwn(name string, d *PropertyDescriptor) {
	if _, exists := o.props[name]; !exists {
		o.keys = append(o.keys, name)
	}
	o.props[name] = d
}

// Set installs a plain writable/enumerable/configurable data property,
// the common case for user code writes that aren't going through
// SetProperty's setter/frozen checks (used internally by stdlib setup).
func (o *Object) Set(name string, v Value) {
	o.DefineOwn(name, dataDescriptor(v))
}

// SetHidden installs a non-enumerable data property (used for intrinsic
// methods so they don't show up in for-in/Object.keys).
func (o *Object) SetHidden(name string, v Value) {
	o.DefineOwn(name, &PropertyDescriptor{Value: v, Writable: true, Enumerable: false, Configurable: true})
}

// Delete removes an own property, honoring configurability.
func (o *Object) Delete(name string) bool {
	d, ok := o.props[name]
	if !ok {
		return true
	}
	if !d.Configurable {
		return false
	}
	delete(o.props, name)
	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// tryGetProperty walks the prototype chain with a cycle guard, the
// PropertyAccessor half of the host contract (spec.md §4.6), returning
// the resolved descriptor and the object it was found on (the receiver
// for getter `this` binding is handled by the caller, not here).
func (o *Object) tryGetProperty(name string) (*PropertyDescriptor, *Object) {
	seen := map[*Object]bool{}
	cur := o
	for cur != nil {
		if seen[cur] {
			return nil, nil
		}
		seen[cur] = true
		if d, ok := cur.getOwn(name); ok {
			return d, cur
		}
		cur = cur.Proto
	}
	return nil, nil
}

// HasProperty reports whether name resolves anywhere on the prototype
// chain (used for the `in` operator and `with` name lookups).
func (o *Object) HasProperty(name string) bool {
	d, _ := o.tryGetProperty(name)
	return d != nil
}

// Array is the dense-element array variant, backed by a slice with a
// sentinel Hole for sparse indices, plus an overlay object for non-index
// properties (spec.md §3).
type Array struct {
	Elements []Value // Hole{} marks a sparse slot
	Overlay  *Object
}

func (*Array) Type() string { return "object" }
func (a *Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, v := range a.Elements {
		if _, ok := v.(Hole); ok {
			parts[i] = ""
			continue
		}
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}

// Hole marks a sparse array slot; reading one yields Undefined.
type Hole struct{}

func (Hole) Type() string   { return "hole" }
func (Hole) String() string { return "" }

// NewArray creates an array of the given length, all slots holes.
func NewArray(length int) *Array {
	els := make([]Value, length)
	for i := range els {
		els[i] = Hole{}
	}
	return &Array{Elements: els, Overlay: NewObject(nil)}
}

// Get returns the element at i, or Undefined if out of range or a hole.
func (a *Array) Get(i int) Value {
	if i < 0 || i >= len(a.Elements) {
		return TheUndefined
	}
	if _, ok := a.Elements[i].(Hole); ok {
		return TheUndefined
	}
	return a.Elements[i]
}

// Set writes v at index i, growing (with holes) as needed.
func (a *Array) Set(i int, v Value) {
	if i < 0 {
		return
	}
	for i >= len(a.Elements) {
		a.Elements = append(a.Elements, Hole{})
	}
	a.Elements[i] = v
}

// SetLength truncates or extends (with holes) the backing slice to
// match JS `array.length = n` semantics.
func (a *Array) SetLength(n int) {
	if n < 0 {
		n = 0
	}
	if n <= len(a.Elements) {
		a.Elements = a.Elements[:n]
		return
	}
	for len(a.Elements) < n {
		a.Elements = append(a.Elements, Hole{})
	}
}

// SortedIndexKeys returns the array's populated (non-hole) indices in
// ascending order, for enumeration.
func (a *Array) SortedIndexKeys() []int {
	var out []int
	for i, v := range a.Elements {
		if _, ok := v.(Hole); !ok {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// ParamDescriptor describes one formal parameter: a binding target cell
// (identifier, ArrayPattern, or ObjectPattern), an optional default-value
// expression cell, and whether it's a rest parameter.
type ParamDescriptor struct {
	Target  any // *cell.Cell, stored as `any`
	Default any // *cell.Cell or nil
	Rest    bool
}

// Function is the shared function/closure value (spec.md §3): owns an
// optional name, parameter descriptors, body, captured closure
// environment, a property overlay (e.g. `prototype`), and optional
// super-binding for class methods.
type Function struct {
	Name       string
	Params     []*ParamDescriptor
	Body       any // *cell.Cell block, or nil for a Go-native builtin
	Closure    *Environment
	IsArrow    bool
	IsAsync    bool
	IsGenerator bool
	ThisVal    Value // not set or read by the evaluator

	SuperProto *Object // prototype walked by `super.x`
	SuperCtor  *Function

	Overlay *Object // carries `.prototype` and static members; `.name`/`.length` come from Name/Params

	// Native, when set, is a Go-implemented builtin invoked directly
	// instead of evaluating Body. Used by stdlib intrinsics and other host
	// callables built with Interpreter.NativeFn.
	Native func(args []Value, this Value) (Value, error)
}

func (*Function) Type() string { return "function" }
func (f *Function) String() string {
	name := f.Name
	if name == "" {
		name = "anonymous"
	}
	return "function " + name + "() { [native code] }"
}

// RegExp is the shared RegExp value; the actual matching engine lives in
// the stdlib layer (regexp2-backed), the kernel only needs the source
// and flags to implement literal evaluation and `typeof`.
type RegExp struct {
	Source string
	Flags  string
	Engine any // *regexp2.Regexp, set by stdlib
	Overlay *Object
}

func (*RegExp) Type() string     { return "object" }
func (r *RegExp) String() string { return "/" + r.Source + "/" + r.Flags }

// regexEnsureHook lazily compiles a RegExp literal's Engine and installs
// its .test/.exec/.toString overlay methods on first property access, so
// the kernel can construct bare RegExp literals (spec.md §4.1 "Regex
// literals") without depending on the regexp2-backed matching engine
// that lives in package stdlib (out of kernel scope per spec.md §1).
var regexEnsureHook func(*RegExp)

// SetRegexEnsureHook installs the stdlib layer's RegExp engine
// compilation as the callback property access on a RegExp value uses to
// lazily back it with a real matching engine. Called once from
// stdlib.Install.
func SetRegexEnsureHook(f func(*RegExp)) { regexEnsureHook = f }

func ensureRegexEngine(r *RegExp) {
	if r.Engine == nil && regexEnsureHook != nil {
		regexEnsureHook(r)
	}
}

// IsCallable reports whether v can appear as the callee of a Call node.
func IsCallable(v Value) bool {
	switch f := v.(type) {
	case *Function:
		return true
	case *Object:
		return f.Call != nil
	}
	return false
}

// ToNumber is the ToNumber abstract operation used by arithmetic and
// loose equality coercion (spec.md §4.3 "Operators").
func ToNumber(v Value) float64 {
	switch x := v.(type) {
	case Undefined:
		return math.NaN()
	case Null:
		return 0
	case Boolean:
		if x {
			return 1
		}
		return 0
	case Number:
		return float64(x)
	case String:
		s := strings.TrimSpace(string(x))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case BigInt:
		f := new(big.Float).SetInt(x.V)
		r, _ := f.Float64()
		return r
	default:
		return math.NaN()
	}
}

// ToBoolean is the truthiness ladder from spec.md §4.3.
func ToBoolean(v Value) bool {
	switch x := v.(type) {
	case Undefined:
		return false
	case Null:
		return false
	case Boolean:
		return bool(x)
	case Number:
		f := float64(x)
		return f != 0 && !math.IsNaN(f)
	case String:
		return len(x) != 0
	case BigInt:
		return x.V.Sign() != 0
	default:
		return true
	}
}

// ToPrimitiveString applies ToString for contexts like template literals
// and string concatenation; it does not attempt Symbol.toPrimitive for
// exotic objects beyond calling a user `toString` when present (`valueOf`
// is not consulted).
func ToPrimitiveString(v Value) string {
	switch x := v.(type) {
	case *Object:
		if d, owner := x.tryGetProperty("toString"); owner != nil && d != nil {
			if fn, ok := d.Value.(*Function); ok {
				if r, err := callFunctionValue(fn, nil, x); err == nil {
					return ToPrimitiveString(r)
				}
			}
		}
		return x.String()
	case *Array:
		parts := make([]string, len(x.Elements))
		for i, el := range x.Elements {
			if _, ok := el.(Hole); ok {
				parts[i] = ""
				continue
			}
			if _, isUndef := el.(Undefined); isUndef {
				parts[i] = ""
				continue
			}
			if _, isNull := el.(Null); isNull {
				parts[i] = ""
				continue
			}
			parts[i] = ToPrimitiveString(el)
		}
		return strings.Join(parts, ",")
	default:
		return v.String()
	}
}

// callFunctionValue is a small seam used by ToPrimitiveString (which has
// no *Interpreter) to invoke a user-defined toString; it is wired to the
// real Call implementation via SetFunctionCaller during interpreter
// construction.
var callFunctionValue = func(fn *Function, args []Value, this Value) (Value, error) {
	if fn.Native != nil {
		return fn.Native(args, this)
	}
	return TheUndefined, nil
}

// SetFunctionCaller installs the evaluator's Call implementation as the
// callback ToPrimitiveString uses to invoke user-defined toString
// methods. Called once from New.
func SetFunctionCaller(f func(fn *Function, args []Value, this Value) (Value, error)) {
	callFunctionValue = f
}
