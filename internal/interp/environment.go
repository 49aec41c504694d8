package interp

import "fmt"

// maxEnvironmentDepth bounds the enclosing-scope chain length to detect
// runaway recursion (spec.md §3 invariant).
const maxEnvironmentDepth = 1000

// Binding is one slot in an Environment: a value plus the flags that
// govern reassignment and hoisting interaction (spec.md §3).
type Binding struct {
	Value Value

	Const                      bool
	Lexical                    bool // let/const vs var
	GlobalConstant             bool // intrinsics like NaN/undefined/Infinity
	BlocksFunctionScopeOverride bool
}

// Environment is a lexically scoped, case-sensitive symbol table (JS is
// case-sensitive, unlike the teacher's DWScript environment which uses a
// case-insensitive ident.Map — this is a deliberate divergence from the
// teacher's runtime.Environment).
type Environment struct {
	store map[string]*Binding
	outer *Environment

	IsFunctionScope bool
	Strict          bool
	WithObject      *Object // object-environment target for `with`

	depth int
}

// NewEnvironment creates a fresh root environment (no enclosing scope).
func NewEnvironment() *Environment {
	return &Environment{store: map[string]*Binding{}, IsFunctionScope: true}
}

// NewEnclosedEnvironment creates a child scope of outer.
func NewEnclosedEnvironment(outer *Environment, isFunctionScope bool) *Environment {
	return &Environment{
		store:           map[string]*Binding{},
		outer:           outer,
		IsFunctionScope: isFunctionScope,
		Strict:          outer.Strict,
		depth:           outer.depth + 1,
	}
}

func (e *Environment) Outer() *Environment { return e.outer }

// checkDepth reports a runaway recursion fault once the chain exceeds
// maxEnvironmentDepth.
func (e *Environment) checkDepth() error {
	if e.depth >= maxEnvironmentDepth {
		return fmt.Errorf("RangeError: maximum environment depth exceeded")
	}
	return nil
}

// Define introduces a new binding in this exact environment, without
// walking outward. Used by declarators and hoisting.
func (e *Environment) Define(name string, v Value, b Binding) {
	b.Value = v
	e.store[name] = &b
}

// Get resolves name by walking outward through enclosing scopes,
// consulting the with-object (if any) before the lexical store at each
// level, per the object-environment model in spec.md §9.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.outer {
		if env.WithObject != nil && env.WithObject.HasProperty(name) {
			d, owner := env.WithObject.tryGetProperty(name)
			return resolveDescriptorValue(d, owner, env.WithObject), true
		}
		if b, ok := env.store[name]; ok {
			return b.Value, true
		}
	}
	return TheUndefined, false
}

// GetBinding returns the Binding itself (for const/lexical checks) along
// with the defining environment, or nil if unresolved.
func (e *Environment) GetBinding(name string) (*Binding, *Environment) {
	for env := e; env != nil; env = env.outer {
		if b, ok := env.store[name]; ok {
			return b, env
		}
	}
	return nil, nil
}

// Has reports whether name resolves anywhere in the chain (ignoring
// with-objects, which is sufficient for the hoisting/redeclaration
// checks that use Has).
func (e *Environment) Has(name string) bool {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			return true
		}
	}
	return false
}

// HasLocal reports whether name is bound directly in this environment
// (not an enclosing one).
func (e *Environment) HasLocal(name string) bool {
	_, ok := e.store[name]
	return ok
}

// Assign walks outward looking for name's binding and assigns v to it,
// honoring const/global-constant rules. Returns an error value
// describing the JS error kind on failure (not a Go panic), since the
// evaluator converts these into thrown Throw signals.
func (e *Environment) Assign(name string, v Value) error {
	for env := e; env != nil; env = env.outer {
		if env.WithObject != nil && env.WithObject.HasProperty(name) {
			env.WithObject.Set(name, v)
			return nil
		}
		if b, ok := env.store[name]; ok {
			if b.Const {
				return fmt.Errorf("TypeError: Assignment to constant variable.")
			}
			if b.GlobalConstant {
				if env.Strict {
					return fmt.Errorf("TypeError: Assignment to constant variable.")
				}
				return nil // sloppy mode: silent no-op
			}
			b.Value = v
			return nil
		}
	}
	if e.Strict {
		return fmt.Errorf("ReferenceError: %s is not defined", name)
	}
	// Sloppy-mode implicit global.
	root := e
	for root.outer != nil {
		root = root.outer
	}
	root.Define(name, v, Binding{})
	return nil
}

// FunctionScope returns the nearest enclosing environment flagged as a
// function scope (the target for `var` hoisting).
func (e *Environment) FunctionScope() *Environment {
	env := e
	for env != nil && !env.IsFunctionScope {
		env = env.outer
	}
	if env == nil {
		return e
	}
	return env
}

func resolveDescriptorValue(d *PropertyDescriptor, owner, receiver *Object) Value {
	if d == nil {
		return TheUndefined
	}
	if d.Get != nil {
		if v, err := callFunctionValue(d.Get, nil, receiver); err == nil {
			return v
		}
	}
	return d.Value
}
