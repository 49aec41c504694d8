package interp

// Host exposes the subset of kernel internals that package stdlib (the
// out-of-scope standard-library layer consuming the Callable/
// PropertyAccessor contracts of spec.md §4.6) needs in order to extend a
// Realm with Math/JSON/Promise/RegExp/localStorage without reaching into
// unexported evaluator state.

// CallFunction invokes fn (native or user-defined) the same way the
// evaluator's Call/New forms do, folding generator/async dispatch in.
// Host code uses this to run callbacks it was handed (Promise
// executors/reactions, RegExp replacer functions, Array.prototype
// callbacks passed from native code, ...).
func (i *Interpreter) CallFunction(fn *Function, args []Value, this Value) (Value, error) {
	return i.callFunction(fn, args, this)
}

// GetProperty/SetProperty expose the receiver-agnostic property
// resolution the evaluator's GetProperty/SetProperty AST forms use, so
// host objects can read/write through the same prototype-chain and
// getter/setter machinery user code observes.
func (i *Interpreter) GetProperty(v Value, key string) Value { return i.getProperty(v, key) }

func (i *Interpreter) SetProperty(v Value, key string, val Value) error {
	return i.setProperty(v, key, val, false)
}

// Iterate drains an iterable Value (Array, String, or a generator
// object; other objects are not iterable) into a Go slice, the same helper the evaluator uses for
// spread-arguments and for-of.
func (i *Interpreter) Iterate(v Value) ([]Value, error) { return i.iterate(v) }

// NativeFn wraps a Go closure as a callable *Function, with no
// user-visible parameter list, for installing host intrinsics.
func (i *Interpreter) NativeFn(fn func(args []Value, this Value) (Value, error)) *Function {
	return i.nativeFn(fn)
}

// NewResolvedPromise/NewRejectedPromise expose the kernel's minimal
// Promise machinery (the synchronous microtask-free shape described in
// async.go) so the stdlib Promise constructor and combinators
// (.resolve/.reject/.all/.race) can build on the same representation
// `await` understands instead of inventing a second one.
func (i *Interpreter) NewResolvedPromise(v Value) *Object { return i.newResolvedPromise(v) }
func (i *Interpreter) NewRejectedPromise(v Value) *Object { return i.newRejectedPromise(v) }

// IsPromise reports whether v is a Promise instance produced by this
// interpreter's Promise machinery.
func IsPromise(v Value) bool { return isPromise(v) }

// ThenPromise runs a Promise reaction (the body of .then/.catch) for
// host code. The stdlib combinators do not call it; they read settled
// state directly.
func (i *Interpreter) ThenPromise(p *Object, onFulfilled, onRejected *Function) Value {
	return i.runPromiseReaction(p, onFulfilled, onRejected)
}

// ErrKind classifies a Go error surfaced by CallFunction into one of the
// realm's intrinsic error-constructor names, for host code that wants to
// re-wrap a Go error as a thrown realm value via Realm.NewError.
func ErrKind(err error) string { return errKind(err) }
