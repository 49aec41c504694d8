// Package stdlib implements the host standard-library surface the
// kernel consults but does not itself define (spec.md §1 "external
// collaborators"): Math, JSON, Promise, the RegExp matching engine, the
// Error constructors' realm wiring, console output, and a localStorage
// stub. Everything here is built against the Callable/PropertyAccessor
// contracts of spec.md §4.6 — it extends a *interp.Realm from the
// outside, never reaching into evaluator internals the kernel doesn't
// already export through internal/interp/host.go.
package stdlib

import "github.com/cellang/jsvm/internal/interp"

// Install extends i's realm with the full host surface. Called once by
// cmd/jsvm after constructing a fresh Interpreter, mirroring the
// teacher's pattern of a CLI entry point wiring intrinsics onto a fresh
// engine before running user code.
func Install(i *interp.Interpreter) {
	installConsole(i)
	installObject(i)
	installMath(i)
	installJSON(i)
	installPromise(i)
	installRegExp(i)
	installLocalStorage(i)
}

// argOrUndefined returns args[n], or Undefined if the call didn't supply
// that many arguments — the permissive arity spec.md §4.3 "Calls"
// requires of every callable, native ones included.
func argOrUndefined(args []interp.Value, n int) interp.Value {
	if n < len(args) {
		return args[n]
	}
	return interp.TheUndefined
}
