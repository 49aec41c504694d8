package stdlib

import (
	"fmt"

	"github.com/cellang/jsvm/internal/interp"
)

// installPromise defines the `Promise` constructor and its static
// combinators on top of the kernel's minimal settled-Promise
// representation (internal/interp/async.go), the one the evaluator's
// `await` already understands. Because this kernel has no timer or
// microtask source (spec.md §5), every combinator here resolves
// synchronously against whatever state its input promises are already
// in by the time it runs — there is no pending-to-settled transition
// happening later on its own.
func installPromise(i *interp.Interpreter) {
	realm := i.Realm
	proto := interp.NewObject(realm.ObjectProto)
	ctor := &interp.Function{
		Name:    "Promise",
		Overlay: interp.NewObject(realm.FunctionProto),
		Native: func(args []interp.Value, _ interp.Value) (interp.Value, error) {
			executor, _ := argOrUndefined(args, 0).(*interp.Function)
			if executor == nil {
				return nil, fmt.Errorf("TypeError: Promise resolver is not a function")
			}
			promise, resolve, reject := i.NewPendingPromise()
			resolveFn := i.NativeFn(func(a []interp.Value, _ interp.Value) (interp.Value, error) {
				resolve(argOrUndefined(a, 0))
				return interp.TheUndefined, nil
			})
			rejectFn := i.NativeFn(func(a []interp.Value, _ interp.Value) (interp.Value, error) {
				reject(argOrUndefined(a, 0))
				return interp.TheUndefined, nil
			})
			if _, err := i.CallFunction(executor, []interp.Value{resolveFn, rejectFn}, interp.TheUndefined); err != nil {
				reject(errorToValue(i, err))
			}
			return promise, nil
		},
	}
	ctor.Overlay.Set("prototype", proto)
	proto.SetHidden("constructor", ctor)

	ctor.Overlay.SetHidden("resolve", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		v := argOrUndefined(args, 0)
		if interp.IsPromise(v) {
			return v, nil
		}
		return i.NewResolvedPromise(v), nil
	}))
	ctor.Overlay.SetHidden("reject", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		return i.NewRejectedPromise(argOrUndefined(args, 0)), nil
	}))
	ctor.Overlay.SetHidden("all", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		items, err := i.Iterate(argOrUndefined(args, 0))
		if err != nil {
			return nil, fmt.Errorf("TypeError: %v", err)
		}
		results := make([]interp.Value, len(items))
		for idx, item := range items {
			val, rejected, rejection := settledValue(item, i)
			if rejected {
				return i.NewRejectedPromise(rejection), nil
			}
			results[idx] = val
		}
		return i.NewResolvedPromise(&interp.Array{Elements: results, Overlay: interp.NewObject(nil)}), nil
	}))
	ctor.Overlay.SetHidden("allSettled", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		items, err := i.Iterate(argOrUndefined(args, 0))
		if err != nil {
			return nil, fmt.Errorf("TypeError: %v", err)
		}
		results := make([]interp.Value, len(items))
		for idx, item := range items {
			val, rejected, rejection := settledValue(item, i)
			entry := interp.NewObject(realm.ObjectProto)
			if rejected {
				entry.Set("status", interp.String("rejected"))
				entry.Set("reason", rejection)
			} else {
				entry.Set("status", interp.String("fulfilled"))
				entry.Set("value", val)
			}
			results[idx] = entry
		}
		return i.NewResolvedPromise(&interp.Array{Elements: results, Overlay: interp.NewObject(nil)}), nil
	}))
	ctor.Overlay.SetHidden("race", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		items, err := i.Iterate(argOrUndefined(args, 0))
		if err != nil || len(items) == 0 {
			pending, _, _ := i.NewPendingPromise()
			return pending, nil
		}
		val, rejected, rejection := settledValue(items[0], i)
		if rejected {
			return i.NewRejectedPromise(rejection), nil
		}
		return i.NewResolvedPromise(val), nil
	}))

	realm.Global.Define("Promise", ctor, interp.Binding{})
}

// settledValue unwraps item (a Promise or a plain value) into its
// eventual value, reporting whether it ended up rejected.
func settledValue(item interp.Value, i *interp.Interpreter) (value interp.Value, rejected bool, rejection interp.Value) {
	if !interp.IsPromise(item) {
		return item, false, nil
	}
	obj := item.(*interp.Object)
	state, _ := obj.Internal["state"].(string)
	v, _ := obj.Internal["value"].(interp.Value)
	if v == nil {
		v = interp.TheUndefined
	}
	if state == "rejected" {
		return nil, true, v
	}
	return v, false, nil
}

// errorToValue converts a Go error raised by CallFunction (a thrown
// realm value, or a "Kind: message" formatted host error) into a realm
// value suitable for rejecting a Promise with.
func errorToValue(i *interp.Interpreter, err error) interp.Value {
	if te, ok := err.(*interp.ThrownError); ok {
		return te.Value
	}
	return i.Realm.NewError(interp.ErrKind(err), err.Error())
}
