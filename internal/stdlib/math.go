package stdlib

import (
	"math"
	"math/rand"

	"github.com/cellang/jsvm/internal/interp"
)

// installMath defines the `Math` host object. No third-party library in
// the retrieval pack offers a JS-flavored math surface (NaN/Infinity
// propagation, ToNumber-coerced arguments) over Go's math package, so
// this stays on the standard library throughout.
func installMath(i *interp.Interpreter) {
	m := interp.NewObject(i.Realm.ObjectProto)
	m.Set("PI", interp.Number(math.Pi))
	m.Set("E", interp.Number(math.E))
	m.Set("LN2", interp.Number(math.Ln2))
	m.Set("LN10", interp.Number(math.Log(10)))
	m.Set("SQRT2", interp.Number(math.Sqrt2))

	unary := func(f func(float64) float64) *interp.Function {
		return i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
			return interp.Number(f(interp.ToNumber(argOrUndefined(args, 0)))), nil
		})
	}
	m.SetHidden("abs", unary(math.Abs))
	m.SetHidden("floor", unary(math.Floor))
	m.SetHidden("ceil", unary(math.Ceil))
	m.SetHidden("trunc", unary(math.Trunc))
	m.SetHidden("sqrt", unary(math.Sqrt))
	m.SetHidden("cbrt", unary(math.Cbrt))
	m.SetHidden("sin", unary(math.Sin))
	m.SetHidden("cos", unary(math.Cos))
	m.SetHidden("tan", unary(math.Tan))
	m.SetHidden("log", unary(math.Log))
	m.SetHidden("log2", unary(math.Log2))
	m.SetHidden("log10", unary(math.Log10))
	m.SetHidden("sign", unary(func(x float64) float64 {
		switch {
		case math.IsNaN(x):
			return math.NaN()
		case x > 0:
			return 1
		case x < 0:
			return -1
		default:
			return x
		}
	}))
	m.SetHidden("round", unary(func(x float64) float64 { return math.Floor(x + 0.5) }))

	m.SetHidden("pow", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		return interp.Number(math.Pow(interp.ToNumber(argOrUndefined(args, 0)), interp.ToNumber(argOrUndefined(args, 1)))), nil
	}))
	m.SetHidden("max", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		if len(args) == 0 {
			return interp.Number(math.Inf(-1)), nil
		}
		best := math.Inf(-1)
		for _, a := range args {
			n := interp.ToNumber(a)
			if math.IsNaN(n) {
				return interp.Number(math.NaN()), nil
			}
			if n > best {
				best = n
			}
		}
		return interp.Number(best), nil
	}))
	m.SetHidden("min", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		if len(args) == 0 {
			return interp.Number(math.Inf(1)), nil
		}
		best := math.Inf(1)
		for _, a := range args {
			n := interp.ToNumber(a)
			if math.IsNaN(n) {
				return interp.Number(math.NaN()), nil
			}
			if n < best {
				best = n
			}
		}
		return interp.Number(best), nil
	}))
	m.SetHidden("random", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		return interp.Number(rand.Float64()), nil
	}))

	i.Realm.Global.Define("Math", m, interp.Binding{})
}
