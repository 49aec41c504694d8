package interp

import (
	"math"
	"math/big"

	"github.com/cellang/jsvm/internal/cell"
)

// evalBinary implements the arithmetic/bitwise/relational/equality
// operator ladder (spec.md §4.3 "Operators"). BigInt operands follow the
// host language's mixed-type restriction: BigInt only combines with
// BigInt for arithmetic, but compares freely against Number.
func (i *Interpreter) evalBinary(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	op := operatorName(expr.Nth(0))
	left := i.evalExpr(expr.Nth(1), env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}

	if op == "in" {
		right := i.evalExpr(expr.Nth(2), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		return Boolean(hasProperty(right, ToPrimitiveString(left)))
	}
	if op == "instanceof" {
		right := i.evalExpr(expr.Nth(2), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		ctor, ok := right.(*Function)
		if !ok {
			ctx.throwError("TypeError", "Right-hand side of 'instanceof' is not callable")
			return TheUndefined
		}
		return Boolean(InstanceOf(left, ctor))
	}

	right := i.evalExpr(expr.Nth(2), env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}

	switch op {
	case "+", "-", "*", "/", "%", "**":
		_, lBig := left.(BigInt)
		_, rBig := right.(BigInt)
		stringish := func(v Value) bool {
			switch v.(type) {
			case String, *Object, *Array:
				return true
			}
			return false
		}
		if lBig != rBig && !(op == "+" && (stringish(left) || stringish(right))) {
			ctx.throwError("TypeError", "Cannot mix BigInt and other types, use explicit conversions")
			return TheUndefined
		}
	}

	switch op {
	case "+":
		return evalAdd(left, right)
	case "-":
		return arith(left, right, func(a, b float64) float64 { return a - b }, func(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) })
	case "*":
		return arith(left, right, func(a, b float64) float64 { return a * b }, func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) })
	case "/":
		return arith(left, right, func(a, b float64) float64 { return a / b }, func(a, b *big.Int) *big.Int {
			if b.Sign() == 0 {
				return big.NewInt(0)
			}
			return new(big.Int).Quo(a, b)
		})
	case "%":
		return arith(left, right, math.Mod, func(a, b *big.Int) *big.Int {
			if b.Sign() == 0 {
				return big.NewInt(0)
			}
			return new(big.Int).Rem(a, b)
		})
	case "**":
		return arith(left, right, math.Pow, func(a, b *big.Int) *big.Int { return new(big.Int).Exp(a, b, nil) })
	case "&":
		return Number(float64(toInt32(ToNumber(left)) & toInt32(ToNumber(right))))
	case "|":
		return Number(float64(toInt32(ToNumber(left)) | toInt32(ToNumber(right))))
	case "^":
		return Number(float64(toInt32(ToNumber(left)) ^ toInt32(ToNumber(right))))
	case "<<":
		return Number(float64(toInt32(ToNumber(left)) << (toUint32(ToNumber(right)) & 31)))
	case ">>":
		return Number(float64(toInt32(ToNumber(left)) >> (toUint32(ToNumber(right)) & 31)))
	case ">>>":
		return Number(float64(toUint32(ToNumber(left)) >> (toUint32(ToNumber(right)) & 31)))
	case "<":
		return compareOp(left, right, func(c int) bool { return c < 0 }, false)
	case "<=":
		return compareOp(left, right, func(c int) bool { return c <= 0 }, false)
	case ">":
		return compareOp(left, right, func(c int) bool { return c > 0 }, false)
	case ">=":
		return compareOp(left, right, func(c int) bool { return c >= 0 }, false)
	case "==":
		return Boolean(looseEquals(left, right))
	case "!=":
		return Boolean(!looseEquals(left, right))
	case "===":
		return Boolean(strictEquals(left, right))
	case "!==":
		return Boolean(!strictEquals(left, right))
	}
	return TheUndefined
}

func evalAdd(left, right Value) Value {
	if lb, ok := left.(BigInt); ok {
		if rb, ok2 := right.(BigInt); ok2 {
			return NewBigInt(new(big.Int).Add(lb.V, rb.V))
		}
	}
	_, lIsObj := left.(*Object)
	_, lIsArr := left.(*Array)
	_, rIsObj := right.(*Object)
	_, rIsArr := right.(*Array)
	_, lStr := left.(String)
	_, rStr := right.(String)
	if lStr || rStr || lIsObj || lIsArr || rIsObj || rIsArr {
		return String(ToPrimitiveString(left) + ToPrimitiveString(right))
	}
	return Number(ToNumber(left) + ToNumber(right))
}

func arith(left, right Value, numFn func(a, b float64) float64, bigFn func(a, b *big.Int) *big.Int) Value {
	if lb, ok := left.(BigInt); ok {
		if rb, ok2 := right.(BigInt); ok2 {
			return NewBigInt(bigFn(lb.V, rb.V))
		}
	}
	return Number(numFn(ToNumber(left), ToNumber(right)))
}

// compareOp implements relational comparison, including the string
// lexicographic branch when both operands are strings without numeric
// coercion (spec.md §4.3).
func compareOp(left, right Value, test func(int) bool, _ bool) Value {
	ls, lIsStr := left.(String)
	rs, rIsStr := right.(String)
	if lIsStr && rIsStr {
		switch {
		case ls < rs:
			return Boolean(test(-1))
		case ls > rs:
			return Boolean(test(1))
		default:
			return Boolean(test(0))
		}
	}
	if lb, ok := left.(BigInt); ok {
		if rb, ok2 := right.(BigInt); ok2 {
			return Boolean(test(lb.V.Cmp(rb.V)))
		}
		rf := ToNumber(right)
		if math.IsNaN(rf) {
			return Boolean(false)
		}
		return Boolean(test(compareBigIntMixed(lb, rf)))
	}
	if rb, ok := right.(BigInt); ok {
		lf := ToNumber(left)
		if math.IsNaN(lf) {
			return Boolean(false)
		}
		return Boolean(test(-compareBigIntMixed(rb, lf)))
	}

	lf, rf := ToNumber(left), ToNumber(right)
	if math.IsNaN(lf) || math.IsNaN(rf) {
		return Boolean(false)
	}
	switch {
	case lf < rf:
		return Boolean(test(-1))
	case lf > rf:
		return Boolean(test(1))
	default:
		return Boolean(test(0))
	}
}

// strictEquals implements === (spec.md §4.3): same type, same value, no
// coercion; objects/arrays/functions compare by identity.
func strictEquals(a, b Value) bool {
	switch x := a.(type) {
	case Undefined:
		_, ok := b.(Undefined)
		return ok
	case Null:
		_, ok := b.(Null)
		return ok
	case Boolean:
		y, ok := b.(Boolean)
		return ok && x == y
	case Number:
		y, ok := b.(Number)
		return ok && float64(x) == float64(y)
	case BigInt:
		y, ok := b.(BigInt)
		return ok && x.V.Cmp(y.V) == 0
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Symbol:
		y, ok := b.(Symbol)
		return ok && x.id == y.id
	case *Object:
		y, ok := b.(*Object)
		return ok && x == y
	case *Array:
		y, ok := b.(*Array)
		return ok && x == y
	case *Function:
		y, ok := b.(*Function)
		return ok && x == y
	case *RegExp:
		y, ok := b.(*RegExp)
		return ok && x == y
	}
	return false
}

// looseEquals implements the == coercion ladder (spec.md §4.3):
// null/undefined equate only to each other, number/string/boolean
// coerce to number, objects compare to primitives via ToPrimitiveString.
func looseEquals(a, b Value) bool {
	if strictEquals(a, b) {
		return true
	}
	aNullish, bNullish := isNullish(a), isNullish(b)
	if aNullish || bNullish {
		return aNullish && bNullish
	}
	_, aIsObj := a.(*Object)
	_, aIsArr := a.(*Array)
	_, bIsObj := b.(*Object)
	_, bIsArr := b.(*Array)
	if aIsObj || aIsArr {
		return looseEquals(String(ToPrimitiveString(a)), b)
	}
	if bIsObj || bIsArr {
		return looseEquals(a, String(ToPrimitiveString(b)))
	}
	if ab, ok := a.(BigInt); ok {
		if bb, ok2 := b.(BigInt); ok2 {
			return ab.V.Cmp(bb.V) == 0
		}
		return ToNumber(String(ab.String())) == ToNumber(b)
	}
	return ToNumber(a) == ToNumber(b)
}

func hasProperty(v Value, key string) bool {
	switch x := v.(type) {
	case *Object:
		return x.HasProperty(key)
	case *Array:
		if key == "length" {
			return true
		}
		if n, ok := indexOf(String(key)); ok {
			return n >= 0 && n < len(x.Elements)
		}
		return x.Overlay.HasProperty(key)
	case *Function:
		return x.Overlay != nil && x.Overlay.HasProperty(key)
	}
	return false
}
