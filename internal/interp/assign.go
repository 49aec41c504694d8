package interp

import (
	"math"
	"math/big"
	"strings"

	"github.com/cellang/jsvm/internal/cell"
)

// evalAssign implements plain `=` assignment, delegating to assignPattern
// so array/object destructuring targets work the same as simple ones
// (spec.md §4.3 "Assignment").
func (i *Interpreter) evalAssign(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	target, rhsExpr := expr.Nth(0), expr.Nth(1)
	v := i.evalExpr(rhsExpr, env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	i.assignPattern(target, v, env, ctx)
	return v
}

// evalCompoundAssign implements `+=`/`-=`/... and the short-circuiting
// logical assignments `&&=`/`||=`/`??=` (spec.md §4.3 "Assignment"). The
// logical variants only evaluate and write the right-hand side when the
// current value doesn't already short-circuit.
func (i *Interpreter) evalCompoundAssign(expr *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	op := operatorName(expr.Nth(0))
	target, rhsExpr := expr.Nth(1), expr.Nth(2)

	switch op {
	case "&&=", "||=", "??=":
		cur := i.evalExpr(target, env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		shortCircuit := false
		switch op {
		case "&&=":
			shortCircuit = !ToBoolean(cur)
		case "||=":
			shortCircuit = ToBoolean(cur)
		case "??=":
			shortCircuit = !isNullish(cur)
		}
		if shortCircuit {
			return cur
		}
		v := i.evalExpr(rhsExpr, env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		i.assignPattern(target, v, env, ctx)
		return v
	}

	cur := i.evalExpr(target, env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	rhs := i.evalExpr(rhsExpr, env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	switch base := strings.TrimSuffix(op, "="); base {
	case "+", "-", "*", "/", "%", "**":
		_, lBig := cur.(BigInt)
		_, rBig := rhs.(BigInt)
		_, lStr := cur.(String)
		_, rStr := rhs.(String)
		_, lObj := cur.(*Object)
		_, rObj := rhs.(*Object)
		_, lArr := cur.(*Array)
		_, rArr := rhs.(*Array)
		if lBig != rBig && !(base == "+" && (lStr || rStr || lObj || rObj || lArr || rArr)) {
			ctx.throwError("TypeError", "Cannot mix BigInt and other types, use explicit conversions")
			return TheUndefined
		}
	}
	result := applyBinaryOp(strings.TrimSuffix(op, "="), cur, rhs)
	i.assignPattern(target, result, env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	return result
}

// applyBinaryOp is the arithmetic/bitwise half of evalBinary's operator
// ladder, reused here so `x += y` shares the exact same coercion rules
// as `x + y` without duplicating evalBinary's control flow.
func applyBinaryOp(op string, left, right Value) Value {
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
	}
	return TheUndefined
}
