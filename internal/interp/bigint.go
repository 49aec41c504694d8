package interp

import "github.com/shopspring/decimal"

// compareBigIntMixed compares a BigInt against a Number exactly (spec.md
// §4.3 "mixing BigInt with Number in <,<=,>,>= is allowed and compares
// by value"). ToNumber(BigInt) round-trips through float64 and loses
// precision past 2^53, so a BigInt large enough to matter could compare
// equal to a Number it isn't; decimal.Decimal carries the BigInt's full
// precision through the comparison instead.
func compareBigIntMixed(b BigInt, n float64) int {
	bd := decimal.NewFromBigInt(b.V, 0)
	nd := decimal.NewFromFloat(n)
	return bd.Cmp(nd)
}
