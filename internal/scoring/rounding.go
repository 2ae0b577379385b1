package scoring

import (
	"math"
	"math/big"
)

var (
	bigTen  = big.NewFloat(10)
	bigHalf = big.NewFloat(0.5)
)

// RoundOneDecimal rounds v to one decimal place. Ties are resolved away
// from zero on the exact binary value of v, so 0.25 becomes 0.3 while
// 0.35 (stored as 0.34999...) becomes 0.3.
func RoundOneDecimal(v float64) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	neg := v < 0
	f := new(big.Float).SetPrec(256).SetFloat64(math.Abs(v))
	f.Mul(f, bigTen)
	f.Add(f, bigHalf)
	tenths, _ := f.Int(nil)

	r, _ := new(big.Float).SetInt(tenths).Float64()
	r /= 10
	if neg {
		return -r
	}
	return r
}

// roundHalfUp rounds percentages and means to one decimal in plain float
// arithmetic.
func roundHalfUp(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
