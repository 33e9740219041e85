package rounding

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds v half away from zero to 2 decimals, working on the shortest
// decimal representation of v so that 2.675 rounds to 2.68 as displayed.
func Round2(v float64) float64 {
	return RoundTo(v, 2)
}

// RoundTo rounds v half away from zero to the given number of decimals.
// NaN and infinities are returned unchanged.
func RoundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
