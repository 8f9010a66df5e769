package pipeline

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundMode selects how a continuous score is presented.
type RoundMode int

const (
	RoundNone RoundMode = iota
	// RoundInteger rounds half to even, the convention the models were
	// validated against.
	RoundInteger
	// RoundPlaces rounds half to even at a fixed number of decimal places.
	RoundPlaces
)

func roundHalfEven(x float64) float64 {
	return math.RoundToEven(x)
}

// RoundTo rounds x to places decimal places with banker's rounding.
func RoundTo(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).RoundBank(places).InexactFloat64()
}

func applyRounding(x float64, mode RoundMode, places int32) float64 {
	switch mode {
	case RoundInteger:
		return roundHalfEven(x)
	case RoundPlaces:
		return RoundTo(x, places)
	default:
		return x
	}
}
