// Package utils holds small numeric helpers shared by the CLI and report
// writers.
package utils

import (
	"github.com/shopspring/decimal"
)

// RoundTo rounds a value to the given number of decimal places using
// decimal arithmetic, avoiding float drift in displayed figures.
func RoundTo(value float64, places int32) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(places).Float64()
	return rounded
}

// ClampPct clamps a percentage into [0,100].
func ClampPct(value float64) float64 {
	if value < 0 {
		return 0
	}

	if value > 100 {
		return 100
	}

	return value
}
