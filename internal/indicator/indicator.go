// Package indicator implements the stateless series computations used by
// strategy graph blocks.
//
// Every function takes one or more equal-length numeric series plus
// parameters and returns series of identical length, front-padded with the
// undefined marker where insufficient history exists. Functions never fail
// on short input; they return an all-undefined series instead. Validating
// parameters and the presence of required inputs is the block layer's job.
package indicator

import (
	"github.com/flowquant-lab/flowquant/internal/types"
)

// SMA computes the simple moving average over the given period. Entries
// before index period-1 are undefined.
func SMA(values []float64, period int) []float64 {
	out := types.UndefinedSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}

		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}

	return out
}

// EMA computes the exponential moving average. The value at index period-1
// seeds as the simple average of the first period entries; subsequent
// entries use multiplier 2/(period+1):
//
//	v[i] = values[i]*m + v[i-1]*(1-m)
//
// Entries before index period-1 are undefined.
func EMA(values []float64, period int) []float64 {
	out := types.UndefinedSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}

	seed /= float64(period)
	out[period-1] = seed

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = values[i]*multiplier + out[i-1]*(1-multiplier)
	}

	return out
}

// definedValues returns the defined suffix of a front-padded series along
// with the index of its first defined entry.
func definedValues(series []float64) ([]float64, int) {
	for i, v := range series {
		if !types.IsUndefined(v) {
			return series[i:], i
		}
	}

	return nil, len(series)
}
