package indicator

import (
	"math"

	"github.com/flowquant-lab/flowquant/internal/types"
)

// ATR computes the Average True Range.
//
// True range is max(high-low, |high-prevClose|, |low-prevClose|); for the
// first bar it is high-low. The value at index period-1 seeds as the simple
// average of the first period true ranges, then Wilder smoothing applies:
//
//	atr[i] = (atr[i-1]*(period-1) + TR[i]) / period
func ATR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)

	out := types.UndefinedSeries(n)
	if period <= 0 || n < period || len(highs) != n || len(lows) != n {
		return out
	}

	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		if i == 0 {
			tr[i] = highs[i] - lows[i]
			continue
		}

		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += tr[i]
	}

	out[period-1] = seed / float64(period)

	for i := period; i < n; i++ {
		out[i] = (out[i-1]*float64(period-1) + tr[i]) / float64(period)
	}

	return out
}
