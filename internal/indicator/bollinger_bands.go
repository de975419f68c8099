package indicator

import (
	"math"

	"github.com/flowquant-lab/flowquant/internal/types"
)

// BollingerBands computes the middle band (SMA), upper band, and lower band
// for the given period and standard deviation multiplier. Entries before
// index period-1 are undefined. The standard deviation is the population
// deviation over the window.
func BollingerBands(values []float64, period int, stdDevMult float64) (upper, middle, lower []float64) {
	n := len(values)
	upper = types.UndefinedSeries(n)
	middle = SMA(values, period)
	lower = types.UndefinedSeries(n)

	if period <= 0 || n < period {
		return upper, middle, lower
	}

	for i := period - 1; i < n; i++ {
		mean := middle[i]

		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}

		stdDev := math.Sqrt(variance / float64(period))
		upper[i] = mean + stdDevMult*stdDev
		lower[i] = mean - stdDevMult*stdDev
	}

	return upper, middle, lower
}
