package indicator

import (
	"github.com/flowquant-lab/flowquant/internal/types"
)

// Stochastic computes the stochastic oscillator %K and %D lines.
//
// %K[i] = (close[i] - lowestLow) / (highestHigh - lowestLow) * 100 over the
// trailing kPeriod window, defined from index kPeriod-1. When the window
// has zero range, %K is 50 (neutral). %D is the SMA of %K over dPeriod.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d []float64) {
	n := len(closes)
	k = types.UndefinedSeries(n)
	d = types.UndefinedSeries(n)

	if kPeriod <= 0 || dPeriod <= 0 || n < kPeriod || len(highs) != n || len(lows) != n {
		return k, d
	}

	for i := kPeriod - 1; i < n; i++ {
		highest := highs[i]
		lowest := lows[i]

		for j := i - kPeriod + 1; j <= i; j++ {
			if highs[j] > highest {
				highest = highs[j]
			}

			if lows[j] < lowest {
				lowest = lows[j]
			}
		}

		if highest == lowest {
			k[i] = 50
			continue
		}

		k[i] = (closes[i] - lowest) / (highest - lowest) * 100
	}

	kValid, offset := definedValues(k)

	dValid := SMA(kValid, dPeriod)
	for i, v := range dValid {
		if !types.IsUndefined(v) {
			d[offset+i] = v
		}
	}

	return k, d
}
