package indicator

import (
	"github.com/flowquant-lab/flowquant/internal/types"
)

// VWAP computes the cumulative volume-weighted average price using the
// typical price (high+low+close)/3. Entries where the cumulative volume is
// still zero are undefined.
func VWAP(highs, lows, closes, volumes []float64) []float64 {
	n := len(closes)

	out := types.UndefinedSeries(n)
	if len(highs) != n || len(lows) != n || len(volumes) != n {
		return out
	}

	var cumPV, cumVolume float64

	for i := 0; i < n; i++ {
		typical := (highs[i] + lows[i] + closes[i]) / 3
		cumPV += typical * volumes[i]
		cumVolume += volumes[i]

		if cumVolume > 0 {
			out[i] = cumPV / cumVolume
		}
	}

	return out
}
