package indicator

import (
	"github.com/flowquant-lab/flowquant/internal/types"
)

// VolumeSpike computes the ratio of each bar's volume to the simple average
// of the preceding period volumes. Entries without a full trailing window
// (indices before period) are undefined, as are entries whose trailing
// average is zero. Callers compare the ratio against a spike multiplier.
func VolumeSpike(volumes []float64, period int) []float64 {
	n := len(volumes)

	out := types.UndefinedSeries(n)
	if period <= 0 || n < period+1 {
		return out
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += volumes[i]
	}

	for i := period; i < n; i++ {
		avg := sum / float64(period)
		if avg > 0 {
			out[i] = volumes[i] / avg
		}

		sum += volumes[i] - volumes[i-period]
	}

	return out
}
