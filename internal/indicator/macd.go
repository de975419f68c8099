package indicator

import (
	"github.com/flowquant-lab/flowquant/internal/types"
)

// MACD computes the Moving Average Convergence Divergence line, its signal
// line, and the histogram.
//
// The MACD line is EMA(fast) - EMA(slow), valid from index slow-1 onward.
// The signal line is an EMA over the valid MACD values, re-padded so it
// aligns with the full input series. The histogram is macd - signal
// wherever both are defined.
func MACD(values []float64, fast, slow, signalPeriod int) (macd, signal, histogram []float64) {
	n := len(values)
	macd = types.UndefinedSeries(n)
	signal = types.UndefinedSeries(n)
	histogram = types.UndefinedSeries(n)

	if fast <= 0 || slow <= 0 || signalPeriod <= 0 || n < slow {
		return macd, signal, histogram
	}

	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)

	for i := slow - 1; i < n; i++ {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	valid, offset := definedValues(macd)

	signalValid := EMA(valid, signalPeriod)
	for i, v := range signalValid {
		if !types.IsUndefined(v) {
			signal[offset+i] = v
		}
	}

	for i := 0; i < n; i++ {
		if !types.IsUndefined(macd[i]) && !types.IsUndefined(signal[i]) {
			histogram[i] = macd[i] - signal[i]
		}
	}

	return macd, signal, histogram
}
