package types

import (
	"math"
	"time"

	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// Undefined returns the marker value used for series entries that do not
// have enough history to be computed yet.
func Undefined() float64 {
	return math.NaN()
}

// IsUndefined reports whether a series entry is the undefined marker.
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}

// UndefinedSeries returns a series of length n where every entry is undefined.
func UndefinedSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = Undefined()
	}

	return s
}

// Bar is a single OHLCV observation.
type Bar struct {
	Time   time.Time `yaml:"time" json:"time"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume float64   `yaml:"volume" json:"volume"`
}

// BarSeries holds a price/volume history as aligned arrays of equal length
// with monotonically increasing timestamps. Indicator math assumes 1-based
// lookback windows over this layout.
type BarSeries struct {
	Timestamps []time.Time `yaml:"timestamps" json:"timestamps"`
	Open       []float64   `yaml:"open" json:"open"`
	High       []float64   `yaml:"high" json:"high"`
	Low        []float64   `yaml:"low" json:"low"`
	Close      []float64   `yaml:"close" json:"close"`
	Volume     []float64   `yaml:"volume" json:"volume"`
}

// Len returns the number of bars in the series.
func (s *BarSeries) Len() int {
	return len(s.Timestamps)
}

// Validate checks that all arrays are aligned and timestamps are strictly
// increasing.
func (s *BarSeries) Validate() error {
	n := len(s.Timestamps)
	if len(s.Open) != n || len(s.High) != n || len(s.Low) != n || len(s.Close) != n || len(s.Volume) != n {
		return errors.Newf(errors.ErrCodeDataMisaligned,
			"bar series arrays are misaligned: timestamps=%d open=%d high=%d low=%d close=%d volume=%d",
			n, len(s.Open), len(s.High), len(s.Low), len(s.Close), len(s.Volume))
	}

	for i := 1; i < n; i++ {
		if !s.Timestamps[i].After(s.Timestamps[i-1]) {
			return errors.Newf(errors.ErrCodeInvalidSeries,
				"timestamps not strictly increasing at index %d", i)
		}
	}

	return nil
}

// Bar returns the bar at index i.
func (s *BarSeries) Bar(i int) Bar {
	return Bar{
		Time:   s.Timestamps[i],
		Open:   s.Open[i],
		High:   s.High[i],
		Low:    s.Low[i],
		Close:  s.Close[i],
		Volume: s.Volume[i],
	}
}

// Prefix returns the series truncated to its first n bars. The backing
// arrays are shared; callers must not mutate the result.
func (s *BarSeries) Prefix(n int) BarSeries {
	if n > s.Len() {
		n = s.Len()
	}

	return BarSeries{
		Timestamps: s.Timestamps[:n],
		Open:       s.Open[:n],
		High:       s.High[:n],
		Low:        s.Low[:n],
		Close:      s.Close[:n],
		Volume:     s.Volume[:n],
	}
}
