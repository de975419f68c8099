// Package datasource provides bar series providers: an in-memory source
// for backtests and tests, a Binance klines client for live polling, and a
// CSV loader for offline data files.
package datasource

import (
	"context"

	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// DataSource fetches price bars for one instrument. Fetching is the only
// blocking operation in an evaluation pass; implementations must honor
// context cancellation.
type DataSource interface {
	// Bars returns up to limit most recent bars for the symbol and
	// timeframe. limit <= 0 means all available.
	Bars(ctx context.Context, symbol, timeframe string, limit int) (*types.BarSeries, error)
}

// Memory serves a fixed bar series. Used by backtests and tests.
type Memory struct {
	series map[string]*types.BarSeries
}

// NewMemory creates an empty in-memory source.
func NewMemory() *Memory {
	return &Memory{series: make(map[string]*types.BarSeries)}
}

// Add registers a bar series for a symbol.
func (m *Memory) Add(symbol string, bars *types.BarSeries) error {
	if err := bars.Validate(); err != nil {
		return err
	}

	m.series[symbol] = bars

	return nil
}

// Bars implements DataSource.
func (m *Memory) Bars(ctx context.Context, symbol, _ string, limit int) (*types.BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSource, "fetch cancelled", err)
	}

	bars, ok := m.series[symbol]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no bars for symbol %q", symbol)
	}

	if limit <= 0 || limit >= bars.Len() {
		return bars, nil
	}

	tail := &types.BarSeries{
		Timestamps: bars.Timestamps[bars.Len()-limit:],
		Open:       bars.Open[bars.Len()-limit:],
		High:       bars.High[bars.Len()-limit:],
		Low:        bars.Low[bars.Len()-limit:],
		Close:      bars.Close[bars.Len()-limit:],
		Volume:     bars.Volume[bars.Len()-limit:],
	}

	return tail, nil
}
