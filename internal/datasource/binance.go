package datasource

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"

	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// klineService is the slice of the Binance client the source uses,
// extracted so tests can stub it.
type klineService interface {
	Klines(ctx context.Context, symbol, interval string, limit int) ([]*binance.Kline, error)
}

// Binance fetches bars from the Binance klines endpoint.
type Binance struct {
	klines klineService
}

// NewBinance creates a Binance-backed data source. Public market data
// needs no credentials; pass empty strings in that case.
func NewBinance(apiKey, secretKey string) *Binance {
	return &Binance{
		klines: &binanceKlines{client: binance.NewClient(apiKey, secretKey)},
	}
}

// Bars implements DataSource.
func (b *Binance) Bars(ctx context.Context, symbol, timeframe string, limit int) (*types.BarSeries, error) {
	if limit <= 0 {
		limit = 500
	}

	klines, err := b.klines.Klines(ctx, symbol, timeframe, limit)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSource, err, "fetching %s %s klines", symbol, timeframe)
	}

	bars := &types.BarSeries{}

	for _, k := range klines {
		open, err := parsePrice(k.Open)
		if err != nil {
			return nil, err
		}

		high, err := parsePrice(k.High)
		if err != nil {
			return nil, err
		}

		low, err := parsePrice(k.Low)
		if err != nil {
			return nil, err
		}

		closePrice, err := parsePrice(k.Close)
		if err != nil {
			return nil, err
		}

		volume, err := parsePrice(k.Volume)
		if err != nil {
			return nil, err
		}

		bars.Timestamps = append(bars.Timestamps, time.UnixMilli(k.OpenTime).UTC())
		bars.Open = append(bars.Open, open)
		bars.High = append(bars.High, high)
		bars.Low = append(bars.Low, low)
		bars.Close = append(bars.Close, closePrice)
		bars.Volume = append(bars.Volume, volume)
	}

	if err := bars.Validate(); err != nil {
		return nil, err
	}

	return bars, nil
}

func parsePrice(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeDataSource, err, "malformed kline field %q", s)
	}

	return v, nil
}

type binanceKlines struct {
	client *binance.Client
}

func (b *binanceKlines) Klines(ctx context.Context, symbol, interval string, limit int) ([]*binance.Kline, error) {
	return b.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
}
