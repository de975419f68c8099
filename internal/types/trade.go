package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is a closed, realized position with computed P&L. Trades are
// immutable once created and appended to an append-only log.
type Trade struct {
	ID         string       `yaml:"id" json:"id"`
	StrategyID string       `yaml:"strategy_id" json:"strategy_id"`
	Direction  PositionSide `yaml:"direction" json:"direction"`
	Symbol     string       `yaml:"symbol" json:"symbol"`
	EntryTime  time.Time    `yaml:"entry_time" json:"entry_time"`
	EntryPrice float64      `yaml:"entry_price" json:"entry_price"`
	ExitTime   time.Time    `yaml:"exit_time" json:"exit_time"`
	ExitPrice  float64      `yaml:"exit_price" json:"exit_price"`
	GrossPnL   float64      `yaml:"gross_pnl" json:"gross_pnl"`
	NetPnL     float64      `yaml:"net_pnl" json:"net_pnl"`
	Fees       float64      `yaml:"fees" json:"fees"`
	// HoldingDuration is the time between entry and exit.
	HoldingDuration time.Duration `yaml:"holding_duration" json:"holding_duration"`
	Shares          float64       `yaml:"shares" json:"shares"`
	// MAE is the maximum adverse excursion: the worst unrealized P&L
	// reached during the trade's life. Zero when not tracked.
	MAE float64 `yaml:"mae,omitempty" json:"mae,omitempty"`
	// MFE is the maximum favorable excursion: the best unrealized P&L
	// reached during the trade's life. Zero when not tracked.
	MFE float64 `yaml:"mfe,omitempty" json:"mfe,omitempty"`
}

// GrossPnL computes the realized gross P&L for a closed exposure using
// decimal arithmetic: (exit-entry)*shares for longs, (entry-exit)*shares
// for shorts.
func GrossPnL(side PositionSide, entryPrice, exitPrice, shares float64) float64 {
	entry := decimal.NewFromFloat(entryPrice).Mul(decimal.NewFromFloat(shares))
	exit := decimal.NewFromFloat(exitPrice).Mul(decimal.NewFromFloat(shares))

	var result decimal.Decimal
	if side == PositionSideShort {
		result = entry.Sub(exit)
	} else {
		result = exit.Sub(entry)
	}

	pnl, _ := result.Float64()

	return pnl
}

// NetPct returns the trade's net P&L as a percentage of the entry notional.
// Used by the analytics engine when compounding the equity curve.
func (t *Trade) NetPct() float64 {
	notional := decimal.NewFromFloat(t.EntryPrice).Mul(decimal.NewFromFloat(t.Shares))
	if notional.IsZero() {
		return 0
	}

	pct := decimal.NewFromFloat(t.NetPnL).Div(notional).Mul(decimal.NewFromInt(100))
	result, _ := pct.Float64()

	return result
}

// IsWin reports whether the trade realized a positive net P&L.
func (t *Trade) IsWin() bool {
	return t.NetPnL > 0
}
