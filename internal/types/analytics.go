package types

import "time"

// EquityPoint is one entry of the compounded equity curve, recorded per
// closed trade (or per evaluation pass in live mode).
type EquityPoint struct {
	Timestamp   time.Time `yaml:"timestamp" json:"timestamp"`
	Equity      float64   `yaml:"equity" json:"equity"`
	DrawdownPct float64   `yaml:"drawdown_pct" json:"drawdown_pct"`
}

// TradeHoldingTime contains holding time statistics in seconds.
type TradeHoldingTime struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
	Avg int `yaml:"avg" json:"avg"`
}

// Metrics aggregates trading performance over an ordered trade list. All
// reductions tolerate zero trades and report the neutral zero value.
type Metrics struct {
	TotalTrades   int `yaml:"total_trades" json:"total_trades"`
	WinningTrades int `yaml:"winning_trades" json:"winning_trades"`
	LosingTrades  int `yaml:"losing_trades" json:"losing_trades"`
	// WinRate is in percent, always within [0,100].
	WinRate     float64 `yaml:"win_rate" json:"win_rate"`
	GrossProfit float64 `yaml:"gross_profit" json:"gross_profit"`
	GrossLoss   float64 `yaml:"gross_loss" json:"gross_loss"`
	NetProfit   float64 `yaml:"net_profit" json:"net_profit"`
	// ProfitFactor is grossProfit / |grossLoss|; zero when there are no
	// winning trades and at least one losing trade.
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`
	AvgWin       float64 `yaml:"avg_win" json:"avg_win"`
	AvgLoss      float64 `yaml:"avg_loss" json:"avg_loss"`
	// Expectancy is winRate*avgWin - lossRate*avgLoss, rates as fractions.
	Expectancy     float64 `yaml:"expectancy" json:"expectancy"`
	Sharpe         float64 `yaml:"sharpe" json:"sharpe"`
	Sortino        float64 `yaml:"sortino" json:"sortino"`
	Calmar         float64 `yaml:"calmar" json:"calmar"`
	TotalReturnPct float64 `yaml:"total_return_pct" json:"total_return_pct"`
	MaxDrawdownPct float64 `yaml:"max_drawdown_pct" json:"max_drawdown_pct"`
	// MaxConsecutiveWins/Losses are the longest win and loss streaks.
	MaxConsecutiveWins   int `yaml:"max_consecutive_wins" json:"max_consecutive_wins"`
	MaxConsecutiveLosses int `yaml:"max_consecutive_losses" json:"max_consecutive_losses"`
	// MAEMFERatio is mean(MAE)/mean(MFE) over trades that tracked excursions.
	MAEMFERatio float64 `yaml:"mae_mfe_ratio" json:"mae_mfe_ratio"`
	// ExitEfficiency is netProfit/MFE averaged over winning trades.
	ExitEfficiency float64          `yaml:"exit_efficiency" json:"exit_efficiency"`
	HoldingTime    TradeHoldingTime `yaml:"holding_time" json:"holding_time"`
}
