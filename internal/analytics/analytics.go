// Package analytics computes performance metrics and the compounded equity
// curve from an ordered trade list. Every reduction is pure: same trades in,
// same metrics out.
package analytics

import (
	"math"
	"sort"

	"github.com/flowquant-lab/flowquant/internal/types"
)

// StartingEquity is the percentage-based equity base the curve compounds
// from.
const StartingEquity = 100.0

// Engine reduces trade lists to metrics. Stateless and safe for concurrent
// use.
type Engine struct{}

// NewEngine creates an analytics engine.
func NewEngine() *Engine {
	return &Engine{}
}

// EquityCurve replays trades in exit order, compounding each trade's net
// percentage return onto the running equity and tracking drawdown against
// the running peak.
func (e *Engine) EquityCurve(trades []types.Trade) []types.EquityPoint {
	ordered := sortByExit(trades)

	curve := make([]types.EquityPoint, 0, len(ordered))
	equity := StartingEquity
	peak := StartingEquity

	for _, t := range ordered {
		equity *= 1 + t.NetPct()/100

		if equity > peak {
			peak = equity
		}

		drawdown := 0.0
		if peak > 0 {
			drawdown = (peak - equity) / peak * 100
		}

		curve = append(curve, types.EquityPoint{
			Timestamp:   t.ExitTime,
			Equity:      equity,
			DrawdownPct: drawdown,
		})
	}

	return curve
}

// Compute reduces the trade list to the full metrics object. An empty list
// yields the neutral zero-valued metrics, never an error.
func (e *Engine) Compute(trades []types.Trade) types.Metrics {
	metrics := types.Metrics{}
	if len(trades) == 0 {
		return metrics
	}

	ordered := sortByExit(trades)
	returns := make([]float64, 0, len(ordered))

	var (
		winStreak, lossStreak   int
		sumMAE, sumMFE          float64
		excursions              int
		sumExitEff              float64
		winnersWithMFE          int
		minHold, maxHold, total int64
	)

	for i, t := range ordered {
		metrics.TotalTrades++
		metrics.NetProfit += t.NetPnL
		returns = append(returns, t.NetPct())

		if t.IsWin() {
			metrics.WinningTrades++
			metrics.GrossProfit += t.NetPnL
			winStreak++
			lossStreak = 0
		} else {
			metrics.LosingTrades++
			metrics.GrossLoss += t.NetPnL
			lossStreak++
			winStreak = 0
		}

		if winStreak > metrics.MaxConsecutiveWins {
			metrics.MaxConsecutiveWins = winStreak
		}

		if lossStreak > metrics.MaxConsecutiveLosses {
			metrics.MaxConsecutiveLosses = lossStreak
		}

		if t.MAE != 0 || t.MFE != 0 {
			sumMAE += math.Abs(t.MAE)
			sumMFE += t.MFE
			excursions++
		}

		if t.IsWin() && t.MFE > 0 {
			sumExitEff += t.NetPnL / t.MFE
			winnersWithMFE++
		}

		hold := int64(t.HoldingDuration.Seconds())
		if i == 0 || hold < minHold {
			minHold = hold
		}

		if hold > maxHold {
			maxHold = hold
		}

		total += hold
	}

	metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades) * 100

	if metrics.GrossLoss != 0 {
		metrics.ProfitFactor = metrics.GrossProfit / math.Abs(metrics.GrossLoss)
	} else if metrics.GrossProfit > 0 {
		// No losses: report the gross profit itself so the value stays
		// finite and serializable.
		metrics.ProfitFactor = metrics.GrossProfit
	}

	if metrics.WinningTrades > 0 {
		metrics.AvgWin = metrics.GrossProfit / float64(metrics.WinningTrades)
	}

	if metrics.LosingTrades > 0 {
		metrics.AvgLoss = math.Abs(metrics.GrossLoss) / float64(metrics.LosingTrades)
	}

	winRate := float64(metrics.WinningTrades) / float64(metrics.TotalTrades)
	metrics.Expectancy = winRate*metrics.AvgWin - (1-winRate)*metrics.AvgLoss

	metrics.Sharpe = sharpe(returns)
	metrics.Sortino = sortino(returns)

	curve := e.EquityCurve(ordered)
	final := curve[len(curve)-1].Equity
	metrics.TotalReturnPct = (final - StartingEquity) / StartingEquity * 100

	for _, p := range curve {
		if p.DrawdownPct > metrics.MaxDrawdownPct {
			metrics.MaxDrawdownPct = p.DrawdownPct
		}
	}

	if metrics.MaxDrawdownPct > 0 {
		metrics.Calmar = metrics.TotalReturnPct / metrics.MaxDrawdownPct
	}

	if sumMFE > 0 {
		metrics.MAEMFERatio = sumMAE / sumMFE
	}

	if winnersWithMFE > 0 {
		metrics.ExitEfficiency = sumExitEff / float64(winnersWithMFE)
	}

	metrics.HoldingTime = types.TradeHoldingTime{
		Min: int(minHold),
		Max: int(maxHold),
		Avg: int(total / int64(metrics.TotalTrades)),
	}

	return metrics
}

// sharpe is mean(returns)/stdev(returns). Zero when undefined.
func sharpe(returns []float64) float64 {
	mean, stdev := meanStdev(returns)
	if stdev == 0 {
		return 0
	}

	return mean / stdev
}

// sortino is mean(returns)/downside-deviation, penalizing only negative
// returns.
func sortino(returns []float64) float64 {
	mean, _ := meanStdev(returns)

	var downside float64

	for _, r := range returns {
		if r < 0 {
			downside += r * r
		}
	}

	if downside == 0 {
		return 0
	}

	deviation := math.Sqrt(downside / float64(len(returns)))

	return mean / deviation
}

func meanStdev(values []float64) (mean, stdev float64) {
	if len(values) == 0 {
		return 0, 0
	}

	for _, v := range values {
		mean += v
	}

	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}

	variance /= float64(len(values))

	return mean, math.Sqrt(variance)
}

// sortByExit returns the trades ordered by exit time without mutating the
// input.
func sortByExit(trades []types.Trade) []types.Trade {
	ordered := make([]types.Trade, len(trades))
	copy(ordered, trades)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExitTime.Before(ordered[j].ExitTime)
	})

	return ordered
}
