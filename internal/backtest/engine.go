// Package backtest runs strategy graphs bar-by-bar over historical series
// and wraps the runs in observable jobs.
package backtest

import (
	"context"

	"go.uber.org/zap"

	"github.com/flowquant-lab/flowquant/internal/analytics"
	"github.com/flowquant-lab/flowquant/internal/graph"
	"github.com/flowquant-lab/flowquant/internal/logger"
	"github.com/flowquant-lab/flowquant/internal/position"
	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// Engine replays a strategy over a bar series: one evaluation pass per bar
// prefix, signals applied to an isolated position tracker, analytics over
// the realized trades.
type Engine struct {
	evaluator *graph.Evaluator
	analytics *analytics.Engine
	logger    *logger.Logger
}

// NewEngine creates a backtest engine sharing one graph evaluator.
func NewEngine(evaluator *graph.Evaluator, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Engine{
		evaluator: evaluator,
		analytics: analytics.NewEngine(),
		logger:    log,
	}
}

// Run executes the backtest. The loop is strictly sequential: later bars
// depend on indicator state derived from earlier ones. progress, when
// non-nil, receives a monotonic percentage in [0,100]. A cancelled or
// failed run returns the partial result alongside the error; trades
// recorded before the failure are never discarded.
func (e *Engine) Run(
	ctx context.Context,
	def *types.StrategyDefinition,
	bars *types.BarSeries,
	cfg ExecutionConfig,
	progress func(pct float64),
) (*types.BacktestResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	if err := bars.Validate(); err != nil {
		return nil, err
	}

	if bars.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSeries, "empty bar series")
	}

	tracker := position.NewTracker(position.NewMemoryStore(), cfg.CommissionModel(), cfg.SlippagePct, e.logger)
	excursions := newExcursionTracker()

	result := func(errMsg string) *types.BacktestResult {
		trades := tracker.Trades()

		return &types.BacktestResult{
			Trades:        trades,
			Metrics:       e.analytics.Compute(trades),
			EquityCurve:   e.analytics.EquityCurve(trades),
			BuyAndHoldPnL: e.buyAndHold(bars, cfg),
			Error:         errMsg,
		}
	}

	total := bars.Len()

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			cancelErr := errors.Wrap(errors.ErrCodeJobCancelled, "backtest cancelled", err)
			return result(cancelErr.Error()), cancelErr
		}

		window := bars.Prefix(i)
		pass := e.evaluator.Evaluate(def, &window)

		if pass.Error != "" {
			// Structural failure: abort the run but keep recorded trades.
			runErr := errors.Newf(errors.ErrCodeBlockEvaluation, "pass failed at bar %d: %s", i-1, pass.Error)
			return result(runErr.Error()), runErr
		}

		price := bars.Close[i-1]
		at := bars.Timestamps[i-1]

		fill := position.Fill{
			StrategyID: cfg.StrategyID,
			Symbol:     cfg.Symbol,
			Timeframe:  cfg.Timeframe,
			Shares:     cfg.Shares(price),
			Price:      price,
			Time:       at,
		}
		fill.MAE, fill.MFE = excursions.current()

		trade, err := tracker.Apply(pass.FinalSignal, fill)
		if err != nil {
			runErr := errors.Wrapf(errors.ErrCodeBlockEvaluation, err, "applying signal at bar %d", i-1)
			return result(runErr.Error()), runErr
		}

		if trade != nil {
			excursions.reset()
		}

		if pos, open, _ := tracker.Position(cfg.StrategyID); open {
			excursions.observe(types.GrossPnL(pos.Side, pos.EntryPrice, price, pos.Shares))
		}

		if progress != nil {
			progress(float64(i) / float64(total) * 100)
		}
	}

	e.logger.Info("backtest completed",
		zap.String("strategy", cfg.StrategyID),
		zap.Int("bars", total),
		zap.Int("trades", len(tracker.Trades())))

	return result(""), nil
}

// buyAndHold is the benchmark P&L of holding one entry-sized long from the
// first to the last close.
func (e *Engine) buyAndHold(bars *types.BarSeries, cfg ExecutionConfig) float64 {
	if bars.Len() < 2 {
		return 0
	}

	first := bars.Close[0]
	last := bars.Close[bars.Len()-1]

	return types.GrossPnL(types.PositionSideLong, first, last, cfg.Shares(first))
}

// excursionTracker accumulates the worst and best unrealized P&L of the
// currently open position.
type excursionTracker struct {
	tracked  bool
	mae, mfe float64
}

func newExcursionTracker() *excursionTracker {
	return &excursionTracker{}
}

func (t *excursionTracker) observe(unrealized float64) {
	if !t.tracked {
		t.tracked = true
		t.mae, t.mfe = unrealized, unrealized

		return
	}

	if unrealized < t.mae {
		t.mae = unrealized
	}

	if unrealized > t.mfe {
		t.mfe = unrealized
	}
}

func (t *excursionTracker) current() (mae, mfe float64) {
	if !t.tracked {
		return 0, 0
	}

	return t.mae, t.mfe
}

func (t *excursionTracker) reset() {
	t.tracked = false
	t.mae, t.mfe = 0, 0
}
