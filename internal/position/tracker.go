// Package position implements the per-strategy position state machine and
// the append-only trade log.
package position

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flowquant-lab/flowquant/internal/logger"
	"github.com/flowquant-lab/flowquant/internal/position/commission"
	"github.com/flowquant-lab/flowquant/internal/types"
)

// Fill carries the execution context for applying one signal: which
// strategy, what instrument, and at what price and time the transition
// fills.
type Fill struct {
	StrategyID string
	Symbol     string
	Timeframe  string
	Shares     float64
	Price      float64
	Time       time.Time
	// MAE and MFE are the excursions observed for the position being
	// closed, when the caller tracked them. Zero otherwise.
	MAE float64
	MFE float64
}

// Tracker applies signals to per-strategy positions. Transitions commit
// atomically per strategy key: concurrent strategies never observe or
// mutate each other's position.
type Tracker struct {
	store        Store
	commission   commission.Model
	slippageRate decimal.Decimal
	logger       *logger.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	tradesMu sync.RWMutex
	trades   []types.Trade
	sink     func(types.Trade)
}

// NewTracker creates a tracker over the given position store. slippagePct
// is the per-fill slippage in percent of notional, charged at both entry
// and exit.
func NewTracker(store Store, model commission.Model, slippagePct float64, log *logger.Logger) *Tracker {
	if model == nil {
		model = commission.NewZero()
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Tracker{
		store:        store,
		commission:   model,
		slippageRate: decimal.NewFromFloat(slippagePct).Div(decimal.NewFromInt(100)),
		logger:       log,
		locks:        make(map[string]*sync.Mutex),
	}
}

// OnTrade registers a callback invoked for every trade appended to the
// log, e.g. to persist it. Must be set before the tracker is used.
func (t *Tracker) OnTrade(sink func(types.Trade)) {
	t.sink = sink
}

// Apply runs one transition of the state machine for the fill's strategy.
// It returns the realized trade when the transition closed a position, nil
// otherwise. The transition table:
//
//	FLAT  + BUY  -> open LONG        FLAT  + SELL -> open SHORT
//	LONG  + SELL -> close, open SHORT (reversal)
//	LONG  + HOLD -> close, go FLAT   LONG  + BUY  -> no-op
//	SHORT + BUY  -> close, open LONG (reversal)
//	SHORT + HOLD -> close, go FLAT   SHORT + SELL -> no-op
func (t *Tracker) Apply(signal types.Signal, fill Fill) (*types.Trade, error) {
	lock := t.lockFor(fill.StrategyID)
	lock.Lock()
	defer lock.Unlock()

	current, open, err := t.store.Get(fill.StrategyID)
	if err != nil {
		return nil, err
	}

	if !open {
		switch signal {
		case types.SignalBuy:
			return nil, t.open(types.PositionSideLong, fill)
		case types.SignalSell:
			return nil, t.open(types.PositionSideShort, fill)
		default:
			return nil, nil
		}
	}

	// Same-direction signals keep the exposure untouched.
	if (current.Side == types.PositionSideLong && signal == types.SignalBuy) ||
		(current.Side == types.PositionSideShort && signal == types.SignalSell) {
		return nil, nil
	}

	trade, closed, err := t.close(current, fill)
	if err != nil || !closed {
		return trade, err
	}

	// Opposite signal reverses: the close fill doubles as the new entry.
	switch {
	case current.Side == types.PositionSideLong && signal == types.SignalSell:
		err = t.open(types.PositionSideShort, fill)
	case current.Side == types.PositionSideShort && signal == types.SignalBuy:
		err = t.open(types.PositionSideLong, fill)
	}

	return trade, err
}

// Position returns the open position for a strategy, if any.
func (t *Tracker) Position(strategyID string) (types.Position, bool, error) {
	return t.store.Get(strategyID)
}

// Trades returns a snapshot of the append-only trade log.
func (t *Tracker) Trades() []types.Trade {
	t.tradesMu.RLock()
	defer t.tradesMu.RUnlock()

	out := make([]types.Trade, len(t.trades))
	copy(out, t.trades)

	return out
}

// TradesFor returns the recorded trades of one strategy, in close order.
func (t *Tracker) TradesFor(strategyID string) []types.Trade {
	t.tradesMu.RLock()
	defer t.tradesMu.RUnlock()

	out := make([]types.Trade, 0)

	for _, trade := range t.trades {
		if trade.StrategyID == strategyID {
			out = append(out, trade)
		}
	}

	return out
}

func (t *Tracker) open(side types.PositionSide, fill Fill) error {
	pos := types.Position{
		StrategyID: fill.StrategyID,
		Side:       side,
		EntryTime:  fill.Time,
		EntryPrice: fill.Price,
		Symbol:     fill.Symbol,
		Timeframe:  fill.Timeframe,
		Shares:     fill.Shares,
	}

	t.logger.Info("opening position",
		zap.String("strategy", fill.StrategyID),
		zap.String("side", string(side)),
		zap.Float64("price", fill.Price),
		zap.Float64("shares", fill.Shares))

	return t.store.Set(pos)
}

// close realizes the position into a trade and removes it from the store.
// closed is false when the consistency guard rejected the attempt.
func (t *Tracker) close(pos types.Position, fill Fill) (*types.Trade, bool, error) {
	if pos.StrategyID != fill.StrategyID {
		// Never close an exposure the caller does not own. Logged, not an
		// error, and the pass continues.
		t.logger.Warn("consistency guard: refusing to close foreign position",
			zap.String("caller", fill.StrategyID),
			zap.String("owner", pos.StrategyID))

		return nil, false, nil
	}

	gross := types.GrossPnL(pos.Side, pos.EntryPrice, fill.Price, pos.Shares)
	fees := t.fees(pos, fill)

	trade := types.Trade{
		ID:              uuid.NewString(),
		StrategyID:      pos.StrategyID,
		Direction:       pos.Side,
		Symbol:          pos.Symbol,
		EntryTime:       pos.EntryTime,
		EntryPrice:      pos.EntryPrice,
		ExitTime:        fill.Time,
		ExitPrice:       fill.Price,
		GrossPnL:        gross,
		NetPnL:          gross - fees,
		Fees:            fees,
		HoldingDuration: fill.Time.Sub(pos.EntryTime),
		Shares:          pos.Shares,
		MAE:             fill.MAE,
		MFE:             fill.MFE,
	}

	if err := t.store.Remove(pos.StrategyID); err != nil {
		return nil, false, err
	}

	t.tradesMu.Lock()
	t.trades = append(t.trades, trade)
	t.tradesMu.Unlock()

	if t.sink != nil {
		t.sink(trade)
	}

	t.logger.Info("closed position",
		zap.String("strategy", pos.StrategyID),
		zap.String("side", string(pos.Side)),
		zap.Float64("gross_pnl", gross),
		zap.Float64("net_pnl", trade.NetPnL))

	return &trade, true, nil
}

// fees charges slippage on both the entry and exit notional plus the
// commission model at each fill.
func (t *Tracker) fees(pos types.Position, fill Fill) float64 {
	shares := decimal.NewFromFloat(pos.Shares)
	entryNotional := shares.Mul(decimal.NewFromFloat(pos.EntryPrice))
	exitNotional := shares.Mul(decimal.NewFromFloat(fill.Price))

	slippage := entryNotional.Add(exitNotional).Mul(t.slippageRate)
	total, _ := slippage.Float64()

	total += t.commission.Fee(pos.Shares, pos.EntryPrice)
	total += t.commission.Fee(pos.Shares, fill.Price)

	return total
}

func (t *Tracker) lockFor(strategyID string) *sync.Mutex {
	t.locksMu.Lock()
	defer t.locksMu.Unlock()

	lock, ok := t.locks[strategyID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[strategyID] = lock
	}

	return lock
}
