package backtest

import (
	"github.com/moznion/go-optional"

	"github.com/flowquant-lab/flowquant/internal/position/commission"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// DefaultInitialCapital is the notional base used to size percentage-based
// positions.
const DefaultInitialCapital = 10000.0

// ExecutionConfig carries the execution parameters of one backtest run. At
// most one of the unit/percent variants may be supplied for position size
// and for commission; supplying both is a validation error that rejects the
// run before any work starts.
type ExecutionConfig struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Symbol     string `yaml:"symbol" json:"symbol"`
	Timeframe  string `yaml:"timeframe" json:"timeframe"`

	// PositionSize is a fixed share count per entry.
	PositionSize optional.Option[float64] `yaml:"position_size,omitempty" json:"position_size,omitempty"`
	// PositionSizePct sizes each entry as a percentage of the initial
	// capital. Mutually exclusive with PositionSize.
	PositionSizePct optional.Option[float64] `yaml:"position_size_pct,omitempty" json:"position_size_pct,omitempty"`

	// CommissionFixed is a flat fee per fill.
	CommissionFixed optional.Option[float64] `yaml:"commission_fixed,omitempty" json:"commission_fixed,omitempty"`
	// CommissionPct is a percent-of-notional fee per fill. Mutually
	// exclusive with CommissionFixed.
	CommissionPct optional.Option[float64] `yaml:"commission_pct,omitempty" json:"commission_pct,omitempty"`

	// SlippagePct is charged on the notional of both entry and exit fills.
	SlippagePct float64 `yaml:"slippage_pct,omitempty" json:"slippage_pct,omitempty"`

	// InitialCapital is the notional base for percentage sizing. Defaults
	// to DefaultInitialCapital.
	InitialCapital float64 `yaml:"initial_capital,omitempty" json:"initial_capital,omitempty"`
}

// Validate rejects structurally invalid execution parameters.
func (c *ExecutionConfig) Validate() error {
	if c.StrategyID == "" {
		return errors.New(errors.ErrCodeMissingParameter, "strategy id is required")
	}

	if c.Symbol == "" {
		return errors.New(errors.ErrCodeMissingParameter, "symbol is required")
	}

	if c.PositionSize.IsSome() && c.PositionSizePct.IsSome() {
		return errors.New(errors.ErrCodeExclusiveParameters,
			"position_size and position_size_pct are mutually exclusive")
	}

	if c.CommissionFixed.IsSome() && c.CommissionPct.IsSome() {
		return errors.New(errors.ErrCodeExclusiveParameters,
			"commission_fixed and commission_pct are mutually exclusive")
	}

	if size, err := c.PositionSize.Take(); err == nil && size <= 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "position_size must be positive")
	}

	if pct, err := c.PositionSizePct.Take(); err == nil && (pct <= 0 || pct > 100) {
		return errors.New(errors.ErrCodeInvalidParameter, "position_size_pct must be in (0,100]")
	}

	if c.SlippagePct < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "slippage_pct must not be negative")
	}

	return nil
}

// CommissionModel builds the commission model the config describes.
func (c *ExecutionConfig) CommissionModel() commission.Model {
	if fixed, err := c.CommissionFixed.Take(); err == nil {
		return commission.NewFixed(fixed)
	}

	if pct, err := c.CommissionPct.Take(); err == nil {
		return commission.NewPercent(pct)
	}

	return commission.NewZero()
}

// Shares returns the share count for an entry filled at the given price.
func (c *ExecutionConfig) Shares(price float64) float64 {
	if size, err := c.PositionSize.Take(); err == nil {
		return size
	}

	capital := c.InitialCapital
	if capital <= 0 {
		capital = DefaultInitialCapital
	}

	if pct, err := c.PositionSizePct.Take(); err == nil && price > 0 {
		return capital * pct / 100 / price
	}

	return 1
}
