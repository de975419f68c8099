package types

import "time"

// PositionSide is the direction of an open exposure.
type PositionSide string

const (
	PositionSideLong  PositionSide = "LONG"
	PositionSideShort PositionSide = "SHORT"
)

// Position is an open, unrealized directional exposure for one strategy.
// At most one Position exists per strategy id at any time.
type Position struct {
	StrategyID string       `yaml:"strategy_id" json:"strategy_id" validate:"required"`
	Side       PositionSide `yaml:"side" json:"side" validate:"required,oneof=LONG SHORT"`
	EntryTime  time.Time    `yaml:"entry_time" json:"entry_time" validate:"required"`
	EntryPrice float64      `yaml:"entry_price" json:"entry_price" validate:"required,gt=0"`
	Symbol     string       `yaml:"symbol" json:"symbol" validate:"required"`
	Timeframe  string       `yaml:"timeframe" json:"timeframe"`
	Shares     float64      `yaml:"shares" json:"shares" validate:"required,gt=0"`
}
