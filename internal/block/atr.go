package block

import (
	"github.com/flowquant-lab/flowquant/internal/indicator"
	"github.com/flowquant-lab/flowquant/internal/types"
)

// ATR computes the Average True Range from high/low/close inputs.
type ATR struct{}

// NewATR creates the ATR block. Default config: period 14.
func NewATR() Block {
	return &ATR{}
}

// Type returns the node type string.
func (a *ATR) Type() types.BlockType {
	return types.BlockTypeATR
}

// InputPorts implements Block.
func (a *ATR) InputPorts() []string {
	return []string{PortHighs, PortLows, PortPrices}
}

// OutputPorts implements Block.
func (a *ATR) OutputPorts() []string {
	return []string{PortResult}
}

// DefaultConfig implements Block.
func (a *ATR) DefaultConfig() map[string]any {
	return map[string]any{"period": 14}
}

// Evaluate implements Block.
func (a *ATR) Evaluate(ctx Context, config map[string]any) (map[string]types.PortValue, error) {
	period, err := positiveIntParam(config, "period", 14)
	if err != nil {
		return nil, err
	}

	highs, ok := seriesInput(ctx, PortHighs)
	if !ok {
		return nil, missingInput(PortHighs)
	}

	lows, ok := seriesInput(ctx, PortLows)
	if !ok {
		return nil, missingInput(PortLows)
	}

	closes, ok := seriesInput(ctx, PortPrices)
	if !ok {
		return nil, missingInput(PortPrices)
	}

	return map[string]types.PortValue{
		PortResult: types.SeriesValue(indicator.ATR(highs, lows, closes, period)),
	}, nil
}
