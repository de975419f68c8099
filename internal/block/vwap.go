package block

import (
	"github.com/flowquant-lab/flowquant/internal/indicator"
	"github.com/flowquant-lab/flowquant/internal/types"
)

// VWAP computes the cumulative volume-weighted average price.
type VWAP struct{}

// NewVWAP creates the VWAP block.
func NewVWAP() Block {
	return &VWAP{}
}

// Type returns the node type string.
func (v *VWAP) Type() types.BlockType {
	return types.BlockTypeVWAP
}

// InputPorts implements Block.
func (v *VWAP) InputPorts() []string {
	return []string{PortHighs, PortLows, PortPrices, PortVolumes}
}

// OutputPorts implements Block.
func (v *VWAP) OutputPorts() []string {
	return []string{PortResult}
}

// DefaultConfig implements Block.
func (v *VWAP) DefaultConfig() map[string]any {
	return map[string]any{}
}

// Evaluate implements Block.
func (v *VWAP) Evaluate(ctx Context, _ map[string]any) (map[string]types.PortValue, error) {
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

	volumes, ok := seriesInput(ctx, PortVolumes)
	if !ok {
		return nil, missingInput(PortVolumes)
	}

	return map[string]types.PortValue{
		PortResult: types.SeriesValue(indicator.VWAP(highs, lows, closes, volumes)),
	}, nil
}
