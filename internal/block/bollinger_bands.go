package block

import (
	"github.com/flowquant-lab/flowquant/internal/indicator"
	"github.com/flowquant-lab/flowquant/internal/types"
)

// BollingerBands computes the upper, middle, and lower bands.
type BollingerBands struct{}

// NewBollingerBands creates the Bollinger Bands block. Default config:
// period 20, std_dev 2.0.
func NewBollingerBands() Block {
	return &BollingerBands{}
}

// Type returns the node type string.
func (b *BollingerBands) Type() types.BlockType {
	return types.BlockTypeBollingerBands
}

// InputPorts implements Block.
func (b *BollingerBands) InputPorts() []string {
	return []string{PortPrices}
}

// OutputPorts implements Block.
func (b *BollingerBands) OutputPorts() []string {
	return []string{PortUpper, PortMiddle, PortLower}
}

// DefaultConfig implements Block.
func (b *BollingerBands) DefaultConfig() map[string]any {
	return map[string]any{
		"period":  20,
		"std_dev": 2.0,
	}
}

// Evaluate implements Block.
func (b *BollingerBands) Evaluate(ctx Context, config map[string]any) (map[string]types.PortValue, error) {
	period, err := positiveIntParam(config, "period", 20)
	if err != nil {
		return nil, err
	}

	stdDevMult, err := floatParam(config, "std_dev", 2.0)
	if err != nil {
		return nil, err
	}

	prices, ok := seriesInput(ctx, PortPrices)
	if !ok {
		return nil, missingInput(PortPrices)
	}

	upper, middle, lower := indicator.BollingerBands(prices, period, stdDevMult)

	return map[string]types.PortValue{
		PortUpper:  types.SeriesValue(upper),
		PortMiddle: types.SeriesValue(middle),
		PortLower:  types.SeriesValue(lower),
	}, nil
}
