package block

import (
	"github.com/flowquant-lab/flowquant/internal/indicator"
	"github.com/flowquant-lab/flowquant/internal/types"
)

// Stochastic computes the stochastic oscillator %K and %D lines.
type Stochastic struct{}

// NewStochastic creates the stochastic block. Default config: k_period 14,
// d_period 3.
func NewStochastic() Block {
	return &Stochastic{}
}

// Type returns the node type string.
func (s *Stochastic) Type() types.BlockType {
	return types.BlockTypeStochastic
}

// InputPorts implements Block.
func (s *Stochastic) InputPorts() []string {
	return []string{PortHighs, PortLows, PortPrices}
}

// OutputPorts implements Block.
func (s *Stochastic) OutputPorts() []string {
	return []string{PortK, PortD}
}

// DefaultConfig implements Block.
func (s *Stochastic) DefaultConfig() map[string]any {
	return map[string]any{
		"k_period": 14,
		"d_period": 3,
	}
}

// Evaluate implements Block.
func (s *Stochastic) Evaluate(ctx Context, config map[string]any) (map[string]types.PortValue, error) {
	kPeriod, err := positiveIntParam(config, "k_period", 14)
	if err != nil {
		return nil, err
	}

	dPeriod, err := positiveIntParam(config, "d_period", 3)
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

	k, d := indicator.Stochastic(highs, lows, closes, kPeriod, dPeriod)

	return map[string]types.PortValue{
		PortK: types.SeriesValue(k),
		PortD: types.SeriesValue(d),
	}, nil
}
