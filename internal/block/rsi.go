package block

import (
	"github.com/flowquant-lab/flowquant/internal/indicator"
	"github.com/flowquant-lab/flowquant/internal/types"
)

// RSI computes the Relative Strength Index and exposes oversold/overbought
// flags against its configured thresholds. The flags feed the
// indicator-threshold fallback tier of signal extraction.
type RSI struct{}

// NewRSI creates the RSI block. Default config: period 14, oversold 30,
// overbought 70.
func NewRSI() Block {
	return &RSI{}
}

// Type returns the node type string.
func (r *RSI) Type() types.BlockType {
	return types.BlockTypeRSI
}

// InputPorts implements Block.
func (r *RSI) InputPorts() []string {
	return []string{PortPrices}
}

// OutputPorts implements Block.
func (r *RSI) OutputPorts() []string {
	return []string{PortResult, PortOversold, PortOverbought}
}

// DefaultConfig implements Block.
func (r *RSI) DefaultConfig() map[string]any {
	return map[string]any{
		"period":     14,
		"oversold":   30.0,
		"overbought": 70.0,
	}
}

// Evaluate implements Block.
func (r *RSI) Evaluate(ctx Context, config map[string]any) (map[string]types.PortValue, error) {
	period, err := positiveIntParam(config, "period", 14)
	if err != nil {
		return nil, err
	}

	oversold, err := floatParam(config, "oversold", 30)
	if err != nil {
		return nil, err
	}

	overbought, err := floatParam(config, "overbought", 70)
	if err != nil {
		return nil, err
	}

	prices, ok := seriesInput(ctx, PortPrices)
	if !ok {
		return nil, missingInput(PortPrices)
	}

	series := indicator.RSI(prices, period)
	result := types.SeriesValue(series)

	isOversold, isOverbought := false, false
	if last, defined := result.Last(); defined {
		isOversold = last < oversold
		isOverbought = last > overbought
	}

	return map[string]types.PortValue{
		PortResult:     result,
		PortOversold:   types.BoolValue(isOversold),
		PortOverbought: types.BoolValue(isOverbought),
	}, nil
}
