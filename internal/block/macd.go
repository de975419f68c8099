package block

import (
	"github.com/flowquant-lab/flowquant/internal/indicator"
	"github.com/flowquant-lab/flowquant/internal/types"
)

// MACD computes the MACD line, signal line, and histogram.
type MACD struct{}

// NewMACD creates the MACD block. Default config: fast 12, slow 26,
// signal 9.
func NewMACD() Block {
	return &MACD{}
}

// Type returns the node type string.
func (m *MACD) Type() types.BlockType {
	return types.BlockTypeMACD
}

// InputPorts implements Block.
func (m *MACD) InputPorts() []string {
	return []string{PortPrices}
}

// OutputPorts implements Block.
func (m *MACD) OutputPorts() []string {
	return []string{PortMACD, PortSignalLine, PortHistogram}
}

// DefaultConfig implements Block.
func (m *MACD) DefaultConfig() map[string]any {
	return map[string]any{
		"fast":   12,
		"slow":   26,
		"signal": 9,
	}
}

// Evaluate implements Block.
func (m *MACD) Evaluate(ctx Context, config map[string]any) (map[string]types.PortValue, error) {
	fast, err := positiveIntParam(config, "fast", 12)
	if err != nil {
		return nil, err
	}

	slow, err := positiveIntParam(config, "slow", 26)
	if err != nil {
		return nil, err
	}

	signalPeriod, err := positiveIntParam(config, "signal", 9)
	if err != nil {
		return nil, err
	}

	prices, ok := seriesInput(ctx, PortPrices)
	if !ok {
		return nil, missingInput(PortPrices)
	}

	macd, signal, histogram := indicator.MACD(prices, fast, slow, signalPeriod)

	return map[string]types.PortValue{
		PortMACD:       types.SeriesValue(macd),
		PortSignalLine: types.SeriesValue(signal),
		PortHistogram:  types.SeriesValue(histogram),
	}, nil
}
