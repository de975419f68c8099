package block

import (
	"github.com/flowquant-lab/flowquant/internal/indicator"
	"github.com/flowquant-lab/flowquant/internal/types"
)

// SMA computes a simple moving average over its price input.
type SMA struct{}

// NewSMA creates the SMA block. Default config: period 20.
func NewSMA() Block {
	return &SMA{}
}

// Type returns the node type string.
func (s *SMA) Type() types.BlockType {
	return types.BlockTypeSMA
}

// InputPorts implements Block.
func (s *SMA) InputPorts() []string {
	return []string{PortPrices}
}

// OutputPorts implements Block.
func (s *SMA) OutputPorts() []string {
	return []string{PortResult}
}

// DefaultConfig implements Block.
func (s *SMA) DefaultConfig() map[string]any {
	return map[string]any{"period": 20}
}

// Evaluate implements Block.
func (s *SMA) Evaluate(ctx Context, config map[string]any) (map[string]types.PortValue, error) {
	period, err := positiveIntParam(config, "period", 20)
	if err != nil {
		return nil, err
	}

	prices, ok := seriesInput(ctx, PortPrices)
	if !ok {
		return nil, missingInput(PortPrices)
	}

	return map[string]types.PortValue{
		PortResult: types.SeriesValue(indicator.SMA(prices, period)),
	}, nil
}

// EMA computes an exponential moving average over its price input.
type EMA struct{}

// NewEMA creates the EMA block. Default config: period 20.
func NewEMA() Block {
	return &EMA{}
}

// Type returns the node type string.
func (e *EMA) Type() types.BlockType {
	return types.BlockTypeEMA
}

// InputPorts implements Block.
func (e *EMA) InputPorts() []string {
	return []string{PortPrices}
}

// OutputPorts implements Block.
func (e *EMA) OutputPorts() []string {
	return []string{PortResult}
}

// DefaultConfig implements Block.
func (e *EMA) DefaultConfig() map[string]any {
	return map[string]any{"period": 20}
}

// Evaluate implements Block.
func (e *EMA) Evaluate(ctx Context, config map[string]any) (map[string]types.PortValue, error) {
	period, err := positiveIntParam(config, "period", 20)
	if err != nil {
		return nil, err
	}

	prices, ok := seriesInput(ctx, PortPrices)
	if !ok {
		return nil, missingInput(PortPrices)
	}

	return map[string]types.PortValue{
		PortResult: types.SeriesValue(indicator.EMA(prices, period)),
	}, nil
}
