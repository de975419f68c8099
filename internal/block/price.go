package block

import (
	"github.com/flowquant-lab/flowquant/internal/types"
)

// Price is the source block: it exposes the pass's bar series as output
// ports for downstream nodes to consume.
type Price struct{}

// NewPrice creates the price source block.
func NewPrice() Block {
	return &Price{}
}

// Type returns the node type string.
func (p *Price) Type() types.BlockType {
	return types.BlockTypePrice
}

// InputPorts implements Block. The source block has no inputs.
func (p *Price) InputPorts() []string {
	return nil
}

// OutputPorts implements Block.
func (p *Price) OutputPorts() []string {
	return []string{PortOpens, PortHighs, PortLows, PortPrices, PortVolumes}
}

// DefaultConfig implements Block.
func (p *Price) DefaultConfig() map[string]any {
	return map[string]any{}
}

// Evaluate implements Block.
func (p *Price) Evaluate(ctx Context, _ map[string]any) (map[string]types.PortValue, error) {
	if ctx.Bars == nil || ctx.Bars.Len() == 0 {
		return nil, missingInput(PortPrices)
	}

	return map[string]types.PortValue{
		PortOpens:   types.SeriesValue(ctx.Bars.Open),
		PortHighs:   types.SeriesValue(ctx.Bars.High),
		PortLows:    types.SeriesValue(ctx.Bars.Low),
		PortPrices:  types.SeriesValue(ctx.Bars.Close),
		PortVolumes: types.SeriesValue(ctx.Bars.Volume),
	}, nil
}
