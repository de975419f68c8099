// Package block implements the strategy graph block library: one
// implementation per node type string, registered in a lookup table and
// sharing the evaluate(inputs, config) -> outputs contract.
package block

import (
	"github.com/flowquant-lab/flowquant/internal/types"
)

// Standard port names. Ports are named per node type; indicator blocks
// resolve bar-derived ports from the pass's bar series when no connection
// produces them.
const (
	PortOpens   = "opens"
	PortHighs   = "highs"
	PortLows    = "lows"
	PortPrices  = "prices"
	PortVolumes = "volumes"

	PortResult     = "result"
	PortUpper      = "upper"
	PortMiddle     = "middle"
	PortLower      = "lower"
	PortMACD       = "macd"
	PortSignalLine = "signal_line"
	PortHistogram  = "histogram"
	PortK          = "k"
	PortD          = "d"
	PortOversold   = "oversold"
	PortOverbought = "overbought"
	PortSpike      = "spike"

	PortA      = "a"
	PortB      = "b"
	PortInput  = "input"
	PortSignal = "signal"
)

// Context carries the resolved inputs for one node evaluation plus the
// pass's bar series snapshot.
type Context struct {
	Bars   *types.BarSeries
	Inputs map[string]types.PortValue
}

// Block is one computation unit implementation. Implementations are
// stateless; per-node parameters arrive in the config map.
type Block interface {
	// Type returns the node type string this block implements.
	Type() types.BlockType
	// InputPorts returns the block's named input ports.
	InputPorts() []string
	// OutputPorts returns the block's named output ports.
	OutputPorts() []string
	// DefaultConfig returns the block's default parameters.
	DefaultConfig() map[string]any
	// Evaluate computes the block's outputs from its resolved inputs and
	// configuration.
	Evaluate(ctx Context, config map[string]any) (map[string]types.PortValue, error)
}

// IsGate reports whether a block type is a boolean gate whose false result
// short-circuits downstream nodes.
func IsGate(t types.BlockType) bool {
	switch t {
	case types.BlockTypeCompare, types.BlockTypeAnd, types.BlockTypeOr:
		return true
	default:
		return false
	}
}

// seriesInput resolves a bar-derived input port: an explicitly connected
// series wins, otherwise the port falls back to the pass's bar series.
// ok is false when neither is available.
func seriesInput(ctx Context, port string) ([]float64, bool) {
	if v, exists := ctx.Inputs[port]; exists && v.Kind == types.PortValueKindSeries {
		return v.Series, true
	}

	if ctx.Bars == nil || ctx.Bars.Len() == 0 {
		return nil, false
	}

	switch port {
	case PortOpens:
		return ctx.Bars.Open, true
	case PortHighs:
		return ctx.Bars.High, true
	case PortLows:
		return ctx.Bars.Low, true
	case PortPrices:
		return ctx.Bars.Close, true
	case PortVolumes:
		return ctx.Bars.Volume, true
	}

	return nil, false
}
