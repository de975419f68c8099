package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// BlockType selects a block implementation from the registry.
type BlockType string

const (
	BlockTypePrice          BlockType = "price"
	BlockTypeSMA            BlockType = "sma"
	BlockTypeEMA            BlockType = "ema"
	BlockTypeRSI            BlockType = "rsi"
	BlockTypeMACD           BlockType = "macd"
	BlockTypeATR            BlockType = "atr"
	BlockTypeBollingerBands BlockType = "bollinger_bands"
	BlockTypeVWAP           BlockType = "vwap"
	BlockTypeStochastic     BlockType = "stochastic"
	BlockTypeVolumeSpike    BlockType = "volume_spike"
	BlockTypeCompare        BlockType = "compare"
	BlockTypeAnd            BlockType = "and"
	BlockTypeOr             BlockType = "or"
	BlockTypeSignal         BlockType = "signal"
)

// NodePosition is the node's placement on the canvas. The engine only uses
// Y as an ordering tie-break for graphs without explicit connections.
type NodePosition struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Node is one computation unit in a strategy graph. A node is immutable
// once an evaluation pass starts.
type Node struct {
	ID       string         `yaml:"id" json:"id" validate:"required"`
	Type     BlockType      `yaml:"type" json:"type" validate:"required"`
	Position NodePosition   `yaml:"position" json:"position"`
	Config   map[string]any `yaml:"config" json:"config"`
}

// Connection maps an output port of one node to an input port of another.
type Connection struct {
	FromNodeID string `yaml:"from_node_id" json:"from_node_id" validate:"required"`
	FromPort   string `yaml:"from_port" json:"from_port" validate:"required"`
	ToNodeID   string `yaml:"to_node_id" json:"to_node_id" validate:"required"`
	ToPort     string `yaml:"to_port" json:"to_port" validate:"required"`
}

// StrategyDefinition is the node/connection graph supplied by the caller.
// It is read-only to the engine.
type StrategyDefinition struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Nodes       []Node       `yaml:"nodes" json:"nodes" validate:"required,min=1,dive"`
	Connections []Connection `yaml:"connections" json:"connections" validate:"dive"`
}

// Validate checks structural invariants of the definition: required fields,
// unique node IDs, connections referencing existing nodes, and at most one
// producing connection per (toNodeId, toPort).
func (d *StrategyDefinition) Validate() error {
	validate := validator.New()
	if err := validate.Struct(d); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid strategy definition", err)
	}

	ids := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if ids[n.ID] {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "duplicate node id %q", n.ID)
		}

		ids[n.ID] = true
	}

	producers := make(map[string]string, len(d.Connections))

	for _, c := range d.Connections {
		if !ids[c.FromNodeID] {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "connection references unknown node %q", c.FromNodeID)
		}

		if !ids[c.ToNodeID] {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "connection references unknown node %q", c.ToNodeID)
		}

		key := fmt.Sprintf("%s/%s", c.ToNodeID, c.ToPort)
		if from, ok := producers[key]; ok {
			return errors.Newf(errors.ErrCodeInvalidConfiguration,
				"input %s already produced by %s; a (node, port) input accepts at most one connection", key, from)
		}

		producers[key] = c.FromNodeID
	}

	return nil
}
