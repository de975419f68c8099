package types

import (
	"github.com/moznion/go-optional"
)

// Signal is the discrete trading decision produced by one evaluation pass.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// PassResult is the outcome of one full evaluation of a strategy graph
// against a single snapshot of input series.
type PassResult struct {
	Blocks      []BlockResult `yaml:"blocks" json:"blocks"`
	FinalSignal Signal        `yaml:"final_signal" json:"final_signal"`
	// Confidence is the fraction of invoked blocks that passed. None when
	// nothing was invoked.
	Confidence optional.Option[float64] `yaml:"confidence,omitempty" json:"confidence,omitempty"`
	// Error is set when a structural failure aborted the pass. The final
	// signal is HOLD in that case.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`
}

// BlockByID returns the result for a node id, if present.
func (p *PassResult) BlockByID(id string) (BlockResult, bool) {
	for _, b := range p.Blocks {
		if b.NodeID == id {
			return b, true
		}
	}

	return BlockResult{}, false
}
