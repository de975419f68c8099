package graph

import (
	"strings"

	"github.com/flowquant-lab/flowquant/internal/block"
	"github.com/flowquant-lab/flowquant/internal/types"
)

// ExtractSignal reduces a pass to a single trading signal. Three tiers are
// consulted in strict precedence:
//
//  1. a passed terminal signal node: its emitted literal decides, even HOLD;
//  2. a signal literal in any passed block's text outputs, first in
//     execution order wins;
//  3. RSI threshold flags: an oversold RSI means BUY, an overbought one SELL.
//
// A pass with no match, or a structurally failed pass, yields HOLD.
func ExtractSignal(pass *types.PassResult) types.Signal {
	if pass.Error != "" {
		return types.SignalHold
	}

	// Tier 1: explicit terminal signal nodes. The last passed one in
	// execution order is authoritative.
	for i := len(pass.Blocks) - 1; i >= 0; i-- {
		b := pass.Blocks[i]
		if b.Type != types.BlockTypeSignal || b.Status != types.BlockStatusPassed {
			continue
		}

		if signal, ok := literalSignal(b.Outputs[block.PortSignal].Text); ok {
			return signal
		}
	}

	// Tier 2: signal literals leaking out of any other block's text outputs.
	for _, b := range pass.Blocks {
		if b.Status != types.BlockStatusPassed || b.Type == types.BlockTypeSignal {
			continue
		}

		for _, value := range b.Outputs {
			if value.Kind != types.PortValueKindText {
				continue
			}

			if signal, ok := literalSignal(value.Text); ok && signal != types.SignalHold {
				return signal
			}
		}
	}

	// Tier 3: indicator threshold flags.
	for _, b := range pass.Blocks {
		if b.Type != types.BlockTypeRSI || b.Status != types.BlockStatusPassed {
			continue
		}

		if b.Outputs[block.PortOversold].Bool {
			return types.SignalBuy
		}

		if b.Outputs[block.PortOverbought].Bool {
			return types.SignalSell
		}
	}

	return types.SignalHold
}

// literalSignal maps a free-form output literal onto a signal. Affirmative
// aliases count as BUY, exit aliases as SELL.
func literalSignal(text string) (types.Signal, bool) {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "BUY", "LONG", "TRUE", "PASSED":
		return types.SignalBuy, true
	case "SELL", "SHORT", "EXIT":
		return types.SignalSell, true
	case "HOLD":
		return types.SignalHold, true
	default:
		return types.SignalHold, false
	}
}
