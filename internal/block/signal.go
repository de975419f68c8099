package block

import (
	"strings"

	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// Signal is the terminal output block. It reduces its input to a trading
// signal literal: a true boolean input emits the configured action, a text
// input passes through, and a false boolean emits HOLD.
type Signal struct{}

// NewSignal creates the signal terminal block. Default config: action "BUY".
func NewSignal() Block {
	return &Signal{}
}

// Type returns the node type string.
func (s *Signal) Type() types.BlockType {
	return types.BlockTypeSignal
}

// InputPorts implements Block.
func (s *Signal) InputPorts() []string {
	return []string{PortInput}
}

// OutputPorts implements Block.
func (s *Signal) OutputPorts() []string {
	return []string{PortSignal}
}

// DefaultConfig implements Block.
func (s *Signal) DefaultConfig() map[string]any {
	return map[string]any{"action": string(types.SignalBuy)}
}

// Evaluate implements Block.
func (s *Signal) Evaluate(ctx Context, config map[string]any) (map[string]types.PortValue, error) {
	action, err := stringParam(config, "action", string(types.SignalBuy))
	if err != nil {
		return nil, err
	}

	action = strings.ToUpper(action)
	switch types.Signal(action) {
	case types.SignalBuy, types.SignalSell, types.SignalHold:
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported signal action %q", action)
	}

	input, exists := ctx.Inputs[PortInput]
	if !exists {
		return nil, missingInput(PortInput)
	}

	emitted := string(types.SignalHold)

	switch input.Kind {
	case types.PortValueKindBool:
		if input.Bool {
			emitted = action
		}
	case types.PortValueKindText:
		emitted = strings.ToUpper(input.Text)
	default:
		// A numeric input counts as actionable when its last defined
		// value is positive.
		if last, ok := input.Last(); ok && last > 0 {
			emitted = action
		}
	}

	return map[string]types.PortValue{
		PortSignal: types.TextValue(emitted),
	}, nil
}
