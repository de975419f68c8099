package block

import (
	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// Compare is a boolean gate comparing its "a" input against either its "b"
// input or a constant. A false result short-circuits downstream nodes.
type Compare struct{}

// NewCompare creates the compare gate. Default config: op "gt", value 0.
// Supported ops: gt, gte, lt, lte, eq, cross_above, cross_below.
func NewCompare() Block {
	return &Compare{}
}

// Type returns the node type string.
func (c *Compare) Type() types.BlockType {
	return types.BlockTypeCompare
}

// InputPorts implements Block. Only "a" is required; "b" defaults to the
// configured constant when unconnected.
func (c *Compare) InputPorts() []string {
	return []string{PortA}
}

// OutputPorts implements Block.
func (c *Compare) OutputPorts() []string {
	return []string{PortResult}
}

// DefaultConfig implements Block.
func (c *Compare) DefaultConfig() map[string]any {
	return map[string]any{
		"op":    "gt",
		"value": 0.0,
	}
}

// Evaluate implements Block.
func (c *Compare) Evaluate(ctx Context, config map[string]any) (map[string]types.PortValue, error) {
	op, err := stringParam(config, "op", "gt")
	if err != nil {
		return nil, err
	}

	a, exists := ctx.Inputs[PortA]
	if !exists {
		return nil, missingInput(PortA)
	}

	var b types.PortValue
	if v, connected := ctx.Inputs[PortB]; connected {
		b = v
	} else {
		constant, err := floatParam(config, "value", 0)
		if err != nil {
			return nil, err
		}

		b = types.ScalarValue(constant)
	}

	result, err := compare(op, a, b)
	if err != nil {
		return nil, err
	}

	return map[string]types.PortValue{
		PortResult: types.BoolValue(result),
	}, nil
}

func compare(op string, a, b types.PortValue) (bool, error) {
	switch op {
	case "cross_above", "cross_below":
		return crossed(op, a, b)
	}

	av, ok := a.Last()
	if !ok {
		return false, nil
	}

	bv, ok := b.Last()
	if !ok {
		return false, nil
	}

	switch op {
	case "gt":
		return av > bv, nil
	case "gte":
		return av >= bv, nil
	case "lt":
		return av < bv, nil
	case "lte":
		return av <= bv, nil
	case "eq":
		return av == bv, nil
	default:
		return false, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported compare op %q", op)
	}
}

// crossed evaluates a crossover: the relation between a and b flipped
// between the two most recent defined observations.
func crossed(op string, a, b types.PortValue) (bool, error) {
	aPrev, aCur, ok := lastTwo(a)
	if !ok {
		return false, nil
	}

	bPrev, bCur, ok := lastTwo(b)
	if !ok {
		return false, nil
	}

	switch op {
	case "cross_above":
		return aPrev <= bPrev && aCur > bCur, nil
	case "cross_below":
		return aPrev >= bPrev && aCur < bCur, nil
	default:
		return false, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported compare op %q", op)
	}
}

// lastTwo returns the two most recent defined values of a port. Scalars
// count as an unchanged pair.
func lastTwo(v types.PortValue) (prev, cur float64, ok bool) {
	if v.Kind == types.PortValueKindScalar {
		return v.Scalar, v.Scalar, true
	}

	if v.Kind != types.PortValueKindSeries {
		return 0, 0, false
	}

	found := 0

	for i := len(v.Series) - 1; i >= 0 && found < 2; i-- {
		if types.IsUndefined(v.Series[i]) {
			continue
		}

		if found == 0 {
			cur = v.Series[i]
		} else {
			prev = v.Series[i]
		}

		found++
	}

	return prev, cur, found == 2
}

// And is a boolean gate that is true when both of its inputs are true.
type And struct{}

// NewAnd creates the and gate.
func NewAnd() Block {
	return &And{}
}

// Type returns the node type string.
func (a *And) Type() types.BlockType {
	return types.BlockTypeAnd
}

// InputPorts implements Block.
func (a *And) InputPorts() []string {
	return []string{PortA, PortB}
}

// OutputPorts implements Block.
func (a *And) OutputPorts() []string {
	return []string{PortResult}
}

// DefaultConfig implements Block.
func (a *And) DefaultConfig() map[string]any {
	return map[string]any{}
}

// Evaluate implements Block.
func (a *And) Evaluate(ctx Context, _ map[string]any) (map[string]types.PortValue, error) {
	left, err := boolInput(ctx, PortA)
	if err != nil {
		return nil, err
	}

	right, err := boolInput(ctx, PortB)
	if err != nil {
		return nil, err
	}

	return map[string]types.PortValue{
		PortResult: types.BoolValue(left && right),
	}, nil
}

// Or is a boolean gate that is true when either of its inputs is true.
type Or struct{}

// NewOr creates the or gate.
func NewOr() Block {
	return &Or{}
}

// Type returns the node type string.
func (o *Or) Type() types.BlockType {
	return types.BlockTypeOr
}

// InputPorts implements Block.
func (o *Or) InputPorts() []string {
	return []string{PortA, PortB}
}

// OutputPorts implements Block.
func (o *Or) OutputPorts() []string {
	return []string{PortResult}
}

// DefaultConfig implements Block.
func (o *Or) DefaultConfig() map[string]any {
	return map[string]any{}
}

// Evaluate implements Block.
func (o *Or) Evaluate(ctx Context, _ map[string]any) (map[string]types.PortValue, error) {
	left, err := boolInput(ctx, PortA)
	if err != nil {
		return nil, err
	}

	right, err := boolInput(ctx, PortB)
	if err != nil {
		return nil, err
	}

	return map[string]types.PortValue{
		PortResult: types.BoolValue(left || right),
	}, nil
}

func boolInput(ctx Context, port string) (bool, error) {
	v, exists := ctx.Inputs[port]
	if !exists {
		return false, missingInput(port)
	}

	if v.Kind != types.PortValueKindBool {
		return false, errors.Newf(errors.ErrCodeInvalidType, "input %q: expected boolean, got %s", port, v.Kind)
	}

	return v.Bool, nil
}
