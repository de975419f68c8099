package types

import "time"

// BlockStatus is the outcome of evaluating one node in a pass.
type BlockStatus string

const (
	// BlockStatusPassed means the node evaluated successfully (and, for
	// gates, its condition held).
	BlockStatusPassed BlockStatus = "passed"
	// BlockStatusFailed means the node errored or its gate condition was
	// false.
	BlockStatusFailed BlockStatus = "failed"
	// BlockStatusSkipped means the node sits downstream of a failed gate
	// and was never invoked.
	BlockStatusSkipped BlockStatus = "skipped"
)

// PortValueKind discriminates the payload carried by a PortValue.
type PortValueKind string

const (
	PortValueKindSeries PortValueKind = "series"
	PortValueKindScalar PortValueKind = "scalar"
	PortValueKindBool   PortValueKind = "bool"
	PortValueKindText   PortValueKind = "text"
)

// PortValue is one value flowing across a connection: a numeric series, a
// scalar, a boolean gate result, or a signal literal.
type PortValue struct {
	Kind   PortValueKind `yaml:"kind" json:"kind"`
	Series []float64     `yaml:"series,omitempty" json:"series,omitempty"`
	Scalar float64       `yaml:"scalar,omitempty" json:"scalar,omitempty"`
	Bool   bool          `yaml:"bool,omitempty" json:"bool,omitempty"`
	Text   string        `yaml:"text,omitempty" json:"text,omitempty"`
}

// SeriesValue wraps a numeric series as a port value.
func SeriesValue(s []float64) PortValue {
	return PortValue{Kind: PortValueKindSeries, Series: s}
}

// ScalarValue wraps a scalar as a port value.
func ScalarValue(v float64) PortValue {
	return PortValue{Kind: PortValueKindScalar, Scalar: v}
}

// BoolValue wraps a boolean as a port value.
func BoolValue(b bool) PortValue {
	return PortValue{Kind: PortValueKindBool, Bool: b}
}

// TextValue wraps a signal literal as a port value.
func TextValue(t string) PortValue {
	return PortValue{Kind: PortValueKindText, Text: t}
}

// Last returns the final defined entry of a series value, or the scalar for
// scalar values. ok is false when no defined value exists.
func (v PortValue) Last() (float64, bool) {
	switch v.Kind {
	case PortValueKindScalar:
		return v.Scalar, true
	case PortValueKindSeries:
		for i := len(v.Series) - 1; i >= 0; i-- {
			if !IsUndefined(v.Series[i]) {
				return v.Series[i], true
			}
		}
	}

	return 0, false
}

// BlockResult records the outcome of one node in one evaluation pass.
// It is immutable after creation and owned by the pass.
type BlockResult struct {
	NodeID string      `yaml:"node_id" json:"node_id"`
	Type   BlockType   `yaml:"type" json:"type"`
	Status BlockStatus `yaml:"status" json:"status"`
	// Outputs maps output port names to produced values.
	Outputs map[string]PortValue `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	// ExecutionTime is the wall time spent evaluating this node.
	ExecutionTime time.Duration `yaml:"execution_time" json:"execution_time"`
	Message       string        `yaml:"message,omitempty" json:"message,omitempty"`
}
