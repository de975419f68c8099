package block

import (
	"github.com/flowquant-lab/flowquant/internal/indicator"
	"github.com/flowquant-lab/flowquant/internal/types"
)

// VolumeSpike flags bars whose volume exceeds a multiple of the trailing
// average volume.
type VolumeSpike struct{}

// NewVolumeSpike creates the volume spike block. Default config: period 20,
// multiplier 2.0.
func NewVolumeSpike() Block {
	return &VolumeSpike{}
}

// Type returns the node type string.
func (v *VolumeSpike) Type() types.BlockType {
	return types.BlockTypeVolumeSpike
}

// InputPorts implements Block.
func (v *VolumeSpike) InputPorts() []string {
	return []string{PortVolumes}
}

// OutputPorts implements Block.
func (v *VolumeSpike) OutputPorts() []string {
	return []string{PortResult, PortSpike}
}

// DefaultConfig implements Block.
func (v *VolumeSpike) DefaultConfig() map[string]any {
	return map[string]any{
		"period":     20,
		"multiplier": 2.0,
	}
}

// Evaluate implements Block.
func (v *VolumeSpike) Evaluate(ctx Context, config map[string]any) (map[string]types.PortValue, error) {
	period, err := positiveIntParam(config, "period", 20)
	if err != nil {
		return nil, err
	}

	multiplier, err := floatParam(config, "multiplier", 2.0)
	if err != nil {
		return nil, err
	}

	volumes, ok := seriesInput(ctx, PortVolumes)
	if !ok {
		return nil, missingInput(PortVolumes)
	}

	ratio := types.SeriesValue(indicator.VolumeSpike(volumes, period))

	spike := false
	if last, defined := ratio.Last(); defined {
		spike = last >= multiplier
	}

	return map[string]types.PortValue{
		PortResult: ratio,
		PortSpike:  types.BoolValue(spike),
	}, nil
}
