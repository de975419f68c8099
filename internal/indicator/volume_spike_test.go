package indicator

import (
	"testing"

	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/stretchr/testify/suite"
)

type VolumeSpikeTestSuite struct {
	suite.Suite
}

func TestVolumeSpikeSuite(t *testing.T) {
	suite.Run(t, new(VolumeSpikeTestSuite))
}

func (suite *VolumeSpikeTestSuite) TestRatioAgainstTrailingAverage() {
	out := VolumeSpike([]float64{1, 1, 1, 2}, 2)

	suite.True(types.IsUndefined(out[0]))
	suite.True(types.IsUndefined(out[1]))
	suite.InDelta(1.0, out[2], 1e-9)
	suite.InDelta(2.0, out[3], 1e-9)
}

func (suite *VolumeSpikeTestSuite) TestZeroAverageUndefined() {
	out := VolumeSpike([]float64{0, 0, 5}, 2)
	suite.True(types.IsUndefined(out[2]))
}

func (suite *VolumeSpikeTestSuite) TestShortInput() {
	out := VolumeSpike([]float64{10, 20}, 2)
	for _, v := range out {
		suite.True(types.IsUndefined(v))
	}
}
