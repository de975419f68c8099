package indicator

import (
	"testing"

	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/stretchr/testify/suite"
)

type ATRTestSuite struct {
	suite.Suite
}

func TestATRSuite(t *testing.T) {
	suite.Run(t, new(ATRTestSuite))
}

func (suite *ATRTestSuite) TestATRKnownValues() {
	highs := []float64{2, 3, 4, 5}
	lows := []float64{1, 1, 2, 3}
	closes := []float64{1.5, 2, 3, 4}

	// TR = [1, 2, 2, 2]; seed avg(1,2,2)=5/3 at index 2;
	// index 3 = (5/3*2 + 2)/3 = 16/9.
	out := ATR(highs, lows, closes, 3)

	suite.True(types.IsUndefined(out[0]))
	suite.True(types.IsUndefined(out[1]))
	suite.InDelta(5.0/3.0, out[2], 1e-9)
	suite.InDelta(16.0/9.0, out[3], 1e-9)
}

func (suite *ATRTestSuite) TestATRGapTrueRange() {
	// A gap down makes |low - prevClose| the dominant term.
	highs := []float64{10, 6, 6}
	lows := []float64{9, 5, 5}
	closes := []float64{10, 5.5, 5.5}

	out := ATR(highs, lows, closes, 2)

	// TR = [1, max(1, 4, 5)=5]; seed avg(1,5)=3 at index 1.
	suite.InDelta(3.0, out[1], 1e-9)
}

func (suite *ATRTestSuite) TestATRShortInput() {
	out := ATR([]float64{1, 2}, []float64{0, 1}, []float64{0.5, 1.5}, 3)
	for _, v := range out {
		suite.True(types.IsUndefined(v))
	}
}

func (suite *ATRTestSuite) TestATRMisalignedInput() {
	out := ATR([]float64{1, 2}, []float64{0}, []float64{0.5, 1.5}, 2)
	for _, v := range out {
		suite.True(types.IsUndefined(v))
	}
}
