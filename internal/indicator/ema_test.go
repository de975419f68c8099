package indicator

import (
	"testing"

	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/stretchr/testify/suite"
)

type EMATestSuite struct {
	suite.Suite
}

func TestEMASuite(t *testing.T) {
	suite.Run(t, new(EMATestSuite))
}

func (suite *EMATestSuite) TestEMAKnownValues() {
	// EMA(3) over [1,2,3,4,5]: seed avg(1,2,3)=2 at index 2, then
	// multiplier 0.5 gives 3 and 4.
	out := EMA([]float64{1, 2, 3, 4, 5}, 3)

	suite.Len(out, 5)
	suite.True(types.IsUndefined(out[0]))
	suite.True(types.IsUndefined(out[1]))
	suite.InDelta(2.0, out[2], 1e-9)
	suite.InDelta(3.0, out[3], 1e-9)
	suite.InDelta(4.0, out[4], 1e-9)
}

func (suite *EMATestSuite) TestEMAShortInput() {
	out := EMA([]float64{1, 2}, 3)
	suite.Len(out, 2)

	for _, v := range out {
		suite.True(types.IsUndefined(v))
	}
}

func (suite *EMATestSuite) TestEMAExactLength() {
	out := EMA([]float64{2, 4, 6}, 3)
	suite.True(types.IsUndefined(out[1]))
	suite.InDelta(4.0, out[2], 1e-9)
}

func (suite *EMATestSuite) TestEMAInvalidPeriod() {
	out := EMA([]float64{1, 2, 3}, 0)
	for _, v := range out {
		suite.True(types.IsUndefined(v))
	}
}

func (suite *EMATestSuite) TestEMAPaddingLaw() {
	// For n >= p: exactly the first p-1 entries are undefined, none after.
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i%7) + 1
	}

	for _, period := range []int{1, 2, 5, 13, 30} {
		out := EMA(values, period)
		suite.Len(out, len(values))

		for i, v := range out {
			if i < period-1 {
				suite.True(types.IsUndefined(v), "period %d index %d should be undefined", period, i)
			} else {
				suite.False(types.IsUndefined(v), "period %d index %d should be defined", period, i)
			}
		}
	}
}

func (suite *EMATestSuite) TestSMAKnownValues() {
	out := SMA([]float64{1, 2, 3, 4, 5}, 2)
	suite.True(types.IsUndefined(out[0]))
	suite.InDelta(1.5, out[1], 1e-9)
	suite.InDelta(2.5, out[2], 1e-9)
	suite.InDelta(4.5, out[4], 1e-9)
}

func (suite *EMATestSuite) TestDeterminism() {
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}
	first := EMA(values, 4)
	second := EMA(values, 4)

	for i := range first {
		if types.IsUndefined(first[i]) {
			suite.True(types.IsUndefined(second[i]))
			continue
		}

		suite.Equal(first[i], second[i])
	}
}
