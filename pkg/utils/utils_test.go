package utils

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestRoundTo() {
	suite.InDelta(1.23, RoundTo(1.23456, 2), 1e-9)
	suite.InDelta(1.235, RoundTo(1.23456, 3), 1e-9)
	suite.InDelta(-2.5, RoundTo(-2.499999, 1), 1e-9)
}

func (suite *UtilsTestSuite) TestClampPct() {
	suite.InDelta(0.0, ClampPct(-5), 1e-9)
	suite.InDelta(42.0, ClampPct(42), 1e-9)
	suite.InDelta(100.0, ClampPct(101), 1e-9)
}
