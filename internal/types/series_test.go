package types

import (
	"testing"
	"time"

	"github.com/flowquant-lab/flowquant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SeriesTestSuite struct {
	suite.Suite
}

func TestSeriesSuite(t *testing.T) {
	suite.Run(t, new(SeriesTestSuite))
}

func barSeries(n int) BarSeries {
	s := BarSeries{}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		s.Timestamps = append(s.Timestamps, base.Add(time.Duration(i)*time.Minute))
		s.Open = append(s.Open, float64(100+i))
		s.High = append(s.High, float64(101+i))
		s.Low = append(s.Low, float64(99+i))
		s.Close = append(s.Close, float64(100+i))
		s.Volume = append(s.Volume, 1000)
	}

	return s
}

func (suite *SeriesTestSuite) TestUndefinedMarker() {
	suite.True(IsUndefined(Undefined()))
	suite.False(IsUndefined(0))
	suite.False(IsUndefined(-1.5))
}

func (suite *SeriesTestSuite) TestUndefinedSeries() {
	s := UndefinedSeries(5)
	suite.Len(s, 5)

	for _, v := range s {
		suite.True(IsUndefined(v))
	}
}

func (suite *SeriesTestSuite) TestValidateOK() {
	s := barSeries(10)
	suite.NoError(s.Validate())
}

func (suite *SeriesTestSuite) TestValidateMisaligned() {
	s := barSeries(10)
	s.Close = s.Close[:9]

	err := s.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataMisaligned))
}

func (suite *SeriesTestSuite) TestValidateNonMonotonic() {
	s := barSeries(3)
	s.Timestamps[2] = s.Timestamps[1]

	err := s.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSeries))
}

func (suite *SeriesTestSuite) TestPrefix() {
	s := barSeries(10)
	p := s.Prefix(4)
	suite.Equal(4, p.Len())
	suite.Equal(s.Close[3], p.Close[3])

	// Prefix past the end clamps
	full := s.Prefix(50)
	suite.Equal(10, full.Len())
}

func (suite *SeriesTestSuite) TestBar() {
	s := barSeries(3)
	b := s.Bar(1)
	suite.Equal(101.0, b.Close)
	suite.Equal(s.Timestamps[1], b.Time)
}

func (suite *SeriesTestSuite) TestPortValueLast() {
	v := SeriesValue([]float64{Undefined(), 1, 2, Undefined()})
	last, ok := v.Last()
	suite.True(ok)
	suite.Equal(2.0, last)

	scalar := ScalarValue(42)
	last, ok = scalar.Last()
	suite.True(ok)
	suite.Equal(42.0, last)

	_, ok = SeriesValue(UndefinedSeries(3)).Last()
	suite.False(ok)

	_, ok = BoolValue(true).Last()
	suite.False(ok)
}
