package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestGrossPnLLong() {
	suite.InDelta(100.0, GrossPnL(PositionSideLong, 100, 110, 10), 1e-9)
	suite.InDelta(-100.0, GrossPnL(PositionSideLong, 100, 90, 10), 1e-9)
}

func (suite *TradeTestSuite) TestGrossPnLShort() {
	suite.InDelta(100.0, GrossPnL(PositionSideShort, 100, 90, 10), 1e-9)
	suite.InDelta(-100.0, GrossPnL(PositionSideShort, 100, 110, 10), 1e-9)
}

func (suite *TradeTestSuite) TestNetPct() {
	trade := Trade{EntryPrice: 100, Shares: 10, NetPnL: 50}
	suite.InDelta(5.0, trade.NetPct(), 1e-9)
}

func (suite *TradeTestSuite) TestNetPctZeroNotional() {
	trade := Trade{EntryPrice: 0, Shares: 0, NetPnL: 50}
	suite.Equal(0.0, trade.NetPct())
}

func (suite *TradeTestSuite) TestIsWin() {
	suite.True((&Trade{NetPnL: 1}).IsWin())
	suite.False((&Trade{NetPnL: 0}).IsWin())
	suite.False((&Trade{NetPnL: -1}).IsWin())
}

func (suite *TradeTestSuite) TestTradeRoundTripJSON() {
	original := Trade{
		ID:              "t-1",
		StrategyID:      "strat-1",
		Direction:       PositionSideLong,
		Symbol:          "BTCUSDT",
		EntryTime:       time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		EntryPrice:      100,
		ExitTime:        time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC),
		ExitPrice:       110,
		GrossPnL:        100,
		NetPnL:          98.9,
		Fees:            1.1,
		HoldingDuration: time.Hour,
		Shares:          10,
		MAE:             -20,
		MFE:             120,
	}

	data, err := json.Marshal(original)
	suite.Require().NoError(err)

	var decoded Trade
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.Equal(original, decoded)
}

func (suite *TradeTestSuite) TestTradeRoundTripYAML() {
	original := Trade{
		ID:         "t-2",
		StrategyID: "strat-2",
		Direction:  PositionSideShort,
		Symbol:     "ETHUSDT",
		EntryTime:  time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC),
		EntryPrice: 2000,
		ExitTime:   time.Date(2024, 5, 2, 12, 30, 0, 0, time.UTC),
		ExitPrice:  1900,
		GrossPnL:   500,
		NetPnL:     495,
		Fees:       5,
		Shares:     5,
	}

	data, err := yaml.Marshal(original)
	suite.Require().NoError(err)

	var decoded Trade
	suite.Require().NoError(yaml.Unmarshal(data, &decoded))
	suite.Equal(original.ID, decoded.ID)
	suite.Equal(original.Direction, decoded.Direction)
	suite.True(original.EntryTime.Equal(decoded.EntryTime))
	suite.Equal(original.NetPnL, decoded.NetPnL)
}

func (suite *TradeTestSuite) TestPositionRoundTripJSON() {
	original := Position{
		StrategyID: "strat-3",
		Side:       PositionSideLong,
		EntryTime:  time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		EntryPrice: 42.5,
		Symbol:     "SOLUSDT",
		Timeframe:  "1h",
		Shares:     100,
	}

	data, err := json.Marshal(original)
	suite.Require().NoError(err)

	var decoded Position
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.Equal(original, decoded)
}
