package position

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/flowquant-lab/flowquant/internal/position/commission"
	"github.com/flowquant-lab/flowquant/internal/types"
)

type TrackerTestSuite struct {
	suite.Suite
	tracker *Tracker
	now     time.Time
}

func (suite *TrackerTestSuite) SetupTest() {
	suite.tracker = NewTracker(NewMemoryStore(), commission.NewZero(), 0, nil)
	suite.now = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}

func (suite *TrackerTestSuite) fill(strategyID string, price float64, at time.Time) Fill {
	return Fill{
		StrategyID: strategyID,
		Symbol:     "AAPL",
		Timeframe:  "1m",
		Shares:     10,
		Price:      price,
		Time:       at,
	}
}

func (suite *TrackerTestSuite) TestBuyThenHoldRealizesLongProfit() {
	trade, err := suite.tracker.Apply(types.SignalBuy, suite.fill("s1", 100, suite.now))
	suite.Require().NoError(err)
	suite.Nil(trade)

	pos, open, err := suite.tracker.Position("s1")
	suite.Require().NoError(err)
	suite.True(open)
	suite.Equal(types.PositionSideLong, pos.Side)

	exit := suite.now.Add(time.Minute)
	trade, err = suite.tracker.Apply(types.SignalHold, suite.fill("s1", 110, exit))
	suite.Require().NoError(err)
	suite.Require().NotNil(trade)

	suite.InDelta(100.0, trade.GrossPnL, 1e-9)
	suite.InDelta(100.0, trade.NetPnL, 1e-9)
	suite.Equal(types.PositionSideLong, trade.Direction)
	suite.Equal(time.Minute, trade.HoldingDuration)

	_, open, err = suite.tracker.Position("s1")
	suite.Require().NoError(err)
	suite.False(open)
}

func (suite *TrackerTestSuite) TestSellReversesLongIntoShort() {
	_, err := suite.tracker.Apply(types.SignalBuy, suite.fill("s1", 100, suite.now))
	suite.Require().NoError(err)

	exit := suite.now.Add(time.Minute)
	trade, err := suite.tracker.Apply(types.SignalSell, suite.fill("s1", 90, exit))
	suite.Require().NoError(err)
	suite.Require().NotNil(trade)

	// Long closed at a loss, short opened at the same fill.
	suite.InDelta(-100.0, trade.GrossPnL, 1e-9)

	pos, open, err := suite.tracker.Position("s1")
	suite.Require().NoError(err)
	suite.True(open)
	suite.Equal(types.PositionSideShort, pos.Side)
	suite.InDelta(90.0, pos.EntryPrice, 1e-9)
	suite.Equal(exit, pos.EntryTime)
}

func (suite *TrackerTestSuite) TestBuyReversesShortIntoLong() {
	_, err := suite.tracker.Apply(types.SignalSell, suite.fill("s1", 100, suite.now))
	suite.Require().NoError(err)

	trade, err := suite.tracker.Apply(types.SignalBuy, suite.fill("s1", 95, suite.now.Add(time.Minute)))
	suite.Require().NoError(err)
	suite.Require().NotNil(trade)

	// Short gained 5 per share.
	suite.InDelta(50.0, trade.GrossPnL, 1e-9)

	pos, open, _ := suite.tracker.Position("s1")
	suite.True(open)
	suite.Equal(types.PositionSideLong, pos.Side)
}

func (suite *TrackerTestSuite) TestHoldWhileFlatIsNoOp() {
	trade, err := suite.tracker.Apply(types.SignalHold, suite.fill("s1", 100, suite.now))
	suite.NoError(err)
	suite.Nil(trade)

	_, open, _ := suite.tracker.Position("s1")
	suite.False(open)
	suite.Empty(suite.tracker.Trades())
}

func (suite *TrackerTestSuite) TestSameDirectionIsNoOp() {
	_, err := suite.tracker.Apply(types.SignalBuy, suite.fill("s1", 100, suite.now))
	suite.Require().NoError(err)

	trade, err := suite.tracker.Apply(types.SignalBuy, suite.fill("s1", 120, suite.now.Add(time.Minute)))
	suite.NoError(err)
	suite.Nil(trade)

	// Original entry preserved.
	pos, open, _ := suite.tracker.Position("s1")
	suite.True(open)
	suite.InDelta(100.0, pos.EntryPrice, 1e-9)
}

func (suite *TrackerTestSuite) TestTradeCountEqualsFlatReentries() {
	signals := []types.Signal{
		types.SignalBuy,  // open
		types.SignalHold, // close (1)
		types.SignalSell, // open
		types.SignalBuy,  // close + reopen (2)
		types.SignalHold, // close (3)
		types.SignalHold, // no-op
	}

	price := 100.0

	for i, s := range signals {
		_, err := suite.tracker.Apply(s, suite.fill("s1", price, suite.now.Add(time.Duration(i)*time.Minute)))
		suite.Require().NoError(err)
	}

	suite.Len(suite.tracker.Trades(), 3)

	_, open, _ := suite.tracker.Position("s1")
	suite.False(open)
}

func (suite *TrackerTestSuite) TestStrategiesAreIsolated() {
	_, err := suite.tracker.Apply(types.SignalBuy, suite.fill("s1", 100, suite.now))
	suite.Require().NoError(err)

	// s2 holding must not close s1's long.
	trade, err := suite.tracker.Apply(types.SignalHold, suite.fill("s2", 50, suite.now))
	suite.NoError(err)
	suite.Nil(trade)

	pos, open, _ := suite.tracker.Position("s1")
	suite.True(open)
	suite.Equal("s1", pos.StrategyID)

	_, open, _ = suite.tracker.Position("s2")
	suite.False(open)
}

func (suite *TrackerTestSuite) TestSlippageAndCommissionFees() {
	tracker := NewTracker(NewMemoryStore(), commission.NewFixed(1), 0.1, nil)

	_, err := tracker.Apply(types.SignalBuy, suite.fill("s1", 100, suite.now))
	suite.Require().NoError(err)

	trade, err := tracker.Apply(types.SignalHold, suite.fill("s1", 110, suite.now.Add(time.Minute)))
	suite.Require().NoError(err)
	suite.Require().NotNil(trade)

	// Slippage: (1000+1100)*0.1% = 2.1, commission 1 per fill = 2.
	suite.InDelta(4.1, trade.Fees, 1e-9)
	suite.InDelta(100.0-4.1, trade.NetPnL, 1e-9)
}

func (suite *TrackerTestSuite) TestConsistencyGuardIsLoggedNoOp() {
	store := &foreignStore{owner: "someone-else", now: suite.now}
	tracker := NewTracker(store, commission.NewZero(), 0, nil)

	trade, err := tracker.Apply(types.SignalHold, suite.fill("s1", 110, suite.now.Add(time.Minute)))
	suite.NoError(err)
	suite.Nil(trade)
	suite.Empty(tracker.Trades())
	suite.False(store.removed)
}

func (suite *TrackerTestSuite) TestExcursionsRecordedOnTrade() {
	_, err := suite.tracker.Apply(types.SignalBuy, suite.fill("s1", 100, suite.now))
	suite.Require().NoError(err)

	fill := suite.fill("s1", 110, suite.now.Add(time.Minute))
	fill.MAE = -30
	fill.MFE = 150

	trade, err := suite.tracker.Apply(types.SignalHold, fill)
	suite.Require().NoError(err)
	suite.Require().NotNil(trade)
	suite.InDelta(-30.0, trade.MAE, 1e-9)
	suite.InDelta(150.0, trade.MFE, 1e-9)
}

// foreignStore simulates a corrupted lookup returning a position owned by a
// different strategy.
type foreignStore struct {
	owner   string
	now     time.Time
	removed bool
}

func (s *foreignStore) Get(string) (types.Position, bool, error) {
	return types.Position{
		StrategyID: s.owner,
		Side:       types.PositionSideLong,
		EntryTime:  s.now,
		EntryPrice: 100,
		Symbol:     "AAPL",
		Shares:     10,
	}, true, nil
}

func (s *foreignStore) Set(types.Position) error { return nil }

func (s *foreignStore) Remove(string) error {
	s.removed = true
	return nil
}

func (s *foreignStore) List() ([]types.Position, error) { return nil, nil }
