package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/flowquant-lab/flowquant/internal/block"
	"github.com/flowquant-lab/flowquant/internal/graph"
	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

type EngineTestSuite struct {
	suite.Suite
	engine *Engine
	bars   types.BarSeries
	def    types.StrategyDefinition
}

func (suite *EngineTestSuite) SetupTest() {
	suite.engine = NewEngine(graph.NewEvaluator(block.NewDefaultRegistry(), nil), nil)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.bars = types.BarSeries{}

	closes := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1}
	for i, c := range closes {
		suite.bars.Timestamps = append(suite.bars.Timestamps, base.Add(time.Duration(i)*time.Minute))
		suite.bars.Open = append(suite.bars.Open, c)
		suite.bars.High = append(suite.bars.High, c+0.5)
		suite.bars.Low = append(suite.bars.Low, c-0.5)
		suite.bars.Close = append(suite.bars.Close, c)
		suite.bars.Volume = append(suite.bars.Volume, 100)
	}

	// Long while the close is above 3, flat otherwise.
	suite.def = types.StrategyDefinition{
		ID: "threshold",
		Nodes: []types.Node{
			{ID: "price1", Type: types.BlockTypePrice, Position: types.NodePosition{Y: 0}},
			{ID: "cmp1", Type: types.BlockTypeCompare, Position: types.NodePosition{Y: 1},
				Config: map[string]any{"op": "gt", "value": 3.0}},
			{ID: "sig1", Type: types.BlockTypeSignal, Position: types.NodePosition{Y: 2},
				Config: map[string]any{"action": "BUY"}},
		},
		Connections: []types.Connection{
			{FromNodeID: "price1", FromPort: block.PortPrices, ToNodeID: "cmp1", ToPort: block.PortA},
			{FromNodeID: "cmp1", FromPort: block.PortResult, ToNodeID: "sig1", ToPort: block.PortInput},
		},
	}
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) config() ExecutionConfig {
	return ExecutionConfig{
		StrategyID:   "s1",
		Symbol:       "AAPL",
		Timeframe:    "1m",
		PositionSize: optional.Some(1.0),
	}
}

func (suite *EngineTestSuite) TestRunRecordsThresholdTrade() {
	result, err := suite.engine.Run(context.Background(), &suite.def, &suite.bars, suite.config(), nil)
	suite.Require().NoError(err)
	suite.Empty(result.Error)

	// Entry at the first close above 3 (price 4), exit when it falls back
	// to 3.
	suite.Require().Len(result.Trades, 1)
	trade := result.Trades[0]
	suite.Equal(types.PositionSideLong, trade.Direction)
	suite.InDelta(4.0, trade.EntryPrice, 1e-9)
	suite.InDelta(3.0, trade.ExitPrice, 1e-9)
	suite.InDelta(-1.0, trade.GrossPnL, 1e-9)

	// Peak unrealized gain was +1 at the close of 5.
	suite.InDelta(1.0, trade.MFE, 1e-9)

	suite.Len(result.EquityCurve, 1)
	suite.Equal(1, result.Metrics.TotalTrades)
}

func (suite *EngineTestSuite) TestRunIsDeterministic() {
	first, err := suite.engine.Run(context.Background(), &suite.def, &suite.bars, suite.config(), nil)
	suite.Require().NoError(err)

	second, err := suite.engine.Run(context.Background(), &suite.def, &suite.bars, suite.config(), nil)
	suite.Require().NoError(err)

	suite.Require().Len(second.Trades, len(first.Trades))

	for i := range first.Trades {
		// IDs differ per run; everything else must match exactly.
		first.Trades[i].ID = ""
		second.Trades[i].ID = ""
		suite.Equal(first.Trades[i], second.Trades[i])
	}
}

func (suite *EngineTestSuite) TestProgressIsMonotonic() {
	var observed []float64

	_, err := suite.engine.Run(context.Background(), &suite.def, &suite.bars, suite.config(), func(pct float64) {
		observed = append(observed, pct)
	})
	suite.Require().NoError(err)
	suite.Require().NotEmpty(observed)

	for i := 1; i < len(observed); i++ {
		suite.GreaterOrEqual(observed[i], observed[i-1])
	}

	suite.InDelta(100.0, observed[len(observed)-1], 1e-9)
}

func (suite *EngineTestSuite) TestBuyAndHoldBenchmark() {
	result, err := suite.engine.Run(context.Background(), &suite.def, &suite.bars, suite.config(), nil)
	suite.Require().NoError(err)

	// First close 1, last close 1: flat benchmark.
	suite.InDelta(0.0, result.BuyAndHoldPnL, 1e-9)
}

func (suite *EngineTestSuite) TestCancelledRunKeepsPartialResult() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := suite.engine.Run(ctx, &suite.def, &suite.bars, suite.config(), nil)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeJobCancelled))
	suite.Require().NotNil(result)
	suite.NotEmpty(result.Error)
}

func (suite *EngineTestSuite) TestExclusivePositionSizeRejected() {
	cfg := suite.config()
	cfg.PositionSizePct = optional.Some(10.0)

	_, err := suite.engine.Run(context.Background(), &suite.def, &suite.bars, cfg, nil)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeExclusiveParameters))
}

func (suite *EngineTestSuite) TestPercentSizing() {
	cfg := ExecutionConfig{
		StrategyID:      "s1",
		Symbol:          "AAPL",
		PositionSizePct: optional.Some(10.0),
		InitialCapital:  1000,
	}

	// 10% of 1000 at price 4 = 25 shares.
	suite.InDelta(25.0, cfg.Shares(4), 1e-9)
}

func (suite *EngineTestSuite) TestExclusiveCommissionRejected() {
	cfg := suite.config()
	cfg.CommissionFixed = optional.Some(1.0)
	cfg.CommissionPct = optional.Some(0.1)

	suite.True(errors.HasCode(cfg.Validate(), errors.ErrCodeExclusiveParameters))
}
