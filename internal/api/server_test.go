package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/flowquant-lab/flowquant/internal/backtest"
	"github.com/flowquant-lab/flowquant/internal/block"
	"github.com/flowquant-lab/flowquant/internal/datasource"
	"github.com/flowquant-lab/flowquant/internal/graph"
	"github.com/flowquant-lab/flowquant/internal/position"
	"github.com/flowquant-lab/flowquant/internal/position/commission"
	"github.com/flowquant-lab/flowquant/internal/runner"
	"github.com/flowquant-lab/flowquant/internal/types"
)

type ServerTestSuite struct {
	suite.Suite
	server    *httptest.Server
	scheduler *runner.Scheduler
	bars      types.BarSeries
}

func (suite *ServerTestSuite) SetupTest() {
	evaluator := graph.NewEvaluator(block.NewDefaultRegistry(), nil)
	manager := backtest.NewManager(backtest.NewEngine(evaluator, nil), nil, nil)

	tracker := position.NewTracker(position.NewMemoryStore(), commission.NewZero(), 0, nil)
	source := datasource.NewMemory()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.bars = types.BarSeries{}

	for i := 0; i < 10; i++ {
		c := float64(i + 1)
		suite.bars.Timestamps = append(suite.bars.Timestamps, base.Add(time.Duration(i)*time.Minute))
		suite.bars.Open = append(suite.bars.Open, c)
		suite.bars.High = append(suite.bars.High, c+0.5)
		suite.bars.Low = append(suite.bars.Low, c-0.5)
		suite.bars.Close = append(suite.bars.Close, c)
		suite.bars.Volume = append(suite.bars.Volume, 100)
	}

	suite.Require().NoError(source.Add("BTCUSDT", &suite.bars))

	suite.scheduler = runner.NewScheduler(evaluator, tracker, source, nil, 1, nil)
	suite.server = httptest.NewServer(NewServer(manager, suite.scheduler, nil).Router())
}

func (suite *ServerTestSuite) TearDownTest() {
	suite.scheduler.StopAll()
	suite.server.Close()
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) definition() types.StrategyDefinition {
	return types.StrategyDefinition{
		ID: "api-test",
		Nodes: []types.Node{
			{ID: "ema1", Type: types.BlockTypeEMA, Config: map[string]any{"period": 3}},
		},
	}
}

func (suite *ServerTestSuite) post(path string, body any) *http.Response {
	encoded, err := json.Marshal(body)
	suite.Require().NoError(err)

	resp, err := http.Post(suite.server.URL+path, "application/json", bytes.NewReader(encoded))
	suite.Require().NoError(err)

	return resp
}

func (suite *ServerTestSuite) get(path string) *http.Response {
	resp, err := http.Get(suite.server.URL + path)
	suite.Require().NoError(err)

	return resp
}

func (suite *ServerTestSuite) TestBacktestLifecycle() {
	resp := suite.post("/api/backtests", BacktestRequest{
		Strategy: suite.definition(),
		Bars:     suite.bars,
		Execution: backtest.ExecutionConfig{
			StrategyID:   "s1",
			Symbol:       "AAPL",
			PositionSize: optional.Some(1.0),
		},
	})
	defer resp.Body.Close()

	suite.Require().Equal(http.StatusAccepted, resp.StatusCode)

	var submitted map[string]string
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&submitted))
	id := submitted["id"]
	suite.NotEmpty(id)

	suite.Require().Eventually(func() bool {
		stateResp := suite.get("/api/backtests/" + id)
		defer stateResp.Body.Close()

		var state types.JobState
		suite.Require().NoError(json.NewDecoder(stateResp.Body).Decode(&state))

		return state.Status == types.JobStatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	resultResp := suite.get("/api/backtests/" + id + "/result")
	defer resultResp.Body.Close()
	suite.Equal(http.StatusOK, resultResp.StatusCode)

	var result types.BacktestResult
	suite.Require().NoError(json.NewDecoder(resultResp.Body).Decode(&result))
	suite.Empty(result.Error)
}

func (suite *ServerTestSuite) TestSubmitExclusiveParamsRejected() {
	resp := suite.post("/api/backtests", BacktestRequest{
		Strategy: suite.definition(),
		Bars:     suite.bars,
		Execution: backtest.ExecutionConfig{
			StrategyID:      "s1",
			Symbol:          "AAPL",
			PositionSize:    optional.Some(1.0),
			PositionSizePct: optional.Some(5.0),
		},
	})
	defer resp.Body.Close()

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (suite *ServerTestSuite) TestUnknownJobIs404() {
	resp := suite.get("/api/backtests/nope")
	defer resp.Body.Close()
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *ServerTestSuite) TestStrategyControl() {
	start := StartStrategyRequest{
		Strategy:        suite.definition(),
		StrategyID:      "live1",
		Symbol:          "BTCUSDT",
		Timeframe:       "1m",
		Shares:          1,
		IntervalSeconds: 60,
	}

	resp := suite.post("/api/strategies/start", start)
	resp.Body.Close()
	suite.Equal(http.StatusAccepted, resp.StatusCode)

	// Duplicate start conflicts.
	resp = suite.post("/api/strategies/start", start)
	resp.Body.Close()
	suite.Equal(http.StatusConflict, resp.StatusCode)

	// Cap of one: a second strategy is rejected.
	second := start
	second.StrategyID = "live2"
	resp = suite.post("/api/strategies/start", second)
	resp.Body.Close()
	suite.Equal(http.StatusTooManyRequests, resp.StatusCode)

	listResp := suite.get("/api/strategies")
	defer listResp.Body.Close()

	var statuses []runner.Status
	suite.Require().NoError(json.NewDecoder(listResp.Body).Decode(&statuses))
	suite.Require().Len(statuses, 1)
	suite.Equal("live1", statuses[0].StrategyID)

	resp = suite.post("/api/strategies/live1/stop", nil)
	resp.Body.Close()
	suite.Equal(http.StatusNoContent, resp.StatusCode)

	resp = suite.post("/api/strategies/live1/stop", nil)
	resp.Body.Close()
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *ServerTestSuite) TestHealthz() {
	resp := suite.get("/healthz")
	defer resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)
}
