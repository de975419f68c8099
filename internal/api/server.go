// Package api exposes the engine over HTTP: backtest job submission and
// inspection, plus live strategy control.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/flowquant-lab/flowquant/internal/backtest"
	"github.com/flowquant-lab/flowquant/internal/logger"
	"github.com/flowquant-lab/flowquant/internal/runner"
	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// Server wires the backtest manager and the live scheduler into HTTP
// handlers.
type Server struct {
	manager   *backtest.Manager
	scheduler *runner.Scheduler
	logger    *logger.Logger
}

// NewServer creates the HTTP layer. scheduler may be nil for
// backtest-only deployments.
func NewServer(manager *backtest.Manager, scheduler *runner.Scheduler, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Server{
		manager:   manager,
		scheduler: scheduler,
		logger:    log,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/backtests", s.handleSubmitBacktest).Methods(http.MethodPost)
	r.HandleFunc("/api/backtests/{id}", s.handleJobState).Methods(http.MethodGet)
	r.HandleFunc("/api/backtests/{id}", s.handleCancelJob).Methods(http.MethodDelete)
	r.HandleFunc("/api/backtests/{id}/result", s.handleJobResult).Methods(http.MethodGet)

	if s.scheduler != nil {
		r.HandleFunc("/api/strategies", s.handleListStrategies).Methods(http.MethodGet)
		r.HandleFunc("/api/strategies/start", s.handleStartStrategy).Methods(http.MethodPost)
		r.HandleFunc("/api/strategies/{id}/stop", s.handleStopStrategy).Methods(http.MethodPost)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	return r
}

// BacktestRequest is the submission payload: the strategy graph, the bar
// series to replay, and the execution parameters.
type BacktestRequest struct {
	Strategy  types.StrategyDefinition `json:"strategy"`
	Bars      types.BarSeries          `json:"bars"`
	Execution backtest.ExecutionConfig `json:"execution"`
}

// StartStrategyRequest launches a live polling strategy.
type StartStrategyRequest struct {
	Strategy        types.StrategyDefinition `json:"strategy"`
	StrategyID      string                   `json:"strategy_id"`
	Symbol          string                   `json:"symbol"`
	Timeframe       string                   `json:"timeframe"`
	Shares          float64                  `json:"shares"`
	IntervalSeconds int                      `json:"interval_seconds"`
	BarLimit        int                      `json:"bar_limit"`
}

func (s *Server) handleSubmitBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "malformed request body", err))
		return
	}

	id, err := s.manager.Submit(&req.Strategy, &req.Bars, req.Execution)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

func (s *Server) handleJobState(w http.ResponseWriter, r *http.Request) {
	state, err := s.manager.State(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.manager.Result(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Cancel(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListStrategies(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.scheduler.List())
}

func (s *Server) handleStartStrategy(w http.ResponseWriter, r *http.Request) {
	var req StartStrategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "malformed request body", err))
		return
	}

	err := s.scheduler.Start(runner.Spec{
		Definition: req.Strategy,
		StrategyID: req.StrategyID,
		Symbol:     req.Symbol,
		Timeframe:  req.Timeframe,
		Shares:     req.Shares,
		Interval:   time.Duration(req.IntervalSeconds) * time.Second,
		BarLimit:   req.BarLimit,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleStopStrategy(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduler.Stop(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("writing response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, httpStatus(err), map[string]any{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

// httpStatus maps engine error codes onto HTTP statuses.
func httpStatus(err error) int {
	code := errors.GetCode(err)

	switch {
	case code == errors.ErrCodeJobNotFound,
		code == errors.ErrCodeStrategyNotFound,
		code == errors.ErrCodeDataNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeStrategyRunning:
		return http.StatusConflict
	case code == errors.ErrCodeStrategyLimit:
		return http.StatusTooManyRequests
	case code >= 100 && code < 200:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
