// Package runner schedules live strategies: one supervised polling task per
// strategy, bounded by a maximum concurrency cap. Each poll issues one
// evaluation pass and applies the resulting signal to the strategy's
// position.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/flowquant-lab/flowquant/internal/datasource"
	"github.com/flowquant-lab/flowquant/internal/graph"
	"github.com/flowquant-lab/flowquant/internal/logger"
	"github.com/flowquant-lab/flowquant/internal/metrics"
	"github.com/flowquant-lab/flowquant/internal/position"
	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

const (
	// DefaultMaxConcurrent caps how many strategies may poll at once.
	DefaultMaxConcurrent = 5
	// DefaultPollInterval is the evaluation cadence when a spec does not
	// set one.
	DefaultPollInterval = time.Minute
	// DefaultBarLimit is how many bars each poll fetches.
	DefaultBarLimit = 200
)

// Spec describes one live strategy: its graph, instrument, sizing, and
// polling cadence.
type Spec struct {
	Definition types.StrategyDefinition
	StrategyID string
	Symbol     string
	Timeframe  string
	Shares     float64
	Interval   time.Duration
	BarLimit   int
}

// Status is the externally visible state of a running strategy.
type Status struct {
	StrategyID string    `json:"strategy_id"`
	Symbol     string    `json:"symbol"`
	StartedAt  time.Time `json:"started_at"`
	Passes     int64     `json:"passes"`
	LastSignal string    `json:"last_signal"`
	LastError  string    `json:"last_error,omitempty"`
}

// Scheduler owns the running-strategy registry. Strategies share the trade
// log and the keyed position store; nothing else is shared between them.
type Scheduler struct {
	evaluator     *graph.Evaluator
	tracker       *position.Tracker
	source        datasource.DataSource
	collector     *metrics.Collector
	logger        *logger.Logger
	maxConcurrent int

	mu      sync.Mutex
	running map[string]*task
}

type task struct {
	spec   Spec
	cancel context.CancelFunc

	mu     sync.Mutex
	status Status
}

// NewScheduler creates a scheduler. maxConcurrent <= 0 applies the default
// cap; collector may be nil.
func NewScheduler(
	evaluator *graph.Evaluator,
	tracker *position.Tracker,
	source datasource.DataSource,
	collector *metrics.Collector,
	maxConcurrent int,
	log *logger.Logger,
) *Scheduler {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	if collector == nil {
		collector = metrics.NewNopCollector()
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Scheduler{
		evaluator:     evaluator,
		tracker:       tracker,
		source:        source,
		collector:     collector,
		logger:        log,
		maxConcurrent: maxConcurrent,
	}
}

// Start launches the polling task for a strategy. The concurrency cap is
// enforced before anything starts.
func (s *Scheduler) Start(spec Spec) error {
	if err := spec.Definition.Validate(); err != nil {
		return err
	}

	if spec.StrategyID == "" {
		return errors.New(errors.ErrCodeMissingParameter, "strategy id is required")
	}

	if spec.Interval <= 0 {
		spec.Interval = DefaultPollInterval
	}

	if spec.BarLimit <= 0 {
		spec.BarLimit = DefaultBarLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running == nil {
		s.running = make(map[string]*task)
	}

	if _, exists := s.running[spec.StrategyID]; exists {
		return errors.Newf(errors.ErrCodeStrategyRunning, "strategy %s is already running", spec.StrategyID)
	}

	if len(s.running) >= s.maxConcurrent {
		return errors.Newf(errors.ErrCodeStrategyLimit,
			"concurrent strategy limit of %d reached", s.maxConcurrent)
	}

	ctx, cancel := context.WithCancel(context.Background())

	t := &task{
		spec:   spec,
		cancel: cancel,
		status: Status{
			StrategyID: spec.StrategyID,
			Symbol:     spec.Symbol,
			StartedAt:  time.Now().UTC(),
		},
	}

	s.running[spec.StrategyID] = t
	s.collector.StrategiesLive.Inc()
	s.logger.Info("starting strategy",
		zap.String("strategy", spec.StrategyID), zap.Duration("interval", spec.Interval))

	go s.poll(ctx, t)

	return nil
}

// Stop halts a strategy immediately: no further polls start, and an
// in-flight pass is cancelled at its next blocking point. Trades already
// recorded stay recorded.
func (s *Scheduler) Stop(strategyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.running[strategyID]
	if !exists {
		return errors.Newf(errors.ErrCodeStrategyNotFound, "strategy %s is not running", strategyID)
	}

	t.cancel()
	delete(s.running, strategyID)
	s.collector.StrategiesLive.Dec()
	s.logger.Info("stopped strategy", zap.String("strategy", strategyID))

	return nil
}

// StopAll halts every running strategy.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.running {
		t.cancel()
		delete(s.running, id)
		s.collector.StrategiesLive.Dec()
	}
}

// List returns the status of every running strategy.
func (s *Scheduler) List() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Status, 0, len(s.running))

	for _, t := range s.running {
		t.mu.Lock()
		out = append(out, t.status)
		t.mu.Unlock()
	}

	return out
}

// poll runs the strategy's evaluation loop: one pass immediately, then one
// per interval tick. Polls for one strategy never overlap.
func (s *Scheduler) poll(ctx context.Context, t *task) {
	ticker := time.NewTicker(t.spec.Interval)
	defer ticker.Stop()

	s.pass(ctx, t)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(ctx, t)
		}
	}
}

// pass fetches bars (with retry on transient data source failures),
// evaluates the graph, and applies the final signal.
func (s *Scheduler) pass(ctx context.Context, t *task) {
	if ctx.Err() != nil {
		return
	}

	started := time.Now()

	bars, err := s.fetch(ctx, t.spec)
	if err != nil {
		t.recordError(err)
		s.logger.Warn("bar fetch failed",
			zap.String("strategy", t.spec.StrategyID), zap.Error(err))

		return
	}

	if bars.Len() == 0 {
		t.recordError(errors.New(errors.ErrCodeDataNotFound, "empty bar series"))
		return
	}

	pass := s.evaluator.Evaluate(&t.spec.Definition, bars)
	s.collector.PassesTotal.WithLabelValues(string(pass.FinalSignal)).Inc()
	s.collector.PassDuration.Observe(time.Since(started).Seconds())

	last := bars.Len() - 1
	trade, err := s.tracker.Apply(pass.FinalSignal, position.Fill{
		StrategyID: t.spec.StrategyID,
		Symbol:     t.spec.Symbol,
		Timeframe:  t.spec.Timeframe,
		Shares:     t.spec.Shares,
		Price:      bars.Close[last],
		Time:       bars.Timestamps[last],
	})
	if err != nil {
		t.recordError(err)
		return
	}

	if trade != nil {
		s.collector.TradesRecorded.Inc()
	}

	t.recordPass(pass.FinalSignal)
}

// fetch retries transient data source failures with exponential backoff,
// bounded so one poll cannot outlive its interval by much.
func (s *Scheduler) fetch(ctx context.Context, spec Spec) (*types.BarSeries, error) {
	var bars *types.BarSeries

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	err := backoff.Retry(func() error {
		fetched, err := s.source.Bars(ctx, spec.Symbol, spec.Timeframe, spec.BarLimit)
		if err != nil {
			return err
		}

		bars = fetched

		return nil
	}, policy)
	if err != nil {
		return nil, err
	}

	return bars, nil
}

func (t *task) recordPass(signal types.Signal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.Passes++
	t.status.LastSignal = string(signal)
	t.status.LastError = ""
}

func (t *task) recordError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.LastError = err.Error()
}
