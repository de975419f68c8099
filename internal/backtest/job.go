package backtest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowquant-lab/flowquant/internal/logger"
	"github.com/flowquant-lab/flowquant/internal/metrics"
	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// job is one submitted backtest with its observable state.
type job struct {
	mu     sync.RWMutex
	state  types.JobState
	result *types.BacktestResult
	cancel context.CancelFunc
}

func (j *job) snapshot() types.JobState {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return j.state
}

// setProgress advances the progress percentage. Progress never moves
// backwards.
func (j *job) setProgress(pct float64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if pct > j.state.Progress {
		j.state.Progress = pct
	}
}

func (j *job) setStatus(status types.JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.state.Status = status
}

func (j *job) finish(result *types.BacktestResult, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.result = result

	if err != nil {
		j.state.Status = types.JobStatusFailed
		j.state.Error = err.Error()

		return
	}

	j.state.Status = types.JobStatusCompleted
	j.state.Progress = 100
}

// Manager owns the backtest job registry: submission, state queries,
// results, and cancellation.
type Manager struct {
	engine    *Engine
	collector *metrics.Collector
	logger    *logger.Logger

	mu   sync.RWMutex
	jobs map[string]*job
}

// NewManager creates a job manager. collector may be nil.
func NewManager(engine *Engine, collector *metrics.Collector, log *logger.Logger) *Manager {
	if collector == nil {
		collector = metrics.NewNopCollector()
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Manager{
		engine:    engine,
		collector: collector,
		logger:    log,
		jobs:      make(map[string]*job),
	}
}

// Submit validates the run parameters, queues a job, and starts it in the
// background. Bad parameters reject the job before any work starts.
func (m *Manager) Submit(def *types.StrategyDefinition, bars *types.BarSeries, cfg ExecutionConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	if err := def.Validate(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(context.Background())

	j := &job{
		state: types.JobState{
			ID:          uuid.NewString(),
			Status:      types.JobStatusQueued,
			SubmittedAt: time.Now().UTC(),
		},
		cancel: cancel,
	}

	m.mu.Lock()
	m.jobs[j.state.ID] = j
	m.mu.Unlock()

	m.collector.JobsSubmitted.Inc()
	m.logger.Info("backtest job queued",
		zap.String("job", j.state.ID), zap.String("strategy", cfg.StrategyID))

	go m.run(ctx, j, def, bars, cfg)

	return j.state.ID, nil
}

func (m *Manager) run(ctx context.Context, j *job, def *types.StrategyDefinition, bars *types.BarSeries, cfg ExecutionConfig) {
	j.setStatus(types.JobStatusRunning)

	result, err := m.engine.Run(ctx, def, bars, cfg, j.setProgress)
	j.finish(result, err)

	if err != nil {
		m.collector.JobsFailed.Inc()
		m.logger.Warn("backtest job failed", zap.String("job", j.state.ID), zap.Error(err))

		return
	}

	m.collector.JobsCompleted.Inc()
	m.logger.Info("backtest job completed",
		zap.String("job", j.state.ID), zap.Int("trades", len(result.Trades)))
}

// State returns the current snapshot of a job.
func (m *Manager) State(id string) (types.JobState, error) {
	j, err := m.job(id)
	if err != nil {
		return types.JobState{}, err
	}

	return j.snapshot(), nil
}

// Result returns the outcome of a finished job. Failed jobs still expose
// their partial result.
func (m *Manager) Result(id string) (*types.BacktestResult, error) {
	j, err := m.job(id)
	if err != nil {
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.result == nil {
		return nil, errors.Newf(errors.ErrCodeJobNotFound, "job %s has not finished", id)
	}

	return j.result, nil
}

// Cancel stops a running job. The in-flight bar finishes; recorded trades
// are preserved.
func (m *Manager) Cancel(id string) error {
	j, err := m.job(id)
	if err != nil {
		return err
	}

	j.cancel()

	return nil
}

func (m *Manager) job(id string) (*job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeJobNotFound, "no job with id %s", id)
	}

	return j, nil
}
