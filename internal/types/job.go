package types

import "time"

// JobStatus is the lifecycle state of a backtest job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobState is the externally visible snapshot of a backtest job.
type JobState struct {
	ID     string    `yaml:"id" json:"id"`
	Status JobStatus `yaml:"status" json:"status"`
	// Progress is a monotonic percentage in [0,100].
	Progress    float64   `yaml:"progress" json:"progress"`
	Error       string    `yaml:"error,omitempty" json:"error,omitempty"`
	SubmittedAt time.Time `yaml:"submitted_at" json:"submitted_at"`
}

// BacktestResult combines the trade list with derived analytics. A failed
// run still carries the trades recorded before the failure.
type BacktestResult struct {
	Trades      []Trade       `yaml:"trades" json:"trades"`
	Metrics     Metrics       `yaml:"metrics" json:"metrics"`
	EquityCurve []EquityPoint `yaml:"equity_curve" json:"equity_curve"`
	// BuyAndHoldPnL is the benchmark P&L of holding the configured share
	// count from the first to the last bar.
	BuyAndHoldPnL float64 `yaml:"buy_and_hold_pnl" json:"buy_and_hold_pnl"`
	Error         string  `yaml:"error,omitempty" json:"error,omitempty"`
}
