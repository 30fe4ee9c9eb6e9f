package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cadence/internal/config"
	"cadence/internal/logging"
	"cadence/internal/metrics"
	"cadence/internal/queue"
	"cadence/internal/worker"
)

// Broadcaster receives human-readable status lines.
type Broadcaster interface {
	Broadcast(line string)
}

// Manager coordinates dispatch of queued jobs onto workers.
type Manager struct {
	cfg     *config.Config
	queue   *queue.Queue
	hub     Broadcaster
	runner  worker.Runner
	metrics *metrics.Recorder
	logger  *slog.Logger
	signal  chan struct{}

	mu      sync.RWMutex
	limit   int
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	jobs    sync.WaitGroup
	lastErr error
	lastJob *queue.Job
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithRunner replaces the exec-based worker runner.
func WithRunner(r worker.Runner) Option {
	return func(m *Manager) {
		if r != nil {
			m.runner = r
		}
	}
}

// WithMetrics attaches a Prometheus recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(m *Manager) {
		m.metrics = r
	}
}

// NewManager constructs a workflow manager. The initial parallel limit comes
// from queue.max_parallel.
func NewManager(cfg *config.Config, q *queue.Queue, hub Broadcaster, logger *slog.Logger, opts ...Option) *Manager {
	buffer := max(cfg.Queue.SignalBuffer, 1)
	m := &Manager{
		cfg:    cfg,
		queue:  q,
		hub:    hub,
		runner: worker.NewExecRunner(cfg.KillGrace()),
		logger: logging.NewComponentLogger(logger, "workflow"),
		signal: make(chan struct{}, buffer),
		limit:  max(cfg.Queue.MaxParallel, 0),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.metrics.SetParallelLimit(m.limit)
	return m
}

// Signal requests a dispatch pass. It never blocks; signals coalesce while
// one is already pending.
func (m *Manager) Signal() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// ParallelLimit returns the current maximum number of concurrent downloads.
func (m *Manager) ParallelLimit() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.limit
}

// SetParallelLimit changes the concurrency ceiling. Negative values clamp to
// zero, which pauses dispatch. Running jobs are never preempted. The applied
// value is returned.
func (m *Manager) SetParallelLimit(n int) int {
	n = max(n, 0)
	m.mu.Lock()
	m.limit = n
	m.mu.Unlock()

	m.metrics.SetParallelLimit(n)
	m.logger.Info("parallel limit changed", logging.Int("limit", n))
	m.broadcast(fmt.Sprintf("Parallel limit set to %d", n))
	m.Signal()
	return n
}

func (m *Manager) broadcast(line string) {
	if m.hub != nil {
		m.hub.Broadcast(line)
	}
}
