package workflow

import (
	"context"
	"errors"

	"cadence/internal/logging"
)

// Start begins the dispatch loop. Pending jobs are dispatched immediately.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	m.logger.Info("workflow started", logging.Int("limit", m.ParallelLimit()))
	go m.run(runCtx)
	return nil
}

// Stop terminates the dispatch loop, cancels running workers, and waits for
// their jobs to be recorded.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.jobs.Wait()
	m.logger.Info("workflow stopped")
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	m.Dispatch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.signal:
			m.Dispatch(ctx)
		}
	}
}

// Dispatch claims pending jobs while capacity remains and starts a goroutine
// for each. It returns the number of jobs started; with no capacity or no
// pending jobs it does nothing.
func (m *Manager) Dispatch(ctx context.Context) int {
	started := 0
	for ctx.Err() == nil {
		job, ok := m.queue.Claim(m.ParallelLimit(), progressStarting)
		if !ok {
			break
		}
		m.metrics.JobStarted()
		m.jobs.Add(1)
		go m.execute(ctx, job)
		started++
	}
	return started
}

// Wait blocks until every dispatched job has finished.
func (m *Manager) Wait() {
	m.jobs.Wait()
}
