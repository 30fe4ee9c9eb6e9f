package workflow

import (
	"cadence/internal/queue"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running       bool
	ParallelLimit int
	Active        int
	LastError     string
	LastJob       *queue.Job
	QueueStats    map[queue.Status]int
}

// Status returns the latest workflow information.
func (m *Manager) Status() StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{
		Running:       m.running,
		ParallelLimit: m.limit,
	}
	lastErr := m.lastErr
	lastJob := m.lastJob
	m.mu.RUnlock()

	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if lastJob != nil {
		summary.LastJob = lastJob.Clone()
	}
	summary.QueueStats = m.queue.Stats()
	summary.Active = summary.QueueStats[queue.StatusDownloading]
	return summary
}
