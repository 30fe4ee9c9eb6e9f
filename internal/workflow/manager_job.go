package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cadence/internal/linesplit"
	"cadence/internal/logging"
	"cadence/internal/progress"
	"cadence/internal/queue"
	"cadence/internal/services"
	"cadence/internal/worker"
)

const (
	progressStarting = "Starting..."
	progressDone     = "100% Done"
	stageDownload    = "download"
)

// execute runs one claimed job to a terminal status. It always signals the
// scheduler on the way out so freed capacity is reused.
func (m *Manager) execute(ctx context.Context, job *queue.Job) {
	defer m.jobs.Done()
	defer m.Signal()

	started := time.Now()
	ctx = services.WithJobID(ctx, job.ID)
	ctx = services.WithStage(ctx, stageDownload)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, m.logger)
	parser := progress.NewParser(job.TotalTracks)

	// The worker is bound to jobCtx so a panic can stop it before the
	// capacity slot is released.
	jobCtx, cancelJob := context.WithCancel(ctx)
	defer cancelJob()
	var proc worker.Process
	waited := false

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("worker panic: %v", r)
			logger.Error("job panicked", logging.Error(err))
			if proc != nil && !waited {
				cancelJob()
				if werr := reap(proc); werr != nil {
					logger.Debug("worker reaped after panic", logging.Error(werr))
				}
			}
			m.finish(logger, job, parser, false, fmt.Sprintf("Error: %v", r), err, started)
		}
	}()

	m.broadcast("Starting download: " + job.URL)
	inv := worker.NewInvocation(m.cfg.Worker.Binary, m.cfg.Worker.WorkingDir, job.Codec, job.URL)
	logger.Info("starting worker",
		logging.String(logging.FieldURL, job.URL),
		logging.String("command", inv.String()),
	)

	p, err := m.runner.Start(jobCtx, inv)
	if err != nil {
		wrapped := services.Wrap(services.ErrExternalTool, stageDownload, "start worker", "", err)
		logger.Error("worker launch failed", logging.Error(wrapped))
		m.finish(logger, job, parser, false, "Error: "+err.Error(), wrapped, started)
		return
	}
	proc = p

	m.consume(logger, job.ID, parser, proc.Output())

	waited = true
	if err := proc.Wait(); err != nil {
		m.finish(logger, job, parser, false, "Failed: "+err.Error(), err, started)
		return
	}
	m.finish(logger, job, parser, true, progressDone, nil, started)
}

// reap waits for a worker whose output is no longer being consumed. The
// stream is drained in the background so a blocked writer can exit.
func reap(proc worker.Process) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("wait panic: %v", r)
		}
	}()
	go func() {
		defer func() { _ = recover() }()
		_, _ = io.Copy(io.Discard, proc.Output())
	}()
	return proc.Wait()
}

// consume feeds worker output through the line splitter and progress parser
// until the stream closes.
func (m *Manager) consume(logger *slog.Logger, id int64, parser *progress.Parser, output io.Reader) {
	scanner := linesplit.NewScanner(output)
	for scanner.Scan() {
		line := scanner.Text()
		m.metrics.OutputLine()
		logger.Debug("worker output", logging.String("line", line))
		if progress.Salient(line) {
			m.broadcast(progress.BroadcastPrefix + line)
		}
		if err := m.queue.Update(id, func(j *queue.Job) { parser.Apply(j, line) }); err != nil {
			logger.Warn("progress update dropped", logging.Error(err))
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("worker output unreadable; discarding remainder", logging.Error(err))
		_, _ = io.Copy(io.Discard, output)
	}
}

func (m *Manager) finish(logger *slog.Logger, job *queue.Job, parser *progress.Parser, success bool, text string, cause error, started time.Time) {
	next := queue.StatusCompleted
	if !success {
		next = queue.StatusFailed
	}
	err := m.queue.Transition(job.ID, next, text, func(j *queue.Job) {
		parser.Finish(j, success)
	})
	if err != nil {
		logger.Warn("job outcome not recorded", logging.String("status", string(next)), logging.Error(err))
		return
	}
	elapsed := time.Since(started)
	m.metrics.JobFinished(string(next), elapsed)

	snapshot, _ := m.queue.Get(job.ID)
	m.mu.Lock()
	m.lastJob = snapshot
	if cause != nil {
		m.lastErr = cause
	}
	m.mu.Unlock()

	if success {
		logger.Info("job completed", logging.Duration("elapsed", elapsed))
		m.broadcast("Finished download: " + job.URL)
		return
	}
	logger.Warn("job failed", logging.String("progress", text), logging.Duration("elapsed", elapsed))
	m.broadcast("Download failed: " + job.URL)
}
