package workflow_test

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"cadence/internal/queue"
	"cadence/internal/worker"
)

type recordingHub struct {
	mu    sync.Mutex
	lines []string
}

func (h *recordingHub) Broadcast(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = append(h.lines, line)
}

func (h *recordingHub) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.lines)
}

func (h *recordingHub) Contains(line string) bool {
	return slices.Contains(h.Lines(), line)
}

// scriptedProcess replays fixed output and exits with err.
type scriptedProcess struct {
	output io.Reader
	err    error
}

func (p *scriptedProcess) Output() io.Reader { return p.output }
func (p *scriptedProcess) Wait() error       { return p.err }

// heldProcess blocks its output until release is called.
type heldProcess struct {
	r      *io.PipeReader
	w      *io.PipeWriter
	result chan error
}

func newHeldProcess() *heldProcess {
	r, w := io.Pipe()
	return &heldProcess{r: r, w: w, result: make(chan error, 1)}
}

func (p *heldProcess) Output() io.Reader { return p.r }
func (p *heldProcess) Wait() error       { return <-p.result }

func (p *heldProcess) release(err error) {
	p.result <- err
	_ = p.w.Close()
}

type stubRunner struct {
	mu          sync.Mutex
	invocations []worker.Invocation
	start       func(inv worker.Invocation) (worker.Process, error)
}

func (r *stubRunner) Start(_ context.Context, inv worker.Invocation) (worker.Process, error) {
	r.mu.Lock()
	r.invocations = append(r.invocations, inv)
	start := r.start
	r.mu.Unlock()
	return start(inv)
}

func (r *stubRunner) Invocations() []worker.Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.invocations)
}

func scripted(output string, err error) func(worker.Invocation) (worker.Process, error) {
	return func(worker.Invocation) (worker.Process, error) {
		return &scriptedProcess{output: strings.NewReader(output), err: err}, nil
	}
}

var errExit1 = errors.New("exit status 1")

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func jobStatus(q *queue.Queue, id int64) queue.Status {
	job, err := q.Get(id)
	if err != nil {
		return ""
	}
	return job.Status
}
