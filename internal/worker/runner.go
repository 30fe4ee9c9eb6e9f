package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Invocation describes one worker launch.
type Invocation struct {
	Binary string
	Args   []string
	Dir    string
	Env    []string
}

// NewInvocation assembles the invocation for a job.
func NewInvocation(binary, dir, codec, url string) Invocation {
	return Invocation{
		Binary: binary,
		Args:   BuildArgs(codec, url),
		Dir:    dir,
	}
}

// String renders the command line for logs.
func (inv Invocation) String() string {
	return strings.Join(append([]string{inv.Binary}, inv.Args...), " ")
}

// Process is a running worker.
type Process interface {
	// Output returns the combined stdout/stderr stream. It reaches EOF once
	// the process and any children holding the pipe have exited.
	Output() io.Reader
	// Wait blocks until the process exits and reports a non-zero exit as an error.
	Wait() error
}

// Runner launches worker processes.
type Runner interface {
	Start(ctx context.Context, inv Invocation) (Process, error)
}

// ExecRunner runs workers as local child processes.
type ExecRunner struct {
	// KillGrace is how long a cancelled worker has to exit after SIGTERM
	// before it is killed.
	KillGrace time.Duration
}

// NewExecRunner returns a runner with the given termination grace period.
func NewExecRunner(killGrace time.Duration) *ExecRunner {
	return &ExecRunner{KillGrace: killGrace}
}

// Start launches the invocation with stdout and stderr merged.
func (r *ExecRunner) Start(ctx context.Context, inv Invocation) (Process, error) {
	if strings.TrimSpace(inv.Binary) == "" {
		return nil, errors.New("worker binary not configured")
	}
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create output pipe: %w", err)
	}

	cmd := exec.CommandContext(ctx, inv.Binary, inv.Args...) //nolint:gosec
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.WaitDelay = r.KillGrace
	configureProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, fmt.Errorf("start %s: %w", inv.Binary, err)
	}
	// The child holds its own copy of the write end.
	_ = pw.Close()
	return &execProcess{cmd: cmd, output: pr}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	output *os.File
}

func (p *execProcess) Output() io.Reader { return p.output }

func (p *execProcess) Wait() error {
	defer p.output.Close()
	return p.cmd.Wait()
}
