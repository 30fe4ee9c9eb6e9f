package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"cadence/internal/api"
)

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Daemon ==")
	requireContains(t, out, "running")
	requireContains(t, out, "Pending")

	out, _, err = env.run(t, "--json", "status")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var status api.DaemonStatus
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running || status.LockFilePath != env.cfg.LockPath() {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestStatusLinesColour(t *testing.T) {
	status := &api.DaemonStatus{
		Running: true,
		Workflow: api.WorkflowStatus{
			ParallelLimit: 2,
			QueueStats:    map[string]int{"pending": 1, "failed": 0},
			LastError:     "boom",
		},
		Dependencies: []api.DependencyStatus{
			{Name: "Downloader", Available: false, Detail: "not found"},
		},
	}
	plain := strings.Join(statusLines(status, false), "\n")
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("plain output contains escapes: %q", plain)
	}
	requireContains(t, plain, "missing (not found)")
	requireContains(t, plain, "Last error")
	if strings.Index(plain, "Failed") > strings.Index(plain, "Pending") {
		t.Fatalf("queue stats not sorted:\n%s", plain)
	}

	coloured := strings.Join(statusLines(status, true), "\n")
	requireContains(t, coloured, ansiGreen+"running"+ansiReset)
	requireContains(t, coloured, ansiRed+"missing"+ansiReset)
}

func TestCatalogCommandsReportDisabledCatalog(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "search", "daft", "punk")
	if err == nil {
		t.Fatal("expected error with catalog disabled")
	}
	requireContains(t, err.Error(), "503")

	if _, _, err := env.run(t, "artist", "https://music.example/us/artist/x/1"); err == nil {
		t.Fatal("expected error with catalog disabled")
	}
}

func TestEventsCommandStreamsLines(t *testing.T) {
	env := setupCLITestEnv(t)

	done := make(chan struct{})
	var out string
	var runErr error
	go func() {
		defer close(done)
		out, _, runErr = runCLIWithTimeout(t, 2*time.Second,
			[]string{"--config", env.configPath, "--api", env.apiAddr, "events"})
	}()

	waitFor(t, 5*time.Second, func() bool { return env.hub.Len() == 1 })
	env.hub.Broadcast("Added to queue: https://music.example/x")

	// The command exits when its context deadline passes.
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("events command did not exit")
	}
	if runErr != nil {
		t.Fatalf("events: %v", runErr)
	}
	requireContains(t, out, "Added to queue: https://music.example/x")
}

func TestDialAddress(t *testing.T) {
	tests := map[string]string{
		"0.0.0.0:7487":   "127.0.0.1:7487",
		":7487":          "127.0.0.1:7487",
		"[::]:7487":      "127.0.0.1:7487",
		"10.0.0.2:9000":  "10.0.0.2:9000",
		"not-an-address": "not-an-address",
	}
	for in, want := range tests {
		if got := dialAddress(in); got != want {
			t.Fatalf("dialAddress(%q) = %q, want %q", in, got, want)
		}
	}
}
