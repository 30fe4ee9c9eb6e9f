package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"cadence/internal/api"
	"cadence/internal/queue"
	"cadence/internal/testsupport"
)

func TestQueueAddListAndClear(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithWorkerScript(`printf 'Track 1 of 2:\nIntro\nTrack 2 of 2:\nOutro\n'`))

	out, _, err := env.run(t, "queue", "add", "https://music.example/us/album/demo/1", "--codec", "AAC", "--title", "Demo")
	if err != nil {
		t.Fatalf("queue add: %v", err)
	}
	requireContains(t, out, "Queued job 1 (aac)")

	waitFor(t, 5*time.Second, func() bool {
		job, err := env.queue.Get(1)
		return err == nil && job.Status == queue.StatusCompleted
	})

	if err := env.queue.Update(1, func(j *queue.Job) {
		j.SubTasks = []queue.SubTask{
			{TrackNumber: 1, Title: "Intro", Status: queue.SubTaskCompleted},
			{TrackNumber: 2, Title: "Outro", Status: queue.SubTaskCompleted},
		}
	}); err != nil {
		t.Fatalf("attach sub-tasks: %v", err)
	}

	out, _, err = env.run(t, "queue", "list", "--tracks")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "Demo")
	requireContains(t, out, "2/2")
	requireContains(t, out, "Outro")

	out, _, err = env.run(t, "--json", "queue", "list")
	if err != nil {
		t.Fatalf("queue list --json: %v", err)
	}
	var jobs []api.Job
	if err := json.Unmarshal([]byte(out), &jobs); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(jobs) != 1 || jobs[0].TotalTracks != 2 || len(jobs[0].SubTasks) != 2 {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}

	out, _, err = env.run(t, "queue", "clear")
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 finished jobs")

	out, _, err = env.run(t, "queue", "list")
	if err != nil {
		t.Fatalf("queue list after clear: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestQueueAddRejectsInvalidCodec(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "queue", "add", "https://music.example/us/album/demo/1", "--codec", "flac")
	if err == nil {
		t.Fatal("expected validation error")
	}
	requireContains(t, err.Error(), "400")
	if len(env.queue.List()) != 0 {
		t.Fatal("rejected submission must not be queued")
	}
}

func TestParallelCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "parallel", "0")
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	requireContains(t, out, "Parallel limit set to 0")

	if _, _, err := env.run(t, "parallel", "many"); err == nil {
		t.Fatal("expected error for non-numeric limit")
	}

	out, _, err = env.run(t, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Parallel limit") || !strings.Contains(out, " 0") {
		t.Fatalf("status did not report limit:\n%s", out)
	}
}

func TestTokenFromConfigIsSent(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithAPIToken("s3cret"))

	if _, _, err := env.run(t, "queue", "list"); err != nil {
		t.Fatalf("queue list with configured token: %v", err)
	}
	_, _, err := runCLI(t, []string{"--api", env.apiAddr, "--config", env.configPath + ".missing", "queue", "list"})
	if err == nil {
		t.Fatal("expected unauthorized without token")
	}
	requireContains(t, err.Error(), "401")
}

func TestTrackSummary(t *testing.T) {
	job := api.Job{TotalTracks: 3, SubTasks: []api.SubTask{
		{TrackNumber: 1, Status: "completed"},
		{TrackNumber: 2, Status: "skipped"},
		{TrackNumber: 3, Status: "failed"},
	}}
	if got := trackSummary(job); got != "2/3" {
		t.Fatalf("trackSummary = %q", got)
	}
	if got := trackSummary(api.Job{TotalTracks: 4}); got != "4" {
		t.Fatalf("summary without sub-tasks = %q", got)
	}
	if got := trackSummary(api.Job{}); got != "" {
		t.Fatalf("empty job summary = %q", got)
	}
	if got := jobTitle(api.Job{URL: "https://x"}); got != "https://x" {
		t.Fatalf("jobTitle fallback = %q", got)
	}
}
