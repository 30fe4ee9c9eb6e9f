package queue_test

import (
	"errors"
	"sync"
	"testing"

	"cadence/internal/queue"
)

func submit(t *testing.T, q *queue.Queue, url string) *queue.Job {
	t.Helper()
	job, err := q.Submit(queue.Request{URL: url})
	if err != nil {
		t.Fatalf("Submit(%q): %v", url, err)
	}
	return job
}

func TestSubmitAssignsMonotonicIDsAndDefaults(t *testing.T) {
	q := queue.New()
	first := submit(t, q, "https://music.apple.com/us/album/a/1")
	second := submit(t, q, "https://music.apple.com/us/album/b/2")

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("unexpected ids: %d %d", first.ID, second.ID)
	}
	if first.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", first.Status)
	}
	if first.Codec != queue.DefaultCodec {
		t.Fatalf("expected default codec, got %q", first.Codec)
	}

	if removed := q.ClearTerminal(); removed != 0 {
		t.Fatalf("expected nothing cleared, got %d", removed)
	}
	third := submit(t, q, "https://music.apple.com/us/album/c/3")
	if third.ID != 3 {
		t.Fatalf("ids must keep increasing, got %d", third.ID)
	}
}

func TestSubmitRejectsEmptyURL(t *testing.T) {
	q := queue.New()
	if _, err := q.Submit(queue.Request{URL: "   "}); !errors.Is(err, queue.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestClaimHonoursLimitAndFIFO(t *testing.T) {
	q := queue.New()
	for _, url := range []string{"a", "b", "c"} {
		submit(t, q, url)
	}

	job, ok := q.Claim(2, "Starting...")
	if !ok || job.URL != "a" {
		t.Fatalf("expected first job claimed, got %+v %v", job, ok)
	}
	if job.Progress != "Starting..." || job.StartedAt.IsZero() {
		t.Fatalf("claim did not stamp job: %+v", job)
	}
	job, ok = q.Claim(2, "Starting...")
	if !ok || job.URL != "b" {
		t.Fatalf("expected second job claimed, got %+v %v", job, ok)
	}
	if _, ok := q.Claim(2, "Starting..."); ok {
		t.Fatal("claim must refuse when limit reached")
	}
	if _, ok := q.Claim(0, "Starting..."); ok {
		t.Fatal("claim must refuse with zero limit")
	}
	if _, ok := q.Claim(-4, "Starting..."); ok {
		t.Fatal("claim must refuse with negative limit")
	}
	if got := q.ActiveCount(); got != 2 {
		t.Fatalf("expected 2 active, got %d", got)
	}
}

func TestClaimWithNothingPendingIsNoop(t *testing.T) {
	q := queue.New()
	job := submit(t, q, "a")
	if _, ok := q.Claim(5, "x"); !ok {
		t.Fatal("expected claim")
	}
	if err := q.Transition(job.ID, queue.StatusCompleted, "100% Done", nil); err != nil {
		t.Fatalf("complete: %v", err)
	}
	before := q.List()
	if _, ok := q.Claim(5, "x"); ok {
		t.Fatal("expected no claim")
	}
	after := q.List()
	if before[0].Status != after[0].Status || before[0].Progress != after[0].Progress {
		t.Fatalf("noop claim changed job: %+v -> %+v", before[0], after[0])
	}
}

func TestConcurrentClaimsNeverExceedLimit(t *testing.T) {
	q := queue.New()
	for i := 0; i < 50; i++ {
		submit(t, q, "job")
	}
	const limit = 3
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed = map[int64]int{}
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				job, ok := q.Claim(limit, "Starting...")
				if !ok {
					return
				}
				mu.Lock()
				claimed[job.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(claimed) != limit {
		t.Fatalf("expected %d claimed jobs, got %d", limit, len(claimed))
	}
	for id, n := range claimed {
		if n != 1 {
			t.Fatalf("job %d claimed %d times", id, n)
		}
	}
	if got := q.ActiveCount(); got != limit {
		t.Fatalf("active count %d exceeds limit %d", got, limit)
	}
}

func TestTransitionsOnlyMoveForward(t *testing.T) {
	q := queue.New()
	job := submit(t, q, "a")

	if err := q.Transition(job.ID, queue.StatusCompleted, "done", nil); !errors.Is(err, queue.ErrInvalidTransition) {
		t.Fatalf("pending -> completed must fail, got %v", err)
	}
	if _, ok := q.Claim(1, "Starting..."); !ok {
		t.Fatal("expected claim")
	}
	if err := q.Transition(job.ID, queue.StatusPending, "", nil); !errors.Is(err, queue.ErrInvalidTransition) {
		t.Fatalf("downloading -> pending must fail, got %v", err)
	}
	if err := q.Transition(job.ID, queue.StatusFailed, "Failed: exit status 2", func(j *queue.Job) {
		j.SetSubTaskStatus(0, queue.SubTaskFailed)
	}); err != nil {
		t.Fatalf("downloading -> failed: %v", err)
	}
	if err := q.Transition(job.ID, queue.StatusCompleted, "", nil); !errors.Is(err, queue.ErrInvalidTransition) {
		t.Fatalf("failed -> completed must fail, got %v", err)
	}

	got, err := q.Get(job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != queue.StatusFailed || got.Progress != "Failed: exit status 2" || got.FinishedAt.IsZero() {
		t.Fatalf("unexpected final job: %+v", got)
	}
}

func TestUpdateRejectsStatusChanges(t *testing.T) {
	q := queue.New()
	job := submit(t, q, "a")
	err := q.Update(job.ID, func(j *queue.Job) {
		j.Title = "Title"
		j.Status = queue.StatusCompleted
	})
	if !errors.Is(err, queue.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	got, _ := q.Get(job.ID)
	if got.Status != queue.StatusPending {
		t.Fatalf("status must be restored, got %s", got.Status)
	}
}

func TestUpdateUnknownJob(t *testing.T) {
	q := queue.New()
	if err := q.Update(42, func(*queue.Job) {}); !errors.Is(err, queue.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListReturnsCopies(t *testing.T) {
	q := queue.New()
	job := submit(t, q, "a")
	if err := q.Update(job.ID, func(j *queue.Job) {
		j.SubTasks = []queue.SubTask{{TrackNumber: 1, Title: "One", Status: queue.SubTaskPending}}
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	snapshot := q.List()
	snapshot[0].SubTasks[0].Status = queue.SubTaskFailed
	snapshot[0].Progress = "mutated"

	fresh, _ := q.Get(job.ID)
	if fresh.SubTasks[0].Status != queue.SubTaskPending || fresh.Progress != "" {
		t.Fatalf("snapshot mutation leaked into queue: %+v", fresh)
	}
}

func TestClearTerminalKeepsActiveWork(t *testing.T) {
	q := queue.New()
	done := submit(t, q, "done")
	failed := submit(t, q, "failed")
	running := submit(t, q, "running")
	waiting := submit(t, q, "waiting")

	for range 3 {
		q.Claim(3, "Starting...")
	}
	_ = q.Transition(done.ID, queue.StatusCompleted, "100% Done", nil)
	_ = q.Transition(failed.ID, queue.StatusFailed, "Error: boom", nil)

	if removed := q.ClearTerminal(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	jobs := q.List()
	if len(jobs) != 2 || jobs[0].ID != running.ID || jobs[1].ID != waiting.ID {
		t.Fatalf("unexpected remaining jobs: %+v", jobs)
	}
	stats := q.Stats()
	if stats[queue.StatusDownloading] != 1 || stats[queue.StatusPending] != 1 || stats[queue.StatusCompleted] != 0 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := queue.ParseStatus(" Downloading "); !ok || s != queue.StatusDownloading {
		t.Fatalf("unexpected parse: %q %v", s, ok)
	}
	if _, ok := queue.ParseStatus("review"); ok {
		t.Fatal("unknown status must not parse")
	}
}
