package progress

import (
	"testing"

	"cadence/internal/queue"
)

func albumJob(tracks int) *queue.Job {
	job := &queue.Job{ID: 1, Status: queue.StatusDownloading}
	for i := 1; i <= tracks; i++ {
		job.SubTasks = append(job.SubTasks, queue.SubTask{TrackNumber: i, Title: "t", Status: queue.SubTaskPending})
	}
	return job
}

func feed(p *Parser, job *queue.Job, lines ...string) {
	for _, line := range lines {
		p.Apply(job, line)
	}
}

func TestTrackLineThenNameLine(t *testing.T) {
	job := albumJob(3)
	p := NewParser(0)

	feed(p, job, "Track 1 of 3:", "Opening")
	if job.SubTasks[0].Status != queue.SubTaskDownloading {
		t.Fatalf("track 1 should be downloading, got %s", job.SubTasks[0].Status)
	}

	feed(p, job, "Track 2 of 3:", "Song Title")
	if job.Progress != "Track 2/3 (33%): Song Title" {
		t.Fatalf("unexpected progress %q", job.Progress)
	}
	if job.SubTasks[0].Status != queue.SubTaskCompleted {
		t.Fatalf("track 1 should be completed, got %s", job.SubTasks[0].Status)
	}
	if job.SubTasks[1].Status != queue.SubTaskDownloading {
		t.Fatalf("track 2 should be downloading, got %s", job.SubTasks[1].Status)
	}
	if job.TotalTracks != 3 {
		t.Fatalf("expected total 3, got %d", job.TotalTracks)
	}
	state := p.State()
	if state.AwaitingTrackName || !state.HasActive || state.ActiveIndex != 1 || state.CompletedTracks != 1 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestNameLineBypassesOtherPatterns(t *testing.T) {
	job := albumJob(2)
	p := NewParser(2)
	feed(p, job, "Track 1 of 2:", "Downloading... 50%")
	if job.Progress != "Track 1/2 (0%): Downloading... 50%" {
		t.Fatalf("name line must only append, got %q", job.Progress)
	}
}

func TestDecryptingProgressUsesCounters(t *testing.T) {
	job := &queue.Job{}
	p := NewParser(3)
	feed(p, job, "Decrypting...   47%")
	if job.Progress != "Decrypting 47% [1/3]" {
		t.Fatalf("unexpected progress %q", job.Progress)
	}
}

func TestDownloadingProgressDefaultsToSingleTrack(t *testing.T) {
	job := &queue.Job{}
	p := NewParser(0)
	feed(p, job, "Downloading... 5%")
	if job.Progress != "Downloading 5% [1/1]" {
		t.Fatalf("unexpected progress %q", job.Progress)
	}
}

func TestCountersFollowTrackTotals(t *testing.T) {
	job := albumJob(10)
	p := NewParser(1)
	feed(p, job, "Track 4 of 10:", "Name", "Decrypting... 99%")
	if job.Progress != "Decrypting 99% [4/10]" {
		t.Fatalf("unexpected progress %q", job.Progress)
	}
}

func TestAlreadyExistsSkipsActiveSubTask(t *testing.T) {
	job := albumJob(2)
	p := NewParser(2)
	feed(p, job, "Track 1 of 2:", "Intro", "Track already exists locally")

	if job.SubTasks[0].Status != queue.SubTaskSkipped {
		t.Fatalf("expected skipped, got %s", job.SubTasks[0].Status)
	}
	if got := p.State().CompletedTracks; got != 1 {
		t.Fatalf("expected completed 1, got %d", got)
	}

	feed(p, job, "Track 2 of 2:", "Outro")
	if job.SubTasks[0].Status != queue.SubTaskCompleted {
		t.Fatalf("next track line should complete the previous sub-task, got %s", job.SubTasks[0].Status)
	}
	if job.Progress != "Track 2/2 (50%): Outro" {
		t.Fatalf("unexpected progress %q", job.Progress)
	}
}

func TestFinishOverridesSkippedActiveSubTask(t *testing.T) {
	job := albumJob(2)
	p := NewParser(2)
	feed(p, job, "Track 1 of 2:", "Intro", "Track already exists locally")

	p.Finish(job, false)
	if job.SubTasks[0].Status != queue.SubTaskFailed {
		t.Fatalf("failed exit should settle the active sub-task as failed, got %s", job.SubTasks[0].Status)
	}
	if job.SubTasks[1].Status != queue.SubTaskPending {
		t.Fatalf("untouched sub-task changed to %s", job.SubTasks[1].Status)
	}
}

func TestTrackWithoutMatchingSubTask(t *testing.T) {
	job := &queue.Job{}
	p := NewParser(1)
	feed(p, job, "Track 1 of 1:", "Single")
	if job.Progress != "Track 1/1 (0%): Single" {
		t.Fatalf("unexpected progress %q", job.Progress)
	}
	if p.State().HasActive {
		t.Fatal("no sub-task should be active")
	}
	feed(p, job, "Track already exists locally")
	if got := p.State().CompletedTracks; got != 1 {
		t.Fatalf("expected completed 1, got %d", got)
	}
}

func TestFinishSettlesActiveSubTask(t *testing.T) {
	job := albumJob(2)
	p := NewParser(2)
	feed(p, job, "Track 2 of 2:", "Last")
	p.Finish(job, false)
	if job.SubTasks[1].Status != queue.SubTaskFailed {
		t.Fatalf("expected failed, got %s", job.SubTasks[1].Status)
	}

	job = albumJob(1)
	p = NewParser(1)
	feed(p, job, "Track 1 of 1:", "Only")
	p.Finish(job, true)
	if job.SubTasks[0].Status != queue.SubTaskCompleted {
		t.Fatalf("expected completed, got %s", job.SubTasks[0].Status)
	}
}

func TestReplacedSubTaskListIsNotTouched(t *testing.T) {
	job := albumJob(3)
	p := NewParser(3)
	feed(p, job, "Track 3 of 3:", "Name")

	job.SubTasks = []queue.SubTask{{TrackNumber: 1, Status: queue.SubTaskPending}}
	p.Finish(job, true)
	if job.SubTasks[0].Status != queue.SubTaskPending {
		t.Fatalf("stale index must not touch new list, got %s", job.SubTasks[0].Status)
	}
}

func TestSalient(t *testing.T) {
	cases := map[string]bool{
		"Track 1 of 2:":            true,
		"Decrypted file":           true,
		"Queue empty":              true,
		"Failed to fetch":          true,
		"Downloading... 3%":        true,
		"Decrypting... 3%":         true,
		"track lowercase":          false,
		"Some unrelated chatter":   false,
		"Checking for new version": false,
	}
	for line, want := range cases {
		if got := Salient(line); got != want {
			t.Errorf("Salient(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestPercentTruncates(t *testing.T) {
	if got := percent(2, 3); got != 66 {
		t.Fatalf("expected 66, got %d", got)
	}
	if got := percent(1, 0); got != 0 {
		t.Fatalf("zero total must not divide, got %d", got)
	}
}
