package progress

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cadence/internal/queue"
)

var (
	trackPattern    = regexp.MustCompile(`Track (\d+) of (\d+):`)
	decryptPattern  = regexp.MustCompile(`Decrypting\.\.\.\s+(\d+)%`)
	downloadPattern = regexp.MustCompile(`Downloading\.\.\.\s+(\d+)%`)
)

const alreadyExistsMarker = "Track already exists locally"

// BroadcastPrefix tags worker lines forwarded to observers.
const BroadcastPrefix = "[Downloader] "

var salientKeywords = []string{"Track", "Decrypted", "Queue", "Failed", "Downloading", "Decrypting"}

// Salient reports whether a line should be forwarded to observers. Matching
// is case-sensitive and independent of the structured patterns.
func Salient(line string) bool {
	for _, keyword := range salientKeywords {
		if strings.Contains(line, keyword) {
			return true
		}
	}
	return false
}

// State is a read-only view of the parser for diagnostics and tests.
type State struct {
	AwaitingTrackName bool
	ActiveIndex       int
	HasActive         bool
	CompletedTracks   int
	TotalTracks       int
}

// Parser tracks progress for a single worker run.
type Parser struct {
	awaitingTrackName bool
	activeIndex       int
	activeTrack       int
	hasActive         bool
	completedTracks   int
	totalTracks       int
}

// NewParser starts a parser for a job that reported totalTracks up front.
// Values below one fall back to a single-track job.
func NewParser(totalTracks int) *Parser {
	if totalTracks < 1 {
		totalTracks = 1
	}
	return &Parser{totalTracks: totalTracks, activeIndex: -1}
}

// State returns the current parser state.
func (p *Parser) State() State {
	return State{
		AwaitingTrackName: p.awaitingTrackName,
		ActiveIndex:       p.activeIndex,
		HasActive:         p.hasActive,
		CompletedTracks:   p.completedTracks,
		TotalTracks:       p.totalTracks,
	}
}

// Apply interprets one trimmed, non-empty line and updates job in place.
// The caller must hold whatever lock guards job.
func (p *Parser) Apply(job *queue.Job, line string) {
	if m := trackPattern.FindStringSubmatch(line); m != nil {
		current, errCur := strconv.Atoi(m[1])
		total, errTotal := strconv.Atoi(m[2])
		if errCur == nil && errTotal == nil {
			p.startTrack(job, current, total)
			return
		}
	}

	if p.awaitingTrackName {
		job.Progress += ": " + line
		p.awaitingTrackName = false
		return
	}

	if strings.Contains(line, alreadyExistsMarker) {
		if idx, ok := p.active(job); ok {
			job.SetSubTaskStatus(idx, queue.SubTaskSkipped)
		}
		p.completedTracks++
	}

	if m := decryptPattern.FindStringSubmatch(line); m != nil {
		job.Progress = fmt.Sprintf("Decrypting %s%% [%d/%d]", m[1], p.completedTracks+1, p.totalTracks)
	}
	if m := downloadPattern.FindStringSubmatch(line); m != nil {
		job.Progress = fmt.Sprintf("Downloading %s%% [%d/%d]", m[1], p.completedTracks+1, p.totalTracks)
	}
}

// Finish settles the active sub-task once the worker has exited.
func (p *Parser) Finish(job *queue.Job, success bool) {
	status := queue.SubTaskFailed
	if success {
		status = queue.SubTaskCompleted
	}
	p.closeActive(job, status)
}

func (p *Parser) startTrack(job *queue.Job, current, total int) {
	p.completedTracks = current - 1
	p.totalTracks = total
	job.TotalTracks = total
	job.Progress = fmt.Sprintf("Track %d/%d (%d%%)", current, total, percent(p.completedTracks, total))

	p.closeActive(job, queue.SubTaskCompleted)
	if idx, ok := job.SubTaskIndex(current); ok {
		job.SetSubTaskStatus(idx, queue.SubTaskDownloading)
		p.activeIndex = idx
		p.activeTrack = current
		p.hasActive = true
	}
	p.awaitingTrackName = true
}

// closeActive moves the active sub-task to status, whatever it held before,
// and forgets it.
func (p *Parser) closeActive(job *queue.Job, status queue.SubTaskStatus) {
	if idx, ok := p.active(job); ok {
		job.SetSubTaskStatus(idx, status)
	}
	p.activeIndex = -1
	p.activeTrack = 0
	p.hasActive = false
}

// active resolves the active sub-task index, guarding against the sub-task
// list having been replaced since the index was recorded.
func (p *Parser) active(job *queue.Job) (int, bool) {
	if !p.hasActive || p.activeIndex < 0 || p.activeIndex >= len(job.SubTasks) {
		return -1, false
	}
	if job.SubTasks[p.activeIndex].TrackNumber != p.activeTrack {
		return -1, false
	}
	return p.activeIndex, true
}

func percent(completed, total int) int {
	if completed <= 0 || total <= 0 {
		return 0
	}
	return completed * 100 / total
}
