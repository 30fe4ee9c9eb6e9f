package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// DownloadRequest is the body of POST /api/download.
type DownloadRequest struct {
	URL         string `json:"url" validate:"required,http_url"`
	Codec       string `json:"codec,omitempty" validate:"omitempty,codec"`
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	Image       string `json:"image,omitempty" validate:"omitempty,url"`
	TrackNumber int    `json:"track_number,omitempty" validate:"gte=0"`
	TotalTracks int    `json:"total_tracks,omitempty" validate:"gte=0"`
}

// Job describes a queue entry in a transport-friendly format.
type Job struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	Codec       string    `json:"codec"`
	Title       string    `json:"title,omitempty"`
	Artist      string    `json:"artist,omitempty"`
	Album       string    `json:"album,omitempty"`
	Image       string    `json:"image,omitempty"`
	TrackNumber int       `json:"track_number,omitempty"`
	TotalTracks int       `json:"total_tracks,omitempty"`
	Status      string    `json:"status"`
	Progress    string    `json:"progress,omitempty"`
	SubTasks    []SubTask `json:"sub_tasks"`
	CreatedAt   string    `json:"created_at,omitempty"`
	StartedAt   string    `json:"started_at,omitempty"`
	FinishedAt  string    `json:"finished_at,omitempty"`
}

// SubTask is one track of a job.
type SubTask struct {
	TrackNumber int    `json:"track_number"`
	Title       string `json:"title"`
	Status      string `json:"status"`
}

// SubmitResponse is returned after a successful submission.
type SubmitResponse struct {
	Status string `json:"status"`
	Job    Job    `json:"task"`
}

// ParallelLimitRequest is the body of POST /api/settings/parallel.
type ParallelLimitRequest struct {
	Limit *int `json:"limit" validate:"required"`
}

// ParallelLimitResponse reports the limit in effect.
type ParallelLimitResponse struct {
	Status string `json:"status"`
	Limit  int    `json:"limit"`
}

// ClearResponse reports how many finished jobs were dropped.
type ClearResponse struct {
	Status  string `json:"status"`
	Removed int    `json:"removed"`
}

// StatusResponse is a generic acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// WorkflowStatus summarizes dispatch state.
type WorkflowStatus struct {
	Running       bool           `json:"running"`
	ParallelLimit int            `json:"parallel_limit"`
	Active        int            `json:"active"`
	QueueStats    map[string]int `json:"queue_stats"`
	LastError     string         `json:"last_error,omitempty"`
	LastJob       *Job           `json:"last_job,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running        bool               `json:"running"`
	PID            int                `json:"pid"`
	LockFilePath   string             `json:"lock_file_path"`
	LogPath        string             `json:"log_path,omitempty"`
	CatalogEnabled bool               `json:"catalog_enabled"`
	CachePath      string             `json:"cache_path,omitempty"`
	Observers      int                `json:"observers"`
	Workflow       WorkflowStatus     `json:"workflow"`
	Dependencies   []DependencyStatus `json:"dependencies"`
}
