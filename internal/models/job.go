package models

import "time"

// Status is the lifecycle state of a download job.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusDownloading Status = "downloading"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// rank orders the forward-only status progression. failed is terminal
// and reachable from any non-terminal state.
func (s Status) rank() int {
	switch s {
	case StatusQueued:
		return 0
	case StatusDownloading:
		return 1
	case StatusProcessing:
		return 2
	case StatusCompleted, StatusFailed:
		return 3
	}
	return -1
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next is a legal
// forward transition.
func (s Status) CanTransitionTo(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusFailed {
		return true
	}
	return next.rank() > s.rank()
}

// Job holds the tracked state of one submitted download. The worker
// executing the job is its single writer; polling requests read
// snapshots through the store.
type Job struct {
	ID       string  `json:"id"`
	Status   Status  `json:"status"`
	Progress float64 `json:"progress"`

	// Transfer telemetry, absent until the first engine callback.
	Speed           string `json:"speed,omitempty"`
	ETA             int    `json:"eta,omitempty"`
	DownloadedBytes int64  `json:"downloaded_bytes,omitempty"`
	TotalBytes      int64  `json:"total_bytes,omitempty"`

	Error    string `json:"error,omitempty"`
	Filename string `json:"filename,omitempty"`

	ArtifactPath string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Container is the requested output container.
type Container string

const (
	ContainerMP3 Container = "mp3"
	ContainerMP4 Container = "mp4"
)

// Quality is the requested quality tier.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// DownloadRequest is the validated submission payload handed to a worker.
type DownloadRequest struct {
	URL       string    `json:"url"`
	Format    Container `json:"format"`
	Quality   Quality   `json:"quality"`
	StartTime *float64  `json:"start_time,omitempty"`
	EndTime   *float64  `json:"end_time,omitempty"`
}
