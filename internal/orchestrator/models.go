package orchestrator

import "time"

// SessionID identifies one episode generation attempt. It is chosen by the
// caller and treated as opaque.
type SessionID string

// Status is the lifecycle state of a single scene job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// rank orders statuses so updates can only move forward.
// Both terminal states share the highest rank.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	default:
		return -1
	}
}

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobRecord is the generation state of one scene.
// This also matches the JSON payload returned by the status endpoints.
type JobRecord struct {
	SceneID  int    `json:"sceneId"`
	Status   Status `json:"status"`
	Progress int    `json:"progress"`
	VideoURL string `json:"videoUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

// JobUpdate is a partial change to a JobRecord. Nil fields are left as-is.
type JobUpdate struct {
	Status   *Status
	Progress *int
	VideoURL *string
	Error    *string
}

// Processing moves a record into processing at the given progress.
func Processing(progress int) JobUpdate {
	st := StatusProcessing
	return JobUpdate{Status: &st, Progress: &progress}
}

// Checkpoint only changes the progress value.
func Checkpoint(progress int) JobUpdate {
	return JobUpdate{Progress: &progress}
}

// Completed finishes a record with its media locator.
func Completed(videoURL string) JobUpdate {
	st := StatusCompleted
	p := 100
	return JobUpdate{Status: &st, Progress: &p, VideoURL: &videoURL}
}

// Failed finishes a record with an error message.
func Failed(msg string) JobUpdate {
	st := StatusFailed
	p := 0
	return JobUpdate{Status: &st, Progress: &p, Error: &msg}
}

// apply merges u into rec. It returns false when the update is dropped
// because it would move rec backwards or out of a terminal state.
func (u JobUpdate) apply(rec *JobRecord) bool {
	if rec.Status.Terminal() {
		return false
	}
	if u.Status != nil {
		if u.Status.rank() < rec.Status.rank() || u.Status.rank() < 0 {
			return false
		}
		rec.Status = *u.Status
	}
	if u.Progress != nil {
		rec.Progress = clampPercent(*u.Progress)
	}
	if u.VideoURL != nil {
		rec.VideoURL = *u.VideoURL
	}
	if u.Error != nil {
		rec.Error = *u.Error
	}

	if rec.Status != StatusCompleted {
		rec.VideoURL = ""
	}
	if rec.Status != StatusFailed {
		rec.Error = ""
	}
	return true
}

// Generation distinguishes successive sessions created under the same id.
// Workers from a replaced session hold a stale generation and cannot write
// into its successor.
type Generation uint64

// SessionState is the stored representation of a session.
type SessionState struct {
	ID         SessionID
	Generation Generation
	Records    []JobRecord

	// Metadata managed by the repository (not exposed in the API).
	CreatedAt time.Time
	UpdatedAt time.Time
}

// finished reports whether every record has reached a terminal state.
func (s *SessionState) finished() bool {
	for _, rec := range s.Records {
		if !rec.Status.Terminal() {
			return false
		}
	}
	return true
}

func clampPercent(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
