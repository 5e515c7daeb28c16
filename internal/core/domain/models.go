package domain

import "time"

// JobKind identifies which kind of generation a remote task performs.
type JobKind string

const (
	KindAudio JobKind = "audio"
	KindVideo JobKind = "video"
)

// Valid reports whether k is a known job kind.
func (k JobKind) Valid() bool {
	return k == KindAudio || k == KindVideo
}

// Status is the normalized state of a remote generation task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether polling should stop at this status.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Job represents a single remote generation request. The task id is
// assigned by the remote service at submission time and never changes.
type Job struct {
	Kind      JobKind   `json:"kind"`
	TaskID    string    `json:"task_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusResult is the outcome of one status check against the remote
// service. ResultURL is set only when Status is StatusSucceeded; for audio
// tasks AudioID carries the clip identifier needed to chain a video job.
type StatusResult struct {
	Status      Status
	ResultURL   string
	AudioID     string
	ErrorDetail string
}

// PollOutcome is the terminal classification of a poll loop run.
type PollOutcome string

const (
	// OutcomeSucceeded means the remote task finished and produced a result.
	OutcomeSucceeded PollOutcome = "succeeded"
	// OutcomeFailed means the remote task failed or was reported unknown.
	OutcomeFailed PollOutcome = "failed"
	// OutcomeExhausted means the attempt budget ran out while the task was
	// still pending. The remote job may still finish later; the persisted
	// task id lets a future invocation resume watching it.
	OutcomeExhausted PollOutcome = "exhausted"
)

// PollResult carries the terminal state of a poll loop run together with
// the data the caller needs: the result URL on success, the error detail on
// failure, and the number of status checks actually performed.
type PollResult struct {
	Outcome     PollOutcome
	ResultURL   string
	AudioID     string
	ErrorDetail string
	Checks      int
}

// TaskRecord is the single-slot persisted representation of the most
// recently submitted job of a kind. A new submission overwrites it; no
// history is retained.
type TaskRecord struct {
	TaskID  string    `json:"task_id"`
	Kind    JobKind   `json:"kind"`
	SavedAt time.Time `json:"saved_at"`
}

// Lyrics is the output of the lyrics generation step. Title is parsed from
// the first line of the model response; Content is everything after it.
type Lyrics struct {
	Title   string
	Content string
}
