package ports

import (
	"context"

	"songforge/internal/core/domain"
)

// AudioRequest carries the parameters for submitting a music generation job.
type AudioRequest struct {
	Title        string
	Lyrics       string
	Style        string
	CustomMode   bool
	Instrumental bool
	Model        string
}

// VideoRequest chains a video render onto a finished audio task.
type VideoRequest struct {
	AudioTaskID string
	AudioID     string
}

// JobClient defines the contract for talking to the remote generation
// service.
type JobClient interface {
	// SubmitAudio creates a music generation task and returns its id.
	// Fails with *domain.SubmissionError when the service rejects the job.
	SubmitAudio(ctx context.Context, req AudioRequest) (string, error)

	// SubmitVideo creates a video render task for an existing audio clip.
	SubmitVideo(ctx context.Context, req VideoRequest) (string, error)

	// CheckStatus queries one task and normalizes the response into the
	// three-valued status. Fails with *domain.TransientQueryError on network
	// failure (caller may retry) and *domain.PermanentQueryError when the
	// service reports the task id as unknown (caller must not retry).
	CheckStatus(ctx context.Context, kind domain.JobKind, taskID string) (*domain.StatusResult, error)
}

// LyricsGenerator defines the contract for the LLM lyrics step.
type LyricsGenerator interface {
	// Generate produces lyrics for the theme. The returned title comes from
	// the first line of the model output.
	Generate(ctx context.Context, theme, style string, verses int, chorus bool) (*domain.Lyrics, error)
}

// Downloader defines the contract for fetching a finished artifact.
type Downloader interface {
	// Download writes the payload at url to dest and returns the number of
	// bytes written. A failed download must not leave a partial file at
	// dest; errors are reported as *domain.DownloadError.
	Download(ctx context.Context, url, dest string) (int64, error)
}

// TaskStore defines the contract for the persisted single-slot task record.
type TaskStore interface {
	// Save overwrites the record for the job's kind. Replacement is atomic:
	// a crash mid-write never leaves a record Load cannot parse.
	Save(ctx context.Context, rec domain.TaskRecord) error

	// Load returns the last saved record for kind. A missing or corrupt
	// record is reported as ok=false, never as an error.
	Load(ctx context.Context, kind domain.JobKind) (domain.TaskRecord, bool)
}
