package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"songforge/internal/core/domain"
	"songforge/internal/core/ports"
)

// Orchestrator coordinates the song generation workflow: lyrics, remote job
// submission, task-id persistence, polling, and artifact download.
type Orchestrator struct {
	lyrics     ports.LyricsGenerator
	jobs       ports.JobClient
	downloader ports.Downloader
	store      ports.TaskStore
	poller     *Poller
	logger     zerolog.Logger
}

// NewOrchestrator creates an Orchestrator. lyrics may be nil when only
// instrumental generation or resume modes are used.
func NewOrchestrator(
	lyrics ports.LyricsGenerator,
	jobs ports.JobClient,
	downloader ports.Downloader,
	store ports.TaskStore,
	poller *Poller,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		lyrics:     lyrics,
		jobs:       jobs,
		downloader: downloader,
		store:      store,
		poller:     poller,
		logger:     logger.With().Str("component", "orchestrator").Logger(),
	}
}

// GenerateParams describes one song generation run.
type GenerateParams struct {
	Theme        string
	Style        string
	Verses       int
	Chorus       bool
	Instrumental bool
	CustomMode   bool
	Model        string
	OutputPath   string
	WithVideo    bool
	VideoOutput  string
}

// RunResult is the outcome of a generation or resume run.
type RunResult struct {
	Job          domain.Job
	Lyrics       *domain.Lyrics
	Outcome      domain.PollOutcome
	Checks       int
	ArtifactPath string
	VideoPath    string
	BytesWritten int64
	ErrorDetail  string
	CompletedAt  time.Time
}

// GenerateSong runs the full workflow: generate lyrics (unless
// instrumental), submit the music job, persist its task id, poll to a
// terminal state, download the audio, and optionally chain a video render.
func (o *Orchestrator) GenerateSong(ctx context.Context, params GenerateParams) (*RunResult, error) {
	log := o.logger.With().Str("run_id", uuid.NewString()).Logger()

	lyrics, err := o.buildLyrics(ctx, params, log)
	if err != nil {
		return nil, err
	}

	log.Info().Str("title", lyrics.Title).Str("model", params.Model).Msg("submitting music generation job")
	taskID, err := o.jobs.SubmitAudio(ctx, ports.AudioRequest{
		Title:        lyrics.Title,
		Lyrics:       lyrics.Content,
		Style:        params.Style,
		CustomMode:   params.CustomMode,
		Instrumental: params.Instrumental,
		Model:        params.Model,
	})
	if err != nil {
		return nil, err
	}

	// Persist before the first poll so a crash from here on is resumable.
	o.saveRecord(ctx, domain.KindAudio, taskID, log)

	result, err := o.watch(ctx, domain.KindAudio, taskID, params.OutputPath, params, log)
	if result != nil {
		result.Lyrics = lyrics
	}
	return result, err
}

// Resume reattaches to an already-submitted job. An empty taskID loads the
// persisted record for the kind.
func (o *Orchestrator) Resume(ctx context.Context, kind domain.JobKind, taskID, outputPath string, params GenerateParams) (*RunResult, error) {
	log := o.logger.With().Str("run_id", uuid.NewString()).Logger()

	if taskID == "" {
		rec, ok := o.store.Load(ctx, kind)
		if !ok {
			return nil, fmt.Errorf("no persisted %s task to resume; pass a task id explicitly", kind)
		}
		taskID = rec.TaskID
		log.Info().Str("kind", string(kind)).Str("task_id", taskID).
			Time("saved_at", rec.SavedAt).Msg("resuming persisted task")
	}

	return o.watch(ctx, kind, taskID, outputPath, params, log)
}

func (o *Orchestrator) buildLyrics(ctx context.Context, params GenerateParams, log zerolog.Logger) (*domain.Lyrics, error) {
	if params.Instrumental {
		// No LLM round-trip: the theme doubles as the prompt and title.
		return &domain.Lyrics{
			Title:   capitalize(params.Theme),
			Content: params.Theme,
		}, nil
	}
	if o.lyrics == nil {
		return nil, fmt.Errorf("lyrics generator not configured")
	}
	log.Info().Str("theme", params.Theme).Str("style", params.Style).Msg("generating lyrics")
	return o.lyrics.Generate(ctx, params.Theme, params.Style, params.Verses, params.Chorus)
}

// watch drives one task to a terminal classification and downloads its
// artifact, then chains the video render when asked for.
func (o *Orchestrator) watch(ctx context.Context, kind domain.JobKind, taskID, outputPath string, params GenerateParams, log zerolog.Logger) (*RunResult, error) {
	result := &RunResult{
		Job: domain.Job{Kind: kind, TaskID: taskID, CreatedAt: time.Now().UTC()},
	}

	poll, err := o.poller.Poll(ctx, kind, taskID)
	if err != nil {
		return result, err
	}
	result.Outcome = poll.Outcome
	result.Checks = poll.Checks
	result.ErrorDetail = poll.ErrorDetail

	switch poll.Outcome {
	case domain.OutcomeFailed:
		return result, fmt.Errorf("%s generation failed: %s", kind, poll.ErrorDetail)
	case domain.OutcomeExhausted:
		// Not an error: the persisted record still points at this task.
		log.Warn().Str("kind", string(kind)).Str("task_id", taskID).
			Msg("task still pending, resume later with the persisted task id")
		return result, nil
	}

	written, err := o.downloader.Download(ctx, poll.ResultURL, outputPath)
	if err != nil {
		// The job itself succeeded; report the URL so the download can be
		// retried without re-generating.
		log.Error().Err(err).Str("result_url", poll.ResultURL).Msg("artifact download failed")
		return result, err
	}
	result.ArtifactPath = outputPath
	result.BytesWritten = written
	result.CompletedAt = time.Now().UTC()
	log.Info().Str("path", outputPath).Int64("bytes", written).Msg("artifact saved")

	if kind == domain.KindAudio && params.WithVideo {
		if err := o.chainVideo(ctx, taskID, poll.AudioID, params, result, log); err != nil {
			return result, err
		}
	}
	return result, nil
}

// chainVideo submits an MP4 render for the finished audio clip and drives
// it through the same persist-poll-download cycle.
func (o *Orchestrator) chainVideo(ctx context.Context, audioTaskID, audioID string, params GenerateParams, result *RunResult, log zerolog.Logger) error {
	if audioID == "" {
		return fmt.Errorf("audio task %s carries no audio id, cannot render video", audioTaskID)
	}

	log.Info().Str("audio_task_id", audioTaskID).Str("audio_id", audioID).Msg("submitting video render job")
	videoTaskID, err := o.jobs.SubmitVideo(ctx, ports.VideoRequest{
		AudioTaskID: audioTaskID,
		AudioID:     audioID,
	})
	if err != nil {
		return err
	}
	o.saveRecord(ctx, domain.KindVideo, videoTaskID, log)

	videoOut := params.VideoOutput
	if videoOut == "" {
		videoOut = defaultVideoPath(params.OutputPath)
	}

	videoResult, err := o.watch(ctx, domain.KindVideo, videoTaskID, videoOut, params, log)
	if videoResult != nil {
		result.VideoPath = videoResult.ArtifactPath
	}
	return err
}

// saveRecord persists the task id. A write failure costs only
// resumability, not the run, so it is logged and swallowed.
func (o *Orchestrator) saveRecord(ctx context.Context, kind domain.JobKind, taskID string, log zerolog.Logger) {
	err := o.store.Save(ctx, domain.TaskRecord{TaskID: taskID, Kind: kind, SavedAt: time.Now().UTC()})
	if err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Str("task_id", taskID).
			Msg("could not persist task id, run will not be resumable")
		return
	}
	log.Info().Str("kind", string(kind)).Str("task_id", taskID).Msg("task id persisted")
}

func defaultVideoPath(audioPath string) string {
	if idx := strings.LastIndex(audioPath, "."); idx > 0 {
		return audioPath[:idx] + ".mp4"
	}
	return audioPath + ".mp4"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
