// Command songforge generates a song from a short thematic prompt: lyrics
// through the Anthropic API, music (and optionally a video render) through
// a Suno-compatible generation API. Remote jobs are polled to completion
// and the last task id is persisted so an interrupted run can be resumed
// with `songforge resume`.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"songforge/internal/adapters/anthropic"
	"songforge/internal/adapters/downloader"
	"songforge/internal/adapters/suno"
	"songforge/internal/adapters/taskfile"
	"songforge/internal/config"
	"songforge/internal/core/ports"
	"songforge/internal/logging"
	"songforge/internal/service"
)

var (
	stateDir      string
	checkInterval time.Duration
	maxChecks     int
)

var rootCmd = &cobra.Command{
	Use:   "songforge",
	Short: "Generate songs from a theme using LLM lyrics and a music generation API",
	Long: `songforge orchestrates two remote services to turn a short theme into a
song: an LLM writes the lyrics, a music generation API renders the audio
(and optionally an MP4 video).

Generation runs asynchronously on the remote side. songforge submits the
job, persists its task id, and polls until the job finishes or the check
budget runs out. An exhausted budget is not a failure: run
'songforge resume' later to reattach to the same task.

Examples:
  songforge generate --theme "a rainy night in Hanoi" --style jazz
  songforge generate --theme "engines" --instrumental --output engines.mp3
  songforge resume --kind audio --output song.mp3
  songforge resume --kind video --task 3f1c... --output clip.mp4`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", ".songforge", "directory for persisted task ids")
	rootCmd.PersistentFlags().DurationVar(&checkInterval, "interval", service.DefaultInterval, "pause between status checks")
	rootCmd.PersistentFlags().IntVar(&maxChecks, "checks", service.DefaultMaxChecks, "maximum number of status checks")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(resumeCmd)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM. The remote
// job keeps running either way; the persisted task id covers the restart.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

// buildOrchestrator wires the adapters. withLyrics controls whether the
// Anthropic client is constructed and its key validated.
func buildOrchestrator(withLyrics bool) (*service.Orchestrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.AppEnv)
	apiClient := &http.Client{Timeout: cfg.RequestTimeout}

	jobs, err := suno.NewClient(cfg.SunoAPIKey, logger,
		suno.WithBaseURL(cfg.SunoBaseURL),
		suno.WithFileHost(cfg.SunoFileHost),
		suno.WithHTTPClient(apiClient),
	)
	if err != nil {
		return nil, err
	}

	var lyrics ports.LyricsGenerator
	if withLyrics {
		if err := cfg.RequireAnthropic(); err != nil {
			return nil, err
		}
		llm, err := anthropic.NewClient(anthropic.Options{
			APIKey:     cfg.AnthropicAPIKey,
			Model:      cfg.AnthropicModel,
			BaseURL:    cfg.AnthropicBaseURL,
			HTTPClient: apiClient,
		}, logger)
		if err != nil {
			return nil, err
		}
		lyrics = llm
	}

	store := taskfile.NewStore(stateDir, logger)
	dl := downloader.NewHTTPDownloader(cfg.DownloadTimeout, cfg.DownloadRetries, logger)
	poller := service.NewPoller(jobs, checkInterval, maxChecks, logger)

	orch := service.NewOrchestrator(lyrics, jobs, dl, store, poller, logger)
	return orch, nil
}

func printSummary(result *service.RunResult) {
	fmt.Println("\n=== Run Summary ===")
	fmt.Printf("Task ID:      %s\n", result.Job.TaskID)
	fmt.Printf("Kind:         %s\n", result.Job.Kind)
	fmt.Printf("Outcome:      %s\n", result.Outcome)
	fmt.Printf("Checks made:  %d\n", result.Checks)
	if result.Lyrics != nil {
		fmt.Printf("Title:        %s\n", result.Lyrics.Title)
	}
	if result.ArtifactPath != "" {
		fmt.Printf("Artifact:     %s (%d bytes)\n", result.ArtifactPath, result.BytesWritten)
	}
	if result.VideoPath != "" {
		fmt.Printf("Video:        %s\n", result.VideoPath)
	}
	if result.ErrorDetail != "" {
		fmt.Printf("Error:        %s\n", result.ErrorDetail)
	}
	if !result.CompletedAt.IsZero() {
		fmt.Printf("Completed At: %s\n", result.CompletedAt.Format(time.RFC3339))
	}
}
