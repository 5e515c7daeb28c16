package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"songforge/internal/core/domain"
	"songforge/internal/service"
)

var (
	resumeKind        string
	resumeTask        string
	resumeOutput      string
	resumeVideo       bool
	resumeVideoOutput string
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Reattach to an already-submitted generation task",
	Long: `Resume polling a task submitted by an earlier run. Without --task the
persisted task id for the kind is used. The remote job kept running while
this process was gone; resuming only re-enters the watch loop and downloads
the result once it is ready.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := domain.JobKind(resumeKind)
		if !kind.Valid() {
			return fmt.Errorf("--kind must be audio or video, got %q", resumeKind)
		}

		output := resumeOutput
		if output == "" {
			output = "output.mp3"
			if kind == domain.KindVideo {
				output = "output.mp4"
			}
		}

		orch, err := buildOrchestrator(false)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		result, err := orch.Resume(ctx, kind, resumeTask, output, service.GenerateParams{
			OutputPath:  output,
			WithVideo:   resumeVideo && kind == domain.KindAudio,
			VideoOutput: resumeVideoOutput,
		})
		if result != nil {
			printSummary(result)
			if result.Outcome == domain.OutcomeExhausted {
				fmt.Printf("\nTask is still processing. Check again later with:\n")
				fmt.Printf("  songforge resume --kind %s --task %s --output %s\n", kind, result.Job.TaskID, output)
			}
		}
		return err
	},
}

func init() {
	resumeCmd.Flags().StringVar(&resumeKind, "kind", "audio", "task kind to resume (audio or video)")
	resumeCmd.Flags().StringVar(&resumeTask, "task", "", "task id (default: last persisted id for the kind)")
	resumeCmd.Flags().StringVar(&resumeOutput, "output", "", "output path (default: output.mp3 or output.mp4)")
	resumeCmd.Flags().BoolVar(&resumeVideo, "video", false, "render an MP4 video after a resumed audio task succeeds")
	resumeCmd.Flags().StringVar(&resumeVideoOutput, "video-output", "", "video output path (default: audio path with .mp4)")
}
