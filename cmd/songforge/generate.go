package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"songforge/internal/core/domain"
	"songforge/internal/service"
)

var (
	genTheme        string
	genStyle        string
	genVerses       int
	genChorus       bool
	genInstrumental bool
	genModel        string
	genOutput       string
	genVideo        bool
	genVideoOutput  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new song from a theme",
	Long: `Generate a new song: lyrics are written by the LLM (skipped with
--instrumental), then a music generation job is submitted and polled to
completion. The task id is persisted before the first poll, so a run
interrupted or exhausted mid-poll can be picked up with 'songforge resume'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if genTheme == "" {
			return fmt.Errorf("--theme is required")
		}
		if genModel != "V3_5" && genModel != "V4" {
			return fmt.Errorf("--model must be V3_5 or V4, got %q", genModel)
		}

		orch, err := buildOrchestrator(!genInstrumental)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		result, err := orch.GenerateSong(ctx, service.GenerateParams{
			Theme:        genTheme,
			Style:        genStyle,
			Verses:       genVerses,
			Chorus:       genChorus,
			Instrumental: genInstrumental,
			CustomMode:   true,
			Model:        genModel,
			OutputPath:   genOutput,
			WithVideo:    genVideo,
			VideoOutput:  genVideoOutput,
		})
		if result != nil {
			printSummary(result)
			if result.Outcome == domain.OutcomeExhausted {
				fmt.Printf("\nTask is still processing. Check again later with:\n")
				fmt.Printf("  songforge resume --kind %s --output %s\n", result.Job.Kind, genOutput)
			}
		}
		return err
	},
}

func init() {
	generateCmd.Flags().StringVar(&genTheme, "theme", "", "theme or idea for the song")
	generateCmd.Flags().StringVar(&genStyle, "style", "pop", "music style (e.g. rock, pop, rap)")
	generateCmd.Flags().IntVar(&genVerses, "verses", 2, "number of verses")
	generateCmd.Flags().BoolVar(&genChorus, "chorus", true, "include a repeating chorus")
	generateCmd.Flags().BoolVar(&genInstrumental, "instrumental", false, "generate instrumental music (no lyrics)")
	generateCmd.Flags().StringVar(&genModel, "model", "V3_5", "generation model (V3_5 or V4)")
	generateCmd.Flags().StringVar(&genOutput, "output", "output.mp3", "audio output path")
	generateCmd.Flags().BoolVar(&genVideo, "video", false, "render an MP4 video after the audio")
	generateCmd.Flags().StringVar(&genVideoOutput, "video-output", "", "video output path (default: audio path with .mp4)")
}
