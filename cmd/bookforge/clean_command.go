package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bookforge/internal/clean"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var (
		stripTags    bool
		trimSilences bool
		minSilence   time.Duration
		thresholdDB  int
	)

	cmd := &cobra.Command{
		Use:   "clean <dir>",
		Short: "Strip embedded covers, tags, and long silences from MP3 sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := ctx.checkTools(); err != nil {
				return err
			}

			cleaner, err := clean.New(cfg, logger)
			if err != nil {
				return err
			}
			result, runErr := cleaner.Run(cmd.Context(), args[0], clean.Options{
				StripTags:    stripTags,
				TrimSilences: trimSilences,
				MinSilence:   minSilence,
				ThresholdDB:  thresholdDB,
			})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cleaned %d files\n", len(result.Cleaned))
			for _, failure := range result.Failures {
				fmt.Fprintf(out, "  failed: %s: %v\n", failure.Path, failure.Err)
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&stripTags, "tags", false, "Strip all tags, not just the embedded cover")
	cmd.Flags().BoolVar(&trimSilences, "silences", false, "Re-encode each file with long silent runs removed")
	cmd.Flags().DurationVar(&minSilence, "min-silence", clean.DefaultMinSilence, "Shortest silent run to remove")
	cmd.Flags().IntVar(&thresholdDB, "silence-threshold", clean.DefaultThresholdDB, "Silence threshold in dB")
	return cmd
}
