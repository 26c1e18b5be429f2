package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bookforge/internal/forge"
)

func newForgeCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "forge <dir>",
		Short: "Assemble a directory of MP3 files into one chaptered M4B",
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

			f, err := forge.New(cfg, logger)
			if err != nil {
				return err
			}
			result, err := f.Run(cmd.Context(), args[0], output)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Assembled %s\n", result.Output)
			fmt.Fprintf(out, "  chapters: %d\n", len(result.Chapters))
			fmt.Fprintf(out, "  duration: %s\n", formatSeconds(result.Duration))
			fmt.Fprintf(out, "  bitrate:  %d kb/s\n", result.BitrateKbps)
			fmt.Fprintf(out, "  elapsed:  %s\n", result.Elapsed.Truncate(time.Second))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path for the assembled M4B")
	return cmd
}

func formatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Truncate(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
