package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bookforge/internal/forge"
)

func newFusionCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "fusion <book.m4b> <extras-dir>",
		Aliases: []string{"fuse"},
		Short:   "Append a directory of MP3 extras to an existing M4B as new chapters",
		Args:    cobra.ExactArgs(2),
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
			result, err := f.Fuse(cmd.Context(), args[0], args[1], output)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fused %s\n", result.Output)
			fmt.Fprintf(out, "  chapters: %d\n", len(result.Chapters))
			fmt.Fprintf(out, "  duration: %s\n", formatSeconds(result.Duration))
			fmt.Fprintf(out, "  elapsed:  %s\n", result.Elapsed.Truncate(time.Second))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path for the fused M4B")
	return cmd
}
