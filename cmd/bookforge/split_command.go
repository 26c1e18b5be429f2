package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookforge/internal/split"
	"bookforge/internal/tag"
)

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var targetMB int
	var alwaysSplit bool

	cmd := &cobra.Command{
		Use:   "split <file>",
		Short: "Split an oversized M4B into per-part containers on chapter boundaries",
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
			if targetMB > 0 {
				cfg.Encoding.TargetPartMB = targetMB
			}

			path := args[0]
			extracted, err := tag.Extract(path)
			if err != nil {
				return err
			}

			splitter, err := split.New(cfg, logger)
			if err != nil {
				return err
			}
			parts, err := splitter.Run(cmd.Context(), path, extracted.Meta.Title, alwaysSplit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(parts) == 0 {
				fmt.Fprintf(out, "%s fits within %d MB, nothing to split\n", path, cfg.Encoding.TargetPartMB)
				return nil
			}

			injector := tag.NewInjector(logger)
			for _, part := range parts {
				partMeta := extracted.Meta
				partMeta.Title = split.PartTitle(extracted.Meta.Title, part.Index)
				rec := tag.Record{
					Meta:       partMeta,
					Track:      part.Index,
					TrackTotal: len(parts),
				}
				if err := injector.Tag(part.Path, rec, nil); err != nil {
					return err
				}
				printBookLine(out, part.Path, len(part.Chapters))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&targetMB, "target-size", 0, "Target part size in MB (overrides config)")
	cmd.Flags().BoolVar(&alwaysSplit, "always-split", false, "Split even when the file fits the target size")
	return cmd
}
