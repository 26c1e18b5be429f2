package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bookforge/internal/book"
	"bookforge/internal/fileutil"
	"bookforge/internal/forge"
	"bookforge/internal/logging"
	"bookforge/internal/split"
	"bookforge/internal/tag"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var output string
	var clear bool
	var alwaysSplit bool

	cmd := &cobra.Command{
		Use:   "build <dir>",
		Short: "Run the full pipeline: assemble, split when oversized, tag",
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

			dir := args[0]
			meta, metaErr := book.LoadMetadata(dir)
			if metaErr != nil {
				logger.Warn("metadata document unusable, using defaults", logging.Error(metaErr))
			}

			f, err := forge.New(cfg, logger)
			if err != nil {
				return err
			}

			if clear && output == "" {
				stale := filepath.Join(dir, filepath.Base(dir)+".m4b")
				if err := fileutil.RemoveIfExists(stale); err != nil {
					return fmt.Errorf("remove stale output: %w", err)
				}
			}

			result, err := f.Run(cmd.Context(), dir, output)
			if err != nil {
				return err
			}

			splitter, err := split.New(cfg, logger)
			if err != nil {
				return err
			}
			parts, err := splitter.Run(cmd.Context(), result.Output, meta.Title, alwaysSplit)
			if err != nil {
				return err
			}

			var image []byte
			if coverPath := tag.FindCover(dir); coverPath != "" {
				if image, err = os.ReadFile(coverPath); err != nil {
					return fmt.Errorf("read cover %s: %w", coverPath, err)
				}
			}

			injector := tag.NewInjector(logger)
			out := cmd.OutOrStdout()

			if len(parts) == 0 {
				rec := tag.Record{Meta: meta, Track: 1, TrackTotal: 1}
				if err := injector.Tag(result.Output, rec, image); err != nil {
					return err
				}
				final := result.Output
				if output == "" {
					title := split.SafeTitle(meta.Title)
					final = filepath.Join(filepath.Dir(result.Output), title, title+".m4b")
					if err := fileutil.MoveFile(result.Output, final); err != nil {
						return fmt.Errorf("move finished book: %w", err)
					}
				}
				printBookLine(out, final, len(result.Chapters))
				return nil
			}

			for _, part := range parts {
				partMeta := meta
				partMeta.Title = split.PartTitle(meta.Title, part.Index)
				rec := tag.Record{
					Meta:       partMeta,
					Track:      part.Index,
					TrackTotal: len(parts),
				}
				if err := injector.Tag(part.Path, rec, image); err != nil {
					return err
				}
				printBookLine(out, part.Path, len(part.Chapters))
			}
			// The merged container is superseded by its parts.
			if err := fileutil.RemoveIfExists(result.Output); err != nil {
				return fmt.Errorf("remove merged container: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path for the assembled M4B")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove a pre-existing assembled M4B first")
	cmd.Flags().BoolVar(&alwaysSplit, "always-split", false, "Split even when the book fits the target part size")
	return cmd
}

func printBookLine(out io.Writer, path string, chapters int) {
	size := "unknown size"
	if info, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	fmt.Fprintf(out, "%s (%d chapters, %s)\n", path, chapters, size)
}
