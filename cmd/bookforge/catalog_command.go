package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"bookforge/internal/catalog"
	"bookforge/internal/fileutil"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	var (
		output  string
		noCover bool
	)

	cmd := &cobra.Command{
		Use:   "catalog <url>",
		Short: "Scrape a catalog page into a metadata document and cover image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}

			page, err := catalog.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := catalog.WriteMetadata(output, &page.Metadata); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", output)
			fmt.Fprintf(out, "  title: %s\n", page.Title)
			if page.Series != "" {
				if page.HasVolume() {
					fmt.Fprintf(out, "  series: %s, volume %d\n", page.Series, *page.Volume)
				} else {
					fmt.Fprintf(out, "  series: %s\n", page.Series)
				}
			}

			if noCover || page.CoverURL == "" {
				return nil
			}
			coverPath := filepath.Join(filepath.Dir(output), "cover.jpg")
			if fileutil.Exists(coverPath) {
				fmt.Fprintf(out, "  cover: %s (kept existing)\n", coverPath)
				return nil
			}
			if err := catalog.DownloadCover(cmd.Context(), page.CoverURL, coverPath); err != nil {
				return err
			}
			fmt.Fprintf(out, "  cover: %s\n", coverPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "metadata.toml", "Destination for the metadata document")
	cmd.Flags().BoolVar(&noCover, "no-cover", false, "Skip downloading the cover image")
	return cmd
}
