package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bookforge/internal/tag"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Read tags and chapters from an MP3 or M4B file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}

			extracted, err := tag.Extract(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				payload, err := json.MarshalIndent(extracted, "", "  ")
				if err != nil {
					return fmt.Errorf("encode extraction: %w", err)
				}
				fmt.Fprintln(out, string(payload))
				return nil
			}

			rows := tagRows(extracted)
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))

			if len(extracted.Chapters) > 0 {
				chapterRows := make([][]string, 0, len(extracted.Chapters))
				for _, ch := range extracted.Chapters {
					chapterRows = append(chapterRows, []string{
						strconv.Itoa(ch.Index + 1),
						formatSeconds(ch.Start),
						formatSeconds(ch.End),
						ch.Title,
					})
				}
				fmt.Fprintln(out, renderTable([]string{"#", "Start", "End", "Title"}, chapterRows, 1, 2, 3))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the extraction as JSON")
	return cmd
}

func tagRows(extracted tag.Extracted) [][]string {
	meta := extracted.Meta
	rows := [][]string{
		{"Format", extracted.Format},
		{"Title", meta.Title},
	}
	appendRow := func(field, value string) {
		if value != "" {
			rows = append(rows, []string{field, value})
		}
	}
	appendRow("Subtitle", meta.Subtitle)
	appendRow("Authors", meta.Authors)
	appendRow("Narrators", meta.Narrators)
	appendRow("Series", meta.Series)
	if meta.HasVolume() {
		rows = append(rows, []string{"Volume", strconv.Itoa(*meta.Volume)})
	}
	if meta.Year != nil {
		rows = append(rows, []string{"Year", strconv.Itoa(*meta.Year)})
	}
	appendRow("Genres", meta.Genres)
	appendRow("Language", meta.Language)
	appendRow("Publisher", meta.Publisher)
	appendRow("ISBN", meta.ISBN)
	appendRow("ASIN", meta.ASIN)
	appendRow("Copyright", meta.Copyright)
	if extracted.Track > 0 {
		rows = append(rows, []string{"Track", trackLabel(extracted.Track, extracted.TrackTotal)})
	}
	if extracted.Disc > 0 {
		rows = append(rows, []string{"Disc", trackLabel(extracted.Disc, extracted.DiscTotal)})
	}
	rows = append(rows, []string{"Chapters", strconv.Itoa(len(extracted.Chapters))})
	rows = append(rows, []string{"Cover", strconv.FormatBool(extracted.HasCover)})
	return rows
}

func trackLabel(number, total int) string {
	if total > 0 {
		return fmt.Sprintf("%d/%d", number, total)
	}
	return strconv.Itoa(number)
}
