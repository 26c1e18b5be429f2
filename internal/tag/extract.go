package tag

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/simonhull/audiometa"

	"bookforge/internal/book"
)

// Extracted is the format-agnostic view of one tagged file.
type Extracted struct {
	Format     string
	Meta       book.Metadata
	Track      int
	TrackTotal int
	Disc       int
	DiscTotal  int
	Chapters   []book.Chapter
	HasCover   bool
}

// Extract reads the file's tags, chapters, and cover status into the
// normalized record. A file with no recoverable title falls back to its
// base name without extension.
func Extract(path string) (Extracted, error) {
	file, err := audiometa.Open(path)
	if err != nil {
		return Extracted{}, fmt.Errorf("extract %s: %w", path, err)
	}
	defer file.Close()

	out := Extracted{
		Format: file.Format.String(),
		Meta: book.Metadata{
			Title:       strings.TrimSpace(file.Tags.Title),
			Subtitle:    file.Tags.Subtitle,
			Authors:     firstNonEmpty(file.Tags.Artist, file.Tags.AlbumArtist),
			Narrators:   firstNonEmpty(file.Tags.Narrator, joined(file.Tags.Composers)),
			Description: file.Tags.Comment,
			Genres:      joined(file.Tags.Genres),
			Series:      file.Tags.Series,
			Language:    file.Tags.GetFirst("LANGUAGE"),
			Publisher:   file.Tags.Publisher,
			ISBN:        file.Tags.ISBN,
			ASIN:        file.Tags.ASIN,
			Copyright:   file.Tags.Copyright,
			Lyrics:      file.Tags.Lyrics,
		},
		Track:      file.Tags.TrackNumber,
		TrackTotal: file.Tags.TrackTotal,
		Disc:       file.Tags.DiscNumber,
		DiscTotal:  file.Tags.DiscTotal,
	}

	if out.Meta.Title == "" {
		base := filepath.Base(path)
		out.Meta.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if year := file.Tags.Year; year != 0 {
		out.Meta.Year = &year
	}
	if part := strings.TrimSpace(file.Tags.SeriesPart); part != "" {
		if volume, err := strconv.Atoi(part); err == nil {
			out.Meta.Volume = &volume
		}
	}

	for _, ch := range file.Chapters {
		out.Chapters = append(out.Chapters, book.Chapter{
			Index: len(out.Chapters),
			Start: ch.StartTime.Seconds(),
			End:   ch.EndTime.Seconds(),
			Title: ch.Title,
		})
	}

	artwork, err := file.ExtractArtwork()
	if err == nil && len(artwork) > 0 {
		out.HasCover = true
	}
	return out, nil
}

// HasCover reports whether the file carries an embedded cover image.
func HasCover(path string) (bool, error) {
	file, err := audiometa.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	artwork, err := file.ExtractArtwork()
	if err != nil {
		return false, nil
	}
	return len(artwork) > 0, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func joined(values []string) string {
	return strings.Join(values, ", ")
}
