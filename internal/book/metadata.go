package book

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// MetadataFileName is the per-book metadata document looked up in the
// source directory.
const MetadataFileName = "metadata.toml"

// Metadata is the normalized, format-agnostic book-level metadata record.
// Title is always set; every other field is optional. Volume and Year use
// pointers so that zero is a valid value distinct from absent.
type Metadata struct {
	Title       string `toml:"title"`
	Subtitle    string `toml:"subtitle"`
	Authors     string `toml:"authors"`
	Narrators   string `toml:"narrators"`
	Description string `toml:"description"`
	Genres      string `toml:"genres"`
	Series      string `toml:"series"`
	Volume      *int   `toml:"volume"`
	Language    string `toml:"language"`
	Year        *int   `toml:"year"`
	Publisher   string `toml:"publisher"`
	ISBN        string `toml:"isbn"`
	ASIN        string `toml:"asin"`
	Copyright   string `toml:"copyright"`
	Lyrics      string `toml:"lyrics"`
}

// HasVolume reports whether the series volume is present, including volume 0.
func (m Metadata) HasVolume() bool {
	return m.Volume != nil
}

// LoadMetadata reads metadata.toml from dir. A missing file yields defaults;
// a malformed file degrades to defaults and returns the parse error alongside
// them so the caller can log a warning without aborting the run. The title
// always falls back to the directory's base name.
func LoadMetadata(dir string) (Metadata, error) {
	meta := Metadata{}
	path := filepath.Join(dir, MetadataFileName)

	var parseErr error
	payload, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		parseErr = fmt.Errorf("read %s: %w", MetadataFileName, err)
	default:
		if err := toml.Unmarshal(payload, &meta); err != nil {
			meta = Metadata{}
			parseErr = fmt.Errorf("parse %s: %w", MetadataFileName, err)
		}
	}

	meta.normalize(dir)
	return meta, parseErr
}

func (m *Metadata) normalize(dir string) {
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		m.Title = filepath.Base(filepath.Clean(dir))
	}
	m.Language = normalizeLanguage(m.Language)
}

// normalizeLanguage canonicalizes a BCP 47 language tag. Unknown or empty
// values pass through untouched so hand-written documents keep working.
func normalizeLanguage(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	return tag.String()
}
