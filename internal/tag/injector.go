package tag

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"

	"bookforge/internal/media/ffmpeg"
)

// Injector stamps metadata onto finished container files.
type Injector struct {
	logger *slog.Logger
}

// NewInjector constructs an injector. A nil logger falls back to the
// default slog logger.
func NewInjector(logger *slog.Logger) *Injector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Injector{logger: logger.With("component", "tag")}
}

// WriterFor selects the tag scheme for the file's container format.
func WriterFor(path string) (Writer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return ID3Writer{}, nil
	case ".m4b", ".m4a", ".mp4":
		return MP4Writer{}, nil
	default:
		return nil, fmt.Errorf("no tag scheme for %q", filepath.Ext(path))
	}
}

// Tag runs the staged tagging state machine on one file: standard tags,
// vendor fields, then the cover when image is non-nil. A late-stage failure
// leaves the file in its last successful state and surfaces the error.
func (i *Injector) Tag(path string, rec Record, image []byte) error {
	writer, err := WriterFor(path)
	if err != nil {
		return err
	}
	if err := writer.WriteStandard(path, rec); err != nil {
		return fmt.Errorf("standard tags: %w", err)
	}
	i.logger.Debug("standard tags written", "file", filepath.Base(path))
	if err := writer.WriteVendor(path, rec); err != nil {
		return fmt.Errorf("vendor tags: %w", err)
	}
	i.logger.Debug("vendor tags written", "file", filepath.Base(path))
	if image != nil {
		if err := writer.WriteCover(path, image); err != nil {
			return fmt.Errorf("cover: %w", err)
		}
		i.logger.Debug("cover written", "file", filepath.Base(path))
	}
	return nil
}

// Clear removes all tags, chapters, and the embedded cover from the file.
// The ffmpeg strip drops container metadata; for MP3 the ID3 header is
// wiped as well so no resurrected frames survive the remux.
func (i *Injector) Clear(ctx context.Context, client *ffmpeg.Client, path string) error {
	if err := client.StripTags(ctx, path); err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		t, err := id3v2.Open(path, id3v2.Options{Parse: true})
		if err != nil {
			return fmt.Errorf("open id3 %s: %w", path, err)
		}
		defer t.Close()
		t.DeleteAllFrames()
		if err := t.Save(); err != nil {
			return fmt.Errorf("wipe id3 %s: %w", path, err)
		}
	}
	i.logger.Info("tags cleared", "file", filepath.Base(path))
	return nil
}
