package forge

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookforge/internal/book"
	"bookforge/internal/config"
	"bookforge/internal/logging"
)

// Fuse appends the MP3 files of extraDir to an existing audiobook as new
// chapters. The extras are encoded at the base container's bitrate so the
// merge stays a stream copy, and the chapter timeline continues from the end
// of the base. When output is empty the fused book lands next to the base as
// <stem>_fused.m4b; the base itself is never modified.
func (f *Forge) Fuse(ctx context.Context, basePath, extraDir, output string) (*Result, error) {
	started := time.Now()

	basePath, err := config.ExpandPath(basePath)
	if err != nil {
		return nil, Wrap(ErrValidation, "fuse", "resolve base path", err)
	}
	extraDir, err = config.ExpandPath(extraDir)
	if err != nil {
		return nil, Wrap(ErrValidation, "fuse", "resolve extras directory", err)
	}

	baseProbe, err := f.probe(ctx, basePath)
	if err != nil {
		return nil, Wrap(ErrExternalTool, "probe", basePath, err)
	}
	if baseProbe.AudioStreamCount() == 0 {
		return nil, Wrap(ErrValidation, "fuse", basePath+" has no audio stream", nil)
	}

	baseChapters := baseProbe.ChapterList()
	baseDuration := baseProbe.DurationSeconds()
	if len(baseChapters) == 0 {
		// A chapterless base becomes a single spanning chapter.
		baseChapters = []book.Chapter{{
			Index: 0,
			Start: 0,
			End:   baseDuration,
			Title: titleStem(basePath),
		}}
	} else if end := baseChapters[len(baseChapters)-1].End; end > baseDuration {
		baseDuration = end
	}

	extras, err := ScanSources(extraDir)
	if err != nil {
		return nil, err
	}

	bitrate := targetBitrateKbps([]int64{baseProbe.BitRate()}, f.cfg.Encoding.BitrateCapKbps)

	if output == "" {
		stem := strings.TrimSuffix(basePath, filepath.Ext(basePath))
		output = stem + "_fused.m4b"
	} else if output, err = config.ExpandPath(output); err != nil {
		return nil, Wrap(ErrValidation, "fuse", "resolve output path", err)
	}

	f.logger.Info("fusion started",
		logging.String("base", basePath),
		logging.Int("extras", len(extras)),
		logging.Int("kbps", bitrate),
	)

	staging := filepath.Join(f.cfg.Paths.StagingDir, uuid.NewString())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, Wrap(ErrTransient, "fuse", "create staging directory", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			f.logger.Warn("failed to remove staging directory",
				logging.String("path", staging),
				logging.Error(err),
			)
		}
	}()

	intermediates, err := f.transcode(ctx, extras, staging, bitrate)
	if err != nil {
		return nil, err
	}

	appended, total, err := f.buildTimeline(ctx, extras, intermediates)
	if err != nil {
		return nil, err
	}

	chapters := append([]book.Chapter(nil), baseChapters...)
	for _, ch := range appended {
		chapters = append(chapters, book.Chapter{
			Index: len(chapters),
			Start: baseDuration + ch.Start,
			End:   baseDuration + ch.End,
			Title: ch.Title,
		})
	}

	listPath := filepath.Join(staging, "chapters.txt")
	metaPath := filepath.Join(staging, "metadata.ffm")
	entries := make([]string, 0, len(intermediates)+1)
	entries = append(entries, basePath)
	for _, path := range intermediates {
		entries = append(entries, filepath.Base(path))
	}
	if err := writeConcatList(listPath, entries); err != nil {
		return nil, Wrap(ErrTransient, "fuse", "stage concat list", err)
	}
	if err := WriteChapterDocument(metaPath, chapters); err != nil {
		return nil, Wrap(ErrTransient, "fuse", "stage chapter document", err)
	}

	if err := f.client.Concat(ctx, listPath, metaPath, output, staging); err != nil {
		return nil, Wrap(ErrExternalTool, "fuse", "merge containers", err)
	}

	result := &Result{
		Output:      output,
		Chapters:    chapters,
		BitrateKbps: bitrate,
		Duration:    baseDuration + total,
		Elapsed:     time.Since(started),
	}
	f.logger.Info("fusion finished",
		logging.String("output", output),
		logging.Int("chapters", len(chapters)),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}
