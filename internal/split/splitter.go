package split

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookforge/internal/book"
	"bookforge/internal/config"
	"bookforge/internal/forge"
	"bookforge/internal/logging"
	"bookforge/internal/media/ffmpeg"
	"bookforge/internal/media/ffprobe"
)

// ProbeFunc inspects a media file. The default shells out to ffprobe.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// RenderedPart is one written output file with its rebased chapter list.
type RenderedPart struct {
	Index    int
	Path     string
	Chapters []book.Chapter
}

// Option adjusts Splitter construction.
type Option func(*Splitter)

// WithFFmpegClient overrides the ffmpeg client, primarily for tests.
func WithFFmpegClient(client *ffmpeg.Client) Option {
	return func(s *Splitter) {
		if client != nil {
			s.client = client
		}
	}
}

// WithProber overrides media inspection, primarily for tests.
func WithProber(probe ProbeFunc) Option {
	return func(s *Splitter) {
		if probe != nil {
			s.probe = probe
		}
	}
}

// Splitter renders size-bounded parts out of assembled audiobooks.
type Splitter struct {
	cfg    *config.Config
	logger *slog.Logger
	client *ffmpeg.Client
	probe  ProbeFunc
}

// New constructs a Splitter from application configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Splitter, error) {
	if cfg == nil {
		return nil, forge.Wrap(forge.ErrValidation, "new", "configuration is required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	timeout := time.Duration(cfg.Tools.TimeoutSeconds) * time.Second
	client, err := ffmpeg.New(cfg.Tools.FFmpeg, ffmpeg.WithTimeout(timeout))
	if err != nil {
		return nil, forge.Wrap(forge.ErrValidation, "new", "ffmpeg client", err)
	}

	s := &Splitter{
		cfg:    cfg,
		logger: logging.WithComponent(logger, "split"),
		client: client,
	}
	s.probe = func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, cfg.Tools.FFprobe, path)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run splits path into parts under the configured target size. The title names
// both the output directory and the part files. When the container already
// fits the target a nil slice is returned, unless alwaysSplit forces a
// single-part render. Any part failure aborts the remainder.
func (s *Splitter) Run(ctx context.Context, path, title string, alwaysSplit bool) ([]RenderedPart, error) {
	path, err := config.ExpandPath(path)
	if err != nil {
		return nil, forge.Wrap(forge.ErrValidation, "split", "resolve input path", err)
	}

	probed, err := s.probe(ctx, path)
	if err != nil {
		return nil, forge.Wrap(forge.ErrExternalTool, "split", "probe "+path, err)
	}
	chapters := probed.ChapterList()
	if len(chapters) == 0 {
		return nil, forge.Wrap(forge.ErrValidation, "split", path+" has no chapters", nil)
	}
	totalBytes := probed.SizeBytes()
	if totalBytes <= 0 {
		if info, statErr := os.Stat(path); statErr == nil {
			totalBytes = info.Size()
		}
	}

	targetBytes := int64(s.cfg.Encoding.TargetPartMB) * 1024 * 1024
	if totalBytes <= targetBytes && !alwaysSplit {
		s.logger.Info("container already within target size",
			logging.String("path", path),
			logging.Int64("bytes", totalBytes),
		)
		return nil, nil
	}

	parts, err := Plan(chapters, totalBytes, targetBytes)
	if err != nil {
		return nil, forge.Wrap(forge.ErrValidation, "split", "", err)
	}
	if len(parts) == 1 && !alwaysSplit {
		s.logger.Info("single part covers the whole book, nothing to split",
			logging.String("path", path),
		)
		return nil, nil
	}

	outDir := filepath.Join(filepath.Dir(path), SafeTitle(title))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, forge.Wrap(forge.ErrTransient, "split", "create output directory", err)
	}

	coverPath, cleanupCover, err := s.extractCover(ctx, path)
	if err != nil {
		return nil, err
	}
	defer cleanupCover()

	s.logger.Info("splitting container",
		logging.String("path", path),
		logging.Int("parts", len(parts)),
		logging.Int64("target_bytes", targetBytes),
	)

	rendered := make([]RenderedPart, 0, len(parts))
	for _, part := range parts {
		outPath := filepath.Join(outDir, PartName(title, part.Index))
		rebased := book.Rebase(part.Chapters)
		s.logger.Info("rendering part",
			logging.Int("part", part.Index),
			logging.String("output", outPath),
			logging.Int64("estimated_bytes", part.EstimatedBytes),
		)
		metaPath, err := s.writePartChapters(part.Index, rebased)
		if err != nil {
			return nil, err
		}
		err = s.client.CutPart(ctx, path, outPath, part.Start(), part.End(), metaPath, coverPath)
		_ = os.Remove(metaPath)
		if err != nil {
			_ = os.Remove(outPath)
			return nil, forge.Wrap(forge.ErrExternalTool, "split", fmt.Sprintf("render part %d", part.Index), err)
		}
		rendered = append(rendered, RenderedPart{
			Index:    part.Index,
			Path:     outPath,
			Chapters: rebased,
		})
	}
	return rendered, nil
}

// writePartChapters stages the part's rebased timeline as an ffmetadata
// document so the cut replaces the source container's chapter atoms.
func (s *Splitter) writePartChapters(index int, chapters []book.Chapter) (string, error) {
	tmp, err := os.CreateTemp("", fmt.Sprintf("bookforge-part%02d-*.ffm", index))
	if err != nil {
		return "", forge.Wrap(forge.ErrTransient, "split", "create chapter document", err)
	}
	metaPath := tmp.Name()
	tmp.Close()

	if err := forge.WriteChapterDocument(metaPath, chapters); err != nil {
		_ = os.Remove(metaPath)
		return "", forge.Wrap(forge.ErrTransient, "split", "stage chapter document", err)
	}
	return metaPath, nil
}

// extractCover pulls the embedded cover into a temp file for re-attachment.
// A container without a cover is not an error.
func (s *Splitter) extractCover(ctx context.Context, path string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "bookforge-cover-*.jpg")
	if err != nil {
		return "", nil, forge.Wrap(forge.ErrTransient, "split", "create cover temp file", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	found, err := s.client.ExtractCover(ctx, path, tmpPath)
	if err != nil || !found {
		_ = os.Remove(tmpPath)
		return "", func() {}, nil
	}
	return tmpPath, func() { _ = os.Remove(tmpPath) }, nil
}

// PartName returns the deterministic file name for a 1-based part index.
func PartName(title string, index int) string {
	return fmt.Sprintf("%s_Part%02d.m4b", SafeTitle(title), index)
}

// PartTitle returns the per-part title stamped into the part's tags.
func PartTitle(title string, index int) string {
	return fmt.Sprintf("%s_Part%02d", title, index)
}

// SafeTitle makes a metadata title usable as a file or directory name.
func SafeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "audiobook"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-")
	return replacer.Replace(title)
}
