package forge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bookforge/internal/book"
	"bookforge/internal/config"
	"bookforge/internal/logging"
	"bookforge/internal/media/ffmpeg"
	"bookforge/internal/media/ffprobe"
	"bookforge/internal/tag"
)

// ProbeFunc inspects a media file. The default shells out to ffprobe.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// TitleFunc derives a chapter title from a source file. The default reads the
// embedded title tag and falls back to the filename stem.
type TitleFunc func(path string) string

// Result describes a completed build.
type Result struct {
	Output      string
	Chapters    []book.Chapter
	BitrateKbps int
	Duration    float64
	Elapsed     time.Duration
}

// Option adjusts Forge construction.
type Option func(*Forge)

// WithFFmpegClient overrides the ffmpeg client, primarily for tests.
func WithFFmpegClient(client *ffmpeg.Client) Option {
	return func(f *Forge) {
		if client != nil {
			f.client = client
		}
	}
}

// WithProber overrides media inspection, primarily for tests.
func WithProber(probe ProbeFunc) Option {
	return func(f *Forge) {
		if probe != nil {
			f.probe = probe
		}
	}
}

// WithTitleReader overrides chapter title extraction, primarily for tests.
func WithTitleReader(titles TitleFunc) Option {
	return func(f *Forge) {
		if titles != nil {
			f.titles = titles
		}
	}
}

// Forge builds chaptered M4B audiobooks from directories of MP3 files.
type Forge struct {
	cfg    *config.Config
	logger *slog.Logger
	client *ffmpeg.Client
	probe  ProbeFunc
	titles TitleFunc
	jobs   int
}

// New constructs a Forge from application configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Forge, error) {
	if cfg == nil {
		return nil, Wrap(ErrValidation, "new", "configuration is required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	timeout := time.Duration(cfg.Tools.TimeoutSeconds) * time.Second
	client, err := ffmpeg.New(cfg.Tools.FFmpeg, ffmpeg.WithTimeout(timeout))
	if err != nil {
		return nil, Wrap(ErrValidation, "new", "ffmpeg client", err)
	}

	jobs := cfg.Encoding.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	f := &Forge{
		cfg:    cfg,
		logger: logging.WithComponent(logger, "forge"),
		client: client,
		jobs:   jobs,
	}
	f.probe = func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, cfg.Tools.FFprobe, path)
	}
	f.titles = func(path string) string {
		extracted, err := tag.Extract(path)
		if err != nil || extracted.Meta.Title == "" {
			return titleStem(path)
		}
		return extracted.Meta.Title
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Run builds dir into a single M4B. When output is empty the book lands next
// to its sources as <dir>/<dirname>.m4b.
func (f *Forge) Run(ctx context.Context, dir, output string) (*Result, error) {
	started := time.Now()

	dir, err := config.ExpandPath(dir)
	if err != nil {
		return nil, Wrap(ErrValidation, "run", "resolve source directory", err)
	}

	sources, err := ScanSources(dir)
	if err != nil {
		return nil, err
	}

	if output == "" {
		output = filepath.Join(dir, filepath.Base(dir)+".m4b")
	} else if output, err = config.ExpandPath(output); err != nil {
		return nil, Wrap(ErrValidation, "run", "resolve output path", err)
	}

	lock := flock.New(filepath.Join(dir, ".bookforge.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, Wrap(ErrTransient, "run", "acquire build lock", err)
	}
	if !locked {
		return nil, Wrap(ErrLocked, "run", fmt.Sprintf("another build is running in %s", dir), nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	f.logger.Info("build started",
		logging.String("dir", dir),
		logging.Int("inputs", len(sources)),
		logging.Int("jobs", f.jobs),
	)

	bitrate, err := f.measureBitrate(ctx, sources)
	if err != nil {
		return nil, err
	}
	f.logger.Info("target bitrate selected", logging.Int("kbps", bitrate))

	staging := filepath.Join(f.cfg.Paths.StagingDir, uuid.NewString())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, Wrap(ErrTransient, "run", "create staging directory", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			f.logger.Warn("failed to remove staging directory",
				logging.String("path", staging),
				logging.Error(err),
			)
		}
	}()

	intermediates, err := f.transcode(ctx, sources, staging, bitrate)
	if err != nil {
		return nil, err
	}

	chapters, total, err := f.buildTimeline(ctx, sources, intermediates)
	if err != nil {
		return nil, err
	}

	listPath := filepath.Join(staging, "chapters.txt")
	metaPath := filepath.Join(staging, "metadata.ffm")
	names := make([]string, len(intermediates))
	for i, path := range intermediates {
		names[i] = filepath.Base(path)
	}
	if err := writeConcatList(listPath, names); err != nil {
		return nil, Wrap(ErrTransient, "run", "stage concat list", err)
	}
	if err := WriteChapterDocument(metaPath, chapters); err != nil {
		return nil, Wrap(ErrTransient, "run", "stage chapter document", err)
	}

	if err := f.client.Concat(ctx, listPath, metaPath, output, staging); err != nil {
		return nil, Wrap(ErrExternalTool, "run", "merge chapters", err)
	}

	result := &Result{
		Output:      output,
		Chapters:    chapters,
		BitrateKbps: bitrate,
		Duration:    total,
		Elapsed:     time.Since(started),
	}
	f.logger.Info("build finished",
		logging.String("output", output),
		logging.Int("chapters", len(chapters)),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// measureBitrate probes every source and folds the readable bitrates into the
// capped mean target.
func (f *Forge) measureBitrate(ctx context.Context, sources []string) (int, error) {
	bitrates := make([]int64, 0, len(sources))
	for _, src := range sources {
		probed, err := f.probe(ctx, src)
		if err != nil {
			return 0, Wrap(ErrExternalTool, "probe", src, err)
		}
		if probed.AudioStreamCount() == 0 {
			return 0, Wrap(ErrValidation, "probe", fmt.Sprintf("%s has no audio stream", src), nil)
		}
		bitrates = append(bitrates, probed.BitRate())
	}
	return targetBitrateKbps(bitrates, f.cfg.Encoding.BitrateCapKbps), nil
}

// transcode encodes every source concurrently. Intermediates are returned in
// source order regardless of completion order.
func (f *Forge) transcode(ctx context.Context, sources []string, staging string, bitrate int) ([]string, error) {
	intermediates := make([]string, len(sources))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(f.jobs)
	for i, src := range sources {
		out := filepath.Join(staging, fmt.Sprintf("chap_%04d.m4a", i+1))
		intermediates[i] = out
		group.Go(func() error {
			f.logger.Debug("transcoding chapter",
				logging.Int("chapter", i+1),
				logging.String("source", filepath.Base(src)),
			)
			if err := f.client.EncodeAAC(groupCtx, src, out, bitrate, f.cfg.Encoding.SampleRate, f.cfg.Encoding.Channels); err != nil {
				return Wrap(ErrExternalTool, "transcode", src, err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return intermediates, nil
}

// buildTimeline probes the encoded intermediates for exact durations and pairs
// them with titles read from the sources.
func (f *Forge) buildTimeline(ctx context.Context, sources, intermediates []string) ([]book.Chapter, float64, error) {
	entries := make([]book.TimelineEntry, len(intermediates))
	var total float64
	for i, path := range intermediates {
		probed, err := f.probe(ctx, path)
		if err != nil {
			return nil, 0, Wrap(ErrExternalTool, "probe", path, err)
		}
		duration := probed.DurationSeconds()
		entries[i] = book.TimelineEntry{
			Title:    f.titles(sources[i]),
			Duration: duration,
		}
		total += duration
	}
	chapters, err := book.BuildTimeline(entries)
	if err != nil {
		return nil, 0, Wrap(ErrValidation, "timeline", "", err)
	}
	return chapters, total, nil
}
