package clean

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"bookforge/internal/config"
	"bookforge/internal/forge"
	"bookforge/internal/logging"
	"bookforge/internal/media/ffmpeg"
	"bookforge/internal/media/ffprobe"
	"bookforge/internal/tag"
)

// Silence trimming defaults matching what long narrated gaps look like in
// practice: two seconds of near-silence is a pause worth cutting.
const (
	DefaultMinSilence  = 2 * time.Second
	DefaultThresholdDB = -40
)

// ProbeFunc inspects a media file. The default shells out to ffprobe.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Failure pairs a source file with its cleanup error.
type Failure struct {
	Path string
	Err  error
}

// Result aggregates one cleanup sweep.
type Result struct {
	Cleaned  []string
	Failures []Failure
}

// Options selects which passes a sweep applies to each file.
type Options struct {
	// StripTags clears all frame metadata instead of just the cover.
	StripTags bool
	// TrimSilences re-encodes each file with long silent runs removed.
	TrimSilences bool
	MinSilence   time.Duration
	ThresholdDB  int
}

// Option adjusts Cleaner construction.
type Option func(*Cleaner)

// WithFFmpegClient overrides the ffmpeg client, primarily for tests.
func WithFFmpegClient(client *ffmpeg.Client) Option {
	return func(c *Cleaner) {
		if client != nil {
			c.client = client
		}
	}
}

// WithProber overrides media inspection, primarily for tests.
func WithProber(probe ProbeFunc) Option {
	return func(c *Cleaner) {
		if probe != nil {
			c.probe = probe
		}
	}
}

// Cleaner scrubs covers, tags, and silent gaps from source MP3 directories.
type Cleaner struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   *ffmpeg.Client
	injector *tag.Injector
	probe    ProbeFunc
}

// New constructs a Cleaner from application configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Cleaner, error) {
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

	c := &Cleaner{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "clean"),
		client:   client,
		injector: tag.NewInjector(logger),
	}
	c.probe = func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, cfg.Tools.FFprobe, path)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run sweeps every MP3 in dir. Covers are always removed; opts select the
// tag-strip and silence-trim passes on top. Per-file failures are aggregated
// in the result, not fatal to the sweep.
func (c *Cleaner) Run(ctx context.Context, dir string, opts Options) (Result, error) {
	dir, err := config.ExpandPath(dir)
	if err != nil {
		return Result{}, forge.Wrap(forge.ErrValidation, "clean", "resolve source directory", err)
	}

	sources, err := forge.ScanSources(dir)
	if err != nil {
		return Result{}, err
	}

	c.logger.Info("cleaning sources",
		logging.String("dir", dir),
		logging.Int("files", len(sources)),
		logging.Bool("strip_tags", opts.StripTags),
		logging.Bool("trim_silences", opts.TrimSilences),
	)

	var result Result
	for _, src := range sources {
		if err := c.cleanFile(ctx, src, opts); err != nil {
			c.logger.Warn("cleanup failed",
				logging.String("file", filepath.Base(src)),
				logging.Error(err),
			)
			result.Failures = append(result.Failures, Failure{Path: src, Err: err})
			continue
		}
		result.Cleaned = append(result.Cleaned, src)
	}

	if len(result.Failures) > 0 {
		return result, forge.Wrap(forge.ErrExternalTool, "clean",
			fmt.Sprintf("%d of %d files failed", len(result.Failures), len(sources)), nil)
	}
	return result, nil
}

func (c *Cleaner) cleanFile(ctx context.Context, path string, opts Options) error {
	if opts.StripTags {
		if err := c.injector.Clear(ctx, c.client, path); err != nil {
			return err
		}
	} else if err := c.client.RemoveCover(ctx, path); err != nil {
		return err
	}
	if !opts.TrimSilences {
		return nil
	}
	return c.trimSilences(ctx, path, opts)
}

// trimSilences re-encodes at the source bitrate so the trimmed file stays
// close to its original size. Sources without a readable bitrate fall back
// to the configured encoding cap.
func (c *Cleaner) trimSilences(ctx context.Context, path string, opts Options) error {
	probed, err := c.probe(ctx, path)
	if err != nil {
		return forge.Wrap(forge.ErrExternalTool, "clean", "probe source bitrate", err)
	}
	bitrate := int(probed.BitRate() / 1000)
	if bitrate <= 0 {
		bitrate = c.cfg.Encoding.BitrateCapKbps
	}

	minSilence := opts.MinSilence
	if minSilence <= 0 {
		minSilence = DefaultMinSilence
	}
	threshold := opts.ThresholdDB
	if threshold >= 0 {
		threshold = DefaultThresholdDB
	}
	return c.client.RemoveSilences(ctx, path, minSilence, threshold, bitrate)
}
