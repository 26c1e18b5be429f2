package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, workDir string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, workDir string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = workDir
	return cmd.CombinedOutput()
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(c *Client) {
		if executor != nil {
			c.exec = executor
		}
	}
}

// WithTimeout bounds every invocation. ffmpeg can hang on damaged sources,
// so runs get a deadline instead of blocking the whole build.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// EncodeAAC transcodes the first audio stream of in to an AAC intermediate
// at the target bitrate, 44.1 kHz stereo, with every source tag stripped.
// The container's final tags are injected later, once, to avoid duplicate
// atoms surviving the merge.
func (c *Client) EncodeAAC(ctx context.Context, in, out string, bitrateKbps, sampleRate, channels int) error {
	if bitrateKbps <= 0 {
		return fmt.Errorf("encode %s: invalid bitrate %d", in, bitrateKbps)
	}
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	if channels <= 0 {
		channels = 2
	}
	args := []string{
		"-y",
		"-err_detect", "ignore_err",
		"-i", in,
		"-map", "0:a:0",
		"-vn", "-sn", "-dn",
		"-c:a", "aac",
		"-b:a", strconv.Itoa(bitrateKbps) + "k",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-map_metadata", "-1",
		"-fflags", "+bitexact",
		"-loglevel", "error",
		out,
	}
	return c.run(ctx, "encode "+in, args, "")
}

// Concat merges the intermediates named in listPath into a single chaptered
// M4B at out. The merge is two invocations: a concat-demuxer stream copy,
// then a remux that attaches the FFMETADATA chapter document. The final
// file appears atomically via rename.
//
// listPath and metaPath must live in the staging directory; the concat
// demuxer resolves entries relative to the list file.
func (c *Client) Concat(ctx context.Context, listPath, metaPath, out, workDir string) error {
	combined := out + ".concat.m4a"
	tmp := out + ".tmp.m4b"
	defer func() {
		_ = os.Remove(combined)
		_ = os.Remove(tmp)
	}()

	concatArgs := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-bsf:a", "aac_adtstoasc",
		"-loglevel", "error",
		combined,
	}
	if err := c.run(ctx, "concat", concatArgs, workDir); err != nil {
		return err
	}

	muxArgs := []string{
		"-y",
		"-i", combined,
		"-i", metaPath,
		"-map_metadata", "1",
		"-map", "0:a",
		"-c", "copy",
		"-f", "mp4",
		"-movflags", "+faststart",
		"-loglevel", "error",
		tmp,
	}
	if err := c.run(ctx, "mux chapters", muxArgs, workDir); err != nil {
		return err
	}
	if err := os.Rename(tmp, out); err != nil {
		return fmt.Errorf("finalize %s: %w", out, err)
	}
	return nil
}

// CutPart renders the [start,end] range of in as an independent container
// using precise seek with stream copy. When metaPath names an ffmetadata
// document its chapters replace the source container's chapter atoms while
// the global tags are kept; when coverPath is non-empty the image is mapped
// in as the attached cover picture.
func (c *Client) CutPart(ctx context.Context, in, out string, start, end float64, metaPath, coverPath string) error {
	args := []string{
		"-y",
		"-loglevel", "error",
		"-ss", formatSeconds(start),
		"-to", formatSeconds(end),
		"-i", in,
	}
	metaInput, coverInput := -1, -1
	next := 1
	if metaPath != "" {
		args = append(args, "-i", metaPath)
		metaInput = next
		next++
	}
	if coverPath != "" {
		args = append(args, "-i", coverPath)
		coverInput = next
	}
	args = append(args, "-map", "0:a")
	if coverInput > 0 {
		args = append(args, "-map", strconv.Itoa(coverInput)+":0")
	}
	args = append(args,
		"-c", "copy",
		"-disposition:v", "attached_pic",
		"-f", "ipod",
		"-map_metadata", "0",
	)
	if metaInput > 0 {
		args = append(args,
			"-map_metadata", strconv.Itoa(metaInput),
			"-map_chapters", strconv.Itoa(metaInput),
		)
	}
	args = append(args, out)
	return c.run(ctx, "cut "+out, args, "")
}

// ExtractCover writes the container's embedded cover (its sole video frame)
// to out as a JPEG. Returns false without error when no cover exists.
func (c *Client) ExtractCover(ctx context.Context, in, out string) (bool, error) {
	args := []string{
		"-y",
		"-loglevel", "error",
		"-i", in,
		"-vframes", "1",
		"-q:v", "2",
		out,
	}
	if err := c.run(ctx, "extract cover "+in, args, ""); err != nil {
		_ = os.Remove(out)
		return false, nil
	}
	if _, err := os.Stat(out); err != nil {
		return false, nil
	}
	return true, nil
}

// StripTags removes all metadata, chapters, and any attached cover stream
// from the file in place.
func (c *Client) StripTags(ctx context.Context, path string) error {
	tmp := path + ".strip" + extOf(path)
	args := []string{
		"-y",
		"-loglevel", "error",
		"-i", path,
		"-map_metadata", "-1",
		"-map_chapters", "-1",
		"-vn",
		"-c", "copy",
		tmp,
	}
	if err := c.run(ctx, "strip tags "+path, args, ""); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// RemoveSilences re-encodes the file in place with every run of silence
// longer than minSilence below thresholdDB trimmed out. Trimming cannot
// stream copy, so the audio goes back through libmp3lame at the source
// bitrate to hold the size steady; tags ride along via -map_metadata 0.
func (c *Client) RemoveSilences(ctx context.Context, path string, minSilence time.Duration, thresholdDB, bitrateKbps int) error {
	if bitrateKbps <= 0 {
		return fmt.Errorf("remove silences %s: invalid bitrate %d", path, bitrateKbps)
	}
	if minSilence <= 0 {
		minSilence = 2 * time.Second
	}
	if thresholdDB >= 0 {
		thresholdDB = -40
	}
	filter := fmt.Sprintf("silenceremove=stop_periods=-1:stop_duration=%s:stop_threshold=%ddB",
		strconv.FormatFloat(minSilence.Seconds(), 'f', -1, 64), thresholdDB)

	tmp := path + ".nosilence" + extOf(path)
	args := []string{
		"-y",
		"-loglevel", "error",
		"-i", path,
		"-af", filter,
		"-c:a", "libmp3lame",
		"-b:a", strconv.Itoa(bitrateKbps) + "k",
		"-map_metadata", "0",
		tmp,
	}
	if err := c.run(ctx, "remove silences "+path, args, ""); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// RemoveCover drops the attached picture from the file in place while
// keeping every other tag via an audio-only stream copy.
func (c *Client) RemoveCover(ctx context.Context, path string) error {
	tmp := path + ".nocover" + extOf(path)
	args := []string{
		"-y",
		"-loglevel", "error",
		"-i", path,
		"-map", "0:a",
		"-c", "copy",
		tmp,
	}
	if err := c.run(ctx, "remove cover "+path, args, ""); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func (c *Client) run(ctx context.Context, operation string, args []string, workDir string) error {
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	output, err := c.exec.Run(runCtx, c.binary, args, workDir)
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			return fmt.Errorf("ffmpeg %s: %w", operation, err)
		}
		return fmt.Errorf("ffmpeg %s: %w: %s", operation, err, detail)
	}
	return nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 6, 64)
}

func extOf(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return path[idx:]
	}
	return ""
}
