package forge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"

	"bookforge/internal/config"
	"bookforge/internal/logging"
	"bookforge/internal/media/ffmpeg"
	"bookforge/internal/media/ffprobe"
)

// fakeExecutor stands in for ffmpeg. It records every invocation and creates
// the file named by the final argument so downstream stages find their inputs.
type fakeExecutor struct {
	mu       sync.Mutex
	calls    [][]string
	failWhen func(args []string) error
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string, workDir string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), args...))
	f.mu.Unlock()

	if f.failWhen != nil {
		if err := f.failWhen(args); err != nil {
			return []byte("simulated ffmpeg failure"), err
		}
	}

	out := args[len(args)-1]
	if !filepath.IsAbs(out) && workDir != "" {
		out = filepath.Join(workDir, out)
	}
	if err := os.WriteFile(out, []byte("media"), 0o644); err != nil {
		return nil, err
	}
	return nil, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Paths: config.Paths{
			StagingDir: t.TempDir(),
			LogDir:     t.TempDir(),
		},
		Encoding: config.Encoding{
			BitrateCapKbps: 192,
			SampleRate:     44100,
			Channels:       2,
			Jobs:           2,
			TargetPartMB:   500,
		},
		Tools: config.Tools{
			FFmpeg:         "ffmpeg",
			FFprobe:        "ffprobe",
			TimeoutSeconds: 60,
		},
	}
}

func sourceDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Winter Book")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("mp3"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// fakeProbe reports a 128k audio stream for MP3 sources and fixed durations
// for encoded intermediates, keyed by the chapter number in the filename.
func fakeProbe(ctx context.Context, path string) (ffprobe.Result, error) {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "audio", CodecName: "mp3"}},
			Format:  ffprobe.Format{Duration: "10.0", BitRate: "128000"},
		}, nil
	}
	duration := "10.0"
	if strings.Contains(filepath.Base(path), "0002") {
		duration = "20.0"
	}
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "audio", CodecName: "aac"}},
		Format:  ffprobe.Format{Duration: duration, BitRate: "128000"},
	}, nil
}

func newTestForge(t *testing.T, cfg *config.Config, exec *fakeExecutor) *Forge {
	t.Helper()
	client, err := ffmpeg.New("ffmpeg", ffmpeg.WithExecutor(exec))
	if err != nil {
		t.Fatalf("ffmpeg.New: %v", err)
	}
	f, err := New(cfg, logging.NewNop(),
		WithFFmpegClient(client),
		WithProber(fakeProbe),
		WithTitleReader(titleStem),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func TestRunBuildsChapteredBook(t *testing.T) {
	cfg := testConfig(t)
	exec := &fakeExecutor{}
	dir := sourceDir(t, "01 Intro.mp3", "02 Body.mp3")

	result, err := newTestForge(t, cfg, exec).Run(context.Background(), dir, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantOutput := filepath.Join(dir, "Winter Book.m4b")
	if result.Output != wantOutput {
		t.Fatalf("output = %q, want %q", result.Output, wantOutput)
	}
	if _, err := os.Stat(wantOutput); err != nil {
		t.Fatalf("output file missing: %v", err)
	}

	if len(result.Chapters) != 2 {
		t.Fatalf("chapters = %d, want 2", len(result.Chapters))
	}
	first, second := result.Chapters[0], result.Chapters[1]
	if first.Start != 0 || first.End != 10 || first.Title != "01 Intro" {
		t.Fatalf("first chapter = %+v", first)
	}
	if second.Start != 10 || second.End != 30 || second.Title != "02 Body" {
		t.Fatalf("second chapter = %+v", second)
	}
	if result.BitrateKbps != 128 {
		t.Fatalf("bitrate = %d, want 128", result.BitrateKbps)
	}
	if result.Duration != 30 {
		t.Fatalf("duration = %v, want 30", result.Duration)
	}

	// Two encodes plus the two-step merge.
	if len(exec.calls) != 4 {
		t.Fatalf("expected 4 ffmpeg invocations, got %d", len(exec.calls))
	}

	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging not reclaimed: %v", entries)
	}
	if _, err := os.Stat(filepath.Join(dir, ".bookforge.lock")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("lock file not removed: %v", err)
	}
}

func TestRunFailsWhenTranscodeFails(t *testing.T) {
	cfg := testConfig(t)
	exec := &fakeExecutor{
		failWhen: func(args []string) error {
			for _, arg := range args {
				if strings.Contains(arg, "Body.mp3") {
					return errors.New("exit status 1")
				}
			}
			return nil
		},
	}
	dir := sourceDir(t, "01 Intro.mp3", "02 Body.mp3")

	_, err := newTestForge(t, cfg, exec).Run(context.Background(), dir, "")
	if err == nil {
		t.Fatal("expected transcode failure")
	}
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("error = %v, want ErrExternalTool", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "Winter Book.m4b")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("no output should exist after a failed build")
	}

	entries, readErr := os.ReadDir(cfg.Paths.StagingDir)
	if readErr != nil {
		t.Fatalf("read staging dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("staging not reclaimed after failure: %v", entries)
	}
}

func TestRunRejectsDirectoryWithoutSources(t *testing.T) {
	cfg := testConfig(t)
	dir := sourceDir(t, "notes.txt")

	_, err := newTestForge(t, cfg, &fakeExecutor{}).Run(context.Background(), dir, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestRunRefusesLockedDirectory(t *testing.T) {
	cfg := testConfig(t)
	dir := sourceDir(t, "01 Intro.mp3")

	held := flock.New(filepath.Join(dir, ".bookforge.lock"))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("acquire lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	_, err = newTestForge(t, cfg, &fakeExecutor{}).Run(context.Background(), dir, "")
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("error = %v, want ErrLocked", err)
	}
}

func TestRunHonorsOutputOverride(t *testing.T) {
	cfg := testConfig(t)
	exec := &fakeExecutor{}
	dir := sourceDir(t, "01 Intro.mp3")
	override := filepath.Join(t.TempDir(), "custom.m4b")

	result, err := newTestForge(t, cfg, exec).Run(context.Background(), dir, override)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Output != override {
		t.Fatalf("output = %q, want %q", result.Output, override)
	}
	if _, err := os.Stat(override); err != nil {
		t.Fatalf("override output missing: %v", err)
	}
}

func TestScanSourcesSortsAndFilters(t *testing.T) {
	dir := sourceDir(t, "02 b.mp3", "01 a.MP3", "cover.jpg", "notes.txt")

	sources, err := ScanSources(dir)
	if err != nil {
		t.Fatalf("ScanSources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("sources = %v", sources)
	}
	if filepath.Base(sources[0]) != "01 a.MP3" || filepath.Base(sources[1]) != "02 b.mp3" {
		t.Fatalf("wrong order: %v", sources)
	}
}
