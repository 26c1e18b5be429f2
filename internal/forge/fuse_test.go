package forge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"bookforge/internal/media/ffmpeg"
	"bookforge/internal/media/ffprobe"
)

func newFakeClient(t *testing.T, exec *fakeExecutor) *ffmpeg.Client {
	t.Helper()
	client, err := ffmpeg.New("ffmpeg", ffmpeg.WithExecutor(exec))
	if err != nil {
		t.Fatalf("ffmpeg.New: %v", err)
	}
	return client
}

// fuseProbe reports a chaptered 90-second base book and 10-second extras.
func fuseProbe(ctx context.Context, path string) (ffprobe.Result, error) {
	if strings.HasSuffix(path, ".m4b") {
		result := ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "audio", CodecName: "aac"}},
			Format:  ffprobe.Format{Duration: "90.0", BitRate: "96000"},
		}
		for i := 0; i < 3; i++ {
			result.Chapters = append(result.Chapters, ffprobe.Chapter{
				StartTime: strconv.Itoa(i * 30),
				EndTime:   strconv.Itoa((i + 1) * 30),
				Tags:      map[string]string{"title": "Base " + strconv.Itoa(i+1)},
			})
		}
		return result, nil
	}
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "audio", CodecName: "aac"}},
		Format:  ffprobe.Format{Duration: "10.0", BitRate: "128000"},
	}, nil
}

func TestFuseAppendsChapters(t *testing.T) {
	cfg := testConfig(t)
	exec := &fakeExecutor{}

	baseDir := t.TempDir()
	basePath := filepath.Join(baseDir, "Winter Book.m4b")
	if err := os.WriteFile(basePath, []byte("m4b"), 0o644); err != nil {
		t.Fatalf("write base: %v", err)
	}
	extraDir := sourceDir(t, "01 Bonus.mp3", "02 Interview.mp3")

	f, err := New(cfg, nil, withTestDoubles(t, exec, fuseProbe))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := f.Fuse(context.Background(), basePath, extraDir, "")
	if err != nil {
		t.Fatalf("Fuse: %v", err)
	}

	wantOutput := filepath.Join(baseDir, "Winter Book_fused.m4b")
	if result.Output != wantOutput {
		t.Fatalf("output = %q, want %q", result.Output, wantOutput)
	}
	if _, err := os.Stat(basePath); err != nil {
		t.Fatalf("base must stay untouched: %v", err)
	}
	if _, err := os.Stat(wantOutput); err != nil {
		t.Fatalf("fused output missing: %v", err)
	}

	if len(result.Chapters) != 5 {
		t.Fatalf("chapters = %d, want 5", len(result.Chapters))
	}
	fourth := result.Chapters[3]
	if fourth.Start != 90 || fourth.End != 100 || fourth.Title != "01 Bonus" {
		t.Fatalf("first appended chapter = %+v", fourth)
	}
	if last := result.Chapters[4]; last.End != 110 || last.Index != 4 {
		t.Fatalf("last chapter = %+v", last)
	}
	// Indexes stay contiguous from zero across the base/appended boundary.
	for i, ch := range result.Chapters {
		if ch.Index != i {
			t.Fatalf("chapter %d carries index %d", i, ch.Index)
		}
	}

	// Extras are re-encoded at the base bitrate, never above it.
	if result.BitrateKbps != 96 {
		t.Fatalf("bitrate = %d, want base 96", result.BitrateKbps)
	}

	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging not reclaimed: %v", entries)
	}
}

func TestFuseRejectsEmptyExtrasDirectory(t *testing.T) {
	cfg := testConfig(t)
	basePath := filepath.Join(t.TempDir(), "Winter Book.m4b")
	if err := os.WriteFile(basePath, []byte("m4b"), 0o644); err != nil {
		t.Fatalf("write base: %v", err)
	}
	extraDir := sourceDir(t, "notes.txt")

	f, err := New(cfg, nil, withTestDoubles(t, &fakeExecutor{}, fuseProbe))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := f.Fuse(context.Background(), basePath, extraDir, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

// withTestDoubles wires the fake executor, prober, and stem titles in one option.
func withTestDoubles(t *testing.T, exec *fakeExecutor, probe ProbeFunc) Option {
	t.Helper()
	client := newFakeClient(t, exec)
	return func(f *Forge) {
		f.client = client
		f.probe = probe
		f.titles = titleStem
	}
}
