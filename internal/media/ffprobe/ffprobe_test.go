package ffprobe

import (
	"math"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio", BitRate: "64000"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
			BitRate:  "32000",
		},
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	if !result.HasVideoStream() {
		t.Fatal("expected video stream to be detected")
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if result.BitRate() != 32000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRate())
	}
}

func TestResultBitRateFallsBackToAudioStream(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio", BitRate: "128000"}},
	}
	if result.BitRate() != 128000 {
		t.Fatalf("expected stream fallback bitrate, got %d", result.BitRate())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
			BitRate:  "nope",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.BitRate() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRate())
	}
}

func TestChapterList(t *testing.T) {
	result := Result{
		Chapters: []Chapter{
			{StartTime: "0.000000", EndTime: "600.5", Tags: map[string]string{"title": " One "}},
			{StartTime: "600.5", EndTime: "1800", Tags: map[string]string{"title": "Two"}},
			{StartTime: "garbage", EndTime: "x"},
		},
	}
	chapters := result.ChapterList()
	if len(chapters) != 2 {
		t.Fatalf("expected unparseable chapters dropped, got %d", len(chapters))
	}
	if chapters[0].Title != "One" || chapters[0].End != 600.5 {
		t.Fatalf("unexpected first chapter %+v", chapters[0])
	}
	if chapters[1].Index != 1 {
		t.Fatalf("chapter index %d, want 1", chapters[1].Index)
	}
}
