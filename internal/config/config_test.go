package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookforge/internal/config"
)

func TestLoadDefaultsWhenNoFileExists(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, path, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected no config file, got %s", path)
	}
	wantStaging := filepath.Join(tempHome, ".local", "share", "bookforge", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("staging dir = %q, want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Encoding.BitrateCapKbps != 192 {
		t.Fatalf("bitrate cap = %d, want 192", cfg.Encoding.BitrateCapKbps)
	}
	if cfg.Encoding.SampleRate != 44100 || cfg.Encoding.Channels != 2 {
		t.Fatalf("unexpected encoding defaults: %+v", cfg.Encoding)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" || cfg.Tools.FFprobe != "ffprobe" {
		t.Fatalf("unexpected tool defaults: %+v", cfg.Tools)
	}
}

func TestLoadExplicitPathOverrides(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bookforge.toml")
	content := `
[encoding]
bitrate_cap_kbps = 128
jobs = 4
target_part_mb = 250

[tools]
ffmpeg = "/opt/ffmpeg/bin/ffmpeg"
timeout_seconds = 120

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, path, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || path != configPath {
		t.Fatalf("expected config at %s, got %s exists=%v", configPath, path, exists)
	}
	if cfg.Encoding.BitrateCapKbps != 128 {
		t.Fatalf("bitrate cap = %d, want 128", cfg.Encoding.BitrateCapKbps)
	}
	if cfg.Encoding.Jobs != 4 {
		t.Fatalf("jobs = %d, want 4", cfg.Encoding.Jobs)
	}
	if cfg.Encoding.TargetPartMB != 250 {
		t.Fatalf("target part MB = %d, want 250", cfg.Encoding.TargetPartMB)
	}
	if cfg.Tools.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("ffmpeg = %q", cfg.Tools.FFmpeg)
	}
	if cfg.Tools.FFprobe != "ffprobe" {
		t.Fatalf("ffprobe default lost: %q", cfg.Tools.FFprobe)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bitrate out of range",
			content: "[encoding]\nbitrate_cap_kbps = 1000\n",
			wantErr: "bitrate_cap_kbps",
		},
		{
			name:    "bad channel count",
			content: "[encoding]\nchannels = 6\n",
			wantErr: "channels",
		},
		{
			name:    "bad sample rate",
			content: "[encoding]\nsample_rate = 12345\n",
			wantErr: "sample_rate",
		},
		{
			name:    "bad log format",
			content: "[logging]\nformat = \"xml\"\n",
			wantErr: "logging.format",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "bookforge.toml")
			if err := os.WriteFile(configPath, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(configPath)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestExpandPathTilde(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	expanded, err := config.ExpandPath("~/books")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if expanded != filepath.Join(tempHome, "books") {
		t.Fatalf("expanded = %q", expanded)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	written, err := config.WriteSample(target)
	if err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	data, err := os.ReadFile(written)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[encoding]") {
		t.Fatal("sample config missing encoding section")
	}

	if _, err := config.WriteSample(target); err == nil {
		t.Fatal("expected error when target already exists")
	}
}
