package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sunweather/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SUNWEATHER_CONFIG", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "sunweather", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Archive.BaseURL != "https://services.swpc.noaa.gov/images/animations/suvi/primary" {
		t.Fatalf("unexpected archive base: %q", cfg.Archive.BaseURL)
	}
	if cfg.Archive.Retries != 3 {
		t.Fatalf("unexpected retries: %d", cfg.Archive.Retries)
	}
	if cfg.Align.ToleranceSeconds != 150 {
		t.Fatalf("unexpected tolerance: %d", cfg.Align.ToleranceSeconds)
	}
	if cfg.Output.FPS != 20 {
		t.Fatalf("unexpected fps: %d", cfg.Output.FPS)
	}
	if cfg.Output.Strict {
		t.Fatal("expected strict disabled by default")
	}
	if cfg.Encode.FFmpegBinary != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.Encode.FFmpegBinary)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadReadsFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := strings.Join([]string{
		"[archive]",
		`base_url = "https://example.test/suvi/"`,
		"retries = 7",
		"[align]",
		"tolerance_seconds = 60",
		"[output]",
		`path = "out.gif"`,
		"fps = 4",
		"strict = true",
	}, "\n")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %q to exist, got resolved=%q exists=%v", path, resolved, exists)
	}
	if cfg.Archive.BaseURL != "https://example.test/suvi" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Archive.BaseURL)
	}
	if cfg.Archive.Retries != 7 {
		t.Fatalf("unexpected retries: %d", cfg.Archive.Retries)
	}
	if cfg.Align.ToleranceSeconds != 60 {
		t.Fatalf("unexpected tolerance: %d", cfg.Align.ToleranceSeconds)
	}
	if !cfg.Output.Strict {
		t.Fatal("expected strict enabled")
	}
	if cfg.Output.Path != "out.gif" {
		t.Fatalf("unexpected output path: %q", cfg.Output.Path)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero fps", func(c *config.Config) { c.Output.FPS = 0 }, "output.fps"},
		{"negative frames", func(c *config.Config) { c.Align.Frames = -1 }, "align.frames"},
		{"zero tolerance", func(c *config.Config) { c.Align.ToleranceSeconds = 0 }, "align.tolerance_seconds"},
		{"zero retries", func(c *config.Config) { c.Archive.Retries = 0 }, "archive.retries"},
		{"empty output", func(c *config.Config) { c.Output.Path = " " }, "output.path"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "yaml" }, "logging.format"},
		{"bad base url", func(c *config.Config) { c.Archive.BaseURL = "ftp://example" }, "archive.base_url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := os.WriteFile(path, []byte(config.SampleConfig()), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config failed validation: %v", err)
	}
}
