package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunEndToEnd(t *testing.T) {
	base := t.TempDir()
	server := newArchiveServer(t, []string{
		"20260314T120000",
		"20260314T120400",
		"20260314T120800",
	})
	ffmpeg := writeStubFFmpeg(t, base)
	output := filepath.Join(base, "sun.mp4")
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, base, server.URL, output, ffmpeg)

	stdout, _, err := runCLI(t, nil, configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, stdout, "Wrote "+output)
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output movie: %v", err)
	}
}

func TestRunOutputFlagOverridesConfig(t *testing.T) {
	base := t.TempDir()
	server := newArchiveServer(t, []string{"20260314T120000", "20260314T120400"})
	ffmpeg := writeStubFFmpeg(t, base)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, base, server.URL, filepath.Join(base, "ignored.mp4"), ffmpeg)

	override := filepath.Join(base, "override.gif")
	stdout, _, err := runCLI(t, []string{"--output", override}, configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, stdout, "Wrote "+override)
	if _, err := os.Stat(override); err != nil {
		t.Fatalf("expected override output: %v", err)
	}
}

func TestRunRejectsUnknownExtension(t *testing.T) {
	base := t.TempDir()
	server := newArchiveServer(t, []string{"20260314T120000"})
	ffmpeg := writeStubFFmpeg(t, base)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, base, server.URL, filepath.Join(base, "sun.mkv"), ffmpeg)

	if _, _, err := runCLI(t, nil, configPath); err == nil {
		t.Fatal("expected unsupported container to fail")
	}
}

func TestRunKeepRetainsScratch(t *testing.T) {
	base := t.TempDir()
	server := newArchiveServer(t, []string{"20260314T120000", "20260314T120400"})
	ffmpeg := writeStubFFmpeg(t, base)
	output := filepath.Join(base, "sun.mp4")
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, base, server.URL, output, ffmpeg)

	if _, _, err := runCLI(t, []string{"--keep"}, configPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(base, "work"))
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	var scratch string
	for _, entry := range entries {
		if entry.IsDir() {
			scratch = filepath.Join(base, "work", entry.Name())
		}
	}
	if scratch == "" {
		t.Fatal("expected retained scratch directory")
	}
	if _, err := os.Stat(filepath.Join(scratch, "manifest.db")); err != nil {
		t.Fatalf("expected retained manifest: %v", err)
	}
}
