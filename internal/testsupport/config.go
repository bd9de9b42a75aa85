package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"sunweather/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Tile dimensions shrink so composite-heavy tests stay fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Output.Path = filepath.Join(base, "sunweather.mp4")
	cfgVal.Compose.TileWidth = 48
	cfgVal.Compose.TileHeight = 32

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOutputPath overrides the rendered media destination.
func WithOutputPath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Path = path
	}
}

// WithStrict toggles strict coverage on the test config.
func WithStrict(strict bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Strict = strict
	}
}

// WithKeep retains the scratch directory after the run.
func WithKeep(keep bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Keep = keep
	}
}

// WithKeepAVI retains the intermediate container next to the output.
func WithKeepAVI(keep bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.KeepAVI = keep
	}
}

// WithFrames caps the run to the most recent N aligned frames.
func WithFrames(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Align.Frames = n
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
