package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"sunweather/internal/align"
	"sunweather/internal/compose"
	"sunweather/internal/config"
	"sunweather/internal/encode"
	"sunweather/internal/fetch"
	"sunweather/internal/fileutil"
	"sunweather/internal/logging"
	"sunweather/internal/manifest"
	"sunweather/internal/services"
	"sunweather/internal/suvi"
)

// Fetcher is the contract the pipeline needs from the archive collaborator.
type Fetcher interface {
	FetchBand(ctx context.Context, band suvi.Band, window fetch.Window, destDir string) (suvi.Sequence, error)
}

// Pipeline orchestrates fetch, align, compose, and encode for one run.
type Pipeline struct {
	cfg     *config.Config
	fetcher Fetcher
	encoder encode.Encoder
	logger  *slog.Logger

	mu    sync.RWMutex
	state State
}

// New constructs a pipeline. A nil logger falls back to a no-op logger.
func New(cfg *config.Config, fetcher Fetcher, encoder encode.Encoder, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil || fetcher == nil || encoder == nil {
		return nil, errors.New("pipeline requires config, fetcher, and encoder")
	}
	return &Pipeline{
		cfg:     cfg,
		fetcher: fetcher,
		encoder: encoder,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
		state:   StateIdle,
	}, nil
}

// State reports the current phase.
func (p *Pipeline) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Pipeline) transition(next State) {
	p.mu.Lock()
	p.state = next
	p.mu.Unlock()
	p.logger.Debug("state transition", logging.String("state", string(next)))
}

// Run executes the full pipeline and leaves the finished media file at the
// configured output path. The returned error is nil only when the run
// reaches the done state.
func (p *Pipeline) Run(ctx context.Context) error {
	started := time.Now()

	// Configuration errors surface before any fetch begins.
	format, err := encode.ParseFormat(p.cfg.Output.Path)
	if err != nil {
		p.transition(StateFailed)
		return err
	}

	if err := p.cfg.EnsureDirectories(); err != nil {
		p.transition(StateFailed)
		return services.Wrap(services.ErrConfiguration, "setup", "directories", "", err)
	}

	lock := flock.New(filepath.Join(p.cfg.Paths.WorkDir, "sunweather.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		p.transition(StateFailed)
		return fmt.Errorf("acquire work dir lock: %w", err)
	}
	if !locked {
		p.transition(StateFailed)
		return errors.New("another sunweather run owns this work directory")
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)

	scratch := filepath.Join(p.cfg.Paths.WorkDir, "run-"+runID)
	if err := os.MkdirAll(filepath.Join(scratch, "grid"), 0o755); err != nil {
		p.transition(StateFailed)
		return fmt.Errorf("create scratch directory: %w", err)
	}

	store, err := manifest.Open(filepath.Join(scratch, "manifest.db"))
	if err != nil {
		p.transition(StateFailed)
		p.cleanup(logger, scratch, "", false)
		return fmt.Errorf("open manifest: %w", err)
	}
	if err := store.StartRun(ctx, runID); err != nil {
		logger.Warn("manifest start failed", logging.Error(err))
	}

	outputWritten := false
	runErr := p.run(ctx, logger, store, scratch, format, &outputWritten)

	state := manifest.StateDone
	errMsg := ""
	if runErr != nil {
		state = manifest.StateFailed
		errMsg = runErr.Error()
	}
	if err := store.FinishRun(ctx, runID, state, p.cfg.Output.Path, errMsg); err != nil {
		logger.Warn("manifest finish failed", logging.Error(err))
	}
	if err := store.Close(); err != nil {
		logger.Warn("manifest close failed", logging.Error(err))
	}

	if runErr != nil {
		p.transition(StateFailed)
		if outputWritten {
			// Partial artifacts are not left behind.
			_ = os.Remove(p.cfg.Output.Path)
		}
		p.cleanup(logger, scratch, "", false)
		return runErr
	}

	intermediate := filepath.Join(scratch, encode.IntermediateName)
	p.cleanup(logger, scratch, intermediate, format == encode.FormatMP4)
	p.transition(StateDone)
	logger.Info("run complete",
		logging.String("output", p.cfg.Output.Path),
		logging.Duration("elapsed", time.Since(started)))
	return nil
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, store *manifest.Store, scratch string, format encode.Format, outputWritten *bool) error {
	sequences, err := p.fetchAll(ctx, logger, store, scratch)
	if err != nil {
		return err
	}

	p.transition(StateAligning)
	timeline, err := align.Build(sequences, align.Options{
		Tolerance: p.cfg.Tolerance(),
		Frames:    p.cfg.Align.Frames,
		Strict:    p.cfg.Output.Strict,
	})
	if err != nil {
		return err
	}
	if len(timeline) == 0 {
		return services.Wrap(services.ErrFetch, "aligning", "timeline", "no usable observations in any band", nil)
	}
	logger.Info("timeline aligned",
		logging.Int("frames", len(timeline)),
		logging.Time("first", timeline[0].Timestamp),
		logging.Time("last", timeline[len(timeline)-1].Timestamp))

	p.transition(StateComposing)
	composer := compose.New(p.cfg.Compose.TileWidth, p.cfg.Compose.TileHeight)
	gridDir := filepath.Join(scratch, "grid")
	for i, fs := range timeline {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := composer.Compose(fs)
		if err != nil {
			return services.Wrap(services.ErrTransient, "composing", "frame", fs.Timestamp.UTC().Format(time.RFC3339), err)
		}
		path := filepath.Join(gridDir, fmt.Sprintf("frame_%06d.png", i))
		if err := compose.WritePNG(path, frame); err != nil {
			return services.Wrap(services.ErrTransient, "composing", "write", path, err)
		}
	}
	logger.Info("composites rendered", logging.Int("frames", len(timeline)))

	p.transition(StateEncoding)
	*outputWritten = true
	_, err = p.encoder.Encode(ctx, encode.Request{
		FramePattern: filepath.Join(gridDir, "frame_%06d.png"),
		FPS:          p.cfg.Output.FPS,
		Format:       format,
		ScratchDir:   scratch,
		OutputPath:   p.cfg.Output.Path,
	})
	if err != nil {
		return err
	}
	return nil
}

// fetchAll runs the six band fetches concurrently, each into its own slot,
// and joins before returning. In non-strict mode a failed band degrades to
// an empty sequence; in strict mode the first failure cancels the rest.
func (p *Pipeline) fetchAll(ctx context.Context, logger *slog.Logger, store *manifest.Store, scratch string) ([]suvi.Sequence, error) {
	p.transition(StateFetching)
	fetchCtx, cancel := context.WithCancel(services.WithStage(ctx, string(StateFetching)))
	defer cancel()

	bands := suvi.Bands()
	sequences := make([]suvi.Sequence, len(bands))
	fetchErrs := make([]error, len(bands))

	var wg sync.WaitGroup
	for i, band := range bands {
		wg.Add(1)
		go func(i int, band suvi.Band) {
			defer wg.Done()
			bandCtx := services.WithBand(fetchCtx, string(band))
			destDir := filepath.Join(scratch, "frames", string(band))
			seq, err := p.fetcher.FetchBand(bandCtx, band, fetch.Window{}, destDir)
			sequences[i] = seq
			sequences[i].Band = band
			if err != nil {
				fetchErrs[i] = err
				if p.cfg.Output.Strict {
					cancel()
				}
			}
		}(i, band)
	}
	wg.Wait()

	if p.cfg.Output.Strict {
		// Cancellation fallout from a failing sibling should not mask the
		// fetch error that triggered it.
		var firstErr error
		for _, err := range fetchErrs {
			if err == nil {
				continue
			}
			if firstErr == nil || errors.Is(firstErr, context.Canceled) {
				firstErr = err
			}
		}
		if firstErr != nil {
			return nil, firstErr
		}
	}

	for i, band := range bands {
		if err := fetchErrs[i]; err != nil {
			logger.Warn("band degraded to gap coverage",
				logging.String(logging.FieldBand, string(band)),
				logging.Error(err))
			continue
		}
		logger.Info("band fetched",
			logging.String(logging.FieldBand, string(band)),
			logging.Int("frames", len(sequences[i].Images)))
		if err := store.RecordSequence(ctx, mustRunID(ctx), sequences[i]); err != nil {
			logger.Warn("manifest record failed", logging.Error(err))
		}
	}
	return sequences, nil
}

// cleanup removes the scratch directory unless retention flags apply. The
// intermediate container is copied next to the final output when keepAVI is
// requested and the run produced one.
func (p *Pipeline) cleanup(logger *slog.Logger, scratch, intermediate string, intermediateUsable bool) {
	if p.cfg.Output.Keep {
		logger.Info("scratch retained", logging.String("dir", scratch))
		return
	}
	if p.cfg.Output.KeepAVI && intermediateUsable && intermediate != "" {
		if _, err := os.Stat(intermediate); err == nil {
			dest := strings.TrimSuffix(p.cfg.Output.Path, filepath.Ext(p.cfg.Output.Path)) + ".avi"
			if err := fileutil.CopyFile(intermediate, dest); err != nil {
				logger.Warn("retain intermediate failed", logging.Error(err))
			} else {
				logger.Info("intermediate retained", logging.String("path", dest))
			}
		}
	}
	if err := os.RemoveAll(scratch); err != nil {
		logger.Warn("scratch cleanup failed", logging.Error(err))
	}
}

func mustRunID(ctx context.Context) string {
	if id, ok := services.RunIDFromContext(ctx); ok {
		return id
	}
	return "unknown"
}
