package encode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"sunweather/internal/fileutil"
	"sunweather/internal/services"
)

var commandContext = exec.CommandContext

// IntermediateName is the fast-codec container produced inside the scratch
// directory for mp4 and avi output.
const IntermediateName = "sunweather.avi"

// Fixed quality constants for the two-stage mp4 policy.
const (
	intermediateCodec   = "mpeg4"
	intermediateQuality = "3"
	finalCodec          = "libx264"
	finalPreset         = "slow"
	finalCRF            = "18"
	finalPixelFormat    = "yuv420p"
	gifFilter           = "split[s0][s1];[s0]palettegen[p];[s1][p]paletteuse"
)

// Request describes one encoding invocation.
type Request struct {
	// FramePattern is the printf-style path of the ordered composite
	// frames, e.g. scratch/grid/frame_%06d.png.
	FramePattern string
	FPS          int
	Format       Format
	ScratchDir   string
	OutputPath   string
}

// Result reports the artifacts an encode produced.
type Result struct {
	// IntermediatePath is the fast AVI container, empty for gif output.
	IntermediatePath string
}

// Encoder is the contract the pipeline needs from the encoding collaborator.
type Encoder interface {
	Encode(ctx context.Context, req Request) (Result, error)
}

// Error captures a failed encoder invocation with its diagnostic output.
type Error struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("ffmpeg %s failed: %v", strings.Join(e.Args, " "), e.Err)
	if tail := strings.TrimSpace(e.Stderr); tail != "" {
		msg += "\n" + tail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match the services.ErrExternalTool marker.
func (e *Error) Is(target error) bool {
	return target == services.ErrExternalTool
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI encoder around the given ffmpeg binary.
func NewCLI(binary string) *CLI {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &CLI{binary: binary}
}

// Encode runs the format policy end to end and leaves the final artifact at
// req.OutputPath.
func (c *CLI) Encode(ctx context.Context, req Request) (Result, error) {
	if req.FramePattern == "" {
		return Result{}, errors.New("frame pattern required")
	}
	if req.FPS <= 0 {
		return Result{}, fmt.Errorf("fps must be positive, got %d", req.FPS)
	}
	if req.OutputPath == "" {
		return Result{}, errors.New("output path required")
	}

	switch req.Format {
	case FormatGIF:
		// Documented as impractical for large outputs, but not blocked.
		args := []string{
			"-y",
			"-framerate", strconv.Itoa(req.FPS),
			"-i", req.FramePattern,
			"-vf", gifFilter,
			"-loop", "0",
			req.OutputPath,
		}
		if err := c.run(ctx, args); err != nil {
			return Result{}, err
		}
		return Result{}, nil

	case FormatMP4, FormatAVI:
		intermediate := filepath.Join(req.ScratchDir, IntermediateName)
		args := []string{
			"-y",
			"-framerate", strconv.Itoa(req.FPS),
			"-i", req.FramePattern,
			"-c:v", intermediateCodec,
			"-q:v", intermediateQuality,
			intermediate,
		}
		if err := c.run(ctx, args); err != nil {
			return Result{}, err
		}

		if req.Format == FormatAVI {
			if err := fileutil.CopyFile(intermediate, req.OutputPath); err != nil {
				return Result{}, fmt.Errorf("place avi output: %w", err)
			}
			return Result{IntermediatePath: intermediate}, nil
		}

		args = []string{
			"-y",
			"-i", intermediate,
			"-c:v", finalCodec,
			"-preset", finalPreset,
			"-crf", finalCRF,
			"-pix_fmt", finalPixelFormat,
			req.OutputPath,
		}
		if err := c.run(ctx, args); err != nil {
			return Result{}, err
		}
		return Result{IntermediatePath: intermediate}, nil

	default:
		return Result{}, fmt.Errorf("unknown format %q", req.Format)
	}
}

func (c *CLI) run(ctx context.Context, args []string) error {
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &Error{Args: args, Stderr: tail(stderr.String(), 2048), Err: err}
	}
	return nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

var _ Encoder = (*CLI)(nil)
