package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"sunweather/internal/config"
	"sunweather/internal/encode"
	"sunweather/internal/fetch"
	"sunweather/internal/logging"
	"sunweather/internal/pipeline"
)

type runFlags struct {
	output  string
	fps     int
	frames  int
	retries int
	strict  bool
	keep    bool
	keepAVI bool
	debug   bool
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var flags runFlags

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "sunweather",
		Short:         "Render a grid movie of recent SUVI solar imagery",
		Long: "sunweather downloads the latest extreme-ultraviolet imagery for the six\n" +
			"GOES SUVI bands, aligns the band sequences onto one timeline, composes\n" +
			"2x3 grid frames, and encodes them into an mp4, avi, or gif movie.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applyRunFlags(cfg, cmd, &flags)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runPipeline(cmd, cfg, flags.debug)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output movie path (.mp4, .avi, or .gif)")
	rootCmd.Flags().IntVar(&flags.fps, "fps", 0, "Playback frame rate")
	rootCmd.Flags().IntVar(&flags.frames, "frames", 0, "Limit the movie to the N most recent frames")
	rootCmd.Flags().IntVar(&flags.retries, "retries", 0, "Download retry budget per file")
	rootCmd.Flags().BoolVar(&flags.strict, "strict", false, "Fail instead of rendering placeholders for missing bands")
	rootCmd.Flags().BoolVar(&flags.keep, "keep", false, "Retain the scratch directory after the run")
	rootCmd.Flags().BoolVar(&flags.keepAVI, "keep-avi", false, "Retain the intermediate container next to the output")
	rootCmd.Flags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newBandsCommand())
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newFramesCommand())
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// applyRunFlags overlays explicitly set command-line flags onto the loaded
// configuration. Unset flags leave the file values alone.
func applyRunFlags(cfg *config.Config, cmd *cobra.Command, flags *runFlags) {
	set := cmd.Flags().Changed
	if set("output") {
		cfg.Output.Path = flags.output
	}
	if set("fps") {
		cfg.Output.FPS = flags.fps
	}
	if set("frames") {
		cfg.Align.Frames = flags.frames
	}
	if set("retries") {
		cfg.Archive.Retries = flags.retries
	}
	if set("strict") {
		cfg.Output.Strict = flags.strict
	}
	if set("keep") {
		cfg.Output.Keep = flags.keep
	}
	if set("keep-avi") {
		cfg.Output.KeepAVI = flags.keepAVI
	}
}

func runPipeline(cmd *cobra.Command, cfg *config.Config, debug bool) error {
	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
		Color:       isatty.IsTerminal(os.Stderr.Fd()),
	})
	if err != nil {
		return err
	}

	client := fetch.NewClient(
		cfg.Archive.BaseURL,
		cfg.RequestTimeout(),
		cfg.Archive.Retries,
		cfg.Archive.Concurrency,
		fetch.WithLogger(logger),
	)
	encoder := encode.NewCLI(cfg.Encode.FFmpegBinary)

	p, err := pipeline.New(cfg, client, encoder, logger)
	if err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := p.Run(signalCtx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfg.Output.Path)
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
