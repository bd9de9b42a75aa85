package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"sunweather/internal/manifest"
)

// newFramesCommand inspects the manifest left behind by a --keep run.
func newFramesCommand() *cobra.Command {
	var bandFilter string

	cmd := &cobra.Command{
		Use:         "frames SCRATCH_DIR",
		Short:       "List the downloaded observations recorded in a retained scratch directory",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, "manifest.db")
			}
			store, err := manifest.Open(path)
			if err != nil {
				return fmt.Errorf("open manifest: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context())
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, run := range runs {
				fmt.Fprintf(out, "Run %s (%s)\n", run.ID, run.State)
				fmt.Fprintf(out, "  Started:  %s\n", run.StartedAt.Format(time.RFC3339))
				if !run.FinishedAt.IsZero() {
					fmt.Fprintf(out, "  Finished: %s\n", run.FinishedAt.Format(time.RFC3339))
				}
				if run.OutputPath != "" {
					fmt.Fprintf(out, "  Output:   %s\n", run.OutputPath)
				}
				if run.Error != "" {
					fmt.Fprintf(out, "  Error:    %s\n", run.Error)
				}

				frames, err := store.Frames(cmd.Context(), run.ID)
				if err != nil {
					return fmt.Errorf("list frames: %w", err)
				}
				rows := make([][]string, 0, len(frames))
				for _, frame := range frames {
					if bandFilter != "" && string(frame.Band) != bandFilter {
						continue
					}
					rows = append(rows, []string{
						string(frame.Band),
						frame.ObservedAt.Format(time.RFC3339),
						filepath.Base(frame.Path),
						fmt.Sprintf("%d", frame.Bytes),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Band", "Observed", "File", "Bytes"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bandFilter, "band", "", "Only show observations for one band")
	return cmd
}
