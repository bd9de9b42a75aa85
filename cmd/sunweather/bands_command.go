package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sunweather/internal/suvi"
)

func newBandsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "bands",
		Short:       "List the SUVI bands and their grid placement",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, suvi.Count)
			for _, band := range suvi.Bands() {
				row, col := band.GridCell()
				rows = append(rows, []string{
					string(band),
					band.Angstroms(),
					fmt.Sprintf("%d,%d", row, col),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Band", "Wavelength", "Cell"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}
