package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedCount int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample warm leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger, false)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.Seed.Execute(cmd.Context(), seedCount)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d leads\n", out.Count)
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 0, "number of leads (default: one per sample profile)")
}
