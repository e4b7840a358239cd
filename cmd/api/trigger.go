package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Start the Make.com scraping scenario now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Trigger.RunNow(cmd.Context(), "manual"); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "scenario triggered")
		return nil
	},
}
