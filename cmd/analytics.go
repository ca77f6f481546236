package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show the pipeline rollup",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		summary, err := env.CRM.Analytics(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Total pipeline value: %s\n", money(summary.TotalValue))
		fmt.Printf("Active deals:         %d\n", summary.ActiveDeals)
		fmt.Printf("Won / lost:           %d / %d\n", summary.WonDeals, summary.LostDeals)
		fmt.Printf("Win rate:             %d%%\n\n", summary.WinRate)

		for _, m := range summary.Stages {
			fmt.Printf("%-12s %3d deals  %s\n", m.Stage, m.Count, money(m.Value))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
}
