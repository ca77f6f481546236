package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/inbox-crm/internal/model"
)

var scanConcurrency int

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Analyze every unread email",
	Long:  "Runs AI deal extraction over all unread emails concurrently and prints the suggested deal for each.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.CRM.ScanUnread(ctx, scanConcurrency)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(os.Stderr, "No unread emails.")
			return nil
		}

		for i, r := range results {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("[%s] %s - %s\n", r.Email.ID, r.Email.Sender, r.Email.Subject)
			printSuggestion(r.Suggestion)
			if looksLikeFallback(r.Suggestion) {
				fmt.Println("(provider unavailable, manual review needed)")
			}
		}
		return nil
	},
}

// looksLikeFallback reports whether a suggestion is the degraded payload
// produced when the provider call or parse failed.
func looksLikeFallback(s *model.ExtractedDealData) bool {
	return s.ConfidenceScore == 0 && s.EstimatedValue == 0
}

func init() {
	scanCmd.Flags().IntVar(&scanConcurrency, "concurrency", 4, "max concurrent analyses")
	rootCmd.AddCommand(scanCmd)
}
