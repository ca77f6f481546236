package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/inbox-crm/internal/model"
)

var analyzeAccept bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <email-id>",
	Short: "Run AI deal extraction on an email",
	Long:  "Opens the email, runs the configured AI provider over its body, and prints the suggested deal. With --accept the suggestion is immediately turned into CRM records.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if _, err := env.CRM.OpenEmail(ctx, args[0]); err != nil {
			return err
		}

		suggestion, err := env.CRM.RequestAnalysis(ctx, args[0])
		if err != nil {
			return err
		}

		printSuggestion(suggestion)

		if !analyzeAccept {
			return nil
		}

		contact, deal, err := env.CRM.AcceptSuggestion(ctx)
		if err != nil {
			return err
		}
		if contact != nil {
			fmt.Printf("\nCreated contact %s (%s)\n", contact.Name, contact.ID)
		}
		fmt.Printf("Created deal %s (%s) at stage %s\n", deal.Title, deal.ID, deal.Stage)
		return nil
	},
}

func printSuggestion(s *model.ExtractedDealData) {
	fmt.Printf("Deal:       %s\n", s.DealTitle)
	fmt.Printf("Value:      %s\n", money(s.EstimatedValue))
	fmt.Printf("Confidence: %d%%\n", int(s.ConfidenceScore))
	fmt.Printf("Summary:    %s\n", s.Summary)
	if len(s.SuggestedNextSteps) > 0 {
		fmt.Println("Next steps:")
		for _, step := range s.SuggestedNextSteps {
			fmt.Printf("  - %s\n", step)
		}
	}
}

// money renders a currency amount with locale-aware grouping.
func money(v float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("$%.0f", v)
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeAccept, "accept", false, "accept the suggestion into the CRM")
	rootCmd.AddCommand(analyzeCmd)
}
