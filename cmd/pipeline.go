package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/inbox-crm/internal/model"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "View and manage the deal pipeline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		metrics, board, err := env.CRM.Pipeline(ctx)
		if err != nil {
			return err
		}

		for _, m := range metrics {
			fmt.Printf("%s: %d deals, %s\n", m.Stage, m.Count, money(m.Value))
			for _, d := range board[m.Stage] {
				fmt.Printf("  %s  %s  %s\n", d.ID, d.Title, money(d.Value))
			}
		}
		return nil
	},
}

var pipelineMoveCmd = &cobra.Command{
	Use:   "move <deal-id> <stage>",
	Short: "Move a deal to another stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		stage, ok := model.ParseStage(args[1])
		if !ok {
			return eris.New("unknown stage: " + args[1])
		}

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.CRM.MoveDeal(ctx, args[0], stage); err != nil {
			return err
		}
		fmt.Printf("Moved %s to %s.\n", args[0], stage)
		return nil
	},
}

var (
	dealTitle   string
	dealValue   float64
	dealContact string
	dealStage   string
	dealNotes   string
)

var pipelineAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a deal manually",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if dealTitle == "" {
			return eris.New("--title is required")
		}
		d := model.Deal{
			Title:     dealTitle,
			Value:     dealValue,
			ContactID: dealContact,
			Notes:     dealNotes,
		}
		if dealStage != "" {
			stage, ok := model.ParseStage(dealStage)
			if !ok {
				return eris.New("unknown stage: " + dealStage)
			}
			d.Stage = stage
		}

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		created, err := env.CRM.AddDeal(ctx, d)
		if err != nil {
			return err
		}
		fmt.Printf("Added deal %s (%s) at stage %s.\n", created.Title, created.ID, created.Stage)
		return nil
	},
}

var pipelineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all deals",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		deals, err := env.CRM.Deals(ctx)
		if err != nil {
			return err
		}
		if len(deals) == 0 {
			fmt.Fprintln(os.Stderr, "No deals.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tVALUE\tSTAGE\tCONTACT")
		for _, d := range deals {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				d.ID, d.Title, money(d.Value), d.Stage, d.ContactID)
		}
		return w.Flush()
	},
}

func init() {
	pipelineAddCmd.Flags().StringVar(&dealTitle, "title", "", "deal title")
	pipelineAddCmd.Flags().Float64Var(&dealValue, "value", 0, "deal value")
	pipelineAddCmd.Flags().StringVar(&dealContact, "contact", "", "contact id")
	pipelineAddCmd.Flags().StringVar(&dealStage, "stage", "", "pipeline stage (default Lead)")
	pipelineAddCmd.Flags().StringVar(&dealNotes, "notes", "", "deal notes")

	pipelineCmd.AddCommand(pipelineMoveCmd)
	pipelineCmd.AddCommand(pipelineAddCmd)
	pipelineCmd.AddCommand(pipelineListCmd)
	rootCmd.AddCommand(pipelineCmd)
}
