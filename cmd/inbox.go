package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/inbox-crm/internal/model"
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Browse the email inbox",
}

var inboxListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all emails",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		emails, err := env.CRM.Inbox(ctx)
		if err != nil {
			return err
		}
		if len(emails) == 0 {
			fmt.Fprintln(os.Stderr, "Inbox is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFROM\tSUBJECT\tWHEN\tREAD")
		for _, e := range emails {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.ID, e.Sender, e.Subject, e.Timestamp, readMark(e))
		}
		return w.Flush()
	},
}

var inboxOpenCmd = &cobra.Command{
	Use:   "open <email-id>",
	Short: "Open an email and show its CRM context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		cx, err := env.CRM.OpenEmail(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("From:    %s <%s>\n", cx.Email.Sender, cx.Email.SenderEmail)
		fmt.Printf("Subject: %s\n", cx.Email.Subject)
		fmt.Printf("When:    %s\n\n", cx.Email.Timestamp)
		fmt.Println(cx.Email.Body)

		if cx.Contact == nil {
			fmt.Println("\n-- No CRM record for this sender --")
			return nil
		}

		fmt.Printf("\n-- Contact: %s (%s) --\n", cx.Contact.Name, cx.Contact.Company)
		if len(cx.Deals) == 0 {
			fmt.Println("No active deals.")
			return nil
		}
		for _, d := range cx.Deals {
			fmt.Printf("  %s  %s  %s  %s\n", d.ID, d.Title, money(d.Value), d.Stage)
		}
		return nil
	},
}

func readMark(e model.Email) string {
	if e.IsRead {
		return "read"
	}
	return "UNREAD"
}

func init() {
	inboxCmd.AddCommand(inboxListCmd)
	inboxCmd.AddCommand(inboxOpenCmd)
	rootCmd.AddCommand(inboxCmd)
}
