package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/inbox-crm/internal/model"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage CRM contacts",
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all contacts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		contacts, err := env.CRM.Contacts(ctx)
		if err != nil {
			return err
		}
		if len(contacts) == 0 {
			fmt.Fprintln(os.Stderr, "No contacts.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCOMPANY\tTAGS")
		for _, c := range contacts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				c.ID, c.Name, c.Email, c.Company, strings.Join(c.Tags, ", "))
		}
		return w.Flush()
	},
}

var (
	contactName    string
	contactEmail   string
	contactCompany string
	contactPhone   string
	contactTags    []string
)

var contactsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a contact manually",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if contactName == "" || contactEmail == "" {
			return eris.New("--name and --email are required")
		}

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		created, err := env.CRM.AddContact(ctx, model.Contact{
			Name:    contactName,
			Email:   contactEmail,
			Company: contactCompany,
			Phone:   contactPhone,
			Tags:    contactTags,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added contact %s (%s).\n", created.Name, created.ID)
		return nil
	},
}

func init() {
	contactsAddCmd.Flags().StringVar(&contactName, "name", "", "contact name")
	contactsAddCmd.Flags().StringVar(&contactEmail, "email", "", "contact email")
	contactsAddCmd.Flags().StringVar(&contactCompany, "company", "", "company name")
	contactsAddCmd.Flags().StringVar(&contactPhone, "phone", "", "phone number")
	contactsAddCmd.Flags().StringSliceVar(&contactTags, "tag", nil, "tag (repeatable)")

	contactsCmd.AddCommand(contactsListCmd)
	contactsCmd.AddCommand(contactsAddCmd)
	rootCmd.AddCommand(contactsCmd)
}
