package main

import (
	"fmt"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/inbox-crm/internal/export"
	notionpkg "github.com/sells-group/inbox-crm/pkg/notion"
	sfpkg "github.com/sells-group/inbox-crm/pkg/salesforce"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Push the pipeline to an external sink",
}

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx <path>",
	Short: "Write the pipeline to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		deals, err := env.CRM.Deals(ctx)
		if err != nil {
			return err
		}

		if err := export.WriteXLSX(args[0], contacts, deals); err != nil {
			return err
		}
		fmt.Printf("Wrote %d deals and %d contacts to %s.\n", len(deals), len(contacts), args[0])
		return nil
	},
}

var exportNotionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Upsert deals into the configured Notion database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.Notion.Token == "" || cfg.Notion.DealsDB == "" {
			return eris.New("notion token and deals database are required (INBOXCRM_NOTION_TOKEN, INBOXCRM_NOTION_DEALS_DB)")
		}

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		contacts, err := env.CRM.Contacts(ctx)
		if err != nil {
			return err
		}
		deals, err := env.CRM.Deals(ctx)
		if err != nil {
			return err
		}

		client := notionpkg.NewClient(cfg.Notion.Token)
		res, err := export.SyncNotion(ctx, client, cfg.Notion.DealsDB, contacts, deals)
		if err != nil {
			return err
		}
		fmt.Printf("Notion sync: %d pages created, %d updated.\n", res.Created, res.Updated)
		return nil
	},
}

var exportSalesforceCmd = &cobra.Command{
	Use:   "salesforce",
	Short: "Push contacts and deals into Salesforce",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		sfClient, err := initSalesforce()
		if err != nil {
			return err
		}

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		contacts, err := env.CRM.Contacts(ctx)
		if err != nil {
			return err
		}
		deals, err := env.CRM.Deals(ctx)
		if err != nil {
			return err
		}

		res, err := export.SyncSalesforce(ctx, sfClient, contacts, deals)
		if err != nil {
			return err
		}
		fmt.Printf("Salesforce sync: %d contacts created (%d existing), %d opportunities pushed, %d rejected.\n",
			res.ContactsCreated, res.ContactsSkipped, res.OpportunitiesPushed, res.Failures)
		return nil
	},
}

// initSalesforce authenticates against Salesforce with the configured
// JWT credentials.
func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (INBOXCRM_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}

func init() {
	exportCmd.AddCommand(exportXLSXCmd)
	exportCmd.AddCommand(exportNotionCmd)
	exportCmd.AddCommand(exportSalesforceCmd)
	rootCmd.AddCommand(exportCmd)
}
