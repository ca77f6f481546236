// Package export pushes pipeline snapshots to external sinks: XLSX
// workbooks, Notion databases, and Salesforce.
package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/inbox-crm/internal/crm"
	"github.com/sells-group/inbox-crm/internal/model"
)

// WriteXLSX writes the pipeline snapshot to an XLSX workbook at path.
// The workbook has three sheets: a per-stage summary, the full deal
// list, and the contact list.
func WriteXLSX(path string, contacts []model.Contact, deals []model.Deal) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, deals); err != nil {
		return err
	}
	if err := addDealsSheet(f, contacts, deals); err != nil {
		return err
	}
	if err := addContactsSheet(f, contacts); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}

func addSummarySheet(f *xlsx.File, deals []model.Deal) error {
	sheet, err := f.AddSheet("Pipeline Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Stage", "Deals", "Value"} {
		header.AddCell().Value = h
	}

	for _, m := range crm.ValueByStage(deals) {
		row := sheet.AddRow()
		row.AddCell().Value = string(m.Stage)
		row.AddCell().SetInt(m.Count)
		row.AddCell().SetFloat(m.Value)
	}

	summary := crm.Summarize(deals)
	sheet.AddRow() // spacer

	totalValue := sheet.AddRow()
	totalValue.AddCell().Value = "Total Pipeline Value"
	totalValue.AddCell()
	totalValue.AddCell().SetFloat(summary.TotalValue)

	activeDeals := sheet.AddRow()
	activeDeals.AddCell().Value = "Active Deals"
	activeDeals.AddCell().SetInt(summary.ActiveDeals)

	winRate := sheet.AddRow()
	winRate.AddCell().Value = "Win Rate (%)"
	winRate.AddCell()
	winRate.AddCell().SetInt(summary.WinRate)

	return nil
}

func addDealsSheet(f *xlsx.File, contacts []model.Contact, deals []model.Deal) error {
	sheet, err := f.AddSheet("Deals")
	if err != nil {
		return eris.Wrap(err, "export: add deals sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Title", "Value", "Stage", "Contact", "Created", "Notes"} {
		header.AddCell().Value = h
	}

	byID := make(map[string]model.Contact, len(contacts))
	for _, c := range contacts {
		byID[c.ID] = c
	}

	for _, d := range deals {
		row := sheet.AddRow()
		row.AddCell().Value = d.Title
		row.AddCell().SetFloat(d.Value)
		row.AddCell().Value = string(d.Stage)
		row.AddCell().Value = byID[d.ContactID].Name
		row.AddCell().Value = d.CreatedAt.Format("2006-01-02")
		row.AddCell().Value = d.Notes
	}
	return nil
}

func addContactsSheet(f *xlsx.File, contacts []model.Contact) error {
	sheet, err := f.AddSheet("Contacts")
	if err != nil {
		return eris.Wrap(err, "export: add contacts sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Name", "Email", "Company", "Tags"} {
		header.AddCell().Value = h
	}

	for _, c := range contacts {
		row := sheet.AddRow()
		row.AddCell().Value = c.Name
		row.AddCell().Value = c.Email
		row.AddCell().Value = c.Company
		row.AddCell().Value = strings.Join(c.Tags, ", ")
	}
	return nil
}
