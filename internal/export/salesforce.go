package export

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/inbox-crm/internal/model"
	"github.com/sells-group/inbox-crm/pkg/salesforce"
)

// sfStageNames maps pipeline stages onto the standard Salesforce
// Opportunity stage picklist.
var sfStageNames = map[model.PipelineStage]string{
	model.StageLead:        "Prospecting",
	model.StageQualified:   "Qualification",
	model.StageProposal:    "Proposal/Price Quote",
	model.StageNegotiation: "Negotiation/Review",
	model.StageWon:         "Closed Won",
	model.StageLost:        "Closed Lost",
}

// SalesforceResult counts what a Salesforce sync did.
type SalesforceResult struct {
	ContactsCreated     int
	ContactsSkipped     int
	OpportunitiesPushed int
	Failures            int
}

// SyncSalesforce pushes contacts and deals into Salesforce. Contacts are
// matched by email and created when absent; deals are matched by name
// and inserted as Opportunities in bulk. Existing records are left
// untouched.
func SyncSalesforce(ctx context.Context, c salesforce.Client, contacts []model.Contact, deals []model.Deal) (SalesforceResult, error) {
	var res SalesforceResult

	for _, ct := range contacts {
		existing, err := salesforce.FindContactByEmail(ctx, c, ct.Email)
		if err != nil {
			return res, eris.Wrap(err, "export: salesforce contact lookup")
		}
		if existing != nil {
			res.ContactsSkipped++
			continue
		}
		if _, err := salesforce.CreateContact(ctx, c, contactFields(ct)); err != nil {
			return res, eris.Wrap(err, "export: salesforce create contact")
		}
		res.ContactsCreated++
	}

	var records []map[string]any
	for _, d := range deals {
		existing, err := salesforce.FindOpportunityByName(ctx, c, d.Title)
		if err != nil {
			return res, eris.Wrap(err, "export: salesforce opportunity lookup")
		}
		if existing != nil {
			continue
		}
		records = append(records, opportunityFields(d))
	}

	results, err := salesforce.BulkInsertOpportunities(ctx, c, records)
	if err != nil {
		return res, eris.Wrap(err, "export: salesforce insert opportunities")
	}
	for _, r := range results {
		if r.Success {
			res.OpportunitiesPushed++
		} else {
			res.Failures++
			zap.L().Warn("export: salesforce opportunity rejected",
				zap.String("id", r.ID),
				zap.Strings("errors", r.Errors),
			)
		}
	}

	zap.L().Info("export: salesforce sync complete",
		zap.Int("contacts_created", res.ContactsCreated),
		zap.Int("opportunities_pushed", res.OpportunitiesPushed),
		zap.Int("failures", res.Failures),
	)
	return res, nil
}

// contactFields maps a CRM contact onto Salesforce Contact fields.
// Salesforce requires LastName, so a single-token name lands there.
func contactFields(ct model.Contact) map[string]any {
	first, last := splitName(ct.Name)
	fields := map[string]any{
		"LastName": last,
		"Email":    ct.Email,
	}
	if first != "" {
		fields["FirstName"] = first
	}
	if ct.Phone != "" {
		fields["Phone"] = ct.Phone
	}
	if ct.Company != "" {
		fields["Description"] = ct.Company
	}
	return fields
}

// opportunityFields maps a deal onto Salesforce Opportunity fields.
func opportunityFields(d model.Deal) map[string]any {
	closeDate := d.ExpectedCloseDate
	if closeDate == "" {
		// The standard picklist requires a close date; default to a
		// month out from creation.
		closeDate = d.CreatedAt.AddDate(0, 1, 0).Format("2006-01-02")
	}

	stage, ok := sfStageNames[d.Stage]
	if !ok {
		stage = sfStageNames[model.StageLead]
	}

	return map[string]any{
		"Name":      d.Title,
		"StageName": stage,
		"Amount":    d.Value,
		"CloseDate": closeDate,
	}
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", "Unknown"
	case 1:
		return "", parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}
