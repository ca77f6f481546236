// Package crm implements the CRM core: sender reconciliation, the
// suggestion lifecycle, pipeline state, and the analytics rollup.
package crm

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/inbox-crm/internal/model"
)

// ActiveContact returns the first contact whose email equals the sender
// address of the given email, or nil if none matches. First-match keeps
// the result order-stable even if duplicate addresses exist.
func ActiveContact(email *model.Email, contacts []model.Contact) *model.Contact {
	if email == nil {
		return nil
	}
	for i := range contacts {
		if contacts[i].Email == email.SenderEmail {
			c := contacts[i]
			return &c
		}
	}
	return nil
}

// ActiveDeals returns the deals belonging to the given contact,
// preserving their original relative order. A nil contact yields nil.
func ActiveDeals(contact *model.Contact, deals []model.Deal) []model.Deal {
	if contact == nil {
		return nil
	}
	var out []model.Deal
	for _, d := range deals {
		if d.ContactID == contact.ID {
			out = append(out, d)
		}
	}
	return out
}

// NewContactFor synthesizes a contact record for an email sender with no
// existing CRM entry. No domain-based company inference is performed.
func NewContactFor(email model.Email) model.Contact {
	return model.Contact{
		ID:      uuid.New().String(),
		Name:    email.Sender,
		Email:   email.SenderEmail,
		Company: "Unknown Company",
		Tags:    []string{"New Lead"},
	}
}

// NewDealFrom builds a deal from an accepted suggestion. Deals always
// enter the pipeline at Lead regardless of the confidence score.
func NewDealFrom(s model.ExtractedDealData, contactID string, now time.Time) model.Deal {
	return model.Deal{
		ID:        uuid.New().String(),
		Title:     s.DealTitle,
		Value:     s.EstimatedValue,
		Stage:     model.StageLead,
		ContactID: contactID,
		CreatedAt: now.UTC(),
		Notes:     s.Summary,
	}
}
