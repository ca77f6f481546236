// Package store holds the authoritative CRM collections behind a small
// persistence interface with memory and sqlite backends.
package store

import (
	"context"

	"github.com/sells-group/inbox-crm/internal/model"
)

// Store is the single owner of the contact, deal, and email collections.
// All operations are additive except MoveDeal (stage replacement) and
// MarkEmailRead; nothing is ever deleted. Lookups for unknown ids return
// nil rather than an error, and mutations targeting unknown ids are
// no-ops, so callers can tolerate stale identifiers from the UI boundary.
type Store interface {
	Contacts(ctx context.Context) ([]model.Contact, error)
	Deals(ctx context.Context) ([]model.Deal, error)
	Emails(ctx context.Context) ([]model.Email, error)

	// GetEmail returns nil, nil when no email has the given id.
	GetEmail(ctx context.Context, id string) (*model.Email, error)

	AddContact(ctx context.Context, c model.Contact) error
	AddDeal(ctx context.Context, d model.Deal) error
	AddEmail(ctx context.Context, e model.Email) error

	// MarkEmailRead sets IsRead on the email with the given id. Read
	// state never reverts. Unknown ids are a no-op.
	MarkEmailRead(ctx context.Context, id string) error

	// MoveDeal replaces the stage of the deal with the given id, leaving
	// every other field untouched. Unknown ids are a no-op.
	MoveDeal(ctx context.Context, id string, stage model.PipelineStage) error

	Migrate(ctx context.Context) error
	Close() error
}
