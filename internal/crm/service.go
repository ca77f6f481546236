package crm

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/inbox-crm/internal/extract"
	"github.com/sells-group/inbox-crm/internal/model"
	"github.com/sells-group/inbox-crm/internal/store"
)

// ErrEmailNotFound is returned when an operation targets an email id that
// is not in the inbox.
var ErrEmailNotFound = eris.New("crm: email not found")

// ErrNoSuggestion is returned by AcceptSuggestion when nothing is pending
// (no analysis was run, its result was discarded, or no email is open).
// No state changes in that case.
var ErrNoSuggestion = eris.New("crm: no pending suggestion")

// Service is the single controller owning all CRM state transitions. The
// store serializes collection mutations; the service's own lock guards
// the open-email selection and the pending suggestion so that analyses
// for different emails can be in flight concurrently without corrupting
// either.
type Service struct {
	store    store.Store
	analyzer *extract.Service

	mu            sync.Mutex
	openEmailID   string
	suggestion    *model.ExtractedDealData
	suggestionFor string
}

// New creates the CRM controller.
func New(st store.Store, analyzer *extract.Service) *Service {
	return &Service{store: st, analyzer: analyzer}
}

// EmailContext bundles an open email with its CRM sidebar data.
type EmailContext struct {
	Email   model.Email    `json:"email"`
	Contact *model.Contact `json:"contact,omitempty"`
	Deals   []model.Deal   `json:"deals,omitempty"`
}

// Inbox lists all emails in arrival order.
func (s *Service) Inbox(ctx context.Context) ([]model.Email, error) {
	return s.store.Emails(ctx)
}

// Contacts lists all contacts.
func (s *Service) Contacts(ctx context.Context) ([]model.Contact, error) {
	return s.store.Contacts(ctx)
}

// Deals lists all deals.
func (s *Service) Deals(ctx context.Context) ([]model.Deal, error) {
	return s.store.Deals(ctx)
}

// OpenEmail selects an email: it is marked read (never reverting), any
// pending suggestion for a different email is discarded, and the CRM
// context for the sender is projected from the current collections.
func (s *Service) OpenEmail(ctx context.Context, id string) (*EmailContext, error) {
	email, err := s.store.GetEmail(ctx, id)
	if err != nil {
		return nil, err
	}
	if email == nil {
		return nil, ErrEmailNotFound
	}

	if err := s.store.MarkEmailRead(ctx, id); err != nil {
		return nil, err
	}
	email.IsRead = true

	s.mu.Lock()
	if s.openEmailID != id {
		s.suggestion = nil
		s.suggestionFor = ""
	}
	s.openEmailID = id
	s.mu.Unlock()

	return s.contextFor(ctx, email)
}

// contextFor projects the active contact and deals for an email from the
// current collection snapshots.
func (s *Service) contextFor(ctx context.Context, email *model.Email) (*EmailContext, error) {
	contacts, err := s.store.Contacts(ctx)
	if err != nil {
		return nil, err
	}
	deals, err := s.store.Deals(ctx)
	if err != nil {
		return nil, err
	}

	contact := ActiveContact(email, contacts)
	return &EmailContext{
		Email:   *email,
		Contact: contact,
		Deals:   ActiveDeals(contact, deals),
	}, nil
}

// RequestAnalysis runs AI extraction for the email with the given id and
// returns the suggestion. The suggestion is retained as pending only if
// the email is still the open one when the analysis lands; late results
// for a superseded selection are returned to the caller but not retained.
// A missing provider credential fails with extract.ErrNotConfigured.
func (s *Service) RequestAnalysis(ctx context.Context, emailID string) (*model.ExtractedDealData, error) {
	email, err := s.store.GetEmail(ctx, emailID)
	if err != nil {
		return nil, err
	}
	if email == nil {
		return nil, ErrEmailNotFound
	}

	suggestion, err := s.analyzer.Analyze(ctx, email.Body, email.Sender, email.Subject)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openEmailID == emailID {
		s.suggestion = suggestion
		s.suggestionFor = emailID
	} else {
		zap.L().Debug("crm: discarding analysis for superseded email",
			zap.String("analyzed", emailID),
			zap.String("open", s.openEmailID),
		)
	}
	return suggestion, nil
}

// Suggestion returns the pending suggestion and the email id it was
// produced for, or nil if nothing is pending.
func (s *Service) Suggestion() (*model.ExtractedDealData, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestion, s.suggestionFor
}

// AcceptSuggestion consumes the pending suggestion: the sender gets a
// contact record if one does not exist yet, and a new deal is created at
// the Lead stage. The operation is purely additive and the suggestion is
// cleared so a second accept requires a fresh analysis. The returned
// contact is non-nil only when one was created.
func (s *Service) AcceptSuggestion(ctx context.Context) (*model.Contact, *model.Deal, error) {
	// Claim the slot before touching the store so a concurrent accept
	// cannot consume the same suggestion twice.
	s.mu.Lock()
	suggestion := s.suggestion
	emailID := s.suggestionFor
	s.suggestion = nil
	s.suggestionFor = ""
	s.mu.Unlock()

	if suggestion == nil || emailID == "" {
		return nil, nil, ErrNoSuggestion
	}

	// Put the claimed suggestion back if the accept fails, unless a
	// fresh analysis took the slot in the meantime.
	restore := func() {
		s.mu.Lock()
		if s.suggestion == nil {
			s.suggestion = suggestion
			s.suggestionFor = emailID
		}
		s.mu.Unlock()
	}

	email, err := s.store.GetEmail(ctx, emailID)
	if err != nil {
		restore()
		return nil, nil, err
	}
	if email == nil {
		restore()
		return nil, nil, ErrEmailNotFound
	}

	contacts, err := s.store.Contacts(ctx)
	if err != nil {
		restore()
		return nil, nil, err
	}

	var created *model.Contact
	contact := ActiveContact(email, contacts)
	if contact == nil {
		c := NewContactFor(*email)
		if err := s.store.AddContact(ctx, c); err != nil {
			restore()
			return nil, nil, err
		}
		contact = &c
		created = &c
	}

	deal := NewDealFrom(*suggestion, contact.ID, time.Now())
	if err := s.store.AddDeal(ctx, deal); err != nil {
		restore()
		return nil, nil, err
	}

	zap.L().Info("crm: suggestion accepted",
		zap.String("email", emailID),
		zap.String("deal", deal.ID),
		zap.Bool("contact_created", created != nil),
	)
	return created, &deal, nil
}

// AddContact appends a manually created contact, assigning an id when
// the caller did not provide one.
func (s *Service) AddContact(ctx context.Context, c model.Contact) (model.Contact, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if err := s.store.AddContact(ctx, c); err != nil {
		return model.Contact{}, err
	}
	return c, nil
}

// AddDeal appends a manually created deal, assigning id, creation time,
// and the Lead stage when the caller did not provide them.
func (s *Service) AddDeal(ctx context.Context, d model.Deal) (model.Deal, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Stage == "" {
		d.Stage = model.StageLead
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if err := s.store.AddDeal(ctx, d); err != nil {
		return model.Deal{}, err
	}
	return d, nil
}

// MoveDeal sets the stage of the deal with the given id. Unknown ids are
// a no-op; no stage-transition rules are enforced.
func (s *Service) MoveDeal(ctx context.Context, dealID string, stage model.PipelineStage) error {
	return s.store.MoveDeal(ctx, dealID, stage)
}

// Pipeline returns the per-stage board view.
func (s *Service) Pipeline(ctx context.Context) ([]StageMetric, map[model.PipelineStage][]model.Deal, error) {
	deals, err := s.store.Deals(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ValueByStage(deals), GroupByStage(deals), nil
}

// Analytics returns the read-only rollup.
func (s *Service) Analytics(ctx context.Context) (Summary, error) {
	deals, err := s.store.Deals(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(deals), nil
}
