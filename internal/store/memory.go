package store

import (
	"context"
	"sync"

	"github.com/sells-group/inbox-crm/internal/model"
)

// MemoryStore keeps the collections in process memory with copy-on-write
// update semantics: every mutation builds a fresh slice and swaps the
// pointer under the lock, so slices handed to readers are immutable
// snapshots. Concurrent in-flight analyses can therefore read freely
// while mutations land one at a time.
type MemoryStore struct {
	mu       sync.RWMutex
	contacts []model.Contact
	deals    []model.Deal
	emails   []model.Email
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Contacts(_ context.Context) ([]model.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contacts, nil
}

func (s *MemoryStore) Deals(_ context.Context) ([]model.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deals, nil
}

func (s *MemoryStore) Emails(_ context.Context) ([]model.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emails, nil
}

func (s *MemoryStore) GetEmail(_ context.Context, id string) (*model.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.emails {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) AddContact(_ context.Context, c model.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = appendCopy(s.contacts, c)
	return nil
}

func (s *MemoryStore) AddDeal(_ context.Context, d model.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deals = appendCopy(s.deals, d)
	return nil
}

func (s *MemoryStore) AddEmail(_ context.Context, e model.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = appendCopy(s.emails, e)
	return nil
}

func (s *MemoryStore) MarkEmailRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = replaceEmail(s.emails, id, func(e model.Email) model.Email {
		e.IsRead = true
		return e
	})
	return nil
}

func (s *MemoryStore) MoveDeal(_ context.Context, id string, stage model.PipelineStage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, d := range s.deals {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	next := make([]model.Deal, len(s.deals))
	copy(next, s.deals)
	next[idx].Stage = stage
	s.deals = next
	return nil
}

func (s *MemoryStore) Migrate(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// appendCopy appends to a fresh backing array so previously returned
// snapshots are never written through.
func appendCopy[T any](xs []T, x T) []T {
	next := make([]T, len(xs), len(xs)+1)
	copy(next, xs)
	return append(next, x)
}

func replaceEmail(emails []model.Email, id string, fn func(model.Email) model.Email) []model.Email {
	idx := -1
	for i, e := range emails {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return emails
	}
	next := make([]model.Email, len(emails))
	copy(next, emails)
	next[idx] = fn(next[idx])
	return next
}
