// Package memory holds an in-process ApplicationRepository for local runs
// and tests. Every method takes the store lock for its whole read-modify-write,
// so each call is as atomic as the single UPDATE the postgres adapter issues.
package memory

import (
	"context"
	"sync"
	"time"

	"itn-gateway/internal/core/domain"
)

// ApplicationStore implements ports.ApplicationRepository in memory.
type ApplicationStore struct {
	mu      sync.Mutex
	records map[string]*domain.ApplicationRecord
}

// NewApplicationStore creates a store seeded with unpaid records for ids.
func NewApplicationStore(ids ...string) *ApplicationStore {
	s := &ApplicationStore{records: make(map[string]*domain.ApplicationRecord, len(ids))}
	for _, id := range ids {
		s.records[id] = &domain.ApplicationRecord{ID: id}
	}
	return s
}

// Put inserts or replaces a record.
func (s *ApplicationStore) Put(rec domain.ApplicationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = &rec
}

// Get returns a copy of the record for id.
func (s *ApplicationStore) Get(id string) (domain.ApplicationRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.ApplicationRecord{}, false
	}
	return *rec, true
}

func (s *ApplicationStore) ApplyPayment(ctx context.Context, id string, u domain.PaymentUpdate) (*domain.ApplicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	if u.Complete {
		rec.Paid = true
	}
	rec.PaymentMethod = u.PaymentMethod
	rec.PaymentReference = u.PaymentReference
	rec.PaymentToken = u.PaymentToken
	at := u.PaymentDate
	rec.PaymentDate = &at
	notes := u.Notes
	rec.Notes = &notes

	out := *rec
	return &out, nil
}

func (s *ApplicationStore) MarkPaid(ctx context.Context, id string) (*domain.ApplicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	rec.Paid = true

	out := *rec
	return &out, nil
}

func (s *ApplicationStore) ApplyReturn(ctx context.Context, id string, outcome domain.ReturnOutcome, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || rec.Paid {
		return false, nil
	}

	note := outcome.ReturnNote(at)
	rec.Notes = &note
	if outcome == domain.ReturnCancel {
		stamp := at.UTC()
		rec.Paid = false
		rec.PaymentMethod = nil
		rec.PaymentReference = nil
		rec.PaymentToken = nil
		rec.PaymentDate = &stamp
	}
	return true, nil
}
