// Package history keeps the completed analyses of one session, newest first.
package history

import (
	"github.com/myrjola/sentinels/internal/models"
	"github.com/oklog/ulid/v2"
	"slices"
	"sync"
	"time"
)

// Store is an append-at-head list of case records. Records are never updated, removed or reordered.
type Store struct {
	mu      sync.RWMutex
	records []models.CaseRecord
	now     func() time.Time
	newID   func(time.Time) string
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now as the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		now: time.Now,
		newID: func(t time.Time) string {
			return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromRecords rebuilds a store from a snapshot previously returned by List.
func FromRecords(records []models.CaseRecord, opts ...Option) *Store {
	s := New(opts...)
	s.records = slices.Clone(records)
	return s
}

// Record creates a record with a fresh id and the current time and prepends it to the history.
func (s *Store) Record(input models.CaseInput, result models.AnalysisResult) models.CaseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now()
	record := models.CaseRecord{
		ID:        s.newID(createdAt),
		CreatedAt: createdAt,
		Input:     input,
		Result:    result,
	}
	s.records = slices.Insert(s.records, 0, record)
	return record
}

// List returns a copy of the history, newest first.
func (s *Store) List() []models.CaseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.records == nil {
		return []models.CaseRecord{}
	}
	return slices.Clone(s.records)
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (models.CaseRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := slices.IndexFunc(s.records, func(r models.CaseRecord) bool { return r.ID == id })
	if idx < 0 {
		return models.CaseRecord{}, false
	}
	return s.records[idx], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
