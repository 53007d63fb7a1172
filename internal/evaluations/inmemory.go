package evaluations

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore keeps records in process memory for local/dev use and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Record
	bySess  map[string]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{bySess: make(map[string]struct{})}
}

func (s *InMemoryStore) Insert(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.bySess[record.SessionID]; dup {
		return ErrDuplicate
	}
	record = prepareRecord(record, uuid.NewString, time.Now)
	s.records = append(s.records, record)
	s.bySess[record.SessionID] = struct{}{}
	return nil
}

func (s *InMemoryStore) Query(_ context.Context, filter Filter) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0)
	// Reverse insertion order breaks timestamp ties newest first.
	for i := len(s.records) - 1; i >= 0; i-- {
		if filter.matches(s.records[i]) {
			out = append(out, s.records[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Len reports how many records were committed.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *InMemoryStore) Close() error { return nil }
