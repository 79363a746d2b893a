// Package chips provides suggestion-chip stores: the persisted reply options
// shown after a narrator turn, keyed by session.
package chips

import (
	"sync"

	"questline/internal/models"
)

// MemoryStore keeps chip records in memory; thread-safe. Used in tests and
// when no durable directory is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]models.SuggestionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]models.SuggestionRecord)}
}

func (s *MemoryStore) Get(sessionKey string) (*models.SuggestionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[sessionKey]
	if !ok {
		return nil, nil
	}
	out := rec
	out.Chips = append([]string(nil), rec.Chips...)
	return &out, nil
}

func (s *MemoryStore) Set(sessionKey string, rec *models.SuggestionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *rec
	stored.Chips = append([]string(nil), rec.Chips...)
	s.recs[sessionKey] = stored
	return nil
}

func (s *MemoryStore) Clear(sessionKey string) error {
	s.mu.Lock()
	delete(s.recs, sessionKey)
	s.mu.Unlock()
	return nil
}
