package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory CredentialStore and ModelStore, seeded from
// the YAML catalog at startup. Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	credentials map[string]Credential
	models      map[string]Model
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		credentials: make(map[string]Credential),
		models:      make(map[string]Model),
	}
}

// PutCredential inserts or replaces a credential.
func (s *MemoryStore) PutCredential(c Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[c.ID] = c
}

// PutModel inserts or replaces a model route.
func (s *MemoryStore) PutModel(m Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[m.ID] = m
}

// Credential implements CredentialStore.
func (s *MemoryStore) Credential(_ context.Context, id string) (*Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.credentials[id]
	if !ok {
		return nil, false
	}
	return &c, true
}

// Model implements ModelStore.
func (s *MemoryStore) Model(_ context.Context, id string) (*Model, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.models[id]
	if !ok {
		return nil, false
	}
	return &m, true
}

// List implements ModelStore. Results are sorted by id for stable output.
func (s *MemoryStore) List(_ context.Context) []Model {
	s.mu.RLock()
	defer s.mu.RUnlock()

	models := make([]Model, 0, len(s.models))
	for _, m := range s.models {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models
}
