package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps session state in process memory. States are stored
// and returned as deep copies so callers never alias the stored value.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*State
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]*State),
		now:    time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, state *State) error {
	copied, err := copyState(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.states[state.Session.ID] = copied
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*State, error) {
	s.mu.RLock()
	state, ok := s.states[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	return copyState(state)
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.states, id)
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) HealthCheck(_ context.Context) error {
	return nil
}

// SweepExpired deletes sessions untouched for longer than retention and
// reports how many were dropped. Abandoned wizards go away here.
func (s *MemoryStore) SweepExpired(retention time.Duration) int {
	cutoff := s.now().Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0

	for id, state := range s.states {
		if state.Session.UpdatedAt.Before(cutoff) {
			delete(s.states, id)

			dropped++
		}
	}

	return dropped
}

func copyState(state *State) (*State, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("copy session state: %w", err)
	}

	var copied State
	if err := json.Unmarshal(raw, &copied); err != nil {
		return nil, fmt.Errorf("copy session state: %w", err)
	}

	return &copied, nil
}
