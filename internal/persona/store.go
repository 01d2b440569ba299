package persona

import (
	"fmt"
	"sync"
)

// Store holds persona settings per conversation id, seeded from a template.
// It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	template Settings
	byConv   map[string]Settings
}

// NewStore creates a Store whose new entries are copies of template.
func NewStore(template Settings) *Store {
	return &Store{
		template: template,
		byConv:   make(map[string]Settings),
	}
}

// Template returns the settings new conversations start from.
func (s *Store) Template() Settings { return s.template }

// Get returns the conversation's settings, or the template when none are
// stored yet. It never creates an entry.
func (s *Store) Get(convID string) Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.byConv[convID]; ok {
		return st
	}
	return s.template
}

// Resolve returns the conversation's settings, storing a copy of the
// template first if the conversation has none.
func (s *Store) Resolve(convID string) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.byConv[convID]
	if !ok {
		st = s.template
		s.byConv[convID] = st
	}
	return st
}

// Set overwrites one field. Unknown keys return ErrInvalidSettingKey and
// leave the store untouched.
func (s *Store) Set(convID, key, value string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidSettingKey, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.byConv[convID]
	if !ok {
		st = s.template
	}
	st, err := st.With(key, value)
	if err != nil {
		return err
	}
	s.byConv[convID] = st
	return nil
}

// Has reports whether the conversation has its own settings entry.
func (s *Store) Has(convID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byConv[convID]
	return ok
}
