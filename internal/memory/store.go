package memory

import (
	"sort"
	"sync"
)

// DefaultLength is the number of turns kept per conversation.
const DefaultLength = 10

// Store maps conversation ids to their bounded turn history.
// It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	limit  int
	convos map[string][]Turn
}

// NewStore creates a Store that keeps at most limit turns per conversation.
// A non-positive limit falls back to DefaultLength.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLength
	}
	return &Store{
		limit:  limit,
		convos: make(map[string][]Turn),
	}
}

// Limit returns the per-conversation bound.
func (s *Store) Limit() int { return s.limit }

// Append adds turn to the end of the conversation, creating it if needed,
// and drops the oldest turns until the bound holds.
func (s *Store) Append(convID string, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.convos[convID], turn)
	if over := len(turns) - s.limit; over > 0 {
		// Copy into a fresh slice so the backing array does not grow forever.
		trimmed := make([]Turn, s.limit)
		copy(trimmed, turns[over:])
		turns = trimmed
	}
	s.convos[convID] = turns
}

// Recent returns up to n of the most recent turns, oldest first.
// n <= 0 returns every turn held. The result is a copy.
func (s *Store) Recent(convID string, n int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.convos[convID]
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Contains reports whether any held turn in the conversation has exactly
// the given content.
func (s *Store) Contains(convID, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.convos[convID] {
		if t.Content == content {
			return true
		}
	}
	return false
}

// Clear forgets the conversation. Clearing an unknown id is a no-op.
func (s *Store) Clear(convID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convos, convID)
}

// Len returns the number of turns held for the conversation.
func (s *Store) Len(convID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.convos[convID])
}

// conversations returns the ids that currently hold memory, sorted.
func (s *Store) conversations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.convos))
	for id := range s.convos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
