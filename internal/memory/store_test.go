package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Append / bound ────────────────────────────────────────────────────────

func TestAppend_NeverExceedsLimit(t *testing.T) {
	s := NewStore(10)
	for i := 0; i < 25; i++ {
		s.Append("G1", UserTurn(fmt.Sprintf("m%d", i)))
		assert.LessOrEqual(t, s.Len("G1"), 10)
	}
	assert.Equal(t, 10, s.Len("G1"))
}

func TestAppend_KeepsNewestInOrder(t *testing.T) {
	s := NewStore(10)
	for i := 1; i <= 11; i++ {
		s.Append("G1", UserTurn(fmt.Sprintf("m%d", i)))
	}

	turns := s.Recent("G1", 0)
	require.Len(t, turns, 10)
	assert.Equal(t, "m2", turns[0].Content)
	assert.Equal(t, "m11", turns[9].Content)
	assert.False(t, s.Contains("G1", "m1"))
}

func TestAppend_ConversationsIsolated(t *testing.T) {
	s := NewStore(3)
	s.Append("G1", UserTurn("hello"))
	s.Append("G2", AssistantTurn("hi"))

	assert.Equal(t, 1, s.Len("G1"))
	assert.Equal(t, 1, s.Len("G2"))
	assert.False(t, s.Contains("G1", "hi"))
	assert.Equal(t, []string{"G1", "G2"}, s.conversations())
}

func TestNewStore_DefaultLimit(t *testing.T) {
	assert.Equal(t, DefaultLength, NewStore(0).Limit())
}

// ─── Recent ────────────────────────────────────────────────────────────────

func TestRecent_FewerThanRequested(t *testing.T) {
	s := NewStore(10)
	s.Append("G1", UserTurn("a"))
	s.Append("G1", AssistantTurn("b"))

	turns := s.Recent("G1", 5)
	assert.Equal(t, []Turn{UserTurn("a"), AssistantTurn("b")}, turns)
}

func TestRecent_LastN(t *testing.T) {
	s := NewStore(10)
	for _, c := range []string{"a", "b", "c", "d"} {
		s.Append("G1", UserTurn(c))
	}
	turns := s.Recent("G1", 2)
	assert.Equal(t, []Turn{UserTurn("c"), UserTurn("d")}, turns)
}

func TestRecent_ReturnsCopy(t *testing.T) {
	s := NewStore(10)
	s.Append("G1", UserTurn("a"))

	turns := s.Recent("G1", 0)
	turns[0].Content = "changed"
	assert.True(t, s.Contains("G1", "a"))
}

func TestRecent_Unknown(t *testing.T) {
	assert.Empty(t, NewStore(10).Recent("nope", 10))
}

// ─── Clear ─────────────────────────────────────────────────────────────────

func TestClear_ThenEmpty(t *testing.T) {
	s := NewStore(10)
	s.Append("G1", UserTurn("a"))
	s.Clear("G1")

	assert.Empty(t, s.Recent("G1", 0))
	assert.Empty(t, s.conversations())

	// Idempotent.
	s.Clear("G1")
	s.Clear("never-seen")
	assert.Equal(t, 0, s.Len("G1"))
}

// ─── Concurrency ───────────────────────────────────────────────────────────

func TestAppend_Concurrent(t *testing.T) {
	s := NewStore(10)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append("G1", UserTurn(fmt.Sprintf("m%d", i)))
			_ = s.Recent("G1", 10)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, s.Len("G1"))
}
