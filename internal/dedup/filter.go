// Package dedup drops inbound messages whose text has already been handled.
package dedup

import (
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Scope selects what counts as "the same message".
type Scope string

const (
	// ScopeGlobal treats identical text as a duplicate no matter which
	// conversation it came from.
	ScopeGlobal Scope = "global"
	// ScopeConversation keys entries by conversation id and text.
	ScopeConversation Scope = "conversation"
)

// Options configures a Filter.
type Options struct {
	Scope    Scope
	Capacity int // 0 = unbounded set; >0 = keep only the most recent entries
}

// seenSet is the storage behind a Filter.
type seenSet interface {
	// add inserts key and reports whether it was already present.
	add(key string) bool
	len() int
	purge()
}

// Filter answers "has this message been seen before?". Safe for concurrent use.
type Filter struct {
	mu    sync.Mutex
	scope Scope
	set   seenSet
}

// New builds a Filter. Unknown scopes fall back to ScopeGlobal.
func New(opts Options) (*Filter, error) {
	scope := opts.Scope
	if scope != ScopeConversation {
		scope = ScopeGlobal
	}

	var set seenSet
	if opts.Capacity > 0 {
		c, err := lru.New[string, struct{}](opts.Capacity)
		if err != nil {
			return nil, fmt.Errorf("dedup lru: %w", err)
		}
		set = &lruSet{cache: c}
	} else {
		set = mapSet{}
	}

	return &Filter{scope: scope, set: set}, nil
}

// Scope returns the effective scope.
func (f *Filter) Scope() Scope { return f.scope }

// SeenBefore records text and reports whether it had been recorded already.
// The first call for a given text returns false, every later one true.
func (f *Filter) SeenBefore(convID, text string) bool {
	key := strings.TrimSpace(text)
	if f.scope == ScopeConversation {
		key = convID + "\x00" + key
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set.add(key)
}

// Len returns the number of remembered entries.
func (f *Filter) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set.len()
}

// Reset forgets every entry.
func (f *Filter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set.purge()
}

type mapSet map[string]struct{}

func (m mapSet) add(key string) bool {
	if _, ok := m[key]; ok {
		return true
	}
	m[key] = struct{}{}
	return false
}

func (m mapSet) len() int { return len(m) }

func (m mapSet) purge() { clear(m) }

type lruSet struct {
	cache *lru.Cache[string, struct{}]
}

func (l *lruSet) add(key string) bool {
	ok, _ := l.cache.ContainsOrAdd(key, struct{}{})
	return ok
}

func (l *lruSet) len() int { return l.cache.Len() }

func (l *lruSet) purge() { l.cache.Purge() }
