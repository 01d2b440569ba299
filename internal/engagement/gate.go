package engagement

import (
	"math/rand/v2"
	"sync/atomic"
	"time"
)

const (
	DefaultProbability = 0.1
	DefaultCooldown    = 30 * time.Second
)

// Gate decides whether the bot speaks up on its own. It fires only when a
// uniform draw in [0,1) is below the probability and more than the cooldown
// has elapsed since it last fired. One Gate is shared by all conversations.
//
// Gate is safe for concurrent use.
type Gate struct {
	probability float64
	cooldown    time.Duration
	now         func() time.Time
	rand        func() float64

	last atomic.Int64 // UnixNano of the last firing, 0 = never
}

// GateOption customises a Gate.
type GateOption func(*Gate)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

// WithRand replaces the uniform [0,1) source.
func WithRand(r func() float64) GateOption {
	return func(g *Gate) { g.rand = r }
}

// NewGate creates a Gate. A negative probability or cooldown takes the default.
func NewGate(probability float64, cooldown time.Duration, opts ...GateOption) *Gate {
	if probability < 0 {
		probability = DefaultProbability
	}
	if cooldown < 0 {
		cooldown = DefaultCooldown
	}
	g := &Gate{
		probability: probability,
		cooldown:    cooldown,
		now:         time.Now,
		rand:        rand.Float64,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allow draws once and, when the gate opens, records the firing time.
// Concurrent callers cannot both win the same cooldown window.
func (g *Gate) Allow() bool {
	if g.rand() >= g.probability {
		return false
	}

	now := g.now().UnixNano()
	for {
		last := g.last.Load()
		if now-last <= int64(g.cooldown) {
			return false
		}
		if g.last.CompareAndSwap(last, now) {
			return true
		}
	}
}

// lastFired returns when the gate last opened, or the zero time.
func (g *Gate) lastFired() time.Time {
	n := g.last.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

func (g *Gate) Probability() float64    { return g.probability }
func (g *Gate) Cooldown() time.Duration { return g.cooldown }
