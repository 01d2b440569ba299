package dedup

import (
	"context"
	"fmt"

	robfigcron "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Resetter clears a Filter on a cron schedule, bounding how long an exact
// repeat stays suppressed.
type Resetter struct {
	filter *Filter
	expr   string
	sched  robfigcron.Schedule
	logger *zap.Logger
}

// NewResetter parses a standard five-field cron expression (descriptors such
// as "@daily" or "@every 1h" are accepted too).
func NewResetter(filter *Filter, expr string, logger *zap.Logger) (*Resetter, error) {
	sched, err := robfigcron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("dedup reset schedule %q: %w", expr, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resetter{filter: filter, expr: expr, sched: sched, logger: logger}, nil
}

// Start runs the schedule until ctx is cancelled.
func (r *Resetter) Start(ctx context.Context) error {
	c := robfigcron.New()
	c.Schedule(r.sched, robfigcron.FuncJob(func() {
		n := r.filter.Len()
		r.filter.Reset()
		r.logger.Info("dedup: filter reset", zap.Int("dropped", n))
	}))

	c.Start()
	r.logger.Info("dedup: reset schedule started", zap.String("schedule", r.expr))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
