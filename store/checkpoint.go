package store

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Flusher is the slice of Bridge the checkpointer needs.
type Flusher interface {
	Flush()
}

// Checkpointer periodically flushes pending saves on a cron schedule, as a
// backstop for the debounced path: a long-idle session with a dirty bridge
// (for example after a transient save failure) still gets written.
type Checkpointer struct {
	sched  *cron.Cron
	bridge Flusher
}

// NewCheckpointer schedules Flush on the bridge with the given cron
// expression, e.g. "@every 5m".
func NewCheckpointer(bridge Flusher, expr string) (*Checkpointer, error) {
	cp := &Checkpointer{sched: cron.New(), bridge: bridge}
	if _, err := cp.sched.AddFunc(expr, func() {
		cp.bridge.Flush()
	}); err != nil {
		return nil, fmt.Errorf("checkpoint schedule %q: %w", expr, err)
	}
	return cp, nil
}

// Start begins the schedule.
func (cp *Checkpointer) Start() {
	cp.sched.Start()
}

// Stop halts the schedule and runs one final flush.
func (cp *Checkpointer) Stop() {
	ctx := cp.sched.Stop()
	<-ctx.Done()
	cp.bridge.Flush()
}
