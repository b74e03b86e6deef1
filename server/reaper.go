package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Reaper periodically expires idle sessions.
type Reaper struct {
	cron *cron.Cron
}

func NewReaper(store *Store, schedule string, ttl time.Duration) (*Reaper, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := store.Reap(ttl); n > 0 {
			slog.Info("idle sessions reaped", "count", n, "remaining", store.Len())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("reap schedule %q: %w", schedule, err)
	}
	return &Reaper{cron: c}, nil
}

func (r *Reaper) Start() {
	r.cron.Start()
}

// Stop waits for a running reap to finish.
func (r *Reaper) Stop() {
	<-r.cron.Stop().Done()
}
