package app

import (
	"sync"
	"time"

	"slotwatch/internal/monitor"
)

// tickStatus is the last tick as reported on /healthz.
type tickStatus struct {
	mu      sync.Mutex
	started time.Time
	last    monitor.Outcome
	at      time.Time
	ticks   uint64
	counts  map[string]uint64
}

func newTickStatus(now time.Time) *tickStatus {
	return &tickStatus{started: now, counts: make(map[string]uint64)}
}

func (s *tickStatus) record(o monitor.Outcome, at time.Time) {
	s.mu.Lock()
	s.last = o
	s.at = at
	s.ticks++
	s.counts[o.String()]++
	s.mu.Unlock()
}

func (s *tickStatus) snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]any{
		"status":  "ok",
		"started": s.started.UTC().Format(time.RFC3339),
		"ticks":   s.ticks,
	}
	if s.ticks > 0 {
		counts := make(map[string]uint64, len(s.counts))
		for k, v := range s.counts {
			counts[k] = v
		}
		out["last_outcome"] = s.last.String()
		out["last_tick"] = s.at.UTC().Format(time.RFC3339)
		out["outcomes"] = counts
	}
	return out
}
