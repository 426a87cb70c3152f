package orchestrator

import (
	"context"
	"log/slog"
	"time"
)

// EvictFinished removes sessions whose scenes are all terminal and that have
// not changed for at least ttl. It returns the number removed.
func (s *Service) EvictFinished(ttl time.Duration) int {
	n := s.repo.EvictFinished(time.Now().UTC().Add(-ttl))
	if n > 0 {
		s.log.Info("finished sessions evicted", slog.Int("count", n), slog.Duration("ttl", ttl))
		if s.metrics != nil {
			s.metrics.AddSessionsEvicted(n)
		}
	}
	return n
}

// RunRetention sweeps finished sessions every interval until ctx is done.
// A non-positive ttl disables eviction and RunRetention returns immediately.
func (s *Service) RunRetention(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictFinished(ttl)
		}
	}
}
