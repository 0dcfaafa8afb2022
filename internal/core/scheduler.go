package core

// scheduler.go runs the audit retention job. It purges entries older than
// the retention window once at start and then on every tick, and stops
// when ctx is cancelled. A failed run is logged and retried next tick.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig controls the audit purge job.
type RetentionConfig struct {
	RetentionDays int
	CheckInterval time.Duration
}

// StartAuditRetention blocks until ctx is done; run it in a goroutine.
func (s *Service) StartAuditRetention(ctx context.Context, cfg RetentionConfig) {
	if cfg.RetentionDays <= 0 || cfg.CheckInterval <= 0 {
		slog.Info("audit retention disabled")
		return
	}
	slog.Info("audit retention started",
		"retention_days", cfg.RetentionDays,
		"interval", cfg.CheckInterval,
	)

	s.runRetention(ctx, cfg.RetentionDays)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("audit retention stopped")
			return
		case <-ticker.C:
			s.runRetention(ctx, cfg.RetentionDays)
		}
	}
}

func (s *Service) runRetention(ctx context.Context, days int) {
	start := time.Now()
	cutoff := s.now().AddDate(0, 0, -days)

	purged, err := s.PurgeAuditLog(ctx, cutoff)
	if err != nil {
		slog.Error("audit purge failed", "error", err)
		return
	}
	slog.Info("purged audit log entries",
		"entries_purged", purged,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// PurgeAuditLog deletes audit entries created before cutoff.
func (s *Service) PurgeAuditLog(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.store.PurgeAuditLogs(ctx, cutoff)
}
