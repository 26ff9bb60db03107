package analytics

import (
	"Shortlink-Backend/internal/metrics"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var ErrInvalidRetention = errors.New("days to keep must be at least 1")

// ClickPurger deletes click events older than a cutoff.
type ClickPurger interface {
	DeleteClicksBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper removes click events past the retention horizon. URL click
// counters are left untouched.
type Sweeper struct {
	purger ClickPurger
	now    func() time.Time
	log    *zap.Logger
}

func NewSweeper(purger ClickPurger, log *zap.Logger) *Sweeper {
	return &Sweeper{
		purger: purger,
		now:    time.Now,
		log:    log.With(zap.String("component", "retention_sweeper")),
	}
}

// Sweep deletes events with clicked_at before now minus daysToKeep.
// Running it twice in a row deletes nothing the second time.
func (s *Sweeper) Sweep(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep < 1 {
		return 0, ErrInvalidRetention
	}

	cutoff := s.now().UTC().AddDate(0, 0, -daysToKeep)
	start := time.Now()

	deleted, err := s.purger.DeleteClicksBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old clicks: %w", err)
	}

	metrics.SweptClicks.Add(float64(deleted))
	s.log.Info("retention sweep finished",
		zap.Int("days_to_keep", daysToKeep),
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", deleted),
		zap.Duration("took", time.Since(start)),
	)

	return deleted, nil
}

// Run sweeps immediately and then every interval until ctx is done.
// Failures are logged and the loop keeps going.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration, daysToKeep int) {
	if interval <= 0 {
		s.log.Info("periodic retention sweep disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx, daysToKeep); err != nil && ctx.Err() == nil {
			s.log.Error("retention sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			s.log.Info("retention sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}
