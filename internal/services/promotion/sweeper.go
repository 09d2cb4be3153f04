package promotion

import (
	"context"
	"time"

	"grubmarket/internal/logger"
)

// Sweeper periodically demotes restaurants whose promotion window has
// passed. It runs until its context is cancelled.
type Sweeper struct {
	store    Store
	interval time.Duration
	logger   *logger.Logger
}

// NewSweeper creates a promotion sweeper.
func NewSweeper(store Store, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   log,
	}
}

// Run sweeps once immediately, then on every tick.
func (s *Sweeper) Run(ctx context.Context) error {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	expired, err := s.store.ExpirePromotions(ctx)
	if err != nil {
		s.logger.Error("promotion_sweep_failed", "Failed to expire promotions", "", err, nil)
		return
	}
	if expired > 0 {
		s.logger.Info("promotion_sweep", "Expired promotions", "", map[string]interface{}{
			"count": expired,
		})
	}
}
