package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/motek/internal/logging"
	"github.com/dmitrijs2005/motek/internal/server/ratelimit"
)

// Sweeper periodically deletes dead refresh tokens and forgets idle rate
// limiter addresses, outside the request path.
type Sweeper struct {
	users    *UserService
	limiters []*ratelimit.IPLimiter
	interval time.Duration
	logger   logging.Logger
}

func NewSweeper(users *UserService, interval time.Duration, logger logging.Logger, limiters ...*ratelimit.IPLimiter) *Sweeper {
	return &Sweeper{
		users:    users,
		limiters: limiters,
		interval: interval,
		logger:   logger.With("module", "sweeper"),
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.SweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs a single cleanup pass. Failures are logged and retried
// on the next tick.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	deleted, err := s.users.SweepExpired(ctx)
	if err != nil {
		s.logger.Warn(ctx, "refresh token sweep failed", logging.Err(err))
	}

	forgotten := 0
	for _, l := range s.limiters {
		forgotten += l.Sweep()
	}

	s.logger.Debug(ctx, "sweep finished", "tokens_deleted", deleted, "addresses_forgotten", forgotten)
}
