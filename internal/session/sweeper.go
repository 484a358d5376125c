package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweepable is a store that can drop expired entries in bulk.
type Sweepable interface {
	Sweep(now time.Time) int
}

// StartSweeper runs a background goroutine that periodically removes expired
// sessions until ctx is cancelled. A non-positive interval disables it.
func StartSweeper(ctx context.Context, store Sweepable, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		return
	}

	log := logger.With().Str("component", "session_sweeper").Logger()
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		log.Info().Dur("interval", interval).Msg("session sweeper started")

		for {
			select {
			case now := <-ticker.C:
				if removed := store.Sweep(now); removed > 0 {
					log.Info().Int("removed", removed).Msg("expired sessions swept")
				}
			case <-ctx.Done():
				log.Info().Err(ctx.Err()).Msg("session sweeper stopped")
				return
			}
		}
	}()
}
