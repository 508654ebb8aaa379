package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/presser/internal/api"
	"github.com/five82/presser/internal/catalog"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 5 * time.Minute
)

// StartPoller launches a background goroutine that refreshes the directory
// at a fixed cadence, backing off while the backend is unreachable. It
// returns immediately.
func StartPoller(ctx context.Context, store *catalog.Store, dir api.Directory, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			refresh(ctx, store, dir, log)
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	if failures > 16 {
		return maxBackoff
	}
	d := base << failures
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

// refresh fetches cleaners and pricing. A pricing failure keeps the last
// known pricing and does not count as an outage.
func refresh(ctx context.Context, store *catalog.Store, dir api.Directory, log zerolog.Logger) {
	cleaners, err := dir.ListCleaners(ctx)
	if err != nil {
		store.Update(nil, nil, err)
		log.Warn().Err(err).Msg("cleaner poll failed")
		return
	}
	cfg, err := dir.FetchPricing(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("pricing poll failed")
		store.Update(cleaners, nil, nil)
		return
	}
	store.Update(cleaners, &cfg, nil)
}
