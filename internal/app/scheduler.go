package app

import (
	"context"
	"time"

	"github.com/Jason0asdjia/crypto-price-api/internal/common"
	"github.com/Jason0asdjia/crypto-price-api/internal/interfaces"
)

// StartSyncScheduler launches the background price-sync goroutine. A zero
// or unset interval disables it; the HTTP trigger remains available either
// way.
func (a *App) StartSyncScheduler() {
	interval := a.Config.Scheduler.GetInterval()
	if interval <= 0 {
		a.Logger.Info().Msg("Sync scheduler: disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel
	go runSyncScheduler(ctx, a.PriceSync, a.Logger, interval)
}

// runSyncScheduler runs the price sync on a fixed interval until cancelled.
func runSyncScheduler(ctx context.Context, sync interfaces.PriceSyncService, logger *common.Logger, interval time.Duration) {
	logger.Info().Dur("interval", interval).Msg("Sync scheduler: started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Sync scheduler: stopped")
			return
		case <-ticker.C:
			runScheduledSync(ctx, sync, logger)
		}
	}
}

func runScheduledSync(ctx context.Context, sync interfaces.PriceSyncService, logger *common.Logger) {
	start := time.Now()

	result, err := sync.SyncPrices(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Scheduled sync: failed")
		return
	}

	logger.Info().
		Str("status", result.Status).
		Int("updated", result.Updated).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled sync: complete")
}
