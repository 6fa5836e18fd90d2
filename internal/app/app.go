// Package app wires configuration, clients, cache, and services together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Jason0asdjia/crypto-price-api/internal/cache"
	"github.com/Jason0asdjia/crypto-price-api/internal/clients/cmc"
	"github.com/Jason0asdjia/crypto-price-api/internal/clients/notionstore"
	"github.com/Jason0asdjia/crypto-price-api/internal/common"
	"github.com/Jason0asdjia/crypto-price-api/internal/interfaces"
	"github.com/Jason0asdjia/crypto-price-api/internal/services/pricesync"
	"github.com/Jason0asdjia/crypto-price-api/internal/services/snapshot"
	"github.com/Jason0asdjia/crypto-price-api/internal/services/summary"
)

// App holds the wired application components.
type App struct {
	Config *common.Config
	Logger *common.Logger

	Cache       interfaces.QuoteCache
	CMCClient   interfaces.MarketDataClient
	RecordStore interfaces.RecordStore

	PriceSync interfaces.PriceSyncService
	Snapshot  interfaces.SnapshotService
	Summary   interfaces.SummaryService

	StartupTime time.Time

	schedulerCancel context.CancelFunc
}

// NewApp loads configuration and wires all components.
func NewApp(configPaths ...string) (*App, error) {
	config, err := common.LoadConfig(configPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	quoteCache := cache.New(context.Background(), config, logger)

	cmcClient := cmc.NewClient(config.Clients.CMC.APIKey,
		cmc.WithBaseURL(config.Clients.CMC.BaseURL),
		cmc.WithTimeout(config.Clients.CMC.GetTimeout()),
		cmc.WithRateLimit(config.Clients.CMC.RateLimit),
		cmc.WithLogger(logger),
	)

	recordStore := notionstore.NewClient(config.RecordStore.Token,
		notionstore.WithBaseURL(config.RecordStore.BaseURL),
		notionstore.WithVersion(config.RecordStore.Version),
		notionstore.WithTimeout(config.RecordStore.GetTimeout()),
		notionstore.WithLogger(logger),
	)

	keys := cache.NewKeys(config.Cache.KeyPrefix)

	a := &App{
		Config:      config,
		Logger:      logger,
		Cache:       quoteCache,
		CMCClient:   cmcClient,
		RecordStore: recordStore,
		PriceSync: pricesync.NewService(recordStore, cmcClient, quoteCache,
			keys, config.Cache.GetTTL(), config.Datasets.Prices, logger),
		Snapshot: snapshot.NewService(recordStore,
			config.Datasets.Holdings, config.Datasets.Snapshots, logger),
		Summary: summary.NewService(recordStore,
			config.Datasets.Holdings, config.Datasets.Summaries, logger),
		StartupTime: time.Now(),
	}

	return a, nil
}

// Shutdown stops background work and releases held resources.
func (a *App) Shutdown() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
	}
	if closer, ok := a.Cache.(interface{ Close() error }); ok {
		closer.Close()
	}
	a.Logger.Info().Msg("application shutdown complete")
}
