package interfaces

import (
	"context"

	"github.com/Jason0asdjia/crypto-price-api/internal/models"
)

// PriceSyncService runs one cache-backed price-sync cycle.
type PriceSyncService interface {
	SyncPrices(ctx context.Context) (*models.PriceSyncResult, error)
}

// SnapshotService aggregates the holdings dataset into one snapshot record.
type SnapshotService interface {
	CreateSnapshot(ctx context.Context, timezone string) (*models.AccountSnapshot, error)
}

// SummaryService reconciles summary rows for holdings needing sync.
type SummaryService interface {
	SyncSummaries(ctx context.Context) (*models.SummarySyncResult, error)
}
