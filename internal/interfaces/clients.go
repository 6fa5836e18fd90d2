// Package interfaces defines the contracts between the service's layers
package interfaces

import (
	"context"

	"github.com/Jason0asdjia/crypto-price-api/internal/models"
)

// MarketDataClient fetches quotes from the upstream market-data API.
// Implementations must batch all requested symbols into a single request.
type MarketDataClient interface {
	GetQuotes(ctx context.Context, symbols []string) (*models.QuoteResponse, error)
}

// RecordStore exposes the four document-store operations the core consumes.
type RecordStore interface {
	// RetrieveDataSource resolves a dataset id to its first queryable
	// data-source id.
	RetrieveDataSource(ctx context.Context, databaseID string) (string, error)

	// QueryRecords returns the rows of a data source, optionally filtered.
	QueryRecords(ctx context.Context, dataSourceID string, filter models.RecordFilter) ([]models.Record, error)

	// UpdateRecord applies a partial update: only the listed properties
	// change, everything else on the record is untouched.
	UpdateRecord(ctx context.Context, recordID string, patch map[string]models.Property) error

	// CreateRecord appends a new row to a data source and returns its id.
	CreateRecord(ctx context.Context, dataSourceID string, properties map[string]models.Property) (string, error)
}
