// Package snapshot aggregates the holdings dataset into append-only account
// snapshot records.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jason0asdjia/crypto-price-api/internal/common"
	"github.com/Jason0asdjia/crypto-price-api/internal/interfaces"
	"github.com/Jason0asdjia/crypto-price-api/internal/models"
)

// Holdings dataset property names.
const (
	QuantityProperty    = "Current Quantity"
	MarketValueProperty = "Market Value"
	InvestedProperty    = "Total Invested"
)

// Snapshot dataset property names.
const (
	TitleProperty            = "Title"
	TimeProperty             = "Time"
	TotalMarketValueProperty = "Total Market Value"
	TotalInvestedProperty    = "Total Invested"
	TotalPnLProperty         = "Total PnL"
	AssetCountProperty       = "Asset Count"
	SourceProperty           = "Snapshot Source"
)

// moneyPlaces is the rounding applied to snapshot money fields.
const moneyPlaces = 4

// Service aggregates holdings into one snapshot record per invocation.
type Service struct {
	store       interfaces.RecordStore
	holdingsID  string
	snapshotsID string
	logger      *common.Logger
	now         func() time.Time
}

// NewService creates a snapshot service.
func NewService(store interfaces.RecordStore, holdingsID, snapshotsID string, logger *common.Logger) *Service {
	return &Service{
		store:       store,
		holdingsID:  holdingsID,
		snapshotsID: snapshotsID,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateSnapshot sums market value and invested cost across all holdings
// with a positive quantity and appends one snapshot record. The timestamp
// is rendered in the given IANA timezone (empty defaults to UTC).
func (s *Service) CreateSnapshot(ctx context.Context, timezone string) (*models.AccountSnapshot, error) {
	location := time.UTC
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, &models.InvalidTimezoneError{Name: timezone}
		}
		location = loc
	}

	dataSourceID, err := s.store.RetrieveDataSource(ctx, s.holdingsID)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.QueryRecords(ctx, dataSourceID,
		models.FilterNumberGreaterThan(QuantityProperty, 0))
	if err != nil {
		return nil, err
	}

	totalValue := decimal.Zero
	totalInvested := decimal.Zero
	for _, row := range rows {
		value, err := numericProperty(row, MarketValueProperty)
		if err != nil {
			return nil, err
		}
		invested, err := numericProperty(row, InvestedProperty)
		if err != nil {
			return nil, err
		}
		totalValue = totalValue.Add(value)
		totalInvested = totalInvested.Add(invested)
	}

	totalValue = totalValue.Round(moneyPlaces)
	totalInvested = totalInvested.Round(moneyPlaces)
	pnl := totalValue.Sub(totalInvested).Round(moneyPlaces)

	localTime := s.now().In(location)
	meridiem := "PM"
	if localTime.Hour() < 12 {
		meridiem = "AM"
	}

	snap := &models.AccountSnapshot{
		Title:            fmt.Sprintf("Snapshot %s %s", localTime.Format("2006-01-02"), meridiem),
		Timestamp:        localTime.Format(time.RFC3339),
		Timezone:         location.String(),
		TotalMarketValue: totalValue.InexactFloat64(),
		TotalInvested:    totalInvested.InexactFloat64(),
		TotalPnL:         pnl.InexactFloat64(),
		AssetCount:       len(rows),
		Source:           models.SnapshotSourceAPI,
	}

	snapshotDS, err := s.store.RetrieveDataSource(ctx, s.snapshotsID)
	if err != nil {
		return nil, err
	}

	_, err = s.store.CreateRecord(ctx, snapshotDS, map[string]models.Property{
		TitleProperty:            models.NewTitle(snap.Title),
		TimeProperty:             models.NewDate(snap.Timestamp),
		TotalMarketValueProperty: models.NewNumber(snap.TotalMarketValue),
		TotalInvestedProperty:    models.NewNumber(snap.TotalInvested),
		TotalPnLProperty:         models.NewNumber(snap.TotalPnL),
		AssetCountProperty:       models.NewNumber(float64(snap.AssetCount)),
		SourceProperty:           models.NewSelect(snap.Source),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("assets", snap.AssetCount).
		Float64("market_value", snap.TotalMarketValue).
		Str("timezone", snap.Timezone).
		Msg("account snapshot created")

	return snap, nil
}

// numericProperty reads a summable number from a row. A null value counts
// as zero; a missing property is a schema fault for the whole operation.
func numericProperty(row models.Record, name string) (decimal.Decimal, error) {
	prop, ok := row.Properties[name]
	if !ok {
		return decimal.Zero, &models.SchemaError{
			Dataset: "holdings",
			Detail:  fmt.Sprintf("missing property %q on record %s", name, row.ID),
		}
	}
	value := prop.NumberValue()
	if value == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromFloat(*value), nil
}

var _ interfaces.SnapshotService = (*Service)(nil)
