package pricesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jason0asdjia/crypto-price-api/internal/cache"
	"github.com/Jason0asdjia/crypto-price-api/internal/clients/cmc"
	"github.com/Jason0asdjia/crypto-price-api/internal/common"
	"github.com/Jason0asdjia/crypto-price-api/internal/interfaces"
	"github.com/Jason0asdjia/crypto-price-api/internal/models"
)

// Record store property names on the prices dataset.
const (
	PriceProperty  = "Price"
	ChangeProperty = "24H Change"
)

// Sync result statuses.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
)

// Service runs the price-sync cycle: registry, cache partition, one batched
// upstream fetch, and partial record updates.
type Service struct {
	store     interfaces.RecordStore
	market    interfaces.MarketDataClient
	quotes    interfaces.QuoteCache
	keys      cache.Keys
	ttl       time.Duration
	datasetID string
	logger    *common.Logger
}

// NewService creates a price-sync service.
func NewService(
	store interfaces.RecordStore,
	market interfaces.MarketDataClient,
	quotes interfaces.QuoteCache,
	keys cache.Keys,
	ttl time.Duration,
	datasetID string,
	logger *common.Logger,
) *Service {
	return &Service{
		store:     store,
		market:    market,
		quotes:    quotes,
		keys:      keys,
		ttl:       ttl,
		datasetID: datasetID,
		logger:    logger,
	}
}

// SyncPrices runs one idempotent sync cycle. Symbols resolved entirely from
// fresh cache entries skip the upstream fetch; the remainder go out in a
// single batched request. A failed fetch degrades to stale cache values per
// symbol rather than failing the cycle.
func (s *Service) SyncPrices(ctx context.Context) (*models.PriceSyncResult, error) {
	dataSourceID, err := s.store.RetrieveDataSource(ctx, s.datasetID)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.QueryRecords(ctx, dataSourceID, nil)
	if err != nil {
		return nil, err
	}

	registry, err := BuildRegistry(rows)
	if errors.Is(err, models.ErrNoSymbols) {
		return &models.PriceSyncResult{
			Status:  StatusSuccess,
			Message: "no symbols found",
		}, nil
	}
	if err != nil {
		return nil, err
	}

	prices := make(map[string]*models.PriceRecord, len(registry.Symbols))
	var uncached []string
	for _, symbol := range registry.Symbols {
		price, priceOK := s.quotes.Get(ctx, s.keys.Price(symbol))
		change, changeOK := s.quotes.Get(ctx, s.keys.Change(symbol))
		if priceOK && changeOK {
			prices[symbol] = &models.PriceRecord{
				Symbol:    symbol,
				Price:     &price,
				Change24H: &change,
				Source:    models.PriceSourceCache,
			}
			continue
		}
		uncached = append(uncached, symbol)
	}

	if len(uncached) > 0 {
		resp, err := s.market.GetQuotes(ctx, uncached)
		if err != nil {
			s.logger.Warn().Err(err).Int("symbols", len(uncached)).Msg("upstream fetch failed, using stale cache")
			for _, symbol := range uncached {
				prices[symbol] = s.staleFallback(ctx, symbol, err)
			}
		} else {
			for _, symbol := range uncached {
				prices[symbol] = s.extractAndCache(ctx, resp, symbol)
			}
		}
	}

	result := &models.PriceSyncResult{
		Status:  StatusSuccess,
		Symbols: registry.Symbols,
		Prices:  prices,
	}

	for _, symbol := range registry.Symbols {
		record := prices[symbol]
		if record.Error != "" || record.Source == models.PriceSourceStale {
			result.Status = StatusPartial
		}
		if record.Absent() {
			continue
		}

		patch := make(map[string]models.Property, 2)
		if record.Price != nil {
			patch[PriceProperty] = models.NewNumber(*record.Price)
		}
		if record.Change24H != nil {
			patch[ChangeProperty] = models.NewNumber(*record.Change24H)
		}

		if err := s.store.UpdateRecord(ctx, registry.Records[symbol], patch); err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("record update failed")
			record.Error = fmt.Sprintf("record update failed: %v", err)
			result.Status = StatusPartial
			continue
		}
		result.Updated++
	}

	s.logger.Info().
		Str("status", result.Status).
		Int("symbols", len(registry.Symbols)).
		Int("updated", result.Updated).
		Msg("price sync cycle complete")

	return result, nil
}

// extractAndCache resolves both quote fields for one symbol from a batch
// response. Each field that extracts successfully is cached; a field that
// fails stays absent without affecting the other.
func (s *Service) extractAndCache(ctx context.Context, resp *models.QuoteResponse, symbol string) *models.PriceRecord {
	record := &models.PriceRecord{Symbol: symbol, Source: models.PriceSourceFresh}

	if price, err := cmc.ExtractField(resp, symbol, cmc.FieldPrice); err == nil {
		record.Price = &price
		s.quotes.Set(ctx, s.keys.Price(symbol), price, s.ttl)
	} else {
		record.Error = err.Error()
	}

	if change, err := cmc.ExtractField(resp, symbol, cmc.FieldChange24H); err == nil {
		record.Change24H = &change
		s.quotes.Set(ctx, s.keys.Change(symbol), change, s.ttl)
	} else if record.Error == "" {
		record.Error = err.Error()
	}

	if record.Absent() {
		record.Source = ""
	}
	return record
}

// staleFallback reads the last known values for a symbol after a failed
// upstream fetch, ignoring logical expiry. Fields with no stale value stay
// absent.
func (s *Service) staleFallback(ctx context.Context, symbol string, fetchErr error) *models.PriceRecord {
	record := &models.PriceRecord{
		Symbol: symbol,
		Source: models.PriceSourceStale,
		Error:  fmt.Sprintf("upstream fetch failed: %v", fetchErr),
	}

	if price, ok := s.quotes.GetStale(ctx, s.keys.Price(symbol)); ok {
		record.Price = &price
	}
	if change, ok := s.quotes.GetStale(ctx, s.keys.Change(symbol)); ok {
		record.Change24H = &change
	}

	if record.Absent() {
		record.Source = ""
	}
	return record
}

var _ interfaces.PriceSyncService = (*Service)(nil)
