// Package summary reconciles per-symbol summary records against the
// holdings dataset, keyed by the (symbol, ledger) composite identity.
package summary

import (
	"context"
	"fmt"

	"github.com/Jason0asdjia/crypto-price-api/internal/common"
	"github.com/Jason0asdjia/crypto-price-api/internal/interfaces"
	"github.com/Jason0asdjia/crypto-price-api/internal/models"
)

// Holdings dataset property names.
const (
	SymbolProperty     = "Symbol"
	LedgerProperty     = "Ledger"
	SyncStatusProperty = "Sync Status"
)

// Summary dataset property names.
const (
	SummaryTitleProperty   = "Symbol"
	SummaryHoldingProperty = "Holding"
	SummaryLedgerProperty  = "Ledger"
)

// Sync result statuses.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusSkipped = "skipped"
)

// compositeKey is a summary row's uniqueness identity.
type compositeKey struct {
	symbol   string
	ledgerID string
}

// Service reconciles summary rows for holdings needing sync.
type Service struct {
	store       interfaces.RecordStore
	holdingsID  string
	summariesID string
	logger      *common.Logger
}

// NewService creates a summary service.
func NewService(store interfaces.RecordStore, holdingsID, summariesID string, logger *common.Logger) *Service {
	return &Service{
		store:       store,
		holdingsID:  holdingsID,
		summariesID: summariesID,
		logger:      logger,
	}
}

// SyncSummaries runs one reconciliation cycle. Candidates are holdings rows
// whose sync status is pending, error, or unset. Each candidate is handled
// in isolation: a summary row is created for its (symbol, ledger) key
// unless one already exists, and row-level failures never abort the batch.
// Every candidate that did not fail is marked synced afterwards, including
// duplicates skipped because their key was already reconciled.
func (s *Service) SyncSummaries(ctx context.Context) (*models.SummarySyncResult, error) {
	holdingsDS, err := s.store.RetrieveDataSource(ctx, s.holdingsID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.QueryRecords(ctx, holdingsDS, models.FilterAnyOf(
		models.FilterSelectEquals(SyncStatusProperty, string(models.SyncStatusPending)),
		models.FilterSelectEquals(SyncStatusProperty, string(models.SyncStatusError)),
		models.FilterSelectIsEmpty(SyncStatusProperty),
	))
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return &models.SummarySyncResult{
			Status:  StatusSkipped,
			Message: "no pending holdings",
		}, nil
	}

	summariesDS, err := s.store.RetrieveDataSource(ctx, s.summariesID)
	if err != nil {
		return nil, err
	}

	existing, err := s.existingKeys(ctx, summariesDS)
	if err != nil {
		return nil, err
	}

	result := s.reconcile(ctx, summariesDS, candidates, existing)
	result.Processed = len(candidates)

	failed := make(map[string]bool, len(result.Failures))
	for _, f := range result.Failures {
		failed[f.RecordID] = true
	}
	for _, row := range candidates {
		if failed[row.ID] {
			continue
		}
		if err := s.markStatus(ctx, row.ID, models.SyncStatusSynced); err != nil {
			s.logger.Error().Err(err).Str("record", row.ID).Msg("mark synced failed")
			result.Failures = append(result.Failures, models.RowFailure{
				RecordID: row.ID,
				Reason:   fmt.Sprintf("mark synced failed: %v", err),
			})
		}
	}

	if len(result.Failures) > 0 {
		result.Status = StatusPartial
	}

	s.logger.Info().
		Str("status", result.Status).
		Int("processed", result.Processed).
		Int("created", result.CreatedCount()).
		Int("skipped", result.Skipped).
		Int("failed", result.FailedCount()).
		Msg("summary sync cycle complete")

	return result, nil
}

// existingKeys scans all current summary rows into the composite-key set.
// Rows missing a title or a ledger relation are skipped, not failed.
func (s *Service) existingKeys(ctx context.Context, summariesDS string) (map[compositeKey]bool, error) {
	rows, err := s.store.QueryRecords(ctx, summariesDS, nil)
	if err != nil {
		return nil, err
	}

	keys := make(map[compositeKey]bool, len(rows))
	for _, row := range rows {
		symbol := row.Properties[SummaryTitleProperty].PlainText()
		ledgerID := row.Properties[SummaryLedgerProperty].FirstRelation()
		if symbol == "" || ledgerID == "" {
			continue
		}
		keys[compositeKey{symbol: symbol, ledgerID: ledgerID}] = true
	}
	return keys, nil
}

// reconcile creates the missing summary rows for the candidate batch. Each
// row is processed independently; a failure is recorded with the row's
// identity, the row is marked error best-effort, and the batch continues.
// Created keys join the set immediately so an in-batch duplicate is caught.
func (s *Service) reconcile(ctx context.Context, summariesDS string, candidates []models.Record, existing map[compositeKey]bool) *models.SummarySyncResult {
	result := &models.SummarySyncResult{Status: StatusSuccess}

	for _, row := range candidates {
		symbol := row.Properties[SymbolProperty].PlainText()
		ledgerID := row.Properties[LedgerProperty].FirstRelation()

		if symbol == "" || ledgerID == "" {
			reason := "missing symbol title"
			if symbol != "" {
				reason = "missing ledger relation"
			}
			s.failRow(ctx, result, row.ID, symbol, reason)
			continue
		}

		key := compositeKey{symbol: symbol, ledgerID: ledgerID}
		if existing[key] {
			result.Skipped++
			continue
		}

		id, err := s.store.CreateRecord(ctx, summariesDS, map[string]models.Property{
			SummaryTitleProperty:   models.NewTitle(symbol),
			SummaryHoldingProperty: models.NewRelation(row.ID),
			SummaryLedgerProperty:  models.NewRelation(ledgerID),
		})
		if err != nil {
			s.failRow(ctx, result, row.ID, symbol, fmt.Sprintf("create summary failed: %v", err))
			continue
		}

		existing[key] = true
		result.Created = append(result.Created, id)
	}

	return result
}

// failRow records one row's failure and marks the row error best-effort.
func (s *Service) failRow(ctx context.Context, result *models.SummarySyncResult, recordID, symbol, reason string) {
	s.logger.Warn().Str("record", recordID).Str("symbol", symbol).Str("reason", reason).Msg("summary row failed")
	result.Failures = append(result.Failures, models.RowFailure{
		RecordID: recordID,
		Symbol:   symbol,
		Reason:   reason,
	})
	if err := s.markStatus(ctx, recordID, models.SyncStatusError); err != nil {
		s.logger.Error().Err(err).Str("record", recordID).Msg("mark error failed")
	}
}

func (s *Service) markStatus(ctx context.Context, recordID string, status models.SyncStatus) error {
	return s.store.UpdateRecord(ctx, recordID, map[string]models.Property{
		SyncStatusProperty: models.NewSelect(string(status)),
	})
}

var _ interfaces.SummaryService = (*Service)(nil)
