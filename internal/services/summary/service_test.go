package summary

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Jason0asdjia/crypto-price-api/internal/common"
	"github.com/Jason0asdjia/crypto-price-api/internal/models"
)

type mockStore struct {
	holdings   []models.Record
	summaries  []models.Record
	created    []map[string]models.Property
	createErr  map[int]error // error for the nth create call (0-based)
	updates    map[string][]string
	updateErrs map[string]error
}

func newMockStore() *mockStore {
	return &mockStore{
		createErr:  make(map[int]error),
		updates:    make(map[string][]string),
		updateErrs: make(map[string]error),
	}
}

func (m *mockStore) RetrieveDataSource(ctx context.Context, databaseID string) (string, error) {
	return "ds-" + databaseID, nil
}

func (m *mockStore) QueryRecords(ctx context.Context, dataSourceID string, filter models.RecordFilter) ([]models.Record, error) {
	switch dataSourceID {
	case "ds-holdings-db":
		if filter == nil {
			return nil, errors.New("expected candidate filter")
		}
		return m.holdings, nil
	case "ds-summaries-db":
		return m.summaries, nil
	}
	return nil, fmt.Errorf("unknown data source %s", dataSourceID)
}

func (m *mockStore) UpdateRecord(ctx context.Context, recordID string, patch map[string]models.Property) error {
	if err := m.updateErrs[recordID]; err != nil {
		return err
	}
	m.updates[recordID] = append(m.updates[recordID], patch[SyncStatusProperty].SelectName())
	return nil
}

func (m *mockStore) CreateRecord(ctx context.Context, dataSourceID string, props map[string]models.Property) (string, error) {
	n := len(m.created)
	if err := m.createErr[n]; err != nil {
		m.created = append(m.created, nil)
		return "", err
	}
	m.created = append(m.created, props)
	return fmt.Sprintf("sum-%d", n), nil
}

func holdingsRow(id, symbol, ledgerID string) models.Record {
	props := map[string]models.Property{}
	if symbol != "" {
		props[SymbolProperty] = models.NewTitle(symbol)
	}
	if ledgerID != "" {
		props[LedgerProperty] = models.NewRelation(ledgerID)
	}
	return models.Record{ID: id, Properties: props}
}

func summaryRow(symbol, ledgerID string) models.Record {
	props := map[string]models.Property{}
	if symbol != "" {
		props[SummaryTitleProperty] = models.NewTitle(symbol)
	}
	if ledgerID != "" {
		props[SummaryLedgerProperty] = models.NewRelation(ledgerID)
	}
	return models.Record{ID: "existing", Properties: props}
}

func newTestService(store *mockStore) *Service {
	return NewService(store, "holdings-db", "summaries-db", common.NewSilentLogger())
}

func lastStatus(store *mockStore, recordID string) string {
	statuses := store.updates[recordID]
	if len(statuses) == 0 {
		return ""
	}
	return statuses[len(statuses)-1]
}

func TestSyncSummariesCreatesMissing(t *testing.T) {
	store := newMockStore()
	store.holdings = []models.Record{
		holdingsRow("h1", "BTC", "ledger-1"),
		holdingsRow("h2", "ETH", "ledger-1"),
	}
	store.summaries = []models.Record{summaryRow("BTC", "ledger-1")}
	svc := newTestService(store)

	result, err := svc.SyncSummaries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != StatusSuccess {
		t.Errorf("expected success, got %s", result.Status)
	}
	if result.Processed != 2 {
		t.Errorf("expected 2 processed, got %d", result.Processed)
	}
	if result.CreatedCount() != 1 {
		t.Fatalf("expected 1 created (ETH), got %d", result.CreatedCount())
	}
	if result.Skipped != 1 {
		t.Errorf("expected BTC skipped as existing, got %d", result.Skipped)
	}

	created := store.created[0]
	if created[SummaryTitleProperty].PlainText() != "ETH" {
		t.Errorf("expected ETH summary, got %v", created[SummaryTitleProperty])
	}
	if created[SummaryHoldingProperty].FirstRelation() != "h2" {
		t.Errorf("expected holding relation h2, got %v", created[SummaryHoldingProperty])
	}
	if created[SummaryLedgerProperty].FirstRelation() != "ledger-1" {
		t.Errorf("expected inherited ledger relation, got %v", created[SummaryLedgerProperty])
	}

	// Both candidates marked synced, including the skipped duplicate.
	if lastStatus(store, "h1") != string(models.SyncStatusSynced) {
		t.Errorf("expected h1 synced, got %q", lastStatus(store, "h1"))
	}
	if lastStatus(store, "h2") != string(models.SyncStatusSynced) {
		t.Errorf("expected h2 synced, got %q", lastStatus(store, "h2"))
	}
}

func TestSyncSummariesInBatchDuplicate(t *testing.T) {
	// Two candidates share a composite key: one summary created, the second
	// treated as a duplicate, both marked synced.
	store := newMockStore()
	store.holdings = []models.Record{
		holdingsRow("h1", "BTC", "ledger-1"),
		holdingsRow("h2", "BTC", "ledger-1"),
	}
	svc := newTestService(store)

	result, err := svc.SyncSummaries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CreatedCount() != 1 {
		t.Errorf("expected exactly one summary for shared key, got %d", result.CreatedCount())
	}
	if result.Skipped != 1 {
		t.Errorf("expected in-batch duplicate skipped, got %d", result.Skipped)
	}
	if result.FailedCount() != 0 {
		t.Errorf("duplicate is not an error, got failures %v", result.Failures)
	}
	if lastStatus(store, "h2") != string(models.SyncStatusSynced) {
		t.Errorf("duplicate row must still be marked synced, got %q", lastStatus(store, "h2"))
	}
}

func TestSyncSummariesSameSymbolDifferentLedger(t *testing.T) {
	store := newMockStore()
	store.holdings = []models.Record{
		holdingsRow("h1", "BTC", "ledger-1"),
		holdingsRow("h2", "BTC", "ledger-2"),
	}
	svc := newTestService(store)

	result, err := svc.SyncSummaries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CreatedCount() != 2 {
		t.Errorf("distinct ledgers are distinct keys, expected 2 created, got %d", result.CreatedCount())
	}
}

func TestSyncSummariesRowFailureIsolated(t *testing.T) {
	store := newMockStore()
	store.holdings = []models.Record{
		holdingsRow("h1", "", "ledger-1"), // no symbol
		holdingsRow("h2", "ETH", ""),      // no ledger
		holdingsRow("h3", "SOL", "ledger-1"),
	}
	svc := newTestService(store)

	result, err := svc.SyncSummaries(context.Background())
	if err != nil {
		t.Fatalf("row failures must not abort the cycle: %v", err)
	}

	if result.Status != StatusPartial {
		t.Errorf("expected partial, got %s", result.Status)
	}
	if result.FailedCount() != 2 {
		t.Fatalf("expected 2 failures, got %v", result.Failures)
	}
	if result.Failures[0].RecordID != "h1" || result.Failures[1].RecordID != "h2" {
		t.Errorf("failures must carry row identity, got %v", result.Failures)
	}
	if result.Failures[1].Symbol != "ETH" {
		t.Errorf("failure must carry the symbol when known, got %v", result.Failures[1])
	}
	if result.CreatedCount() != 1 {
		t.Errorf("expected SOL still created, got %d", result.CreatedCount())
	}

	// Failed rows marked error, the healthy one synced.
	if lastStatus(store, "h1") != string(models.SyncStatusError) {
		t.Errorf("expected h1 error, got %q", lastStatus(store, "h1"))
	}
	if lastStatus(store, "h2") != string(models.SyncStatusError) {
		t.Errorf("expected h2 error, got %q", lastStatus(store, "h2"))
	}
	if lastStatus(store, "h3") != string(models.SyncStatusSynced) {
		t.Errorf("expected h3 synced, got %q", lastStatus(store, "h3"))
	}
}

func TestSyncSummariesCreateFailure(t *testing.T) {
	store := newMockStore()
	store.holdings = []models.Record{
		holdingsRow("h1", "BTC", "ledger-1"),
		holdingsRow("h2", "ETH", "ledger-1"),
	}
	store.createErr[0] = errors.New("rate limited")
	svc := newTestService(store)

	result, err := svc.SyncSummaries(context.Background())
	if err != nil {
		t.Fatalf("create failure must not abort the cycle: %v", err)
	}
	if result.FailedCount() != 1 || result.Failures[0].Symbol != "BTC" {
		t.Fatalf("expected BTC create failure recorded, got %v", result.Failures)
	}
	if result.CreatedCount() != 1 {
		t.Errorf("expected ETH still created, got %d", result.CreatedCount())
	}
	if lastStatus(store, "h1") != string(models.SyncStatusError) {
		t.Errorf("expected h1 error, got %q", lastStatus(store, "h1"))
	}
	if lastStatus(store, "h2") != string(models.SyncStatusSynced) {
		t.Errorf("expected h2 synced, got %q", lastStatus(store, "h2"))
	}
}

func TestSyncSummariesNoCandidates(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	result, err := svc.SyncSummaries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusSkipped {
		t.Errorf("expected skipped, got %s", result.Status)
	}
	if len(store.created) != 0 || len(store.updates) != 0 {
		t.Error("no candidates must mean no writes")
	}
}

func TestSyncSummariesIgnoresIncompleteExistingRows(t *testing.T) {
	store := newMockStore()
	store.holdings = []models.Record{holdingsRow("h1", "BTC", "ledger-1")}
	store.summaries = []models.Record{
		summaryRow("BTC", ""), // no ledger relation: not a usable key
		summaryRow("", "ledger-1"),
	}
	svc := newTestService(store)

	result, err := svc.SyncSummaries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CreatedCount() != 1 {
		t.Errorf("incomplete existing rows must not block creation, got %d created", result.CreatedCount())
	}
}
