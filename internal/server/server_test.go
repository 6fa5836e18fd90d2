package server

import (
	"context"
	"net/http/httptest"
	"time"

	"github.com/Jason0asdjia/crypto-price-api/internal/app"
	"github.com/Jason0asdjia/crypto-price-api/internal/cache"
	"github.com/Jason0asdjia/crypto-price-api/internal/common"
	"github.com/Jason0asdjia/crypto-price-api/internal/models"
)

const testToken = "test-secret"

// stub services with injectable outcomes.

type stubPriceSync struct {
	result *models.PriceSyncResult
	err    error
}

func (s *stubPriceSync) SyncPrices(ctx context.Context) (*models.PriceSyncResult, error) {
	return s.result, s.err
}

type stubSnapshot struct {
	snap *models.AccountSnapshot
	err  error
	tz   string
}

func (s *stubSnapshot) CreateSnapshot(ctx context.Context, timezone string) (*models.AccountSnapshot, error) {
	s.tz = timezone
	return s.snap, s.err
}

type stubSummary struct {
	result *models.SummarySyncResult
	err    error
}

func (s *stubSummary) SyncSummaries(ctx context.Context) (*models.SummarySyncResult, error) {
	return s.result, s.err
}

type testApp struct {
	app       *app.App
	priceSync *stubPriceSync
	snapshot  *stubSnapshot
	summary   *stubSummary
}

func newTestApp() *testApp {
	config := common.NewDefaultConfig()
	config.Clients.CMC.APIKey = "cmc-key"
	config.RecordStore.Token = "store-token"
	config.Datasets.Prices = "prices-db"
	config.Datasets.Holdings = "holdings-db"
	config.Datasets.Snapshots = "snapshots-db"
	config.Datasets.Summaries = "summaries-db"
	config.Auth.APIToken = testToken

	priceSync := &stubPriceSync{result: &models.PriceSyncResult{Status: "success"}}
	snapshot := &stubSnapshot{snap: &models.AccountSnapshot{Title: "Snapshot 2026-08-29 AM"}}
	summary := &stubSummary{result: &models.SummarySyncResult{Status: "success"}}

	return &testApp{
		app: &app.App{
			Config:      config,
			Logger:      common.NewSilentLogger(),
			Cache:       cache.NewMemoryCache(time.Hour),
			PriceSync:   priceSync,
			Snapshot:    snapshot,
			Summary:     summary,
			StartupTime: time.Now(),
		},
		priceSync: priceSync,
		snapshot:  snapshot,
		summary:   summary,
	}
}

func doRequest(ta *testApp, method, target string, authed bool) *httptest.ResponseRecorder {
	srv := NewServer(ta.app)
	req := httptest.NewRequest(method, target, nil)
	if authed {
		req.Header.Set(tokenHeader, testToken)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}
