package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Jason0asdjia/crypto-price-api/internal/clients/cmc"
	"github.com/Jason0asdjia/crypto-price-api/internal/clients/notionstore"
	"github.com/Jason0asdjia/crypto-price-api/internal/models"
)

// handleSyncPrices handles GET /api/sync/prices.
func (s *Server) handleSyncPrices(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if missing := s.app.Config.Validate(); len(missing) > 0 {
		writeConfigMissing(w, missing)
		return
	}

	result, err := s.app.PriceSync.SyncPrices(r.Context())
	if err != nil {
		s.writeSyncError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleSyncSnapshot handles GET /api/sync/snapshot?timezone=.
func (s *Server) handleSyncSnapshot(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	missing := s.app.Config.ValidateHoldings()
	if s.app.Config.Datasets.Snapshots == "" {
		missing = append(missing, "datasets.snapshots")
	}
	if len(missing) > 0 {
		writeConfigMissing(w, missing)
		return
	}

	snap, err := s.app.Snapshot.CreateSnapshot(r.Context(), r.URL.Query().Get("timezone"))
	if err != nil {
		s.writeSyncError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"snapshot": snap,
	})
}

// handleSyncSummary handles GET /api/sync/summary.
func (s *Server) handleSyncSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	missing := s.app.Config.ValidateHoldings()
	if s.app.Config.Datasets.Summaries == "" {
		missing = append(missing, "datasets.summaries")
	}
	if len(missing) > 0 {
		writeConfigMissing(w, missing)
		return
	}

	result, err := s.app.Summary.SyncSummaries(r.Context())
	if err != nil {
		s.writeSyncError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// writeConfigMissing reports absent required configuration distinctly from
// runtime failures; nothing was attempted.
func writeConfigMissing(w http.ResponseWriter, missing []string) {
	WriteErrorWithCode(w, http.StatusInternalServerError,
		"Missing configuration: "+strings.Join(missing, ", "), "config_missing")
}

// writeSyncError maps the error taxonomy onto status codes: market-data API
// errors keep the upstream status, record-store errors surface as 502,
// schema faults are a distinct 500, and a bad timezone is the caller's 400.
func (s *Server) writeSyncError(w http.ResponseWriter, err error) {
	var cmcErr *cmc.APIError
	if errors.As(err, &cmcErr) {
		WriteErrorWithCode(w, cmcErr.StatusCode, "Market data API error: "+cmcErr.Message, "upstream_error")
		return
	}

	var storeErr *notionstore.APIError
	if errors.As(err, &storeErr) {
		WriteErrorWithCode(w, http.StatusBadGateway, "Record store error: "+storeErr.Message, "record_store_error")
		return
	}

	var schemaErr *models.SchemaError
	if errors.As(err, &schemaErr) {
		WriteErrorWithCode(w, http.StatusInternalServerError, schemaErr.Error(), "schema_error")
		return
	}

	var tzErr *models.InvalidTimezoneError
	if errors.As(err, &tzErr) {
		WriteError(w, http.StatusBadRequest, tzErr.Error())
		return
	}

	s.logger.Error().Err(err).Msg("sync request failed")
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}
