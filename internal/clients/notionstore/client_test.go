package notionstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Jason0asdjia/crypto-price-api/internal/models"
)

func TestRetrieveDataSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/databases/db-1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got == "" {
			t.Error("expected version header")
		}
		w.Write([]byte(`{"data_sources": [{"id": "ds-1"}, {"id": "ds-2"}]}`))
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL))

	id, err := client.RetrieveDataSource(context.Background(), "db-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "ds-1" {
		t.Errorf("expected first data source, got %q", id)
	}
}

func TestRetrieveDataSourceEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data_sources": []}`))
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL))

	_, err := client.RetrieveDataSource(context.Background(), "db-1")
	var schemaErr *models.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestQueryRecordsPagination(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/data_sources/ds-1/query" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)

		calls++
		switch calls {
		case 1:
			if payload["filter"] == nil {
				t.Error("expected filter in first request")
			}
			if _, ok := payload["start_cursor"]; ok {
				t.Error("first request must not carry a cursor")
			}
			w.Write([]byte(`{
				"results": [{"id": "r1", "properties": {}}],
				"has_more": true,
				"next_cursor": "cur-2"
			}`))
		case 2:
			if payload["start_cursor"] != "cur-2" {
				t.Errorf("expected cursor cur-2, got %v", payload["start_cursor"])
			}
			w.Write([]byte(`{
				"results": [{"id": "r2", "properties": {}}],
				"has_more": false,
				"next_cursor": null
			}`))
		default:
			t.Error("unexpected extra request")
		}
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL))

	records, err := client.QueryRecords(context.Background(), "ds-1",
		models.FilterNumberGreaterThan("Current Quantity", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records across pages, got %d", len(records))
	}
	if records[0].ID != "r1" || records[1].ID != "r2" {
		t.Errorf("unexpected record order: %s, %s", records[0].ID, records[1].ID)
	}
}

func TestUpdateRecordPartialPatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if r.URL.Path != "/v1/pages/rec-1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Properties map[string]json.RawMessage `json:"properties"`
		}
		json.Unmarshal(body, &payload)
		if len(payload.Properties) != 1 {
			t.Errorf("expected exactly one patched property, got %d", len(payload.Properties))
		}
		if _, ok := payload.Properties["Price"]; !ok {
			t.Error("expected Price in patch")
		}
		w.Write([]byte(`{"id": "rec-1"}`))
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL))

	err := client.UpdateRecord(context.Background(), "rec-1", map[string]models.Property{
		"Price": models.NewNumber(65000.0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/pages" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Parent map[string]string `json:"parent"`
		}
		json.Unmarshal(body, &payload)
		if payload.Parent["data_source_id"] != "ds-1" {
			t.Errorf("expected data source parent, got %v", payload.Parent)
		}
		w.Write([]byte(`{"id": "new-rec"}`))
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL))

	id, err := client.CreateRecord(context.Background(), "ds-1", map[string]models.Property{
		"Name": models.NewTitle("BTC"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "new-rec" {
		t.Errorf("expected new-rec, got %q", id)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"object": "error", "status": 404, "message": "Could not find database."}`))
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL))

	_, err := client.RetrieveDataSource(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Could not find database." {
		t.Errorf("expected upstream message, got %q", apiErr.Message)
	}
}
