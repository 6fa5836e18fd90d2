// Package notionstore implements the document record store client used for
// the prices, holdings, snapshot, and summary datasets.
package notionstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Jason0asdjia/crypto-price-api/internal/common"
	"github.com/Jason0asdjia/crypto-price-api/internal/interfaces"
	"github.com/Jason0asdjia/crypto-price-api/internal/models"
)

const (
	DefaultBaseURL   = "https://api.notion.com"
	DefaultVersion   = "2022-06-28"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 3 // requests per second
)

// Client implements the RecordStore interface over the Notion HTTP API.
type Client struct {
	baseURL    string
	token      string
	version    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithVersion sets the API version header value
func WithVersion(version string) ClientOption {
	return func(c *Client) {
		if version != "" {
			c.version = version
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new record store client
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		version: DefaultVersion,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a record store API error.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("record store error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// doJSON issues one authenticated request and decodes the response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("record store request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(raw, resp.StatusCode),
			Endpoint:   path,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// extractErrorMessage pulls the message field from an error body, falling
// back to a generic HTTP error when the body isn't the expected shape.
func extractErrorMessage(body []byte, statusCode int) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return fmt.Sprintf("HTTP error: %d", statusCode)
}

// RetrieveDataSource resolves a database id to its first data-source id.
func (c *Client) RetrieveDataSource(ctx context.Context, databaseID string) (string, error) {
	var result struct {
		DataSources []struct {
			ID string `json:"id"`
		} `json:"data_sources"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/databases/"+databaseID, nil, &result); err != nil {
		return "", err
	}
	if len(result.DataSources) == 0 {
		return "", &models.SchemaError{
			Dataset: databaseID,
			Detail:  "database exposes no data sources",
		}
	}
	return result.DataSources[0].ID, nil
}

// QueryRecords returns all rows of a data source, following pagination. A
// nil filter returns every row.
func (c *Client) QueryRecords(ctx context.Context, dataSourceID string, filter models.RecordFilter) ([]models.Record, error) {
	path := "/v1/data_sources/" + dataSourceID + "/query"

	var records []models.Record
	cursor := ""
	for {
		payload := map[string]any{}
		if filter != nil {
			payload["filter"] = filter
		}
		if cursor != "" {
			payload["start_cursor"] = cursor
		}

		var page struct {
			Results    []models.Record `json:"results"`
			HasMore    bool            `json:"has_more"`
			NextCursor string          `json:"next_cursor"`
		}
		if err := c.doJSON(ctx, http.MethodPost, path, payload, &page); err != nil {
			return nil, err
		}

		records = append(records, page.Results...)
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	c.logger.Debug().Str("data_source", dataSourceID).Int("records", len(records)).Msg("query complete")
	return records, nil
}

// UpdateRecord applies a partial property update to one record.
func (c *Client) UpdateRecord(ctx context.Context, recordID string, patch map[string]models.Property) error {
	payload := map[string]any{"properties": patch}
	return c.doJSON(ctx, http.MethodPatch, "/v1/pages/"+recordID, payload, nil)
}

// CreateRecord appends a new row to a data source and returns its id.
func (c *Client) CreateRecord(ctx context.Context, dataSourceID string, properties map[string]models.Property) (string, error) {
	payload := map[string]any{
		"parent":     map[string]any{"data_source_id": dataSourceID},
		"properties": properties,
	}
	var result struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/pages", payload, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// Ensure Client implements RecordStore
var _ interfaces.RecordStore = (*Client)(nil)
