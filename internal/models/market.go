package models

import "encoding/json"

// QuoteResponse is the upstream batch quote payload. Per-symbol entries are
// kept raw because the shape varies (ordered list vs legacy keyed map); the
// field extractor resolves them.
type QuoteResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Status QuoteStatus                `json:"status"`
}

// QuoteStatus is the upstream response envelope status.
type QuoteStatus struct {
	Timestamp    string `json:"timestamp"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// Price sources recorded per symbol for observability.
const (
	PriceSourceCache = "cache" // served from a fresh cache entry
	PriceSourceFresh = "fresh" // fetched from the upstream batch request
	PriceSourceStale = "stale" // expired cache entry used as fallback
)

// PriceRecord is the per-symbol outcome of one sync cycle. A nil field
// means the value is absent this cycle (fetch or extraction failed); absent
// is never coerced to zero.
type PriceRecord struct {
	Symbol    string   `json:"symbol"`
	Price     *float64 `json:"price,omitempty"`
	Change24H *float64 `json:"change_24h,omitempty"`
	Source    string   `json:"source,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Absent reports whether no value at all was resolved for the symbol.
func (p *PriceRecord) Absent() bool {
	return p.Price == nil && p.Change24H == nil
}

// PriceSyncResult is the aggregate outcome of one price-sync cycle.
type PriceSyncResult struct {
	Status  string                  `json:"status"`
	Message string                  `json:"message,omitempty"`
	Updated int                     `json:"updated"`
	Symbols []string                `json:"symbols,omitempty"`
	Prices  map[string]*PriceRecord `json:"prices,omitempty"`
}
