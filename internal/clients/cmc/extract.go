package cmc

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Jason0asdjia/crypto-price-api/internal/models"
)

// Quote field names used by the sync pipeline.
const (
	FieldPrice     = "price"
	FieldChange24H = "percent_change_24h"
)

// SymbolNotFoundError indicates the symbol key is absent from the response
// data, or its entry set is empty.
type SymbolNotFoundError struct {
	Symbol string
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("symbol %s not present in response data", e.Symbol)
}

// FieldMissingError indicates the requested field is absent (or null) in
// the selected entry's USD quote.
type FieldMissingError struct {
	Symbol string
	Field  string
}

func (e *FieldMissingError) Error() string {
	return fmt.Sprintf("quote field %q missing for symbol %s", e.Field, e.Symbol)
}

// MalformedPayloadError indicates the per-symbol value is neither an
// ordered entry list nor a legacy keyed entry map.
type MalformedPayloadError struct {
	Symbol string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("unexpected payload shape for symbol %s", e.Symbol)
}

// quoteEntry is one coin entry within a symbol's payload. Values stay as
// pointers so a null field is distinguishable from zero.
type quoteEntry struct {
	Quote map[string]map[string]*float64 `json:"quote"`
}

// ExtractField returns the named numeric field from a symbol's primary
// quote entry. The per-symbol payload is either an ordered entry list (take
// the first) or a legacy map keyed by small ordinal strings (take the entry
// whose key sorts lowest numerically; non-numeric keys sort last). Pure
// lookup, no side effects.
func ExtractField(resp *models.QuoteResponse, symbol, field string) (float64, error) {
	raw, ok := resp.Data[symbol]
	if !ok {
		return 0, &SymbolNotFoundError{Symbol: symbol}
	}

	entry, err := selectEntry(raw, symbol)
	if err != nil {
		return 0, err
	}

	usd, ok := entry.Quote["USD"]
	if !ok {
		return 0, &FieldMissingError{Symbol: symbol, Field: field}
	}
	value, ok := usd[field]
	if !ok || value == nil {
		return 0, &FieldMissingError{Symbol: symbol, Field: field}
	}

	return *value, nil
}

// selectEntry resolves the list-vs-map union to a single entry.
func selectEntry(raw json.RawMessage, symbol string) (*quoteEntry, error) {
	var list []quoteEntry
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil, &SymbolNotFoundError{Symbol: symbol}
		}
		return &list[0], nil
	}

	var keyed map[string]quoteEntry
	if err := json.Unmarshal(raw, &keyed); err == nil {
		if len(keyed) == 0 {
			return nil, &SymbolNotFoundError{Symbol: symbol}
		}
		best := ""
		for key := range keyed {
			if best == "" || keyLess(key, best) {
				best = key
			}
		}
		entry := keyed[best]
		return &entry, nil
	}

	return nil, &MalformedPayloadError{Symbol: symbol}
}

// keyLess orders legacy map keys numerically, non-numeric keys last.
func keyLess(a, b string) bool {
	return keyRank(a) < keyRank(b)
}

func keyRank(key string) int {
	n, err := strconv.Atoi(key)
	if err != nil {
		return 1 << 30
	}
	return n
}
