// Package pricesync implements the cache-backed price synchronization cycle:
// symbol registry, batched upstream fetch, and partial record updates.
package pricesync

import (
	"strings"

	"github.com/Jason0asdjia/crypto-price-api/internal/models"
)

// SymbolProperty is the rich_text property on the prices dataset holding
// each row's ticker symbol.
const SymbolProperty = "Symbol"

// Registry maps canonical symbols to their record ids for one sync cycle.
// Built fresh per cycle and threaded explicitly through the sync; nothing
// is kept between cycles.
type Registry struct {
	Symbols []string          // canonical symbols in row order, deduplicated
	Records map[string]string // symbol -> record id
}

// BuildRegistry extracts canonical symbols from the prices dataset rows.
// Rows with a missing, empty, or whitespace-only symbol property are
// skipped. Duplicate symbols resolve last-wins. Returns ErrNoSymbols when
// no row yields a usable symbol.
func BuildRegistry(rows []models.Record) (*Registry, error) {
	reg := &Registry{
		Records: make(map[string]string),
	}

	for _, row := range rows {
		prop, ok := row.Properties[SymbolProperty]
		if !ok {
			continue
		}
		symbol := strings.ToUpper(strings.TrimSpace(prop.PlainText()))
		if symbol == "" {
			continue
		}
		if _, seen := reg.Records[symbol]; !seen {
			reg.Symbols = append(reg.Symbols, symbol)
		}
		reg.Records[symbol] = row.ID
	}

	if len(reg.Symbols) == 0 {
		return nil, models.ErrNoSymbols
	}
	return reg, nil
}
