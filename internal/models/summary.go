package models

// RowFailure records one holdings row whose reconciliation failed, carrying
// the row's identity so the failure is attributable without any surrounding
// loop state.
type RowFailure struct {
	RecordID string `json:"record_id"`
	Symbol   string `json:"symbol,omitempty"`
	Reason   string `json:"reason"`
}

// SummarySyncResult is the aggregate outcome of one summary reconciliation.
type SummarySyncResult struct {
	Status    string       `json:"status"`
	Message   string       `json:"message,omitempty"`
	Processed int          `json:"processed"`
	Created   []string     `json:"created,omitempty"`
	Skipped   int          `json:"skipped"`
	Failures  []RowFailure `json:"failed,omitempty"`
}

// CreatedCount returns the number of summary rows created this cycle.
func (r *SummarySyncResult) CreatedCount() int { return len(r.Created) }

// FailedCount returns the number of rows that failed this cycle.
func (r *SummarySyncResult) FailedCount() int { return len(r.Failures) }
