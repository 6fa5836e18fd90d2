package models

// SyncStatus is the reconciliation state of a holdings row. The empty
// string means the status property has never been set.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusError   SyncStatus = "error"
)

// SnapshotSourceAPI tags snapshot records created by this service.
const SnapshotSourceAPI = "API"

// AccountSnapshot is one append-only aggregate of the holdings dataset.
// Money fields are rounded to 4 decimals before writing.
type AccountSnapshot struct {
	Title            string  `json:"title"`
	Timestamp        string  `json:"timestamp"` // ISO-8601 with offset
	Timezone         string  `json:"timezone"`
	TotalMarketValue float64 `json:"total_market_value"`
	TotalInvested    float64 `json:"total_invested"`
	TotalPnL         float64 `json:"total_pnl"`
	AssetCount       int     `json:"asset_count"`
	Source           string  `json:"source"`
}
