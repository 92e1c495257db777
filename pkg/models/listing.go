package models

import (
	"encoding/json"
	"time"
)

// StagedListing is an accepted canonical record staged in Postgres. The
// identity column doubles as the dedup ledger for later batches; status
// transitions (draft -> live) belong to the downstream store.
type StagedListing struct {
	ID          string          `json:"id" db:"id"`
	TenantID    string          `json:"tenant_id" db:"tenant_id"`
	BatchID     string          `json:"batch_id" db:"batch_id"`
	Identity    string          `json:"identity" db:"identity"`
	MLSNumber   string          `json:"mls_number" db:"mls_number"`
	Data        json.RawMessage `json:"data" db:"data"`
	Raw         json.RawMessage `json:"raw" db:"raw"`
	SourceFile  string          `json:"source_file" db:"source_file"`
	RowIndex    int             `json:"row_index" db:"row_index"`
	Fingerprint string          `json:"fingerprint" db:"fingerprint"`
	Completion  int             `json:"completion" db:"completion"`
	Status      string          `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// StagedListingListResponse is the response for listing staged listings
type StagedListingListResponse struct {
	Items      []StagedListing `json:"items"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}
