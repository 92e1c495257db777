package models

import "time"

// BatchState is the lifecycle state of one ingest batch
type BatchState string

const (
	BatchStateUpload        BatchState = "upload"
	BatchStateParse         BatchState = "parse"
	BatchStateMappingReview BatchState = "mapping_review"
	BatchStateProcessing    BatchState = "processing"
	BatchStateComplete      BatchState = "complete"
)

// Progress counts rows through the processing stage. Updated after every row.
type Progress struct {
	Total      int `json:"total"`
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// RowError is one per-row failure captured during processing. It never
// aborts the batch; it is counted and reported.
type RowError struct {
	File    string `json:"file"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// FileError is a file-level parse failure. Fatal to that file only.
type FileError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// Batch is one user-initiated upload spanning one or more files, processed
// and reported as a unit.
type Batch struct {
	ID         string            `json:"id" db:"id"`
	TenantID   string            `json:"tenant_id" db:"tenant_id"`
	State      BatchState        `json:"state" db:"state"`
	Files      []string          `json:"files"`
	Mapping    *MappingResult    `json:"mapping,omitempty"`
	Progress   Progress          `json:"progress"`
	RowErrors  []RowError        `json:"row_errors,omitempty"`
	FileErrors []FileError       `json:"file_errors,omitempty"`
	Duplicates []DuplicateNotice `json:"duplicates,omitempty"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`
}

// BatchResponse wraps a single batch for the API
type BatchResponse struct {
	Batch Batch `json:"batch"`
}

// SubmitMappingRequest carries a corrected mapping back from manual review
type SubmitMappingRequest struct {
	Mappings []FieldMapping `json:"mappings" validate:"required,min=1,dive"`
}
