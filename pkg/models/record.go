package models

import "time"

// RawRecord is one source row exactly as parsed: input header -> cell text.
type RawRecord map[string]string

// Severity classifies a validation issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationIssue is a single problem found while validating a record
type ValidationIssue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationResult is the outcome of validating one record against a mapping.
// CompletionPercentage is the share of required mapped fields that carry a
// value; type warnings never affect it.
type ValidationResult struct {
	Valid                bool              `json:"valid"`
	Errors               []ValidationIssue `json:"errors,omitempty"`
	Warnings             []ValidationIssue `json:"warnings,omitempty"`
	CompletionPercentage int               `json:"completion_percentage"`
}

// CanonicalRecord is one transformed listing: canonical field name -> typed
// value, plus ingestion metadata. The raw source row is retained for audit.
// After creation it is mutated only by the identity resolver (Identity) and
// by downstream persistence.
type CanonicalRecord struct {
	Fields     map[string]any    `json:"fields"`
	Unmapped   map[string]string `json:"unmapped,omitempty"`
	Raw        RawRecord         `json:"raw"`
	SourceFile string            `json:"source_file"`
	RowIndex   int               `json:"row_index"`
	CreatedAt  time.Time         `json:"created_at"`
	Validation ValidationResult  `json:"validation"`
	Identity   string            `json:"identity,omitempty"`
}

// StringField returns the trimmed string form of a canonical field value,
// or "" when the field is absent or not a string.
func (r *CanonicalRecord) StringField(name string) string {
	v, ok := r.Fields[name]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// SetIfEmpty writes a canonical field only when it has no value yet. Used by
// the address-parser fallback, which must never overwrite a direct mapping.
func (r *CanonicalRecord) SetIfEmpty(name string, value string) {
	if value == "" {
		return
	}
	if r.StringField(name) != "" {
		return
	}
	if _, ok := r.Fields[name]; ok {
		return
	}
	r.Fields[name] = value
}

// DuplicateReason is the reason code attached to a rejected duplicate
type DuplicateReason string

const (
	// DuplicateReasonExisting is a record whose identity is already known
	// from previously stored listings
	DuplicateReasonExisting DuplicateReason = "existing"
	// DuplicateReasonBatch is a record whose identity appeared earlier in
	// the same batch
	DuplicateReasonBatch DuplicateReason = "batch_duplicate"
)

// DuplicateNotice reports one rejected duplicate for UI/audit
type DuplicateNotice struct {
	IdentifyingInfo string          `json:"identifying_info"`
	Reason          DuplicateReason `json:"reason"`
}
