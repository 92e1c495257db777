package models

// DataType is the declared type of a canonical listing field
type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeNumber  DataType = "number"
	DataTypeBoolean DataType = "boolean"
	DataTypeDate    DataType = "date"
	DataTypeArray   DataType = "array"
)

// FieldDefinition describes one canonical listing field and the header
// variations brokers use for it. The full set forms the field catalog,
// defined once at process start and never mutated.
type FieldDefinition struct {
	Name       string   `json:"name"`
	Variations []string `json:"variations"`
	Required   bool     `json:"required"`
	Type       DataType `json:"type"`
	Category   string   `json:"category"`
}

// FieldMapping binds one observed input header to one catalog field.
// Within a batch the binding is bijective: a header claims at most one
// field and a field is claimed by at most one header.
type FieldMapping struct {
	InputHeader string          `json:"input_header"`
	Field       FieldDefinition `json:"field"`
	Confidence  float64         `json:"confidence"`
	Required    bool            `json:"required"`
}

// MappingResult is the outcome of matching a batch's combined header set
// against the field catalog. Recomputed per batch, never persisted beyond
// the batch row.
type MappingResult struct {
	Mappings              []FieldMapping    `json:"mappings"`
	UnmappedHeaders       []string          `json:"unmapped_headers"`
	MissingRequiredFields []FieldDefinition `json:"missing_required_fields"`
}

// NeedsReview reports whether the mapping should go through manual review
// before processing: any required field is uncovered, or any accepted
// mapping sits below the stricter review threshold.
func (r *MappingResult) NeedsReview(reviewThreshold float64) bool {
	if len(r.MissingRequiredFields) > 0 {
		return true
	}
	for _, m := range r.Mappings {
		if m.Confidence < reviewThreshold {
			return true
		}
	}
	return false
}

// MappingFor returns the mapping that claimed the given canonical field,
// or nil when the field is unmapped.
func (r *MappingResult) MappingFor(canonicalName string) *FieldMapping {
	for i := range r.Mappings {
		if r.Mappings[i].Field.Name == canonicalName {
			return &r.Mappings[i]
		}
	}
	return nil
}
