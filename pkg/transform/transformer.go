// Package transform builds canonical listing records from raw rows using a
// batch's field mapping
package transform

import (
	"sort"
	"strings"
	"time"

	"github.com/Ramsey-B/fern/pkg/address"
	"github.com/Ramsey-B/fern/pkg/catalog"
	"github.com/Ramsey-B/fern/pkg/coerce"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/similarity"
)

// addressSynonyms are the header phrases that mark a column as a free-text
// full address, used only for the address-parser fallback
var addressSynonyms = []string{
	"address",
	"street address",
	"property address",
	"full address",
	"location",
	"addr",
}

// addressColumnThreshold is the minimum similarity for a raw column to be
// treated as address-like
const addressColumnThreshold = 0.7

// Transformer converts raw rows into canonical records. It is stateless and
// safe for concurrent use.
type Transformer struct {
	scorer *similarity.Scorer
}

// New creates a Transformer
func New() *Transformer {
	return &Transformer{scorer: similarity.NewScorer()}
}

// Transform applies the batch mapping to one raw row. Values are coerced to
// each field's declared type; unmapped columns are retained for audit but
// never populate canonical fields. When the street components are not fully
// covered by direct mappings, the best address-like raw column is parsed and
// fills only the still-empty slots.
func (t *Transformer) Transform(raw models.RawRecord, mapping models.MappingResult, sourceFile string, rowIndex int) *models.CanonicalRecord {
	rec := &models.CanonicalRecord{
		Fields:     make(map[string]any, len(mapping.Mappings)),
		Raw:        raw,
		SourceFile: sourceFile,
		RowIndex:   rowIndex,
		CreatedAt:  time.Now().UTC(),
	}

	mapped := make(map[string]bool, len(mapping.Mappings))
	for _, m := range mapping.Mappings {
		mapped[m.InputHeader] = true

		value := strings.TrimSpace(raw[m.InputHeader])
		if value == "" {
			continue
		}

		if coerced, ok := t.coerceValue(m.Field, value); ok {
			rec.Fields[m.Field.Name] = coerced
		}
	}

	for header, value := range raw {
		if mapped[header] {
			continue
		}
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			if rec.Unmapped == nil {
				rec.Unmapped = make(map[string]string)
			}
			rec.Unmapped[header] = trimmed
		}
	}

	t.applyAddressFallback(rec, raw)

	return rec
}

// coerceValue converts a non-empty cell to the field's declared type. The
// second return is false when the value should be omitted: unparseable
// optional numerics, booleans, and dates are dropped rather than guessed.
// Required numeric fields keep the record shape stable by defaulting to 0.
func (t *Transformer) coerceValue(field models.FieldDefinition, value string) (any, bool) {
	switch field.Type {
	case models.DataTypeNumber:
		n, err := coerce.Number(value)
		if err != nil {
			if field.Required {
				return 0.0, true
			}
			return nil, false
		}
		return n, true
	case models.DataTypeBoolean:
		b, err := coerce.Bool(value)
		if err != nil {
			return nil, false
		}
		return b, true
	case models.DataTypeDate:
		d, err := coerce.Date(value)
		if err != nil {
			return nil, false
		}
		return d, true
	case models.DataTypeArray:
		values := coerce.List(value)
		if field.Name == catalog.FieldPhotos {
			values = SanitizePhotoURLs(values)
		}
		if len(values) == 0 {
			return nil, false
		}
		return values, true
	default:
		return value, true
	}
}

// applyAddressFallback parses the best address-like raw column when any of
// the street components is still empty. Direct mappings always win; parsed
// components only fill empty slots.
func (t *Transformer) applyAddressFallback(rec *models.CanonicalRecord, raw models.RawRecord) {
	if rec.StringField(catalog.FieldStreetNumber) != "" &&
		rec.StringField(catalog.FieldStreetName) != "" &&
		rec.StringField(catalog.FieldStreetSuffix) != "" {
		return
	}

	value := t.bestAddressColumn(raw)
	if value == "" {
		return
	}

	parsed := address.Parse(value)
	rec.SetIfEmpty(catalog.FieldStreetNumber, parsed.StreetNumber)
	rec.SetIfEmpty(catalog.FieldStreetName, parsed.StreetName)
	rec.SetIfEmpty(catalog.FieldStreetSuffix, parsed.StreetSuffix)
}

// bestAddressColumn returns the value of the raw column whose header scores
// highest against the address synonyms, or "" when nothing clears the
// threshold or the winning cell is empty.
func (t *Transformer) bestAddressColumn(raw models.RawRecord) string {
	// Sorted header walk keeps the winner deterministic on score ties
	headers := make([]string, 0, len(raw))
	for header := range raw {
		headers = append(headers, header)
	}
	sort.Strings(headers)

	bestScore := addressColumnThreshold
	bestValue := ""

	for _, header := range headers {
		value := strings.TrimSpace(raw[header])
		if value == "" {
			continue
		}
		for _, synonym := range addressSynonyms {
			if score := t.scorer.Score(header, synonym); score > bestScore {
				bestScore = score
				bestValue = value
			}
		}
	}

	return bestValue
}
