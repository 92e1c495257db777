// Package mapper matches spreadsheet headers to catalog fields using
// similarity scoring
package mapper

import (
	"github.com/Ramsey-B/fern/pkg/catalog"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/similarity"
)

// Mapper assigns input headers to catalog fields
type Mapper struct {
	scorer *similarity.Scorer
	fields []models.FieldDefinition
}

// New creates a Mapper over the full field catalog
func New() *Mapper {
	return &Mapper{
		scorer: similarity.NewScorer(),
		fields: catalog.Fields(),
	}
}

// MapHeaders maps each header to its best-scoring unused catalog field.
// Headers are processed in file order, so when two headers compete for the
// same field the earlier header keeps it. Within a header, ties between
// fields resolve to the field that appears first in the catalog. Headers
// whose best score falls below threshold are reported as unmapped.
func (m *Mapper) MapHeaders(headers []string, threshold float64) models.MappingResult {
	result := models.MappingResult{}
	used := make(map[string]bool, len(headers))

	for _, header := range headers {
		best, score := m.bestMatch(header, used)
		if best == nil || score < threshold {
			result.UnmappedHeaders = append(result.UnmappedHeaders, header)
			continue
		}

		used[best.Name] = true
		result.Mappings = append(result.Mappings, models.FieldMapping{
			InputHeader: header,
			Field:       *best,
			Confidence:  score,
			Required:    best.Required,
		})
	}

	for _, field := range catalog.RequiredFields() {
		if !used[field.Name] {
			result.MissingRequiredFields = append(result.MissingRequiredFields, field)
		}
	}

	return result
}

// bestMatch scores header against every unused field's variations and
// returns the winner. A later field must score strictly higher to displace
// the current best.
func (m *Mapper) bestMatch(header string, used map[string]bool) (*models.FieldDefinition, float64) {
	var best *models.FieldDefinition
	bestScore := 0.0

	for i := range m.fields {
		field := &m.fields[i]
		if used[field.Name] {
			continue
		}

		for _, variation := range field.Variations {
			score := m.scorer.Score(header, variation)
			if score > bestScore {
				best = field
				bestScore = score
			}
		}
	}

	return best, bestScore
}
