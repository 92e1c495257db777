// Package validate checks raw records against a batch's field mapping
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/Ramsey-B/fern/pkg/coerce"
	"github.com/Ramsey-B/fern/pkg/models"
)

// Validator applies required-field and type-conformance checks to raw
// records. It is stateless and safe for concurrent use.
type Validator struct{}

// New creates a Validator
func New() *Validator {
	return &Validator{}
}

// Validate checks one raw record against the batch mapping. Missing required
// values are errors; type mismatches are warnings and never affect the
// completion percentage. A record with no required mappings completes at 100.
func (v *Validator) Validate(raw models.RawRecord, mappings []models.FieldMapping) models.ValidationResult {
	result := models.ValidationResult{}

	requiredTotal := 0
	requiredPresent := 0

	for _, mapping := range mappings {
		value := strings.TrimSpace(raw[mapping.InputHeader])

		if mapping.Required {
			requiredTotal++
			if value == "" {
				result.Errors = append(result.Errors, models.ValidationIssue{
					Field:    mapping.Field.Name,
					Message:  fmt.Sprintf("required field %q has no value", mapping.Field.Name),
					Severity: models.SeverityError,
				})
				continue
			}
			requiredPresent++
		}

		if value == "" {
			continue
		}

		if issue := typeIssue(mapping.Field, value); issue != nil {
			result.Warnings = append(result.Warnings, *issue)
		}
	}

	if requiredTotal == 0 {
		result.CompletionPercentage = 100
	} else {
		result.CompletionPercentage = int(math.Round(100 * float64(requiredPresent) / float64(requiredTotal)))
	}
	result.Valid = len(result.Errors) == 0

	return result
}

func typeIssue(field models.FieldDefinition, value string) *models.ValidationIssue {
	switch field.Type {
	case models.DataTypeNumber:
		if _, err := coerce.Number(value); err != nil {
			return &models.ValidationIssue{
				Field:    field.Name,
				Message:  fmt.Sprintf("expected a number for %q, got %q", field.Name, value),
				Severity: models.SeverityWarning,
			}
		}
	case models.DataTypeDate:
		if _, err := coerce.Date(value); err != nil {
			return &models.ValidationIssue{
				Field:    field.Name,
				Message:  fmt.Sprintf("expected a date for %q, got %q", field.Name, value),
				Severity: models.SeverityWarning,
			}
		}
	case models.DataTypeBoolean:
		if _, err := coerce.Bool(value); err != nil {
			return &models.ValidationIssue{
				Field:    field.Name,
				Message:  fmt.Sprintf("expected a boolean for %q, got %q", field.Name, value),
				Severity: models.SeverityWarning,
			}
		}
	}
	return nil
}
