package validate

import (
	"testing"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapping(header, name string, required bool, dataType models.DataType) models.FieldMapping {
	return models.FieldMapping{
		InputHeader: header,
		Field: models.FieldDefinition{
			Name:     name,
			Required: required,
			Type:     dataType,
		},
		Confidence: 1.0,
		Required:   required,
	}
}

func TestValidateAllRequiredPresent(t *testing.T) {
	v := New()

	mappings := []models.FieldMapping{
		mapping("City", "city", true, models.DataTypeString),
		mapping("Price", "listPrice", true, models.DataTypeNumber),
	}
	raw := models.RawRecord{"City": "Austin", "Price": "450000"}

	result := v.Validate(raw, mappings)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 100, result.CompletionPercentage)
}

func TestValidateMissingRequired(t *testing.T) {
	v := New()

	mappings := []models.FieldMapping{
		mapping("Street", "streetName", true, models.DataTypeString),
		mapping("City", "city", true, models.DataTypeString),
		mapping("State", "state", true, models.DataTypeString),
		mapping("Price", "listPrice", true, models.DataTypeNumber),
	}
	raw := models.RawRecord{
		"Street": "Main",
		"City":   "Austin",
		"State":  "TX",
		"Price":  "   ",
	}

	result := v.Validate(raw, mappings)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "listPrice", result.Errors[0].Field)
	assert.Equal(t, models.SeverityError, result.Errors[0].Severity)
	assert.Equal(t, 75, result.CompletionPercentage)
}

func TestValidateTypeWarnings(t *testing.T) {
	v := New()

	mappings := []models.FieldMapping{
		mapping("Price", "listPrice", true, models.DataTypeNumber),
		mapping("Listed", "listDate", false, models.DataTypeDate),
		mapping("Pool", "hasPool", false, models.DataTypeBoolean),
	}
	raw := models.RawRecord{
		"Price":  "call for price",
		"Listed": "sometime in june",
		"Pool":   "maybe",
	}

	result := v.Validate(raw, mappings)

	// Warnings never invalidate or change completion
	assert.True(t, result.Valid)
	assert.Len(t, result.Warnings, 3)
	assert.Equal(t, 100, result.CompletionPercentage)
}

func TestValidateNumericFormats(t *testing.T) {
	v := New()

	mappings := []models.FieldMapping{mapping("Price", "listPrice", true, models.DataTypeNumber)}
	raw := models.RawRecord{"Price": "$1,250,000"}

	result := v.Validate(raw, mappings)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)
}

func TestValidateNoRequiredMappings(t *testing.T) {
	v := New()

	mappings := []models.FieldMapping{
		mapping("Remarks", "publicRemarks", false, models.DataTypeString),
	}

	result := v.Validate(models.RawRecord{}, mappings)

	assert.True(t, result.Valid)
	assert.Equal(t, 100, result.CompletionPercentage)
}

func TestValidateOptionalEmptyValuesSkipTypeCheck(t *testing.T) {
	v := New()

	mappings := []models.FieldMapping{
		mapping("Taxes", "taxAnnualAmount", false, models.DataTypeNumber),
	}
	raw := models.RawRecord{"Taxes": ""}

	result := v.Validate(raw, mappings)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)
}
