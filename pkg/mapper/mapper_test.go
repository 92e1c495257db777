package mapper

import (
	"testing"

	"github.com/Ramsey-B/fern/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threshold = 0.65

func TestMapHeadersExactMatches(t *testing.T) {
	m := New()

	result := m.MapHeaders([]string{"MLS Number", "City", "State", "Zip Code", "List Price"}, threshold)

	require.Len(t, result.Mappings, 5)
	assert.Empty(t, result.UnmappedHeaders)

	byHeader := make(map[string]string)
	for _, mapping := range result.Mappings {
		byHeader[mapping.InputHeader] = mapping.Field.Name
		assert.Equal(t, 1.0, mapping.Confidence)
	}
	assert.Equal(t, catalog.FieldMLSNumber, byHeader["MLS Number"])
	assert.Equal(t, catalog.FieldZipCode, byHeader["Zip Code"])
}

func TestMapHeadersVariations(t *testing.T) {
	m := New()

	tests := []struct {
		header   string
		expected string
	}{
		{header: "MLS#", expected: catalog.FieldMLSNumber},
		{header: "Asking Price", expected: catalog.FieldListPrice},
		{header: "Postal Code", expected: catalog.FieldZipCode},
		{header: "Town", expected: catalog.FieldCity},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			result := m.MapHeaders([]string{tt.header}, threshold)
			require.Len(t, result.Mappings, 1)
			assert.Equal(t, tt.expected, result.Mappings[0].Field.Name)
		})
	}
}

func TestMapHeadersBijective(t *testing.T) {
	m := New()

	// Both headers match listPrice variations; the earlier header keeps it
	result := m.MapHeaders([]string{"List Price", "Listing Price"}, threshold)

	require.Len(t, result.Mappings, 1)
	assert.Equal(t, "List Price", result.Mappings[0].InputHeader)
	assert.Equal(t, catalog.FieldListPrice, result.Mappings[0].Field.Name)
	assert.Equal(t, []string{"Listing Price"}, result.UnmappedHeaders)
}

func TestMapHeadersSecondHeaderFallsToNextField(t *testing.T) {
	m := New()

	// "Price" maps to listPrice; "Original Price" still has its own field
	result := m.MapHeaders([]string{"Price", "Original Price"}, threshold)

	require.Len(t, result.Mappings, 2)
	assert.Equal(t, catalog.FieldListPrice, result.Mappings[0].Field.Name)
	assert.Equal(t, "originalPrice", result.Mappings[1].Field.Name)
}

func TestMapHeadersUnmapped(t *testing.T) {
	m := New()

	result := m.MapHeaders([]string{"Zebra Quotient"}, threshold)

	assert.Empty(t, result.Mappings)
	assert.Equal(t, []string{"Zebra Quotient"}, result.UnmappedHeaders)
}

func TestMapHeadersMissingRequired(t *testing.T) {
	m := New()

	result := m.MapHeaders([]string{"City", "State"}, threshold)

	missing := make([]string, 0, len(result.MissingRequiredFields))
	for _, field := range result.MissingRequiredFields {
		missing = append(missing, field.Name)
	}
	assert.Contains(t, missing, catalog.FieldStreetName)
	assert.Contains(t, missing, catalog.FieldZipCode)
	assert.Contains(t, missing, catalog.FieldListPrice)
	assert.NotContains(t, missing, catalog.FieldCity)
	assert.NotContains(t, missing, catalog.FieldState)
}

func TestMapHeadersAllRequiredPresent(t *testing.T) {
	m := New()

	result := m.MapHeaders(
		[]string{"Street Name", "City", "State", "Zip", "List Price", "Property Type"},
		threshold,
	)

	assert.Empty(t, result.MissingRequiredFields)
	assert.Empty(t, result.UnmappedHeaders)
}

func TestNeedsReview(t *testing.T) {
	m := New()

	// A fuzzy header should yield sub-1.0 confidence and trip review
	result := m.MapHeaders([]string{"Zip Cod", "City"}, threshold)
	require.Len(t, result.Mappings, 2)
	assert.True(t, result.NeedsReview(0.96))

	clean := m.MapHeaders(
		[]string{"Street Name", "City", "State", "Zip", "List Price", "Property Type"},
		threshold,
	)
	assert.False(t, clean.NeedsReview(0.8))
}
