package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/similarity"
)

func TestFields_VariationsScoreExact(t *testing.T) {
	// Every variation must score 1.0 against itself so a broker using the
	// exact phrase always maps at full confidence.
	scorer := similarity.NewScorer()
	for _, f := range Fields() {
		require.NotEmpty(t, f.Variations, "field %s has no variations", f.Name)
		for _, v := range f.Variations {
			assert.Equal(t, 1.0, scorer.Score(v, v), "field %s variation %q", f.Name, v)
		}
	}
}

func TestFields_NamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range Fields() {
		assert.False(t, seen[f.Name], "duplicate canonical name %s", f.Name)
		seen[f.Name] = true
	}
}

func TestRequiredFields(t *testing.T) {
	required := RequiredFields()
	require.NotEmpty(t, required)
	for _, f := range required {
		assert.True(t, f.Required)
	}

	names := make([]string, 0, len(required))
	for _, f := range required {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, FieldListPrice)
	assert.Contains(t, names, FieldCity)
	assert.Contains(t, names, FieldState)
	assert.Contains(t, names, FieldZipCode)
	assert.Contains(t, names, FieldStreetName)
}

func TestByName(t *testing.T) {
	f, ok := ByName(FieldListPrice)
	require.True(t, ok)
	assert.Equal(t, models.DataTypeNumber, f.Type)
	assert.True(t, f.Required)

	_, ok = ByName("noSuchField")
	assert.False(t, ok)
}
