package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateDeterministic(t *testing.T) {
	data := map[string]any{
		"listPrice":  450000.0,
		"city":       "Austin",
		"bedrooms":   3.0,
		"photos":     []string{"https://p.net/1.jpg", "https://p.net/2.jpg"},
		"features":   []any{"pool", "garage"},
		"streetName": "Main",
	}

	assert.Equal(t, Generate(data), Generate(data))
}

func TestGenerateKeyOrderIndependent(t *testing.T) {
	a := map[string]any{"a": 1.0, "b": "x", "c": true}
	b := map[string]any{"c": true, "a": 1.0, "b": "x"}

	assert.Equal(t, Generate(a), Generate(b))
}

func TestGenerateDetectsValueChange(t *testing.T) {
	a := map[string]any{"listPrice": 450000.0}
	b := map[string]any{"listPrice": 455000.0}

	assert.True(t, HasChanged(Generate(a), Generate(b)))
	assert.False(t, HasChanged(Generate(a), Generate(a)))
}

func TestGenerateArrayOrderMatters(t *testing.T) {
	a := map[string]any{"photos": []string{"1", "2"}}
	b := map[string]any{"photos": []string{"2", "1"}}

	assert.NotEqual(t, Generate(a), Generate(b))
}

func TestGenerateNested(t *testing.T) {
	a := map[string]any{"outer": map[string]any{"x": 1.0, "y": 2.0}}
	b := map[string]any{"outer": map[string]any{"y": 2.0, "x": 1.0}}

	assert.Equal(t, Generate(a), Generate(b))
}
