package coerce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  bool
	}{
		{name: "plain integer", input: "450000", expected: 450000},
		{name: "decimal", input: "2.5", expected: 2.5},
		{name: "currency with commas", input: "$450,000", expected: 450000},
		{name: "currency with cents", input: "$1,250.50", expected: 1250.50},
		{name: "percent", input: "3.5%", expected: 3.5},
		{name: "negative", input: "-12", expected: -12},
		{name: "internal space", input: "$ 450,000", expected: 450000},
		{name: "empty", input: "", wantErr: true},
		{name: "not a number", input: "call for price", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Number(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestBool(t *testing.T) {
	for _, truthy := range []string{"true", "Yes", "Y", "1", "T"} {
		b, err := Bool(truthy)
		require.NoError(t, err)
		assert.True(t, b, truthy)
	}
	for _, falsy := range []string{"false", "No", "n", "0", "F"} {
		b, err := Bool(falsy)
		require.NoError(t, err)
		assert.False(t, b, falsy)
	}
	_, err := Bool("maybe")
	assert.Error(t, err)
}

func TestDate(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2025-06-15", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"6/15/2025", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"06/15/2025", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"Jun 15, 2025", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			parsed, err := Date(tt.input)
			require.NoError(t, err)
			assert.True(t, parsed.Equal(tt.expected))
		})
	}

	_, err := Date("not a date")
	assert.Error(t, err)
	_, err = Date("")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "commas", input: "pool, garage, deck", expected: []string{"pool", "garage", "deck"}},
		{name: "semicolons", input: "a;b;c", expected: []string{"a", "b", "c"}},
		{name: "pipes", input: "a|b", expected: []string{"a", "b"}},
		{name: "newlines", input: "a\nb\r\nc", expected: []string{"a", "b", "c"}},
		{name: "drops empties", input: "a,,b, ,c", expected: []string{"a", "b", "c"}},
		{name: "empty input", input: "", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, List(tt.input))
		})
	}
}
