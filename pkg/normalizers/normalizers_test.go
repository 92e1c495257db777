package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		normalizer string
		expected   string
	}{
		{name: "lowercase", value: "HELLO World", normalizer: "lowercase", expected: "hello world"},
		{name: "uppercase", value: "hello", normalizer: "uppercase", expected: "HELLO"},
		{name: "trim", value: "  hello  ", normalizer: "trim", expected: "hello"},
		{name: "digits only", value: "abc123def456", normalizer: "digits_only", expected: "123456"},
		{name: "alphanumeric", value: "MLS# 100-22", normalizer: "alphanumeric", expected: "MLS10022"},
		{name: "collapse whitespace", value: "  a   b\tc  ", normalizer: "collapse_whitespace", expected: "a b c"},
		{name: "unknown normalizer passes through", value: "hello", normalizer: "bogus", expected: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Apply(tt.value, tt.normalizer))
		})
	}
}

func TestApplyChain(t *testing.T) {
	result := ApplyChain("  MLS# 100-22  ", "trim", "alphanumeric", "lowercase")
	assert.Equal(t, "mls10022", result)
}

func TestNormalizeMLSNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"MLS# 100-22", "MLS10022"},
		{"mls10022", "MLS10022"},
		{"  abc-123  ", "ABC123"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeMLSNumber(tt.input))
		})
	}
}

func TestNormalizeZipCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"78701", "78701"},
		{"78701-1234", "78701"},
		{"787", ""},
		{"zip 78701", "78701"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeZipCode(tt.input))
		})
	}
}

func TestNormalizeStreet(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "abbreviates suffix", input: "123 Main Street", expected: "123 main st"},
		{name: "already abbreviated", input: "123 Main St.", expected: "123 main st"},
		{name: "directional", input: "500 North Lamar Boulevard", expected: "500 n lamar blvd"},
		{name: "unit designator", input: "42 Oak Avenue Apartment 3B", expected: "42 oak ave apt 3b"},
		{name: "extra whitespace", input: "  123   Main  St  ", expected: "123 main st"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeStreet(tt.input))
		})
	}
}

func TestNormalizeStreetEquivalence(t *testing.T) {
	assert.Equal(t, NormalizeStreet("123 Main Street"), NormalizeStreet("123 MAIN ST."))
}

func TestNormalizeCity(t *testing.T) {
	assert.Equal(t, "san marcos", NormalizeCity("  San  Marcos "))
	assert.Equal(t, "dona ana", NormalizeCity("Doña Ana"))
}

func TestFoldDiacritics(t *testing.T) {
	assert.Equal(t, "resume", FoldDiacritics("résumé"))
	assert.Equal(t, "plain", FoldDiacritics("plain"))
}

func TestNormalizeState(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Texas", "TX"},
		{"tx", "TX"},
		{"New  York", "NY"},
		{"district of columbia", "DC"},
		{"Ontario", "ONTARIO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeState(tt.input))
		})
	}
}
