package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	data := []byte("MLS Number,Address,Price\n100,123 Main St,450000\n101,456 Oak Ave,525000\n")

	table, err := ParseCSV("listings.csv", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"MLS Number", "Address", "Price"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "100", table.Rows[0]["MLS Number"])
	assert.Equal(t, "456 Oak Ave", table.Rows[1]["Address"])
	assert.Empty(t, table.Warnings)
}

func TestParseCSVEmptyFile(t *testing.T) {
	_, err := ParseCSV("empty.csv", []byte(""))
	assert.Error(t, err)
}

func TestParseCSVHeaderOnly(t *testing.T) {
	_, err := ParseCSV("headers.csv", []byte("MLS Number,Price\n"))
	assert.Error(t, err)
}

func TestParseCSVRaggedRows(t *testing.T) {
	data := []byte("A,B,C\n1,2\n1,2,3,4\n")

	table, err := ParseCSV("ragged.csv", data)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "", table.Rows[0]["C"])
	assert.Equal(t, "3", table.Rows[1]["C"])
	assert.Len(t, table.Warnings, 2)
}

func TestParseCSVSkipsBlankRows(t *testing.T) {
	data := []byte("A,B\n\n1,2\n,\n3,4\n")

	table, err := ParseCSV("blanks.csv", data)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestParseCSVSkipsLeadingEmptyRowsBeforeHeader(t *testing.T) {
	data := []byte(",,\nA,B,C\n1,2,3\n")

	table, err := ParseCSV("padded.csv", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, table.Headers)
	require.Len(t, table.Rows, 1)
}

func TestParseCSVTransposed(t *testing.T) {
	data := []byte("Field,Value\nMLS Number,100\nAddress,123 Main St\nPrice,450000\n")

	table, err := ParseCSV("single.csv", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"MLS Number", "Address", "Price"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "123 Main St", table.Rows[0]["Address"])
}

func TestParseCSVTransposedCaseInsensitive(t *testing.T) {
	data := []byte("FIELD,VALUE\nPrice,450000\n")

	table, err := ParseCSV("single.csv", data)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "450000", table.Rows[0]["Price"])
}

func TestParseCSVTwoColumnsNotTransposed(t *testing.T) {
	data := []byte("Address,Price\n123 Main St,450000\n")

	table, err := ParseCSV("two.csv", data)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "123 Main St", table.Rows[0]["Address"])
}

func TestParseCSVUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("A,B\n1,2\n")...)

	table, err := ParseCSV("bom.csv", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, table.Headers)
}

func TestParseFileDispatch(t *testing.T) {
	_, err := ParseFile("listings.pdf", []byte("whatever"))
	assert.Error(t, err)

	table, err := ParseFile("listings.CSV", []byte("A,B\n1,2\n"))
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

func TestDetectAndDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
		encoding string
	}{
		{name: "plain utf-8", data: []byte("hello"), expected: "hello", encoding: "utf-8"},
		{name: "utf-8 bom stripped", data: append([]byte{0xEF, 0xBB, 0xBF}, 'h', 'i'), expected: "hi", encoding: "utf-8-bom"},
		{name: "utf-16 le", data: []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}, expected: "hi", encoding: "utf-16le"},
		{name: "utf-16 be", data: []byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i'}, expected: "hi", encoding: "utf-16be"},
		{name: "latin-1 fallback", data: []byte{'c', 'a', 'f', 0xE9}, expected: "café", encoding: "latin-1"},
		{name: "empty", data: nil, expected: "", encoding: "utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, encoding, err := DetectAndDecode(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(decoded))
			assert.Equal(t, tt.encoding, encoding)
		})
	}
}
