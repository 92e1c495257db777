package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ParseCSV parses CSV bytes into a Table. Encoding is detected and decoded
// first, and rows the csv reader rejects are skipped with a warning rather
// than failing the file.
func ParseCSV(fileName string, data []byte) (*Table, error) {
	decoded, _, err := DetectAndDecode(data)
	if err != nil {
		return nil, fmt.Errorf("encoding detection failed: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	// Column counts vary between rows in real exports; width is reconciled
	// against the header row later.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var grid [][]string
	var warnings []Warning
	rowNum := 0

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++

		if err != nil {
			warnings = append(warnings, Warning{
				Row:     rowNum,
				Message: fmt.Sprintf("parse error: %v", err),
			})
			continue
		}
		grid = append(grid, row)
	}

	return tableFromGrid(fileName, grid, warnings)
}
