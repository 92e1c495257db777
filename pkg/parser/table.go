// Package parser reads CSV and XLSX listing files into a uniform tabular
// form, tolerating the encoding and shape problems real broker exports have
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Warning represents a non-fatal issue encountered while parsing a file
type Warning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Table is the uniform result of parsing a listing file. Rows preserve file
// order and Headers preserve column order.
type Table struct {
	FileName string             `json:"fileName"`
	Headers  []string           `json:"headers"`
	Rows     []models.RawRecord `json:"rows"`
	Warnings []Warning          `json:"warnings"`
}

// ParseFile parses a listing file based on its extension. CSV and Excel
// workbooks are supported; a legacy .xls that the workbook reader cannot
// open surfaces as a parse error on that file.
func ParseFile(fileName string, data []byte) (*Table, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt":
		return ParseCSV(fileName, data)
	case ".xlsx", ".xlsm", ".xls":
		return ParseXLSX(fileName, data)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(fileName))
	}
}

// tableFromGrid builds a Table from a raw cell grid. It skips leading empty
// rows to find the header row, detects transposed field/value layouts, and
// pads or truncates rows whose width disagrees with the header.
func tableFromGrid(fileName string, grid [][]string, warnings []Warning) (*Table, error) {
	headerIdx := -1
	for i, row := range grid {
		if !rowEmpty(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil, fmt.Errorf("empty file: no header row found")
	}

	headers := make([]string, len(grid[headerIdx]))
	for i, h := range grid[headerIdx] {
		headers[i] = strings.TrimSpace(h)
	}

	if isTransposed(headers) {
		return transposedTable(fileName, grid[headerIdx+1:], warnings)
	}

	table := &Table{
		FileName: fileName,
		Headers:  headers,
		Warnings: warnings,
	}
	headerCount := len(headers)

	for i, row := range grid[headerIdx+1:] {
		rowNum := headerIdx + i + 2 // 1-indexed file position
		if rowEmpty(row) {
			continue
		}

		if len(row) < headerCount {
			table.Warnings = append(table.Warnings, Warning{
				Row:     rowNum,
				Message: fmt.Sprintf("row has %d columns, expected %d; padding with empty values", len(row), headerCount),
			})
			padded := make([]string, headerCount)
			copy(padded, row)
			row = padded
		} else if len(row) > headerCount {
			table.Warnings = append(table.Warnings, Warning{
				Row:     rowNum,
				Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(row), headerCount),
			})
			row = row[:headerCount]
		}

		record := make(models.RawRecord, headerCount)
		for j, h := range headers {
			record[h] = strings.TrimSpace(row[j])
		}
		table.Rows = append(table.Rows, record)
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("file contains no data rows")
	}
	return table, nil
}

// isTransposed reports whether the header row marks a pivoted single-listing
// layout: exactly two columns named "field" and "value"
func isTransposed(headers []string) bool {
	return len(headers) == 2 &&
		strings.EqualFold(headers[0], "field") &&
		strings.EqualFold(headers[1], "value")
}

// transposedTable pivots a field/value layout into a single-row table
func transposedTable(fileName string, rows [][]string, warnings []Warning) (*Table, error) {
	table := &Table{
		FileName: fileName,
		Warnings: warnings,
	}

	record := make(models.RawRecord)
	for _, row := range rows {
		if rowEmpty(row) || len(row) < 1 {
			continue
		}
		field := strings.TrimSpace(row[0])
		if field == "" {
			continue
		}
		value := ""
		if len(row) > 1 {
			value = strings.TrimSpace(row[1])
		}
		if _, seen := record[field]; !seen {
			table.Headers = append(table.Headers, field)
		}
		record[field] = value
	}

	if len(record) == 0 {
		return nil, fmt.Errorf("file contains no data rows")
	}
	table.Rows = []models.RawRecord{record}
	return table, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
