package parser

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX parses the first sheet of an XLSX workbook into a Table.
// Additional sheets are ignored.
func ParseXLSX(fileName string, data []byte) (*Table, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no sheets")
	}

	grid, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return tableFromGrid(fileName, grid, nil)
}
