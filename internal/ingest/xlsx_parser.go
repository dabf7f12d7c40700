package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/workforce-ai/roster-import/internal/importer"
)

// ParseXLSX reads the first worksheet of an Excel workbook. The first row is the
// header; blank rows between data rows are kept so row numbers match the sheet.
func ParseXLSX(reader io.Reader) ([]importer.RawRow, error) {
	rows := make([]importer.RawRow, 0)

	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return rows, nil
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return rows, nil
	}

	headers := normalizeHeaders(cells[0])
	for i, line := range cells[1:] {
		rows = append(rows, toRawRow(i+1, headers, line))
	}

	return rows, nil
}
