package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/workforce-ai/roster-import/internal/importer"
)

// Format identifies the spreadsheet export format of an import file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format")

const utf8BOM = "\ufeff"

// FormatFromFilename picks the parser from the file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Parse reads an import file into numbered rows. A file with a header line but no
// data lines, or no lines at all, yields zero rows and no error; deciding that the
// file is empty is left to the validation pipeline.
func Parse(reader io.Reader, format Format) ([]importer.RawRow, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(reader)
	case FormatXLSX:
		return ParseXLSX(reader)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ParseCSV reads a CSV export whose first line is the header. encoding/csv skips
// blank lines; they are put back as empty rows so row numbers match the file, the
// same as blank rows in a worksheet.
func ParseCSV(reader io.Reader) ([]importer.RawRow, error) {
	rows := make([]importer.RawRow, 0)

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1 // Allow variable number of fields

	// Read header row
	headers, err := csvReader.Read()
	if err != nil {
		if err == io.EOF {
			return rows, nil
		}
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	prevEnd := lastLine(csvReader, headers)
	headers = normalizeHeaders(headers)

	rowNum := 1 // header is row 0

	// Process data rows
	for {
		csvRow, err := csvReader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("row %d: failed to read CSV row: %w", rowNum, err)
		}

		start, _ := csvReader.FieldPos(0)
		for line := prevEnd + 1; line < start; line++ {
			rows = append(rows, toRawRow(rowNum, headers, nil))
			rowNum++
		}

		rows = append(rows, toRawRow(rowNum, headers, csvRow))
		rowNum++
		prevEnd = lastLine(csvReader, csvRow)
	}

	return rows, nil
}

// lastLine is the file line on which the record just read ends. A quoted field
// may span several lines.
func lastLine(r *csv.Reader, record []string) int {
	last := len(record) - 1
	line, _ := r.FieldPos(last)
	return line + strings.Count(record[last], "\n")
}

// normalizeHeaders trims header names and drops a leading byte-order mark,
// which spreadsheet tools commonly write at the start of CSV exports.
func normalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// toRawRow maps cells to headers. Missing trailing cells become "" and cells beyond
// the header width are dropped.
func toRawRow(number int, headers, cells []string) importer.RawRow {
	values := make(map[string]string, len(headers))
	for i, header := range headers {
		if i < len(cells) {
			values[header] = cells[i]
		} else {
			values[header] = ""
		}
	}
	return importer.RawRow{
		Number:  number,
		Columns: headers,
		Values:  values,
	}
}
