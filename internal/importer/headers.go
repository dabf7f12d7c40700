package importer

import (
	"sort"

	"github.com/workforce-ai/roster-import/internal/schema"
)

// CheckHeaders gates a run on the shape of the file: it fails with *FileEmptyError
// when there are no data rows and with *MissingHeadersError when any roster column
// is absent from the first row. Extra columns are returned, not rejected.
func CheckHeaders(rows []RawRow) (unexpected []string, err error) {
	if len(rows) == 0 {
		return nil, &FileEmptyError{}
	}

	missing, unexpected := schema.ValidateHeaders(headersOf(rows[0]))
	if len(missing) > 0 {
		return nil, &MissingHeadersError{Missing: missing}
	}
	return unexpected, nil
}

func headersOf(row RawRow) []string {
	if len(row.Columns) > 0 {
		return row.Columns
	}
	headers := make([]string, 0, len(row.Values))
	for h := range row.Values {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	return headers
}
