package schema

import (
	"fmt"
	"strings"
)

// FieldType represents the kind of value a roster column carries
type FieldType string

const (
	TypeIdentifier FieldType = "identifier"
	TypeText       FieldType = "text"
	TypePhone      FieldType = "phone"
)

// Roster column names exactly as they appear in the spreadsheet export header.
const (
	ColumnUID         = "uid"
	ColumnName        = "s0_name"
	ColumnGender      = "gender"
	ColumnPhone       = "phone_number"
	ColumnSchool      = "schoolname"
	ColumnRole        = "school_role"
	ColumnTargetGroup = "Target.Group"
	ColumnCohort      = "cohort_assignment"
)

// FieldDef defines the schema for a single roster column
type FieldDef struct {
	Column      string    `json:"column"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description"`
}

// Roster is the fixed column set of a learner/teacher import file, in canonical order.
var Roster = []FieldDef{
	{Column: ColumnUID, Type: TypeIdentifier, Required: true, Description: "external learner/teacher identifier"},
	{Column: ColumnName, Type: TypeText, Required: true, Description: "full name"},
	{Column: ColumnGender, Type: TypeText, Required: true, Description: "gender"},
	{Column: ColumnPhone, Type: TypePhone, Required: true, Description: "contact phone number"},
	{Column: ColumnSchool, Type: TypeText, Required: false, Description: "school name"},
	{Column: ColumnRole, Type: TypeText, Required: true, Description: "role at the school"},
	{Column: ColumnTargetGroup, Type: TypeText, Required: true, Description: "programme target group"},
	{Column: ColumnCohort, Type: TypeText, Required: true, Description: "cohort assignment"},
}

// ExpectedHeaders returns the roster column names in canonical order.
func ExpectedHeaders() []string {
	headers := make([]string, len(Roster))
	for i, f := range Roster {
		headers[i] = f.Column
	}
	return headers
}

// ValidateHeaders compares the headers of a parsed file with the roster columns.
// Matching is exact after trimming. missing lists absent roster columns in canonical
// order; unexpected lists extra headers in file order. Only missing columns are fatal.
func ValidateHeaders(headers []string) (missing []string, unexpected []string) {
	headerSet := make(map[string]bool, len(headers))
	for _, h := range headers {
		headerSet[strings.TrimSpace(h)] = true
	}

	known := make(map[string]bool, len(Roster))
	for _, f := range Roster {
		known[f.Column] = true
		if !headerSet[f.Column] {
			missing = append(missing, f.Column)
		}
	}

	for _, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" || known[h] {
			continue
		}
		unexpected = append(unexpected, h)
	}

	return missing, unexpected
}

// MissingRequired returns every required non-phone column that is absent or blank in
// values. Phone columns are excluded because the phone normalizer already rejects
// blank numbers before this check runs.
func MissingRequired(values map[string]string) []string {
	var missing []string
	for _, f := range Roster {
		if !f.Required || f.Type == TypePhone {
			continue
		}
		if strings.TrimSpace(values[f.Column]) == "" {
			missing = append(missing, f.Column)
		}
	}
	return missing
}

// IsBlankRow reports whether every value in the row is empty after trimming.
func IsBlankRow(values map[string]string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Describe renders a column list for human-readable messages.
func Describe(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("'%s'", c)
	}
	return strings.Join(quoted, ", ")
}
