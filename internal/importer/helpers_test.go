package importer

import "github.com/workforce-ai/roster-import/internal/schema"

// learner builds a complete, valid row; overrides replace individual cells.
func learner(number int, uid string, overrides ...string) RawRow {
	values := map[string]string{
		schema.ColumnUID:         uid,
		schema.ColumnName:        "Learner " + uid,
		schema.ColumnGender:      "F",
		schema.ColumnPhone:       "03001234567",
		schema.ColumnSchool:      "Government Girls School",
		schema.ColumnRole:        "Student",
		schema.ColumnTargetGroup: "Grade 6",
		schema.ColumnCohort:      "Cohort A",
	}
	for i := 0; i+1 < len(overrides); i += 2 {
		values[overrides[i]] = overrides[i+1]
	}
	return RawRow{Number: number, Columns: schema.ExpectedHeaders(), Values: values}
}

func blankRow(number int) RawRow {
	values := make(map[string]string)
	for _, h := range schema.ExpectedHeaders() {
		values[h] = ""
	}
	return RawRow{Number: number, Columns: schema.ExpectedHeaders(), Values: values}
}

func rowNumbers(entries []InvalidRowEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.RowNumber
	}
	return out
}

func uids(users []ValidatedUser) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.UID
	}
	return out
}
