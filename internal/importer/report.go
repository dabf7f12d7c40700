package importer

import "sort"

// Aggregate folds the duplicate pass and the row pass into the operator-facing report.
// invalid_rows holds duplicate entries and row rejections ordered by row number.
func Aggregate(totalRows int, dups DuplicateSet, outcome RowOutcome) *ImportReport {
	invalid := dups.Entries()
	invalid = append(invalid, outcome.Rejected...)
	sort.SliceStable(invalid, func(i, j int) bool {
		return invalid[i].RowNumber < invalid[j].RowNumber
	})

	valid := outcome.ValidUsers
	if valid == nil {
		valid = []ValidatedUser{}
	}

	return &ImportReport{
		TotalRows:         totalRows,
		ValidUsers:        valid,
		InvalidRows:       invalid,
		SkippedRows:       totalRows - len(valid),
		EmptyRows:         outcome.EmptyRows,
		DuplicateUIDCount: dups.Len(),
		InvalidPhoneCount: outcome.InvalidPhoneCount,
	}
}
