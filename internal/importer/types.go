package importer

// RawRow is one data line of an import file. Number is 1-based: the header line is
// row 0 and the first data line is row 1.
type RawRow struct {
	Number  int
	Columns []string          // header names in file order
	Values  map[string]string // header name -> cell value
}

// Value returns the untrimmed cell value for column, or "" if absent.
func (r RawRow) Value(column string) string {
	return r.Values[column]
}

// ValidatedUser is a row that passed every check and is eligible for the batch.
// Field names match the backend's batch upload payload.
type ValidatedUser struct {
	UID              string `json:"uid"`
	Name             string `json:"name"`
	Gender           string `json:"gender"`
	PhoneNumber      string `json:"phoneNumber"`
	SchoolName       string `json:"schoolName,omitempty"`
	Role             string `json:"role"`
	TargetGroup      string `json:"targetGroup"`
	CohortAssignment string `json:"cohortAssignment"`
}

// RowErrorKind identifies which row-level check rejected a row.
type RowErrorKind string

const (
	KindDuplicateUID         RowErrorKind = "duplicate_uid"
	KindInvalidPhone         RowErrorKind = "invalid_phone"
	KindMissingRequiredField RowErrorKind = "missing_required_field"
)

// InvalidRowEntry is a rejected row together with a human-readable reason.
type InvalidRowEntry struct {
	RowNumber int          `json:"row_number"`
	Kind      RowErrorKind `json:"kind"`
	Reason    string       `json:"reason"`
}

// Err returns the sentinel matching the entry's kind.
func (e InvalidRowEntry) Err() error {
	switch e.Kind {
	case KindDuplicateUID:
		return ErrDuplicateUID
	case KindInvalidPhone:
		return ErrInvalidPhone
	case KindMissingRequiredField:
		return ErrMissingRequiredField
	default:
		return nil
	}
}

// ImportReport summarises one validation run for operator review.
type ImportReport struct {
	TotalRows         int               `json:"total_rows"`
	ValidUsers        []ValidatedUser   `json:"valid_users"`
	InvalidRows       []InvalidRowEntry `json:"invalid_rows"`
	SkippedRows       int               `json:"skipped_rows"`
	EmptyRows         int               `json:"empty_rows"`
	DuplicateUIDCount int               `json:"duplicate_uid_count"`
	InvalidPhoneCount int               `json:"invalid_phone_count"`
	UnexpectedColumns []string          `json:"unexpected_columns,omitempty"`
}

// ValidCount is the number of rows that will be uploaded.
func (r *ImportReport) ValidCount() int {
	return len(r.ValidUsers)
}
