package importer

import (
	"errors"
	"fmt"
	"strings"
)

// Row-level failures. They never abort a run; they are carried by InvalidRowEntry.Kind.
var (
	ErrDuplicateUID         = errors.New("duplicate uid")
	ErrInvalidPhone         = errors.New("invalid phone number format")
	ErrMissingRequiredField = errors.New("missing required field")
)

// FileEmptyError means the file contained no data rows.
type FileEmptyError struct{}

func (e *FileEmptyError) Error() string {
	return "file is empty"
}

// MissingHeadersError means one or more roster columns are absent from the header.
type MissingHeadersError struct {
	Missing []string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// IsFileLevel reports whether err aborted a run before any row was processed.
func IsFileLevel(err error) bool {
	var empty *FileEmptyError
	var headers *MissingHeadersError
	return errors.As(err, &empty) || errors.As(err, &headers)
}
