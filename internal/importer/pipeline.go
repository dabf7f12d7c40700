package importer

import "context"

// Options tunes how a run validates rows. The zero value validates sequentially.
type Options struct {
	// Workers is the number of goroutines used for row validation.
	Workers int
	// ParallelThreshold is the row count above which Workers is honoured.
	ParallelThreshold int
}

// Run validates rows and builds the import report. File-level failures are returned
// as *FileEmptyError or *MissingHeadersError with a nil report.
func Run(rows []RawRow) (*ImportReport, error) {
	return RunWithOptions(context.Background(), rows, Options{})
}

// RunWithOptions is Run with parallel row validation for large files.
func RunWithOptions(ctx context.Context, rows []RawRow, opts Options) (*ImportReport, error) {
	unexpected, err := CheckHeaders(rows)
	if err != nil {
		return nil, err
	}

	dups := DetectDuplicates(rows)

	workers := 1
	if opts.Workers > 1 && len(rows) > opts.ParallelThreshold {
		workers = opts.Workers
	}
	outcome, err := ValidateRowsConcurrent(ctx, rows, dups, workers)
	if err != nil {
		return nil, err
	}

	report := Aggregate(len(rows), dups, outcome)
	report.UnexpectedColumns = unexpected
	return report, nil
}
