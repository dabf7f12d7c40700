package importer

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/workforce-ai/roster-import/internal/phone"
	"github.com/workforce-ai/roster-import/internal/schema"
)

// RowOutcome is what the row validation pass produced for a slice of rows.
type RowOutcome struct {
	ValidUsers        []ValidatedUser
	Rejected          []InvalidRowEntry
	EmptyRows         int
	DuplicateRows     int
	InvalidPhoneCount int
}

func (o *RowOutcome) merge(other RowOutcome) {
	o.ValidUsers = append(o.ValidUsers, other.ValidUsers...)
	o.Rejected = append(o.Rejected, other.Rejected...)
	o.EmptyRows += other.EmptyRows
	o.DuplicateRows += other.DuplicateRows
	o.InvalidPhoneCount += other.InvalidPhoneCount
}

// ValidateRows classifies each row, stopping at the first applicable check:
// blank row (skipped, counted), duplicated UID (excluded silently, already reported),
// phone number, required fields. Accepted rows keep file order.
func ValidateRows(rows []RawRow, dups DuplicateSet) RowOutcome {
	out := RowOutcome{
		ValidUsers: make([]ValidatedUser, 0, len(rows)),
		Rejected:   make([]InvalidRowEntry, 0),
	}

	for _, row := range rows {
		if schema.IsBlankRow(row.Values) {
			out.EmptyRows++
			continue
		}

		if dups.Contains(row.Value(schema.ColumnUID)) {
			out.DuplicateRows++
			continue
		}

		rawPhone := row.Value(schema.ColumnPhone)
		canonical, err := phone.Normalize(rawPhone)
		if err != nil {
			out.InvalidPhoneCount++
			out.Rejected = append(out.Rejected, InvalidRowEntry{
				RowNumber: row.Number,
				Kind:      KindInvalidPhone,
				Reason:    fmt.Sprintf("invalid phone number format: %q", rawPhone),
			})
			continue
		}

		if missing := schema.MissingRequired(row.Values); len(missing) > 0 {
			out.Rejected = append(out.Rejected, InvalidRowEntry{
				RowNumber: row.Number,
				Kind:      KindMissingRequiredField,
				Reason:    fmt.Sprintf("missing required field(s): %s", strings.Join(missing, ", ")),
			})
			continue
		}

		out.ValidUsers = append(out.ValidUsers, toValidatedUser(row, canonical))
	}

	return out
}

// ValidateRowsConcurrent validates contiguous chunks of rows on up to workers
// goroutines and joins the chunks in order, so the outcome equals ValidateRows.
func ValidateRowsConcurrent(ctx context.Context, rows []RawRow, dups DuplicateSet, workers int) (RowOutcome, error) {
	if workers <= 1 || len(rows) < workers {
		return ValidateRows(rows, dups), nil
	}

	chunkSize := (len(rows) + workers - 1) / workers
	chunks := make([]RowOutcome, workers)

	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		lo := i * chunkSize
		if lo >= len(rows) {
			break
		}
		hi := min(lo+chunkSize, len(rows))

		i := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			chunks[i] = ValidateRows(rows[lo:hi], dups)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RowOutcome{}, fmt.Errorf("validate rows: %w", err)
	}

	out := RowOutcome{
		ValidUsers: make([]ValidatedUser, 0, len(rows)),
		Rejected:   make([]InvalidRowEntry, 0),
	}
	for _, c := range chunks {
		out.merge(c)
	}
	return out, nil
}

func toValidatedUser(row RawRow, canonicalPhone string) ValidatedUser {
	field := func(column string) string {
		return strings.TrimSpace(row.Value(column))
	}
	return ValidatedUser{
		UID:              field(schema.ColumnUID),
		Name:             field(schema.ColumnName),
		Gender:           field(schema.ColumnGender),
		PhoneNumber:      canonicalPhone,
		SchoolName:       field(schema.ColumnSchool),
		Role:             field(schema.ColumnRole),
		TargetGroup:      field(schema.ColumnTargetGroup),
		CohortAssignment: field(schema.ColumnCohort),
	}
}
