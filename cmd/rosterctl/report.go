package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/workforce-ai/roster-import/internal/importer"
)

func printReport(w io.Writer, name string, r *importer.ImportReport, showUsers bool) {
	fmt.Fprintf(w, "Import report for %s\n\n", name)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total rows\t%d\n", r.TotalRows)
	fmt.Fprintf(tw, "Valid\t%d\n", r.ValidCount())
	fmt.Fprintf(tw, "Skipped\t%d\n", r.SkippedRows)
	fmt.Fprintf(tw, "Empty rows\t%d\n", r.EmptyRows)
	fmt.Fprintf(tw, "Duplicate UIDs\t%d\n", r.DuplicateUIDCount)
	fmt.Fprintf(tw, "Invalid phones\t%d\n", r.InvalidPhoneCount)
	_ = tw.Flush()

	if len(r.UnexpectedColumns) > 0 {
		fmt.Fprintf(w, "\nIgnored columns: %s\n", strings.Join(r.UnexpectedColumns, ", "))
	}

	if len(r.InvalidRows) > 0 {
		fmt.Fprintln(w, "\nRejected rows:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ROW\tREASON")
		for _, e := range r.InvalidRows {
			fmt.Fprintf(tw, "%d\t%s\n", e.RowNumber, e.Reason)
		}
		_ = tw.Flush()
	}

	if showUsers && len(r.ValidUsers) > 0 {
		fmt.Fprintln(w, "\nUsers to upload:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "UID\tNAME\tPHONE\tROLE\tTARGET GROUP\tCOHORT")
		for _, u := range r.ValidUsers {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				u.UID, u.Name, u.PhoneNumber, u.Role, u.TargetGroup, u.CohortAssignment)
		}
		_ = tw.Flush()
	}
}
