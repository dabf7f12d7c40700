package importer

import (
	"fmt"
	"strings"

	"github.com/workforce-ai/roster-import/internal/schema"
)

// DuplicateSet is the result of the duplicate detection pass. It is read-only once
// built so row validation can consult it from several goroutines.
type DuplicateSet struct {
	uids    map[string]struct{}
	entries []InvalidRowEntry
}

// Contains reports whether uid occurred more than once in the file.
func (d DuplicateSet) Contains(uid string) bool {
	_, ok := d.uids[strings.TrimSpace(uid)]
	return ok
}

// Len is the number of distinct duplicated UIDs.
func (d DuplicateSet) Len() int {
	return len(d.uids)
}

// Entries returns a copy of the rejection entries recorded for duplicated rows,
// in the order they were detected.
func (d DuplicateSet) Entries() []InvalidRowEntry {
	out := make([]InvalidRowEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// DetectDuplicates makes one forward pass over rows and collects every UID that
// occurs more than once. Every occurrence of such a UID is rejected, not just the
// later ones, because the backend cannot tell which record is authoritative.
//
// Each reason cites the nearest prior occurrence: on a repeat the row held for that
// UID is flagged (once) citing the current row, the current row is flagged citing
// the held row, and the current row becomes the held row. Rows with a blank UID are
// ignored here; the required-field check rejects them.
func DetectDuplicates(rows []RawRow) DuplicateSet {
	held := make(map[string]int)
	flagged := make(map[int]bool)
	set := DuplicateSet{uids: make(map[string]struct{})}

	for _, row := range rows {
		uid := strings.TrimSpace(row.Value(schema.ColumnUID))
		if uid == "" {
			continue
		}

		prev, seen := held[uid]
		held[uid] = row.Number
		if !seen {
			continue
		}

		set.uids[uid] = struct{}{}
		if !flagged[prev] {
			flagged[prev] = true
			set.entries = append(set.entries, duplicateEntry(prev, uid, row.Number))
		}
		flagged[row.Number] = true
		set.entries = append(set.entries, duplicateEntry(row.Number, uid, prev))
	}

	return set
}

func duplicateEntry(rowNumber int, uid string, otherRow int) InvalidRowEntry {
	return InvalidRowEntry{
		RowNumber: rowNumber,
		Kind:      KindDuplicateUID,
		Reason:    fmt.Sprintf("duplicate uid %q: also appears in row %d", uid, otherRow),
	}
}
