package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDuplicates_NoDuplicates(t *testing.T) {
	rows := []RawRow{learner(1, "U1"), learner(2, "U2"), learner(3, "U3")}

	dups := DetectDuplicates(rows)

	assert.Equal(t, 0, dups.Len())
	assert.Empty(t, dups.Entries())
}

func TestDetectDuplicates_PairCitesEachOther(t *testing.T) {
	rows := []RawRow{
		learner(1, "U0"), learner(2, "U2"), learner(3, "U1"), learner(4, "U4"),
		learner(5, "U5"), learner(6, "U6"), learner(7, "U1"),
	}

	dups := DetectDuplicates(rows)

	require.Equal(t, 1, dups.Len())
	assert.True(t, dups.Contains("U1"))

	entries := dups.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].RowNumber)
	assert.Contains(t, entries[0].Reason, "row 7")
	assert.Equal(t, 7, entries[1].RowNumber)
	assert.Contains(t, entries[1].Reason, "row 3")
	for _, e := range entries {
		assert.Equal(t, KindDuplicateUID, e.Kind)
		assert.ErrorIs(t, e.Err(), ErrDuplicateUID)
	}
}

func TestDetectDuplicates_ThreeOccurrencesCiteNearestPrior(t *testing.T) {
	rows := []RawRow{learner(1, "U1"), learner(2, "U2"), learner(3, "U1"), learner(4, "U1")}

	dups := DetectDuplicates(rows)

	assert.Equal(t, 1, dups.Len(), "count is distinct UIDs, not rows")

	entries := dups.Entries()
	require.Len(t, entries, 3, "each occurrence is reported exactly once")
	assert.Equal(t, []int{1, 3, 4}, rowNumbers(entries))
	assert.Contains(t, entries[0].Reason, "row 3")
	assert.Contains(t, entries[1].Reason, "row 1")
	assert.Contains(t, entries[2].Reason, "row 3")
}

func TestDetectDuplicates_TrimsUIDs(t *testing.T) {
	rows := []RawRow{learner(1, "U1"), learner(2, " U1 ")}

	dups := DetectDuplicates(rows)

	assert.Equal(t, 1, dups.Len())
	assert.True(t, dups.Contains(" U1"))
}

func TestDetectDuplicates_IgnoresBlankUIDs(t *testing.T) {
	rows := []RawRow{learner(1, ""), learner(2, "  "), blankRow(3), blankRow(4)}

	dups := DetectDuplicates(rows)

	assert.Equal(t, 0, dups.Len())
	assert.Empty(t, dups.Entries())
}

func TestDetectDuplicates_EntriesAreCopies(t *testing.T) {
	dups := DetectDuplicates([]RawRow{learner(1, "U1"), learner(2, "U1")})

	entries := dups.Entries()
	entries[0].Reason = "tampered"

	assert.NotEqual(t, "tampered", dups.Entries()[0].Reason)
}
