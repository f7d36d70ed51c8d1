package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func testSheet() *Sheet {
	cols := []Column{
		{ID: "name", Field: "name", Name: "Name"},
		{ID: "qty", Field: "qty", Name: "Qty", Type: ColumnNumber},
	}
	recs := []Record{
		{IDField: "0", "name": "apple", "qty": 1.0},
		{IDField: "1", "name": "pear", "qty": 2.0},
	}
	return NewSheet("fruit", cols, recs)
}

func TestSheet_ValueAndSetValue(t *testing.T) {
	s := testSheet()

	v, ok := s.Value(1, 0)
	require.True(t, ok)
	require.Equal(t, "pear", v)

	require.True(t, s.SetValue(1, 0, "plum"))
	v, _ = s.Value(1, 0)
	require.Equal(t, "plum", v)
	require.Equal(t, []Cell{{Row: 1, Col: 0}}, s.DrainDirty())
	require.Empty(t, s.DrainDirty())

	require.False(t, s.SetValue(5, 0, "x"))
	require.False(t, s.SetValue(0, 9, "x"))
}

func TestSheet_AppendAndTruncate(t *testing.T) {
	s := testSheet()

	delta := s.AppendRows([]Record{{IDField: "2"}, {IDField: "3"}})
	require.Equal(t, 2, delta.From)
	require.Equal(t, 2, delta.Count)
	require.Equal(t, 4, s.RowCount())

	require.NoError(t, s.TruncateRows(delta))
	require.Equal(t, 2, s.RowCount())
}

func TestSheet_TruncateRefusesWhenRowsNoLongerTrailing(t *testing.T) {
	s := testSheet()

	delta := s.AppendRows([]Record{{IDField: "2"}})
	s.AppendRows([]Record{{IDField: "3"}})

	require.Error(t, s.TruncateRows(delta))
	require.Equal(t, 4, s.RowCount())
}

func TestSheet_TruncateRefusesAfterReplace(t *testing.T) {
	s := testSheet()

	delta := s.AppendRows([]Record{{IDField: "2"}})
	snap := s.Snapshot()
	s.Restore(snap)

	require.Error(t, s.TruncateRows(delta))
	require.Equal(t, 3, s.RowCount())
}

func TestSheet_TruncateEmptyDeltaIsNoop(t *testing.T) {
	s := testSheet()
	require.NoError(t, s.TruncateRows(RowDelta{}))
	require.Equal(t, 2, s.RowCount())
}

func TestSheet_LockRejectsSetColumns(t *testing.T) {
	s := testSheet()
	s.Lock()

	err := s.SetColumns(append(s.Columns(), Column{ID: "x", Field: "x"}))
	require.True(t, errors.Is(err, ErrSchemaLocked))
	require.Len(t, s.Columns(), 2)

	s.Unlock()
	require.NoError(t, s.SetColumns(append(s.Columns(), Column{ID: "x", Field: "x"})))
	require.Len(t, s.Columns(), 3)
}

func TestSheet_RenderIsDeferredInsideUpdateBatch(t *testing.T) {
	s := testSheet()
	calls := 0
	s.OnRender(func() { calls++ })

	s.BeginUpdate()
	s.SetValue(0, 0, "kiwi")
	s.Render()
	require.Equal(t, 0, calls)
	s.EndUpdate()

	require.Equal(t, 1, calls)
	require.Equal(t, 1, s.RenderCount())

	// Unbalanced EndUpdate is ignored.
	s.EndUpdate()
	require.Equal(t, 1, calls)
}

func TestSheet_SnapshotIsDetached(t *testing.T) {
	s := testSheet()
	snap := s.Snapshot()

	s.SetValue(0, 0, "changed")
	require.Equal(t, "apple", snap.Rows[0]["name"])
	require.Equal(t, "fruit", snap.Name)
}

func TestSheet_RestoreClampsCursor(t *testing.T) {
	s := testSheet()
	s.SetActiveCell(Cell{Row: 1, Col: 1})
	s.SetSelectedRanges([]Range{NewRange(0, 0, 1, 1), NewRange(1, 1, 1, 1)})

	s.Restore(Snapshot{Columns: s.Columns()[:1], Rows: s.Snapshot().Rows[:1]})

	active, ok := s.ActiveCell()
	require.True(t, ok)
	require.Equal(t, Cell{Row: 0, Col: 0}, active)
	require.Equal(t, []Range{NewRange(0, 0, 0, 0)}, s.SelectedRanges())
}

func TestSheet_RestoreKeepsLock(t *testing.T) {
	s := testSheet()
	s.Lock()
	s.Restore(Snapshot{Columns: []Column{{ID: "a", Field: "a"}}})
	require.Len(t, s.Columns(), 1)
	require.True(t, s.ColumnStore().Locked())
}

func TestSheet_ActiveCell(t *testing.T) {
	s := testSheet()
	_, ok := s.ActiveCell()
	require.False(t, ok)

	s.SetActiveCell(Cell{Row: 1, Col: 0})
	c, ok := s.ActiveCell()
	require.True(t, ok)
	require.Equal(t, Cell{Row: 1, Col: 0}, c)

	s.ClearActiveCell()
	_, ok = s.ActiveCell()
	require.False(t, ok)
}

func TestColumnStore_AppendReportsDelta(t *testing.T) {
	cs := NewColumnStore([]Column{{ID: "a", Field: "a"}})
	delta, err := cs.Append(Column{ID: "b", Field: "b"}, Column{ID: "c", Field: "c"})
	require.NoError(t, err)
	require.Equal(t, 2, delta.Added())
	require.Equal(t, uint64(1), cs.Version())

	delta, err = cs.Replace(nil)
	require.NoError(t, err)
	require.Equal(t, 0, delta.Added())
}
