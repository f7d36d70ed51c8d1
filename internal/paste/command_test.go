package paste

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/gridclip/internal/access"
	"github.com/zjrosen/gridclip/internal/codec"
	"github.com/zjrosen/gridclip/internal/grid"
)

func TestScenario_PasteTwoByTwoInsideGrid(t *testing.T) {
	s := newTestSheet(3, 2)
	m := codec.Decode("x\ty\r\nz\tw", codec.DecodeOptions{})

	cmd := pasteAt(t, s, m, 1, 0, Options{})

	require.Equal(t, 3, s.RowCount(), "no rows added")
	require.Equal(t, 0, cmd.RowsAdded())
	require.Equal(t, "r0c0", cellText(t, s, 0, 0))
	require.Equal(t, "x", cellText(t, s, 1, 0))
	require.Equal(t, "y", cellText(t, s, 1, 1))
	require.Equal(t, "z", cellText(t, s, 2, 0))
	require.Equal(t, "w", cellText(t, s, 2, 1))
	require.Equal(t, []grid.Range{grid.NewRange(1, 0, 2, 1)}, s.SelectedRanges())
}

func TestScenario_PasteGrowsRows(t *testing.T) {
	s := newTestSheet(2, 1)
	m := codec.Decode("a\nb\nc\nd", codec.DecodeOptions{})

	cmd := pasteAt(t, s, m, 0, 0, Options{})

	require.Equal(t, 4, s.RowCount())
	require.Equal(t, 2, cmd.RowsAdded())
	for i, want := range []string{"a", "b", "c", "d"} {
		require.Equal(t, want, cellText(t, s, i, 0))
	}
	rec, ok := s.Record(3)
	require.True(t, ok)
	require.Equal(t, "3", rec.ID())
}

func TestCommand_UndoRestoresEverything(t *testing.T) {
	s := newTestSheet(2, 1)
	before := s.Snapshot()
	s.SetSelectedRanges([]grid.Range{grid.NewRange(0, 0, 0, 0)})
	m := grid.Matrix{{"a", "b", "c"}, {"d", "e", "f"}, {"g", "h", "i"}}

	cmd := pasteAt(t, s, m, 1, 0, Options{})
	require.Equal(t, 4, s.RowCount())
	require.Len(t, s.Columns(), 3)
	require.Equal(t, 2, cmd.ColumnsAdded())

	require.NoError(t, cmd.Undo())
	require.Equal(t, StateUndone, cmd.State())
	require.Equal(t, before.Rows, s.Snapshot().Rows)
	require.Equal(t, before.Columns, s.Columns())
	require.Equal(t, []grid.Range{grid.NewRange(0, 0, 0, 0)}, s.SelectedRanges())
}

func TestCommand_UndoTwiceIsInvalid(t *testing.T) {
	s := newTestSheet(1, 1)
	cmd := pasteAt(t, s, grid.Matrix{{"v"}}, 0, 0, Options{})
	require.NoError(t, cmd.Undo())

	err := cmd.Undo()
	var serr *InvalidStateError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, StateUndone, serr.State)
}

func TestCommand_UndoBeforeExecuteIsInvalid(t *testing.T) {
	s := newTestSheet(1, 1)
	s.SetActiveCell(grid.Cell{})
	plan, err := Prepare(s, grid.Matrix{{"v"}}, Options{})
	require.NoError(t, err)
	cmd := plan.NewCommand(s, access.PlainField{}, grid.Matrix{{"v"}})

	var serr *InvalidStateError
	require.ErrorAs(t, cmd.Undo(), &serr)
	require.Equal(t, StateCreated, cmd.State())
}

func TestCommand_ExecuteTwiceIsInvalid(t *testing.T) {
	s := newTestSheet(1, 1)
	cmd := pasteAt(t, s, grid.Matrix{{"v"}}, 0, 0, Options{})

	var serr *InvalidStateError
	require.ErrorAs(t, cmd.Execute(), &serr)
}

func TestCommand_SchemaLockedLeavesGridUntouched(t *testing.T) {
	s := newTestSheet(1, 1)
	s.Lock()
	before := s.Snapshot()
	s.SetActiveCell(grid.Cell{})
	m := grid.Matrix{{"a", "b"}, {"c", "d"}}

	plan, err := Prepare(s, m, Options{})
	require.NoError(t, err)
	cmd := plan.NewCommand(s, access.PlainField{}, m)

	err = cmd.Execute()
	var lerr *SchemaLockedError
	require.ErrorAs(t, err, &lerr)
	require.True(t, IsStructural(err))
	require.Equal(t, StateCreated, cmd.State())
	require.Equal(t, before, s.Snapshot())
}

func TestCommand_CellWriteFailureKeepsWrittenCells(t *testing.T) {
	cols := []grid.Column{
		{ID: "name", Field: "name"},
		{ID: "qty", Field: "qty", Type: grid.ColumnNumber},
	}
	s := grid.NewSheet("t", cols, []grid.Record{
		{grid.IDField: "0", "name": "apple", "qty": 1.0},
		{grid.IDField: "1", "name": "pear", "qty": 2.0},
	})
	s.SetActiveCell(grid.Cell{})
	m := grid.Matrix{{"kiwi", "3"}, {"plum", "lots"}}

	plan, err := Prepare(s, m, Options{})
	require.NoError(t, err)
	applied := false
	cmd := plan.NewCommand(s, access.Default(access.Options{}), m,
		WithAppliedCallback(func(grid.Range) { applied = true }))

	err = cmd.Execute()
	var werr *CellWriteError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, grid.Cell{Row: 1, Col: 1}, werr.Cell)
	require.Equal(t, 3, werr.Written)
	var cerr *access.CoercionError
	require.True(t, errors.As(err, &cerr))
	require.False(t, IsStructural(err))

	require.Equal(t, StateExecuted, cmd.State())
	require.False(t, applied)
	v, _ := s.Value(0, 0)
	require.Equal(t, "kiwi", v)
	v, _ = s.Value(1, 0)
	require.Equal(t, "plum", v)
	v, _ = s.Value(1, 1)
	require.Equal(t, 2.0, v, "failing cell keeps its old value")

	require.NoError(t, cmd.Undo())
	v, _ = s.Value(0, 0)
	require.Equal(t, "apple", v)
	v, _ = s.Value(0, 1)
	require.Equal(t, 1.0, v)
}

func TestCommand_RaggedRowsLeaveMissingCellsAlone(t *testing.T) {
	s := newTestSheet(2, 3)
	m := grid.Matrix{{"a", "b", "c"}, {"d"}}

	pasteAt(t, s, m, 0, 0, Options{})

	require.Equal(t, "d", cellText(t, s, 1, 0))
	require.Equal(t, "r1c1", cellText(t, s, 1, 1))
	require.Equal(t, "r1c2", cellText(t, s, 1, 2))
}

func TestCommand_HeaderPasteNamesNewColumns(t *testing.T) {
	s := newTestSheet(1, 1)
	m := grid.Matrix{{"First", "Second"}, {"1", "2"}}

	cmd := pasteAt(t, s, m, 0, 0, Options{IncludeHeader: true, FieldNameSeed: 100})

	require.Equal(t, 1, cmd.ColumnsAdded())
	cols := s.Columns()
	require.Equal(t, "colA", cols[0].Name)
	require.Equal(t, "Second", cols[1].Name)
	require.Equal(t, "100", cols[1].Field)
	require.Equal(t, "1", cellText(t, s, 0, 0))
	require.Equal(t, "2", cellText(t, s, 0, 1))
}

func TestCommand_CallbacksReceiveDestination(t *testing.T) {
	s := newTestSheet(3, 3)
	s.SetActiveCell(grid.Cell{Row: 1, Col: 1})
	m := grid.Matrix{{"a"}}
	plan, err := Prepare(s, m, Options{})
	require.NoError(t, err)

	var applied, undone []grid.Range
	cmd := plan.NewCommand(s, access.PlainField{}, m,
		WithAppliedCallback(func(r grid.Range) { applied = append(applied, r) }),
		WithUndoneCallback(func(r grid.Range) { undone = append(undone, r) }))

	require.NoError(t, cmd.Execute())
	require.NoError(t, cmd.Undo())

	want := []grid.Range{grid.NewRange(1, 1, 1, 1)}
	require.Equal(t, want, applied)
	require.Equal(t, want, undone)
	require.NotEmpty(t, cmd.ID())
}

func TestCommand_RenderCountAfterExecute(t *testing.T) {
	s := newTestSheet(2, 2)
	renders := 0
	s.OnRender(func() { renders++ })

	pasteAt(t, s, grid.Matrix{{"a", "b"}, {"c", "d"}}, 0, 0, Options{})

	// EndUpdate flushes dirty cells, then the command asks for a full render.
	require.Equal(t, 2, renders)
}

func TestCommand_BroadcastLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.IntRange(2, 6).Draw(t, "rows")
		cols := rapid.IntRange(1, 4).Draw(t, "cols")
		s := newTestSheet(rows, cols)

		// At least two rows keeps the selection multi-cell.
		r1 := rapid.IntRange(0, rows-2).Draw(t, "r1")
		r2 := rapid.IntRange(r1+1, rows-1).Draw(t, "r2")
		c1 := rapid.IntRange(0, cols-1).Draw(t, "c1")
		c2 := rapid.IntRange(0, cols-1).Draw(t, "c2")
		sel := grid.NewRange(r1, c1, r2, c2)
		s.SetSelectedRanges([]grid.Range{sel})
		value := rapid.StringMatching(`[a-z]{1,5}`).Draw(t, "value")

		plan, err := Prepare(s, grid.Matrix{{value}}, Options{})
		if err != nil {
			t.Fatalf("prepare: %v", err)
		}
		cmd := plan.NewCommand(s, access.PlainField{}, grid.Matrix{{value}})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}

		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				v, _ := s.Value(row, col)
				want := fmt.Sprintf("r%dc%d", row, col)
				if sel.Contains(row, col) {
					want = value
				}
				if v != want {
					t.Fatalf("cell (%d,%d) = %v, want %q", row, col, v, want)
				}
			}
		}
		if s.RowCount() != rows || len(s.Columns()) != cols {
			t.Fatalf("broadcast changed grid size")
		}
	})
}

func TestCommand_UndoIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.IntRange(0, 5).Draw(t, "rows")
		cols := rapid.IntRange(1, 4).Draw(t, "cols")
		s := newTestSheet(rows, cols)
		before := s.Snapshot()

		mRows := rapid.IntRange(1, 5).Draw(t, "mRows")
		mCols := rapid.IntRange(1, 5).Draw(t, "mCols")
		m := make(grid.Matrix, mRows)
		for r := range m {
			width := mCols
			if r > 0 {
				width = rapid.IntRange(1, mCols).Draw(t, "width")
			}
			m[r] = make([]string, width)
			for c := range m[r] {
				m[r][c] = rapid.StringMatching(`[a-z0-9]{0,4}`).Draw(t, "cell")
			}
		}

		anchorRow := rapid.IntRange(0, max(0, rows-1)).Draw(t, "anchorRow")
		anchorCol := rapid.IntRange(0, cols-1).Draw(t, "anchorCol")
		s.SetActiveCell(grid.Cell{Row: anchorRow, Col: anchorCol})

		plan, err := Prepare(s, m, Options{})
		if err != nil {
			t.Fatalf("prepare: %v", err)
		}
		cmd := plan.NewCommand(s, access.Default(access.Options{}), m)
		if err := cmd.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
		wantRows := rows + max(0, anchorRow+mRows-rows)
		if s.RowCount() != wantRows {
			t.Fatalf("row count %d after execute, want %d", s.RowCount(), wantRows)
		}
		if err := cmd.Undo(); err != nil {
			t.Fatalf("undo: %v", err)
		}

		after := s.Snapshot()
		if len(after.Rows) != len(before.Rows) || len(after.Columns) != len(before.Columns) {
			t.Fatalf("size changed: %dx%d -> %dx%d",
				len(before.Rows), len(before.Columns), len(after.Rows), len(after.Columns))
		}
		for i := range before.Rows {
			if fmt.Sprint(before.Rows[i]) != fmt.Sprint(after.Rows[i]) {
				t.Fatalf("row %d not restored: %v -> %v", i, before.Rows[i], after.Rows[i])
			}
		}
	})
}
