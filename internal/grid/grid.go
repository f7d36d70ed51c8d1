// Package grid defines the data model shared by the clipboard engine and the
// surface it needs from a host data grid.
//
// The engine never owns a grid. Hosts hand it something that satisfies [Grid];
// [Sheet] is the in-memory implementation used by the terminal UI, the CLI and
// the HTTP server. Column and row collections inside a Sheet are versioned
// stores mutated only through explicit append/replace/truncate operations that
// return deltas, so undo can be computed from the delta alone.
package grid

import "errors"

// ErrSchemaLocked is returned by SetColumns when the host does not allow the
// column set to change.
var ErrSchemaLocked = errors.New("grid schema is locked")

// RowDelta describes a contiguous block of rows appended to a grid.
// Version is the row store version right after the append.
type RowDelta struct {
	From    int
	Count   int
	Version uint64
}

// Grid is the host query surface consumed by copy and paste.
type Grid interface {
	// Columns returns the current column descriptors in display order.
	Columns() []Column
	// SetColumns replaces the column set. Returns ErrSchemaLocked (possibly
	// wrapped) when the host rejects the change.
	SetColumns(cols []Column) error

	// RowCount returns the number of rows.
	RowCount() int
	// Record returns the live record at row. Mutating it mutates the grid.
	Record(row int) (Record, bool)
	// AppendRows appends records at the end and reports what was added.
	AppendRows(recs []Record) RowDelta
	// TruncateRows removes exactly the rows described by delta, which must
	// still be the trailing rows of the grid.
	TruncateRows(delta RowDelta) error

	// ActiveCell returns the focused cell, if any.
	ActiveCell() (Cell, bool)
	// SelectedRanges returns the current selection, first range first.
	SelectedRanges() []Range
	// SetSelectedRanges replaces the selection.
	SetSelectedRanges(ranges []Range)

	// UpdateCell marks one cell as changed so the host can redraw it.
	UpdateCell(row, col int)
	// Render requests a full redraw.
	Render()
	// BeginUpdate and EndUpdate bracket bulk mutation.
	BeginUpdate()
	EndUpdate()
}
