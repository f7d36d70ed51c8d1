package paste

import (
	"errors"
	"fmt"

	"github.com/zjrosen/gridclip/internal/grid"
)

// ParseAmbiguityError means the clipboard content has no usable rows or
// columns, or a header cell cannot name a new column. Nothing was mutated.
type ParseAmbiguityError struct {
	Reason string
	// Column is the offending 0-indexed matrix column, or -1.
	Column int
}

func (e *ParseAmbiguityError) Error() string {
	if e.Column >= 0 {
		return fmt.Sprintf("ambiguous clipboard content: column %d %s", e.Column+1, e.Reason)
	}
	return "ambiguous clipboard content: " + e.Reason
}

// NoAnchorError means there is neither an active cell nor a selection.
type NoAnchorError struct{}

func (e *NoAnchorError) Error() string {
	return "nowhere to paste: no active cell and no selection"
}

// SchemaLockedError means the grid refused the extended column set.
// Nothing was mutated.
type SchemaLockedError struct {
	Wanted int
	Have   int
	Err    error
}

func (e *SchemaLockedError) Error() string {
	return fmt.Sprintf("grid schema is locked: paste needs %d columns, grid has %d: %v", e.Wanted, e.Have, e.Err)
}

func (e *SchemaLockedError) Unwrap() error { return e.Err }

// GrowthLimitError means the paste would grow the grid past a configured
// limit. Nothing was mutated.
type GrowthLimitError struct {
	// Axis is "rows" or "columns".
	Axis string
	Need int
	Max  int
}

func (e *GrowthLimitError) Error() string {
	return fmt.Sprintf("paste needs %d %s, limit is %d", e.Need, e.Axis, e.Max)
}

// InvalidStateError means Execute or Undo was called out of sequence.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a paste command in state %s", e.Op, e.State)
}

// CellWriteError reports the first cell the access strategy refused during
// Execute. Cells written before it keep their new values.
type CellWriteError struct {
	Cell    grid.Cell
	Field   string
	Text    string
	Written int
	Err     error
}

func (e *CellWriteError) Error() string {
	return fmt.Sprintf("writing %q to row %d column %q (after %d cells): %v",
		e.Text, e.Cell.Row, e.Field, e.Written, e.Err)
}

func (e *CellWriteError) Unwrap() error { return e.Err }

// IsStructural reports whether err was raised before any grid mutation.
func IsStructural(err error) bool {
	var (
		parse  *ParseAmbiguityError
		anchor *NoAnchorError
		locked *SchemaLockedError
		limit  *GrowthLimitError
	)
	return errors.As(err, &parse) || errors.As(err, &anchor) || errors.As(err, &locked) ||
		errors.As(err, &limit)
}
