package paste

import "github.com/zjrosen/gridclip/internal/grid"

// ResolveOptions controls Resolve.
type ResolveOptions struct {
	// IncludeHeader treats the first matrix row as column names.
	IncludeHeader bool
	// MinPasteColumn is the leftmost column a paste may start at.
	MinPasteColumn int
}

// Resolution is where a matrix lands.
type Resolution struct {
	// Destination is the rectangle that receives values.
	Destination grid.Range
	// Broadcast is set when one value fills the whole Destination.
	Broadcast bool
	// Rows and Cols are the Destination dimensions.
	Rows int
	Cols int
	// HeaderOffset is the matrix row holding the first data row.
	HeaderOffset int
}

// Anchor is the destination's top-left cell.
func (r Resolution) Anchor() grid.Cell { return r.Destination.TopLeft() }

// Source returns the matrix text for destination cell (row, col). ok is
// false when the matrix has no cell there (ragged rows).
func (r Resolution) Source(m grid.Matrix, row, col int) (string, bool) {
	if r.Broadcast {
		return m.Cell(r.HeaderOffset, 0)
	}
	return m.Cell(r.HeaderOffset+row-r.Destination.FromRow, col-r.Destination.FromCell)
}

// Resolve computes the destination of m. The anchor is the active cell, or
// the top-left of the first selected range when active is nil.
//
// A 1x1 data block pasted while the first selected range covers more than one
// cell is broadcast over that range. Otherwise the destination has the data
// block's dimensions and the selection size is ignored.
func Resolve(m grid.Matrix, active *grid.Cell, selected []grid.Range, opts ResolveOptions) (Resolution, error) {
	if err := Validate(m, opts.IncludeHeader); err != nil {
		return Resolution{}, err
	}
	rows, cols := effectiveRows(m, opts.IncludeHeader), m.Cols()
	offset := headerOffset(opts.IncludeHeader)

	if rows == 1 && cols == 1 && len(selected) > 0 && selected[0].CellCount() > 1 {
		dest := selected[0]
		dest.FromCell = max(dest.FromCell, opts.MinPasteColumn)
		dest.ToCell = max(dest.ToCell, opts.MinPasteColumn)
		return Resolution{
			Destination:  dest,
			Broadcast:    true,
			Rows:         dest.Rows(),
			Cols:         dest.Cols(),
			HeaderOffset: offset,
		}, nil
	}

	var anchor grid.Cell
	switch {
	case active != nil:
		anchor = *active
	case len(selected) > 0:
		anchor = selected[0].TopLeft()
	default:
		return Resolution{}, &NoAnchorError{}
	}
	anchor.Col = max(anchor.Col, opts.MinPasteColumn)

	return Resolution{
		Destination:  grid.NewRange(anchor.Row, anchor.Col, anchor.Row+rows-1, anchor.Col+cols-1),
		Rows:         rows,
		Cols:         cols,
		HeaderOffset: offset,
	}, nil
}
