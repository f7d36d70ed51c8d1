// Package serialize turns selected grid ranges into clipboard text.
package serialize

import (
	"fmt"
	"strings"

	"github.com/zjrosen/gridclip/internal/access"
	"github.com/zjrosen/gridclip/internal/codec"
	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/log"
)

// Options controls Serialize.
type Options struct {
	// IncludeHeader prefixes each block with the column names.
	IncludeHeader bool
	// Delimiter separates cells. Zero means tab.
	Delimiter rune
	// Quote wraps fields holding the delimiter, a quote or a line break.
	Quote bool
}

// OutOfGridError means a range does not overlap the grid at all.
type OutOfGridError struct {
	Range grid.Range
	Rows  int
	Cols  int
}

func (e *OutOfGridError) Error() string {
	return fmt.Sprintf("range %s lies outside the %dx%d grid", e.Range, e.Rows, e.Cols)
}

// Serialize encodes each range as a block and terminates every block with
// CRLF, so multiple ranges read as consecutive rows. Ranges are clipped to
// the grid.
func Serialize(g grid.Grid, ranges []grid.Range, acc access.Strategy, opts Options) (string, error) {
	columns := g.Columns()
	rowCount := g.RowCount()

	var b strings.Builder
	for _, r := range ranges {
		clipped, ok := Clip(r, rowCount, len(columns))
		if !ok {
			return "", &OutOfGridError{Range: r, Rows: rowCount, Cols: len(columns)}
		}
		m, names := Block(g, columns, clipped, acc)
		b.WriteString(codec.Encode(m, codec.EncodeOptions{
			Delimiter:     opts.Delimiter,
			IncludeHeader: opts.IncludeHeader,
			HeaderNames:   names,
			Quote:         opts.Quote,
		}))
		b.WriteString(codec.RowSeparator)
	}
	log.Debug(log.CatCopy, "serialized ranges", "ranges", len(ranges), "bytes", b.Len())
	return b.String(), nil
}

// Block reads one clipped range into a matrix and returns the names of the
// columns it spans.
func Block(g grid.Grid, columns []grid.Column, r grid.Range, acc access.Strategy) (grid.Matrix, []string) {
	names := make([]string, 0, r.Cols())
	for col := r.FromCell; col <= r.ToCell; col++ {
		names = append(names, columns[col].Name)
	}
	m := make(grid.Matrix, 0, r.Rows())
	for row := r.FromRow; row <= r.ToRow; row++ {
		rec, ok := g.Record(row)
		if !ok {
			continue
		}
		cells := make([]string, 0, r.Cols())
		for col := r.FromCell; col <= r.ToCell; col++ {
			cells = append(cells, access.Text(acc.Get(rec, columns[col])))
		}
		m = append(m, cells)
	}
	return m, names
}

// Clip limits r to a rows x cols grid. ok is false when nothing remains.
func Clip(r grid.Range, rows, cols int) (grid.Range, bool) {
	r = grid.NewRange(r.FromRow, r.FromCell, r.ToRow, r.ToCell)
	if r.FromRow < 0 {
		r.FromRow = 0
	}
	if r.FromCell < 0 {
		r.FromCell = 0
	}
	r.ToRow = min(r.ToRow, rows-1)
	r.ToCell = min(r.ToCell, cols-1)
	if r.FromRow > r.ToRow || r.FromCell > r.ToCell {
		return grid.Range{}, false
	}
	return r, true
}

// RowCount is the value reported to copy-success hooks: the height of a
// single range, or the number of ranges when several were copied.
func RowCount(ranges []grid.Range) int {
	if len(ranges) == 1 {
		return ranges[0].Rows()
	}
	return len(ranges)
}
