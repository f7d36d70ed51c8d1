package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell identifies one grid position by row and column index (0-indexed).
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Range is an inclusive rectangular cell selection.
// A well-formed Range satisfies FromRow <= ToRow and FromCell <= ToCell.
type Range struct {
	FromRow  int `json:"from_row"`
	ToRow    int `json:"to_row"`
	FromCell int `json:"from_cell"`
	ToCell   int `json:"to_cell"`
}

// NewRange builds a Range from two corners in any order.
func NewRange(row1, cell1, row2, cell2 int) Range {
	return Range{
		FromRow:  min(row1, row2),
		ToRow:    max(row1, row2),
		FromCell: min(cell1, cell2),
		ToCell:   max(cell1, cell2),
	}
}

// SingleCell returns the 1x1 range covering c.
func SingleCell(c Cell) Range {
	return Range{FromRow: c.Row, ToRow: c.Row, FromCell: c.Col, ToCell: c.Col}
}

// Rows returns the number of rows covered.
func (r Range) Rows() int { return r.ToRow - r.FromRow + 1 }

// Cols returns the number of columns covered.
func (r Range) Cols() int { return r.ToCell - r.FromCell + 1 }

// CellCount returns Rows() * Cols().
func (r Range) CellCount() int { return r.Rows() * r.Cols() }

// IsSingleCell reports whether the range covers exactly one cell.
func (r Range) IsSingleCell() bool { return r.FromRow == r.ToRow && r.FromCell == r.ToCell }

// Contains reports whether (row, col) lies inside the range.
func (r Range) Contains(row, col int) bool {
	return row >= r.FromRow && row <= r.ToRow && col >= r.FromCell && col <= r.ToCell
}

// TopLeft returns the anchor corner of the range.
func (r Range) TopLeft() Cell { return Cell{Row: r.FromRow, Col: r.FromCell} }

// BottomRight returns the corner opposite TopLeft.
func (r Range) BottomRight() Cell { return Cell{Row: r.ToRow, Col: r.ToCell} }

// Valid reports whether the bounds are ordered and non-negative.
func (r Range) Valid() bool {
	return r.FromRow >= 0 && r.FromCell >= 0 && r.FromRow <= r.ToRow && r.FromCell <= r.ToCell
}

// String renders the range as r<row>c<col>:r<row>c<col>.
func (r Range) String() string {
	return fmt.Sprintf("r%dc%d:r%dc%d", r.FromRow, r.FromCell, r.ToRow, r.ToCell)
}

// ParseRange parses the form produced by Range.String, or a single r<row>c<col> cell.
func ParseRange(s string) (Range, error) {
	from, to, found := strings.Cut(strings.TrimSpace(s), ":")
	a, err := parseRC(from)
	if err != nil {
		return Range{}, err
	}
	if !found {
		return SingleCell(a), nil
	}
	b, err := parseRC(to)
	if err != nil {
		return Range{}, err
	}
	return NewRange(a.Row, a.Col, b.Row, b.Col), nil
}

func parseRC(s string) (Cell, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	rowPart, colPart, ok := strings.Cut(strings.TrimPrefix(s, "r"), "c")
	if !ok || !strings.HasPrefix(s, "r") {
		return Cell{}, fmt.Errorf("invalid cell reference %q: want r<row>c<col>", s)
	}
	row, err := strconv.Atoi(rowPart)
	if err != nil || row < 0 {
		return Cell{}, fmt.Errorf("invalid row in %q", s)
	}
	col, err := strconv.Atoi(colPart)
	if err != nil || col < 0 {
		return Cell{}, fmt.Errorf("invalid column in %q", s)
	}
	return Cell{Row: row, Col: col}, nil
}

// ParseA1 parses spreadsheet notation ("B3" or "A1:C4") into a 0-indexed Range.
func ParseA1(s string) (Range, error) {
	from, to, found := strings.Cut(strings.TrimSpace(s), ":")
	a, err := parseA1Cell(from)
	if err != nil {
		return Range{}, err
	}
	if !found {
		return SingleCell(a), nil
	}
	b, err := parseA1Cell(to)
	if err != nil {
		return Range{}, err
	}
	return NewRange(a.Row, a.Col, b.Row, b.Col), nil
}

// Spreadsheet notation limits, matching the largest xlsx worksheet.
const (
	MaxA1Columns = 16384
	MaxA1Rows    = 1 << 20
)

func parseA1Cell(s string) (Cell, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	i := 0
	col := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		col = col*26 + int(s[i]-'A'+1)
		if col > MaxA1Columns {
			return Cell{}, fmt.Errorf("column out of range in A1 reference %q", s)
		}
		i++
	}
	if i == 0 || i == len(s) {
		return Cell{}, fmt.Errorf("invalid A1 reference %q", s)
	}
	row, err := strconv.Atoi(s[i:])
	if err != nil || row < 1 {
		return Cell{}, fmt.Errorf("invalid row in A1 reference %q", s)
	}
	if row > MaxA1Rows {
		return Cell{}, fmt.Errorf("row out of range in A1 reference %q", s)
	}
	return Cell{Row: row - 1, Col: col - 1}, nil
}

// A1 renders the range in spreadsheet notation, collapsing a single cell.
func (r Range) A1() string {
	from := ColumnLetter(r.FromCell) + strconv.Itoa(r.FromRow+1)
	if r.IsSingleCell() {
		return from
	}
	return from + ":" + ColumnLetter(r.ToCell) + strconv.Itoa(r.ToRow+1)
}

// ColumnLetter converts a 0-indexed column into its spreadsheet letter ("A", "AB").
func ColumnLetter(col int) string {
	var b []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}
