package paste

import "github.com/zjrosen/gridclip/internal/grid"

// Validate rejects matrices that cannot be placed anywhere: no rows, no
// columns, or nothing but a header row.
func Validate(m grid.Matrix, includeHeader bool) error {
	if m.Empty() {
		return &ParseAmbiguityError{Reason: "no rows or columns detected", Column: -1}
	}
	if m.Cols() == 0 {
		return &ParseAmbiguityError{Reason: "first row has no columns", Column: -1}
	}
	if effectiveRows(m, includeHeader) == 0 {
		return &ParseAmbiguityError{Reason: "only a header row was pasted", Column: -1}
	}
	return nil
}

// effectiveRows is the number of data rows once a header row is discounted.
func effectiveRows(m grid.Matrix, includeHeader bool) int {
	if includeHeader {
		return max(0, m.Rows()-1)
	}
	return m.Rows()
}

// headerOffset is the matrix row holding the first data row.
func headerOffset(includeHeader bool) int {
	if includeHeader {
		return 1
	}
	return 0
}
