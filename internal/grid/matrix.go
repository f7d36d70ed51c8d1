package grid

// Matrix is a row-major block of cell text. Rows may be jagged; a short row
// is treated as missing its trailing cells.
type Matrix [][]string

// Rows returns the number of rows.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the width of the first row, or 0 for an empty matrix.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Empty reports whether the matrix has no cells at all.
func (m Matrix) Empty() bool {
	for _, row := range m {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

// Cell returns the text at (r, c). ok is false when the cell is missing.
func (m Matrix) Cell(r, c int) (string, bool) {
	if r < 0 || r >= len(m) || c < 0 || c >= len(m[r]) {
		return "", false
	}
	return m[r][c], true
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]string(nil), row...)
	}
	return out
}
