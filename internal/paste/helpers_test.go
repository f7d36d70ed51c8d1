package paste

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridclip/internal/access"
	"github.com/zjrosen/gridclip/internal/grid"
)

// newTestSheet builds a rows x cols sheet whose cells read "r<row>c<col>".
func newTestSheet(rows, cols int) *grid.Sheet {
	columns := make([]grid.Column, cols)
	for c := range columns {
		name := fmt.Sprintf("col%c", 'A'+c)
		columns[c] = grid.Column{ID: name, Field: name, Name: name}
	}
	recs := make([]grid.Record, rows)
	for r := range recs {
		rec := grid.Record{grid.IDField: fmt.Sprint(r)}
		for c, col := range columns {
			rec[col.Field] = fmt.Sprintf("r%dc%d", r, c)
		}
		recs[r] = rec
	}
	return grid.NewSheet("test", columns, recs)
}

// cellText reads a cell as text, "" when missing.
func cellText(t *testing.T, s *grid.Sheet, row, col int) string {
	t.Helper()
	v, _ := s.Value(row, col)
	return access.Text(v)
}

// pasteAt prepares and executes a paste of m with the active cell at (row, col).
func pasteAt(t *testing.T, s *grid.Sheet, m grid.Matrix, row, col int, opts Options) *Command {
	t.Helper()
	s.SetActiveCell(grid.Cell{Row: row, Col: col})
	plan, err := Prepare(s, m, opts)
	require.NoError(t, err)
	cmd := plan.NewCommand(s, access.Default(access.Options{}), m)
	require.NoError(t, cmd.Execute())
	return cmd
}
