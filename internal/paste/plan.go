package paste

import (
	"github.com/zjrosen/gridclip/internal/access"
	"github.com/zjrosen/gridclip/internal/grid"
)

// Options are the paste settings shared by resolve and reconcile.
type Options struct {
	IncludeHeader  bool
	MinPasteColumn int
	FieldNameSeed  int
	Limits         Limits
}

// Limits caps how far a paste may grow the grid. Zero means unlimited.
// A grid already past a limit keeps its size but cannot grow further.
type Limits struct {
	MaxRows int
	MaxCols int
}

func (l Limits) check(g grid.Grid, dest grid.Range) error {
	if rows := dest.ToRow + 1; l.MaxRows > 0 && rows > l.MaxRows && rows > g.RowCount() {
		return &GrowthLimitError{Axis: "rows", Need: rows, Max: l.MaxRows}
	}
	if cols := dest.ToCell + 1; l.MaxCols > 0 && cols > l.MaxCols && cols > len(g.Columns()) {
		return &GrowthLimitError{Axis: "columns", Need: cols, Max: l.MaxCols}
	}
	return nil
}

// Plan is everything a paste will do, computed without touching the grid.
type Plan struct {
	Resolution
	Columns ColumnPlan
	Rows    GrowthPlan
}

// Prepare resolves m against the grid's cursor and plans column and row
// growth.
func Prepare(g grid.Grid, m grid.Matrix, opts Options) (Plan, error) {
	var active *grid.Cell
	if c, ok := g.ActiveCell(); ok {
		active = &c
	}
	res, err := Resolve(m, active, g.SelectedRanges(), ResolveOptions{
		IncludeHeader:  opts.IncludeHeader,
		MinPasteColumn: opts.MinPasteColumn,
	})
	if err != nil {
		return Plan{}, err
	}
	if err := opts.Limits.check(g, res.Destination); err != nil {
		return Plan{}, err
	}

	existing := g.Columns()
	cols := ColumnPlan{Columns: existing, Previous: existing}
	// A broadcast fills an existing selection, so it never needs new columns.
	if !res.Broadcast {
		cols, err = Reconcile(existing, m[0], res.Cols, res.Anchor().Col, ReconcileOptions{
			IncludeHeader:  opts.IncludeHeader,
			MinPasteColumn: opts.MinPasteColumn,
			FieldNameSeed:  opts.FieldNameSeed,
		})
		if err != nil {
			return Plan{}, err
		}
	}

	return Plan{
		Resolution: res,
		Columns:    cols,
		Rows:       PlanGrowth(g.RowCount(), res.Destination),
	}, nil
}

// NewCommand builds the command that carries out the plan.
func (p Plan) NewCommand(g grid.Grid, acc access.Strategy, m grid.Matrix, opts ...CommandOption) *Command {
	return NewCommand(g, acc, m, p.Resolution, p.Columns, p.Rows, opts...)
}
