package paste

import (
	"strconv"
	"strings"

	"github.com/zjrosen/gridclip/internal/grid"
)

// NewColumnWidth is the width and minimum width of generated columns.
const NewColumnWidth = 100

// ReconcileOptions controls Reconcile.
type ReconcileOptions struct {
	// IncludeHeader names generated columns after the pasted header row.
	IncludeHeader bool
	// MinPasteColumn is the leftmost column a paste may start at.
	MinPasteColumn int
	// FieldNameSeed is the first generated field name.
	FieldNameSeed int
}

// ColumnPlan is the column set a paste needs.
type ColumnPlan struct {
	// Columns is the full column set after the paste.
	Columns []grid.Column
	// Previous is the column set before the paste.
	Previous []grid.Column
	// Added are the generated columns, in order.
	Added []grid.Column
}

// Grows reports whether the plan appends columns.
func (p ColumnPlan) Grows() bool { return len(p.Added) > 0 }

// Apply installs the planned columns. A grid that rejects them yields a
// *SchemaLockedError and keeps its columns.
func (p ColumnPlan) Apply(g grid.Grid) error {
	if !p.Grows() {
		return nil
	}
	if err := g.SetColumns(p.Columns); err != nil {
		return &SchemaLockedError{Wanted: len(p.Columns), Have: len(p.Previous), Err: err}
	}
	return nil
}

// Revert restores the column set from before Apply.
func (p ColumnPlan) Revert(g grid.Grid) error {
	if !p.Grows() {
		return nil
	}
	return g.SetColumns(p.Previous)
}

// Reconcile decides which columns must be appended so pastedCols columns fit
// starting at anchorCol. Existing columns are never modified. header is the
// first matrix row; it names generated columns when opts.IncludeHeader is set.
func Reconcile(existing []grid.Column, header []string, pastedCols, anchorCol int, opts ReconcileOptions) (ColumnPlan, error) {
	plan := ColumnPlan{
		Columns:  append([]grid.Column(nil), existing...),
		Previous: append([]grid.Column(nil), existing...),
	}
	start := max(anchorCol, opts.MinPasteColumn)
	missing := start + pastedCols - len(existing)
	if pastedCols <= 0 || missing <= 0 {
		return plan, nil
	}

	taken := make(map[string]struct{}, 2*len(existing))
	for _, c := range existing {
		taken[c.Field] = struct{}{}
		taken[c.ID] = struct{}{}
	}
	seed := opts.FieldNameSeed
	nextField := func() string {
		for {
			name := strconv.Itoa(seed)
			seed++
			if _, ok := taken[name]; !ok {
				taken[name] = struct{}{}
				return name
			}
		}
	}

	for k := range missing {
		// Matrix column that lands in this new grid column; negative for
		// filler columns between the grid's edge and MinPasteColumn.
		src := len(existing) + k - start
		col := newColumn(nextField())
		if opts.IncludeHeader && src >= 0 {
			name := ""
			if src < len(header) {
				name = header[src]
			}
			if strings.TrimSpace(name) == "" {
				return ColumnPlan{Columns: plan.Previous, Previous: plan.Previous},
					&ParseAmbiguityError{Reason: "does not have a valid name", Column: src}
			}
			col.Name = name
		}
		plan.Columns = append(plan.Columns, col)
		plan.Added = append(plan.Added, col)
	}
	return plan, nil
}

func newColumn(field string) grid.Column {
	return grid.Column{
		ID:               field,
		Field:            field,
		Type:             grid.ColumnText,
		Width:            NewColumnWidth,
		MinWidth:         NewColumnWidth,
		Sortable:         true,
		Resizable:        true,
		RerenderOnResize: true,
	}
}
