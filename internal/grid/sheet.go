package grid

import "sort"

// Sheet is an in-memory Grid. It is not safe for concurrent use; hosts
// serialize access.
type Sheet struct {
	name      string
	columns   *ColumnStore
	rows      *RowStore
	active    *Cell
	selection []Range

	batchDepth int
	dirty      map[Cell]struct{}
	renders    int
	onRender   func()
}

// Ensure Sheet implements Grid.
var _ Grid = (*Sheet)(nil)

// NewSheet creates a sheet with the given columns and records.
func NewSheet(name string, cols []Column, recs []Record) *Sheet {
	return &Sheet{
		name:    name,
		columns: NewColumnStore(cols),
		rows:    NewRowStore(recs),
		dirty:   make(map[Cell]struct{}),
	}
}

// Name returns the sheet name.
func (s *Sheet) Name() string { return s.name }

// ColumnStore exposes the versioned column store.
func (s *Sheet) ColumnStore() *ColumnStore { return s.columns }

// RowStore exposes the versioned row store.
func (s *Sheet) RowStore() *RowStore { return s.rows }

// Lock makes the column set read-only.
func (s *Sheet) Lock() { s.columns.SetLocked(true) }

// Unlock allows column changes again.
func (s *Sheet) Unlock() { s.columns.SetLocked(false) }

func (s *Sheet) Columns() []Column { return s.columns.All() }

func (s *Sheet) SetColumns(cols []Column) error {
	_, err := s.columns.Replace(cols)
	if err == nil {
		s.Render()
	}
	return err
}

func (s *Sheet) RowCount() int { return s.rows.Len() }

func (s *Sheet) Record(row int) (Record, bool) { return s.rows.Get(row) }

func (s *Sheet) AppendRows(recs []Record) RowDelta { return s.rows.Append(recs) }

func (s *Sheet) TruncateRows(delta RowDelta) error {
	if err := s.rows.Truncate(delta); err != nil {
		return err
	}
	s.clampCursor()
	return nil
}

func (s *Sheet) ActiveCell() (Cell, bool) {
	if s.active == nil {
		return Cell{}, false
	}
	return *s.active, true
}

// SetActiveCell focuses c.
func (s *Sheet) SetActiveCell(c Cell) { s.active = &c }

// ClearActiveCell removes focus.
func (s *Sheet) ClearActiveCell() { s.active = nil }

func (s *Sheet) SelectedRanges() []Range { return append([]Range(nil), s.selection...) }

func (s *Sheet) SetSelectedRanges(ranges []Range) {
	s.selection = append([]Range(nil), ranges...)
}

func (s *Sheet) UpdateCell(row, col int) {
	s.dirty[Cell{Row: row, Col: col}] = struct{}{}
}

func (s *Sheet) Render() {
	if s.batchDepth > 0 {
		return
	}
	s.renders++
	if s.onRender != nil {
		s.onRender()
	}
}

func (s *Sheet) BeginUpdate() { s.batchDepth++ }

func (s *Sheet) EndUpdate() {
	if s.batchDepth == 0 {
		return
	}
	s.batchDepth--
	if s.batchDepth == 0 && len(s.dirty) > 0 {
		s.Render()
	}
}

// OnRender registers a callback invoked on every effective Render.
func (s *Sheet) OnRender(fn func()) { s.onRender = fn }

// RenderCount returns how many renders happened.
func (s *Sheet) RenderCount() int { return s.renders }

// DrainDirty returns and clears cells marked by UpdateCell, sorted row-major.
func (s *Sheet) DrainDirty() []Cell {
	cells := make([]Cell, 0, len(s.dirty))
	for c := range s.dirty {
		cells = append(cells, c)
	}
	s.dirty = make(map[Cell]struct{})
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	return cells
}

// Value returns the raw stored value at (row, col).
func (s *Sheet) Value(row, col int) (any, bool) {
	rec, ok := s.rows.Get(row)
	if !ok {
		return nil, false
	}
	c, ok := s.columns.At(col)
	if !ok {
		return nil, false
	}
	v, ok := rec[c.Field]
	return v, ok
}

// SetValue stores a raw value at (row, col). Out-of-range positions are ignored.
func (s *Sheet) SetValue(row, col int, v any) bool {
	rec, ok := s.rows.Get(row)
	if !ok {
		return false
	}
	c, ok := s.columns.At(col)
	if !ok {
		return false
	}
	rec[c.Field] = v
	s.UpdateCell(row, col)
	return true
}

// Snapshot is a detached copy of a sheet's columns and rows.
type Snapshot struct {
	Name    string
	Columns []Column
	Rows    []Record
}

// Snapshot returns a deep copy of columns and records.
func (s *Sheet) Snapshot() Snapshot {
	rows := make([]Record, s.rows.Len())
	for i := range rows {
		rec, _ := s.rows.Get(i)
		rows[i] = rec.Clone()
	}
	return Snapshot{Name: s.name, Columns: s.columns.All(), Rows: rows}
}

// Restore replaces the whole content with snap. Selection is clamped to the
// new bounds.
func (s *Sheet) Restore(snap Snapshot) {
	locked := s.columns.Locked()
	s.columns.SetLocked(false)
	_, _ = s.columns.Replace(snap.Columns)
	s.columns.SetLocked(locked)
	s.rows.Replace(snap.Rows)
	s.clampCursor()
	s.Render()
}

// clampCursor drops selection and focus that fall outside the grid.
func (s *Sheet) clampCursor() {
	rows, cols := s.rows.Len(), s.columns.Len()
	if s.active != nil && (s.active.Row >= rows || s.active.Col >= cols) {
		if rows == 0 || cols == 0 {
			s.active = nil
		} else {
			s.active = &Cell{Row: min(s.active.Row, rows-1), Col: min(s.active.Col, cols-1)}
		}
	}
	kept := s.selection[:0]
	for _, r := range s.selection {
		if r.FromRow < rows && r.FromCell < cols {
			r.ToRow = min(r.ToRow, rows-1)
			r.ToCell = min(r.ToCell, cols-1)
			kept = append(kept, r)
		}
	}
	s.selection = kept
}
