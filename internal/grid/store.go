package grid

import (
	"fmt"
)

// ColumnDelta describes a change of the column set.
type ColumnDelta struct {
	Before  int
	After   int
	Version uint64
}

// Added returns how many columns the change appended (0 for shrinking changes).
func (d ColumnDelta) Added() int { return max(0, d.After-d.Before) }

// ColumnStore owns an ordered column set. Every structural change bumps the
// version.
type ColumnStore struct {
	cols    []Column
	version uint64
	locked  bool
}

// NewColumnStore creates a store holding a copy of cols.
func NewColumnStore(cols []Column) *ColumnStore {
	return &ColumnStore{cols: append([]Column(nil), cols...)}
}

// All returns a copy of the columns.
func (s *ColumnStore) All() []Column { return append([]Column(nil), s.cols...) }

// Len returns the number of columns.
func (s *ColumnStore) Len() int { return len(s.cols) }

// At returns the column at index i.
func (s *ColumnStore) At(i int) (Column, bool) {
	if i < 0 || i >= len(s.cols) {
		return Column{}, false
	}
	return s.cols[i], true
}

// Version returns the current version.
func (s *ColumnStore) Version() uint64 { return s.version }

// Locked reports whether the store rejects changes.
func (s *ColumnStore) Locked() bool { return s.locked }

// SetLocked toggles schema locking.
func (s *ColumnStore) SetLocked(locked bool) { s.locked = locked }

// Replace swaps in a new column set.
func (s *ColumnStore) Replace(cols []Column) (ColumnDelta, error) {
	if s.locked {
		return ColumnDelta{}, ErrSchemaLocked
	}
	before := len(s.cols)
	s.cols = append([]Column(nil), cols...)
	s.version++
	return ColumnDelta{Before: before, After: len(s.cols), Version: s.version}, nil
}

// Append adds columns at the end.
func (s *ColumnStore) Append(cols ...Column) (ColumnDelta, error) {
	return s.Replace(append(s.All(), cols...))
}

// RowStore owns the ordered records of a grid.
type RowStore struct {
	rows []Record
	// version bumps on every append, truncate or replace.
	version uint64
	// replacedAt is the version of the last wholesale Replace.
	replacedAt uint64
}

// NewRowStore creates a store over recs. The slice is copied; records are not.
func NewRowStore(recs []Record) *RowStore {
	return &RowStore{rows: append([]Record(nil), recs...)}
}

// Len returns the number of rows.
func (s *RowStore) Len() int { return len(s.rows) }

// Version returns the current version.
func (s *RowStore) Version() uint64 { return s.version }

// Get returns the live record at i.
func (s *RowStore) Get(i int) (Record, bool) {
	if i < 0 || i >= len(s.rows) {
		return nil, false
	}
	return s.rows[i], true
}

// All returns a copy of the row slice (records are shared).
func (s *RowStore) All() []Record { return append([]Record(nil), s.rows...) }

// Append adds records at the end.
func (s *RowStore) Append(recs []Record) RowDelta {
	from := len(s.rows)
	s.rows = append(s.rows, recs...)
	s.version++
	return RowDelta{From: from, Count: len(recs), Version: s.version}
}

// Truncate removes the rows described by delta. They must still be the
// trailing rows and the store must not have been replaced since.
func (s *RowStore) Truncate(delta RowDelta) error {
	if delta.Count == 0 {
		return nil
	}
	if s.replacedAt > delta.Version {
		return fmt.Errorf("rows were replaced after append at version %d", delta.Version)
	}
	if delta.From+delta.Count != len(s.rows) {
		return fmt.Errorf("appended rows %d..%d are no longer trailing (row count %d)",
			delta.From, delta.From+delta.Count-1, len(s.rows))
	}
	s.rows = s.rows[:delta.From]
	s.version++
	return nil
}

// Replace swaps in a new row set.
func (s *RowStore) Replace(recs []Record) {
	s.rows = append([]Record(nil), recs...)
	s.version++
	s.replacedAt = s.version
}
