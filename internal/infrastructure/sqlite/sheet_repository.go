package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/log"
)

// SheetNotFoundError is returned when no sheet has the requested name.
type SheetNotFoundError struct {
	Name string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found", e.Name)
}

// SheetInfo summarizes a stored sheet.
type SheetInfo struct {
	Name      string
	Columns   int
	Rows      int
	Locked    bool
	UpdatedAt time.Time
}

// SheetRepository saves and loads whole sheets.
type SheetRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSheetRepository creates a repository over db.
func NewSheetRepository(db *sql.DB) *SheetRepository {
	return &SheetRepository{db: db, now: time.Now}
}

// Save replaces the stored content of the sheet named snap.Name.
func (r *SheetRepository) Save(ctx context.Context, snap grid.Snapshot, locked bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := r.now().Unix()
	var sheetID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO sheets (name, locked, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET locked = excluded.locked, updated_at = excluded.updated_at
		RETURNING id`,
		snap.Name, locked, now, now,
	).Scan(&sheetID)
	if err != nil {
		return fmt.Errorf("failed to upsert sheet: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_columns WHERE sheet_id = ?`, sheetID); err != nil {
		return fmt.Errorf("failed to clear columns: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_rows WHERE sheet_id = ?`, sheetID); err != nil {
		return fmt.Errorf("failed to clear rows: %w", err)
	}

	for i, col := range snap.Columns {
		m := toColumnModel(i, col)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_columns (
				sheet_id, position, column_id, field, name, type, width, min_width,
				sortable, resizable, rerender_on_resize
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sheetID, m.Position, m.ColumnID, m.Field, m.Name, m.Type, m.Width, m.MinWidth,
			m.Sortable, m.Resizable, m.RerenderOnResize,
		)
		if err != nil {
			return fmt.Errorf("failed to insert column %d: %w", i, err)
		}
	}

	for i, rec := range snap.Rows {
		data, err := encodeRecord(rec)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (sheet_id, position, data) VALUES (?, ?, ?)`,
			sheetID, i, data,
		); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sheet: %w", err)
	}
	log.Debug(log.CatDB, "sheet saved", "sheet", snap.Name, "columns", len(snap.Columns), "rows", len(snap.Rows))
	return nil
}

// Load returns the stored sheet and whether its schema is locked.
// Returns SheetNotFoundError if no sheet has that name.
func (r *SheetRepository) Load(ctx context.Context, name string) (grid.Snapshot, bool, error) {
	var (
		sheetID int64
		locked  bool
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, locked FROM sheets WHERE name = ?`, name).Scan(&sheetID, &locked)
	if errors.Is(err, sql.ErrNoRows) {
		return grid.Snapshot{}, false, &SheetNotFoundError{Name: name}
	}
	if err != nil {
		return grid.Snapshot{}, false, fmt.Errorf("failed to find sheet: %w", err)
	}

	cols, err := r.loadColumns(ctx, sheetID)
	if err != nil {
		return grid.Snapshot{}, false, err
	}
	rows, err := r.loadRows(ctx, sheetID)
	if err != nil {
		return grid.Snapshot{}, false, err
	}
	return grid.Snapshot{Name: name, Columns: cols, Rows: rows}, locked, nil
}

func (r *SheetRepository) loadColumns(ctx context.Context, sheetID int64) ([]grid.Column, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT position, column_id, field, name, type, width, min_width, sortable, resizable, rerender_on_resize
		FROM sheet_columns WHERE sheet_id = ? ORDER BY position`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var cols []grid.Column
	for rows.Next() {
		var m ColumnModel
		if err := rows.Scan(&m.Position, &m.ColumnID, &m.Field, &m.Name, &m.Type, &m.Width, &m.MinWidth,
			&m.Sortable, &m.Resizable, &m.RerenderOnResize); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		cols = append(cols, m.toDomain())
	}
	return cols, rows.Err()
}

func (r *SheetRepository) loadRows(ctx context.Context, sheetID int64) ([]grid.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM sheet_rows WHERE sheet_id = ? ORDER BY position`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var recs []grid.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// List summarizes every stored sheet, most recently updated first.
func (r *SheetRepository) List(ctx context.Context) ([]SheetInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.name, s.locked, s.updated_at,
			(SELECT COUNT(*) FROM sheet_columns c WHERE c.sheet_id = s.id),
			(SELECT COUNT(*) FROM sheet_rows r WHERE r.sheet_id = s.id)
		FROM sheets s ORDER BY s.updated_at DESC, s.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	defer rows.Close()

	var out []SheetInfo
	for rows.Next() {
		var (
			info    SheetInfo
			updated int64
		)
		if err := rows.Scan(&info.Name, &info.Locked, &updated, &info.Columns, &info.Rows); err != nil {
			return nil, fmt.Errorf("failed to scan sheet: %w", err)
		}
		info.UpdatedAt = time.Unix(updated, 0)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes a sheet. Returns SheetNotFoundError if it does not exist.
func (r *SheetRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sheets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete sheet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return &SheetNotFoundError{Name: name}
	}
	return nil
}

// Open loads the named sheet into a live grid. A missing sheet yields an
// empty, unlocked one that is stored on the first SaveSheet.
func (r *SheetRepository) Open(ctx context.Context, name string) (*grid.Sheet, error) {
	snap, locked, err := r.Load(ctx, name)
	var notFound *SheetNotFoundError
	if errors.As(err, &notFound) {
		log.Info(log.CatDB, "starting empty sheet", "sheet", name)
		return grid.NewSheet(name, nil, nil), nil
	}
	if err != nil {
		return nil, err
	}
	s := grid.NewSheet(name, snap.Columns, snap.Rows)
	if locked {
		s.Lock()
	}
	return s, nil
}

// Reload replaces the content and lock state of s with what is stored.
// It reports false when the sheet is not stored.
func (r *SheetRepository) Reload(ctx context.Context, s *grid.Sheet) (bool, error) {
	snap, locked, err := r.Load(ctx, s.Name())
	var notFound *SheetNotFoundError
	if errors.As(err, &notFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.Unlock()
	s.Restore(snap)
	if locked {
		s.Lock()
	}
	return true, nil
}

// SaveSheet stores the current content and lock state of s.
func (r *SheetRepository) SaveSheet(ctx context.Context, s *grid.Sheet) error {
	return r.Save(ctx, s.Snapshot(), s.ColumnStore().Locked())
}
