// Package paste turns a decoded clipboard matrix into an undoable grid edit.
//
// Planning is pure: Resolve picks the destination, Reconcile the column set
// and PlanGrowth the rows to append. NewCommand bundles the plans into a
// Command that owns everything it needs to apply and revert the paste.
//
// Errors fall in two groups. ParseAmbiguityError, NoAnchorError and
// SchemaLockedError are raised before the grid is touched. CellWriteError is
// raised during Execute after some cells may already hold new values; those
// are not rolled back, but every destination cell was captured first so Undo
// still restores the whole region.
package paste

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zjrosen/gridclip/internal/access"
	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/log"
)

// State is a command lifecycle stage.
type State int

const (
	StateCreated State = iota
	StateExecuted
	StateUndone
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateExecuted:
		return "executed"
	case StateUndone:
		return "undone"
	default:
		return "unknown"
	}
}

// CommandOption configures a Command.
type CommandOption func(*Command)

// WithAppliedCallback is called with the destination after a successful Execute.
func WithAppliedCallback(fn func(grid.Range)) CommandOption {
	return func(c *Command) { c.onApplied = fn }
}

// WithUndoneCallback is called with the destination after Undo.
func WithUndoneCallback(fn func(grid.Range)) CommandOption {
	return func(c *Command) { c.onUndone = fn }
}

// Command applies one paste and can revert it once.
type Command struct {
	id   string
	g    grid.Grid
	acc  access.Strategy
	m    grid.Matrix
	res  Resolution
	cols ColumnPlan
	rows GrowthPlan

	state         State
	rowDelta      grid.RowDelta
	columnsGrown  bool
	captured      []capturedCell
	prevSelection []grid.Range
	written       int

	onApplied func(grid.Range)
	onUndone  func(grid.Range)
}

type capturedCell struct {
	cell grid.Cell
	col  grid.Column
	text string
	old  access.Captured
}

// NewCommand creates a command in StateCreated. Nothing is mutated until
// Execute.
func NewCommand(g grid.Grid, acc access.Strategy, m grid.Matrix, res Resolution, cols ColumnPlan, rows GrowthPlan, opts ...CommandOption) *Command {
	c := &Command{
		id:   uuid.NewString(),
		g:    g,
		acc:  acc,
		m:    m.Clone(),
		res:  res,
		cols: cols,
		rows: rows,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID uniquely identifies the command.
func (c *Command) ID() string { return c.id }

// State returns the lifecycle stage.
func (c *Command) State() State { return c.state }

// Destination is the pasted rectangle.
func (c *Command) Destination() grid.Range { return c.res.Destination }

// Broadcast reports whether one value fills the destination.
func (c *Command) Broadcast() bool { return c.res.Broadcast }

// RowsAdded is the number of rows the command appends.
func (c *Command) RowsAdded() int { return c.rows.RowsToAdd }

// ColumnsAdded is the number of columns the command appends.
func (c *Command) ColumnsAdded() int { return len(c.cols.Added) }

// Written is the number of cells Execute wrote.
func (c *Command) Written() int { return c.written }

// Execute grows the grid, captures every destination cell, then writes the
// matrix row-major.
func (c *Command) Execute() error {
	if c.state != StateCreated {
		return &InvalidStateError{Op: "execute", State: c.state}
	}

	c.g.BeginUpdate()
	err := c.apply()
	c.g.EndUpdate()

	var locked *SchemaLockedError
	if errors.As(err, &locked) {
		return err
	}

	c.state = StateExecuted
	c.g.SetSelectedRanges([]grid.Range{c.res.Destination})
	c.g.Render()
	if err != nil {
		log.ErrorErr(log.CatPaste, "paste stopped at a cell", err, "id", c.id, "written", c.written)
		return err
	}

	log.Debug(log.CatPaste, "paste executed",
		"id", c.id,
		"destination", c.res.Destination.String(),
		"broadcast", c.res.Broadcast,
		"rows_added", c.rows.RowsToAdd,
		"cols_added", len(c.cols.Added),
		"written", c.written)
	if c.onApplied != nil {
		c.onApplied(c.res.Destination)
	}
	return nil
}

func (c *Command) apply() error {
	if err := c.cols.Apply(c.g); err != nil {
		return err
	}
	c.columnsGrown = c.cols.Grows()

	if c.rows.RowsToAdd > 0 {
		c.rowDelta = c.g.AppendRows(c.rows.Records())
	}

	c.prevSelection = c.g.SelectedRanges()
	columns := c.g.Columns()
	rowCount := c.g.RowCount()
	dest := c.res.Destination

	// Capture everything before the first write.
	c.captured = c.captured[:0]
	for row := dest.FromRow; row <= dest.ToRow; row++ {
		if row < 0 || row >= rowCount {
			continue
		}
		rec, ok := c.g.Record(row)
		if !ok {
			continue
		}
		for col := dest.FromCell; col <= dest.ToCell; col++ {
			if col < 0 || col >= len(columns) {
				continue
			}
			text, ok := c.res.Source(c.m, row, col)
			if !ok {
				continue
			}
			c.captured = append(c.captured, capturedCell{
				cell: grid.Cell{Row: row, Col: col},
				col:  columns[col],
				text: text,
				old:  access.Capture(rec, columns[col]),
			})
		}
	}

	for _, cc := range c.captured {
		rec, _ := c.g.Record(cc.cell.Row)
		if err := c.acc.Set(rec, cc.col, cc.text); err != nil {
			return &CellWriteError{Cell: cc.cell, Field: cc.col.Field, Text: cc.text, Written: c.written, Err: err}
		}
		c.g.UpdateCell(cc.cell.Row, cc.cell.Col)
		c.written++
	}
	return nil
}

// Undo restores every captured cell, the prior selection, and removes the
// rows and columns Execute appended. Restore failures are joined; the
// command is Undone either way.
func (c *Command) Undo() error {
	if c.state != StateExecuted {
		return &InvalidStateError{Op: "undo", State: c.state}
	}

	var errs []error
	c.g.BeginUpdate()
	for i := len(c.captured) - 1; i >= 0; i-- {
		cc := c.captured[i]
		rec, ok := c.g.Record(cc.cell.Row)
		if !ok {
			errs = append(errs, fmt.Errorf("row %d vanished before undo", cc.cell.Row))
			continue
		}
		if err := c.restore(rec, cc); err != nil {
			errs = append(errs, fmt.Errorf("restoring row %d column %q: %w", cc.cell.Row, cc.col.Field, err))
			continue
		}
		c.g.UpdateCell(cc.cell.Row, cc.cell.Col)
	}
	c.g.SetSelectedRanges(c.prevSelection)
	if c.rowDelta.Count > 0 {
		if err := c.g.TruncateRows(c.rowDelta); err != nil {
			errs = append(errs, fmt.Errorf("removing appended rows: %w", err))
		}
	}
	if c.columnsGrown {
		if err := c.cols.Revert(c.g); err != nil {
			errs = append(errs, fmt.Errorf("removing appended columns: %w", err))
		}
	}
	c.g.EndUpdate()
	c.g.Render()

	c.state = StateUndone
	err := errors.Join(errs...)
	if err != nil {
		log.ErrorErr(log.CatPaste, "paste undo incomplete", err, "id", c.id)
	} else {
		log.Debug(log.CatPaste, "paste undone", "id", c.id, "cells", len(c.captured))
	}
	if c.onUndone != nil {
		c.onUndone(c.res.Destination)
	}
	return err
}

func (c *Command) restore(rec grid.Record, cc capturedCell) error {
	if r, ok := c.acc.(access.Restorer); ok {
		return r.Restore(rec, cc.col, cc.old)
	}
	return c.acc.Set(rec, cc.col, access.Text(cc.old.Value))
}
