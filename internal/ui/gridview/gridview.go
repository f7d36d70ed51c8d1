// Package gridview is the terminal host for a sheet. It renders the grid,
// tracks the cursor and selection, and maps key presses to copy, paste and
// undo gestures on a copypaste.Manager.
package gridview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/gridclip/internal/copypaste"
	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/keys"
	"github.com/zjrosen/gridclip/internal/log"
	"github.com/zjrosen/gridclip/internal/paste"
	"github.com/zjrosen/gridclip/internal/pubsub"
)

// Store persists the sheet shown by the view.
type Store interface {
	SaveSheet(ctx context.Context, s *grid.Sheet) error
	Reload(ctx context.Context, s *grid.Sheet) (bool, error)
}

// Options wires the view to its surroundings. Every field is optional.
type Options struct {
	Store Store
	// Changes signals that another process wrote the store.
	Changes <-chan struct{}
	// BeforeSave runs right before the view writes the store.
	BeforeSave func()
	// SaveHeader persists the include-header toggle.
	SaveHeader func(on bool) error
	KeyMap     *keys.KeyMap
}

type (
	notificationMsg  = pubsub.Event[copypaste.Notification]
	highlightTickMsg struct{}
	changedMsg       struct{}
)

// Model is the bubbletea model of the grid view.
type Model struct {
	ctx      context.Context
	sheet    *grid.Sheet
	mgr      *copypaste.Manager
	opts     Options
	keys     keys.KeyMap
	help     help.Model
	listener *pubsub.ContinuousListener[copypaste.Notification]

	cursor grid.Cell
	anchor grid.Cell
	top    int
	left   int

	width  int
	height int

	status    string
	statusErr bool
	dirty     bool
}

// New creates a view over sheet. mgr must have been built for the same sheet.
func New(ctx context.Context, sheet *grid.Sheet, mgr *copypaste.Manager, opts Options) Model {
	m := Model{
		ctx:      ctx,
		sheet:    sheet,
		mgr:      mgr,
		opts:     opts,
		keys:     keys.DefaultKeyMap(),
		help:     help.New(),
		listener: pubsub.NewContinuousListener(ctx, mgr.Broker()),
		width:    80,
		height:   24,
	}
	if opts.KeyMap != nil {
		m.keys = *opts.KeyMap
	}
	if c, ok := sheet.ActiveCell(); ok {
		m.cursor, m.anchor = c, c
	}
	m.clampCursor()
	m.syncSelection()
	return m
}

// Init starts listening for notifications and store changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listener.Listen(), m.waitForChange())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.scrollToCursor()
		return m, nil

	case notificationMsg:
		m.setStatus(copypaste.Message(msg), msg.Type == pubsub.ValidationErrorEvent)
		return m, tea.Batch(m.listener.Listen(), m.highlightTick())

	case highlightTickMsg:
		// The view reads the highlight on render; keep ticking while it lives.
		return m, m.highlightTick()

	case changedMsg:
		m.reload()
		return m, m.waitForChange()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		m.move(-1, 0, false)
	case key.Matches(msg, m.keys.Down):
		m.move(1, 0, false)
	case key.Matches(msg, m.keys.Left):
		m.move(0, -1, false)
	case key.Matches(msg, m.keys.Right):
		m.move(0, 1, false)
	case key.Matches(msg, m.keys.ExtendUp):
		m.move(-1, 0, true)
	case key.Matches(msg, m.keys.ExtendDown):
		m.move(1, 0, true)
	case key.Matches(msg, m.keys.ExtendLeft):
		m.move(0, -1, true)
	case key.Matches(msg, m.keys.ExtendRight):
		m.move(0, 1, true)

	case key.Matches(msg, m.keys.Copy):
		// Failures arrive as notifications.
		_ = m.mgr.Copy(m.ctx)
		return m, m.highlightTick()
	case key.Matches(msg, m.keys.Paste):
		err := m.mgr.Paste(m.ctx)
		var cellErr *paste.CellWriteError
		if err == nil || errors.As(err, &cellErr) {
			// A failed cell write leaves the cells before it written.
			m.dirty = true
		}
		m.adoptSelection()
		m.afterMutation()
		return m, m.highlightTick()
	case key.Matches(msg, m.keys.Undo):
		ok, _ := m.mgr.Undo(m.ctx)
		if !ok {
			m.setStatus("nothing to undo", false)
			break
		}
		// Even a failed undo may have restored some cells.
		m.dirty = true
		m.adoptSelection()
		m.afterMutation()
		return m, m.highlightTick()
	case key.Matches(msg, m.keys.CancelCopy):
		m.mgr.CancelCopy()

	case key.Matches(msg, m.keys.ToggleHeader):
		m.toggleHeader()
	case key.Matches(msg, m.keys.ToggleLock):
		m.toggleLock()
	case key.Matches(msg, m.keys.Save):
		m.save()
	}
	return m, nil
}

// move shifts the cursor. With extend the selection anchor stays put.
func (m *Model) move(dRow, dCol int, extend bool) {
	m.cursor.Row += dRow
	m.cursor.Col += dCol
	m.clampCursor()
	if !extend {
		m.anchor = m.cursor
	}
	m.syncSelection()
	m.scrollToCursor()
}

func (m *Model) clampCursor() {
	maxRow := max(m.sheet.RowCount()-1, 0)
	maxCol := max(len(m.sheet.Columns())-1, 0)
	m.cursor.Row = min(max(m.cursor.Row, 0), maxRow)
	m.cursor.Col = min(max(m.cursor.Col, 0), maxCol)
	m.anchor.Row = min(max(m.anchor.Row, 0), maxRow)
	m.anchor.Col = min(max(m.anchor.Col, 0), maxCol)
}

// syncSelection pushes the cursor state to the sheet. The active cell is the
// top-left of the selection so a paste lands where the selection starts.
func (m *Model) syncSelection() {
	sel := m.selection()
	m.sheet.SetActiveCell(sel.TopLeft())
	if m.sheet.RowCount() == 0 || len(m.sheet.Columns()) == 0 {
		m.sheet.SetSelectedRanges(nil)
		return
	}
	m.sheet.SetSelectedRanges([]grid.Range{sel})
}

func (m Model) selection() grid.Range {
	return grid.NewRange(m.anchor.Row, m.anchor.Col, m.cursor.Row, m.cursor.Col)
}

// adoptSelection moves the cursor onto the sheet's first selected range, which
// a paste sets to its destination and an undo restores.
func (m *Model) adoptSelection() {
	sel := m.sheet.SelectedRanges()
	if len(sel) == 0 {
		return
	}
	m.anchor = sel[0].TopLeft()
	m.cursor = sel[0].BottomRight()
}

// afterMutation re-reads the sheet bounds once a paste or undo changed them.
func (m *Model) afterMutation() {
	m.clampCursor()
	m.syncSelection()
	m.scrollToCursor()
}

func (m *Model) toggleHeader() {
	on := !m.mgr.Config().IncludeHeaderWhenCopying
	m.mgr.SetIncludeHeader(on)
	state := "off"
	if on {
		state = "on"
	}
	if m.opts.SaveHeader != nil {
		if err := m.opts.SaveHeader(on); err != nil {
			log.ErrorErr(log.CatUI, "Failed to persist header setting", err)
			m.setStatus(fmt.Sprintf("header %s (not saved: %v)", state, err), true)
			return
		}
	}
	m.setStatus("header "+state, false)
}

func (m *Model) toggleLock() {
	if m.sheet.ColumnStore().Locked() {
		m.sheet.Unlock()
		m.setStatus("columns unlocked", false)
	} else {
		m.sheet.Lock()
		m.setStatus("columns locked", false)
	}
	m.dirty = true
}

func (m *Model) save() {
	if m.opts.Store == nil {
		m.setStatus("no store configured", true)
		return
	}
	if m.opts.BeforeSave != nil {
		m.opts.BeforeSave()
	}
	if err := m.opts.Store.SaveSheet(m.ctx, m.sheet); err != nil {
		log.ErrorErr(log.CatUI, "Failed to save sheet", err, "sheet", m.sheet.Name())
		m.setStatus("save failed: "+err.Error(), true)
		return
	}
	m.dirty = false
	m.setStatus("saved "+m.sheet.Name(), false)
}

// reload replaces the sheet with the stored copy. Commands in the undo
// history refer to the old content, so the history is dropped.
func (m *Model) reload() {
	if m.opts.Store == nil {
		return
	}
	ok, err := m.opts.Store.Reload(m.ctx, m.sheet)
	if err != nil {
		log.ErrorErr(log.CatUI, "Failed to reload sheet", err, "sheet", m.sheet.Name())
		m.setStatus("reload failed: "+err.Error(), true)
		return
	}
	if !ok {
		return
	}
	m.mgr.History().Clear()
	m.dirty = false
	m.afterMutation()
	m.setStatus("reloaded "+m.sheet.Name(), false)
	log.Debug(log.CatUI, "sheet reloaded", "sheet", m.sheet.Name())
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// highlightTick redraws once the copied highlight expires.
func (m Model) highlightTick() tea.Cmd {
	at, ok := m.mgr.HighlightExpiry()
	if !ok || at.IsZero() {
		return nil
	}
	d := max(time.Until(at), 0) + 10*time.Millisecond
	return tea.Tick(d, func(time.Time) tea.Msg { return highlightTickMsg{} })
}

func (m Model) waitForChange() tea.Cmd {
	if m.opts.Changes == nil {
		return nil
	}
	ctx, ch := m.ctx, m.opts.Changes
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return changedMsg{}
		}
	}
}

// Cursor returns the cursor cell.
func (m Model) Cursor() grid.Cell { return m.cursor }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

// Dirty reports unsaved changes.
func (m Model) Dirty() bool { return m.dirty }
