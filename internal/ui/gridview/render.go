package gridview

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/gridclip/internal/access"
	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/ui/styles"
)

const (
	minCellWidth = 3
	maxCellWidth = 18
	cellGap      = " "
)

// View renders the title, the visible part of the grid, the status line and
// the help line.
func (m Model) View() string {
	helpView := m.help.View(m.keys)
	gridHeight := m.gridHeight(helpView)

	var b strings.Builder
	b.WriteString(m.titleLine())
	b.WriteByte('\n')
	b.WriteString(m.renderGrid(gridHeight))
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	b.WriteString(helpView)
	return b.String()
}

// gridHeight is the number of data rows that fit next to the chrome.
func (m Model) gridHeight(helpView string) int {
	chrome := 3 + lipgloss.Height(helpView) // title, column header, status, help
	return max(m.height-chrome, 1)
}

func (m Model) titleLine() string {
	parts := []string{styles.HeaderStyle.Render(m.sheet.Name())}
	if m.sheet.ColumnStore().Locked() {
		parts = append(parts, styles.LockedBadgeStyle.Render("[locked]"))
	}
	if m.mgr.Config().IncludeHeaderWhenCopying {
		parts = append(parts, styles.StatusBarStyle.Render("[header]"))
	}
	if m.dirty {
		parts = append(parts, styles.StatusBarStyle.Render("[modified]"))
	}
	return ansi.Truncate(strings.Join(parts, " "), m.width, "…")
}

func (m Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	style := styles.StatusBarStyle
	if m.statusErr {
		style = styles.StatusErrorStyle
	}
	return ansi.Truncate(style.Render(m.status), m.width, "…")
}

func (m Model) renderGrid(height int) string {
	columns := m.sheet.Columns()
	if len(columns) == 0 {
		return styles.RowNumberStyle.Render("(empty sheet, paste to add data)") + "\n"
	}

	lastRow := min(m.top+height, m.sheet.RowCount())
	gutter := len(strconv.Itoa(max(m.sheet.RowCount(), 1)))
	widths := m.columnWidths(columns, m.top, lastRow)
	visible := m.visibleColumns(widths, gutter)

	sel := m.selection()
	copied := m.mgr.CopiedRanges()

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gutter))
	for _, col := range visible {
		b.WriteString(cellGap)
		b.WriteString(styles.HeaderStyle.Render(fit(columnTitle(columns[col], col), widths[col])))
	}
	b.WriteByte('\n')

	for row := m.top; row < lastRow; row++ {
		rec, _ := m.sheet.Record(row)
		b.WriteString(styles.RowNumberStyle.Render(runewidth.FillLeft(strconv.Itoa(row+1), gutter)))
		for _, col := range visible {
			text := fit(cellText(rec, columns[col]), widths[col])
			b.WriteString(cellGap)
			b.WriteString(m.cellStyle(row, col, sel, copied).Render(text))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) cellStyle(row, col int, sel grid.Range, copied []grid.Range) lipgloss.Style {
	if row == m.cursor.Row && col == m.cursor.Col {
		return styles.CursorStyle
	}
	if sel.Contains(row, col) {
		return styles.SelectionStyle
	}
	for _, r := range copied {
		if r.Contains(row, col) {
			return styles.CopiedStyle
		}
	}
	return styles.CellStyle
}

// columnWidths sizes each column to its title and the rows on screen.
func (m Model) columnWidths(columns []grid.Column, fromRow, toRow int) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = runewidth.StringWidth(columnTitle(col, i))
	}
	for row := fromRow; row < toRow; row++ {
		rec, ok := m.sheet.Record(row)
		if !ok {
			continue
		}
		for i, col := range columns {
			widths[i] = max(widths[i], runewidth.StringWidth(cellText(rec, col)))
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], minCellWidth), maxCellWidth)
	}
	return widths
}

// visibleColumns returns the column indexes from m.left that fit the width.
func (m Model) visibleColumns(widths []int, gutter int) []int {
	used := gutter
	var cols []int
	for col := m.left; col < len(widths); col++ {
		used += len(cellGap) + widths[col]
		if used > m.width && len(cols) > 0 {
			break
		}
		cols = append(cols, col)
	}
	return cols
}

// scrollToCursor moves the viewport so the cursor is on screen.
func (m *Model) scrollToCursor() {
	height := m.gridHeight(m.help.View(m.keys))
	if m.cursor.Row < m.top {
		m.top = m.cursor.Row
	}
	if m.cursor.Row >= m.top+height {
		m.top = m.cursor.Row - height + 1
	}

	if m.cursor.Col < m.left {
		m.left = m.cursor.Col
	}
	columns := m.sheet.Columns()
	if len(columns) == 0 {
		m.left = 0
		return
	}
	widths := m.columnWidths(columns, m.top, min(m.top+height, m.sheet.RowCount()))
	gutter := len(strconv.Itoa(max(m.sheet.RowCount(), 1)))
	for m.left < m.cursor.Col {
		visible := m.visibleColumns(widths, gutter)
		if len(visible) > 0 && visible[len(visible)-1] >= m.cursor.Col {
			break
		}
		m.left++
	}
}

func columnTitle(col grid.Column, i int) string {
	if col.Name != "" {
		return col.Name
	}
	return grid.ColumnLetter(i)
}

func cellText(rec grid.Record, col grid.Column) string {
	if rec == nil {
		return ""
	}
	text := access.Text(access.FormatterBased{}.Get(rec, col))
	return strings.NewReplacer("\r\n", "⏎", "\n", "⏎", "\r", "⏎", "\t", " ").Replace(text)
}

// fit truncates or pads s to exactly w cells.
func fit(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}
