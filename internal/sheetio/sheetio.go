// Package sheetio moves whole sheets in and out of spreadsheet files: xlsx
// workbooks through excelize and delimited text through the clipboard codec.
// The first row of a file is always the header.
package sheetio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cast"

	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/log"
)

// Format is a supported file kind.
type Format int

const (
	FormatXLSX Format = iota
	FormatDelimited
)

// UnsupportedFormatError is returned for unknown file extensions.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type %q (want .xlsx, .csv, .tsv or .txt)", filepath.Ext(e.Path))
}

// FormatFor picks the format and, for delimited files, the delimiter from
// the file extension.
func FormatFor(path string) (Format, rune, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, 0, nil
	case ".csv":
		return FormatDelimited, ',', nil
	case ".tsv", ".tab", ".txt":
		return FormatDelimited, '\t', nil
	default:
		return 0, 0, &UnsupportedFormatError{Path: path}
	}
}

// Options selects the workbook sheet and the name given to imported sheets.
type Options struct {
	// Sheet is the workbook tab to read or write. Empty means the first tab
	// on import and Name on export.
	Sheet string
	// Name is the grid sheet name. Empty means the file name without
	// extension.
	Name string
}

// Import reads path into a snapshot.
func Import(path string, opts Options) (grid.Snapshot, error) {
	format, delim, err := FormatFor(path)
	if err != nil {
		return grid.Snapshot{}, err
	}
	if opts.Name == "" {
		opts.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	f, err := os.Open(path) // #nosec G304 -- user supplied import path
	if err != nil {
		return grid.Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var snap grid.Snapshot
	switch format {
	case FormatXLSX:
		snap, err = ReadXLSX(f, opts)
	default:
		snap, err = ReadDelimited(f, delim, opts.Name)
	}
	if err != nil {
		return grid.Snapshot{}, fmt.Errorf("import %s: %w", path, err)
	}
	log.Info(log.CatIO, "imported sheet", "path", path, "columns", len(snap.Columns), "rows", len(snap.Rows))
	return snap, nil
}

// Export writes snap to path, replacing the file.
func Export(path string, snap grid.Snapshot, opts Options) error {
	format, delim, err := FormatFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path) // #nosec G304 -- user supplied export path
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	switch format {
	case FormatXLSX:
		err = WriteXLSX(f, snap, opts)
	default:
		err = WriteDelimited(f, snap, delim)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	log.Info(log.CatIO, "exported sheet", "path", path, "columns", len(snap.Columns), "rows", len(snap.Rows))
	return nil
}

// fromTable builds a snapshot from a header row and data rows. Columns whose
// non-blank cells all parse as numbers or booleans get that type.
func fromTable(name string, table [][]string) grid.Snapshot {
	snap := grid.Snapshot{Name: name}
	if len(table) == 0 {
		return snap
	}
	header, body := table[0], table[1:]

	width := len(header)
	for _, row := range body {
		width = max(width, len(row))
	}

	taken := map[string]bool{grid.IDField: true}
	snap.Columns = make([]grid.Column, width)
	for c := range width {
		name := ""
		if c < len(header) {
			name = strings.TrimSpace(header[c])
		}
		field := uniqueField(fieldName(name, c), taken)
		snap.Columns[c] = grid.Column{
			ID:        field,
			Field:     field,
			Name:      name,
			Type:      inferType(body, c),
			Sortable:  true,
			Resizable: true,
		}
	}

	snap.Rows = make([]grid.Record, len(body))
	for r, row := range body {
		rec := grid.Record{grid.IDField: strconv.Itoa(r)}
		for c, col := range snap.Columns {
			if c >= len(row) {
				continue
			}
			rec[col.Field] = typedValue(col.Type, row[c])
		}
		snap.Rows[r] = rec
	}
	return snap
}

// toTable renders the header and every record as text.
func toTable(snap grid.Snapshot) [][]string {
	table := make([][]string, 0, len(snap.Rows)+1)
	header := make([]string, len(snap.Columns))
	for c, col := range snap.Columns {
		header[c] = col.Name
	}
	table = append(table, header)
	for _, rec := range snap.Rows {
		row := make([]string, len(snap.Columns))
		for c, col := range snap.Columns {
			if v := rec[col.Field]; v != nil {
				row[c] = cast.ToString(v)
			}
		}
		table = append(table, row)
	}
	return table
}

func fieldName(header string, col int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(header) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "_"):
			b.WriteByte('_')
		}
	}
	field := strings.TrimSuffix(b.String(), "_")
	if field == "" {
		field = "column_" + strconv.Itoa(col+1)
	}
	return field
}

func uniqueField(field string, taken map[string]bool) string {
	candidate := field
	for i := 2; taken[candidate]; i++ {
		candidate = field + "_" + strconv.Itoa(i)
	}
	taken[candidate] = true
	return candidate
}

func inferType(body [][]string, col int) grid.ColumnType {
	numbers, bools, filled := 0, 0, 0
	for _, row := range body {
		if col >= len(row) || strings.TrimSpace(row[col]) == "" {
			continue
		}
		filled++
		text := strings.TrimSpace(row[col])
		if _, err := strconv.ParseFloat(text, 64); err == nil {
			numbers++
		} else if _, err := strconv.ParseBool(strings.ToLower(text)); err == nil {
			bools++
		}
	}
	switch {
	case filled == 0:
		return grid.ColumnText
	case numbers == filled:
		return grid.ColumnNumber
	case bools == filled:
		return grid.ColumnBool
	default:
		return grid.ColumnText
	}
}

func typedValue(t grid.ColumnType, text string) any {
	trimmed := strings.TrimSpace(text)
	switch t {
	case grid.ColumnNumber:
		if trimmed == "" {
			return nil
		}
		return cast.ToFloat64(trimmed)
	case grid.ColumnBool:
		if trimmed == "" {
			return nil
		}
		return cast.ToBool(strings.ToLower(trimmed))
	default:
		return text
	}
}
