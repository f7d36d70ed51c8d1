package sheetio

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/zjrosen/gridclip/internal/grid"
)

// ReadXLSX loads one worksheet of a workbook.
func ReadXLSX(r io.Reader, opts Options) (grid.Snapshot, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return grid.Snapshot{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return grid.Snapshot{}, fmt.Errorf("worksheet %q not found", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return grid.Snapshot{}, fmt.Errorf("read worksheet %q: %w", sheet, err)
	}
	return fromTable(opts.Name, rows), nil
}

// WriteXLSX writes snap as a single-worksheet workbook. Number and bool
// columns keep their cell types.
func WriteXLSX(w io.Writer, snap grid.Snapshot, opts Options) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = snap.Name
	}
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("name worksheet: %w", err)
		}
	}

	header := make([]any, len(snap.Columns))
	for c, col := range snap.Columns {
		header[c] = col.Name
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	if len(snap.Columns) > 0 {
		last, _ := excelize.ColumnNumberToName(len(snap.Columns))
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("freeze header: %w", err)
		}
		if err := f.AutoFilter(sheet, "A1:"+last+"1", nil); err != nil {
			return fmt.Errorf("header filter: %w", err)
		}
	}

	for r, rec := range snap.Rows {
		values := make([]any, len(snap.Columns))
		for c, col := range snap.Columns {
			values[c] = rec[col.Field]
		}
		if err := setRow(f, sheet, r+2, values); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
