package sheetio

import (
	"fmt"
	"io"

	"github.com/zjrosen/gridclip/internal/codec"
	"github.com/zjrosen/gridclip/internal/grid"
)

// ReadDelimited parses quoted delimited text. codec.Auto detects the
// delimiter.
func ReadDelimited(r io.Reader, delim rune, name string) (grid.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return grid.Snapshot{}, fmt.Errorf("read: %w", err)
	}
	m := codec.Decode(string(data), codec.DecodeOptions{Delimiter: delim, Quoted: true})
	return fromTable(name, m), nil
}

// WriteDelimited writes the header and rows, quoting fields that need it so
// the file reads back unchanged.
func WriteDelimited(w io.Writer, snap grid.Snapshot, delim rune) error {
	table := toTable(snap)
	text := codec.Encode(grid.Matrix(table[1:]), codec.EncodeOptions{
		Delimiter:     delim,
		IncludeHeader: true,
		HeaderNames:   table[0],
		Quote:         true,
	})
	if _, err := io.WriteString(w, text+codec.RowSeparator); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
