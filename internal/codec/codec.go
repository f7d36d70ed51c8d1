// Package codec converts between grid matrices and delimited clipboard text.
//
// The default dialect matches what spreadsheets put on the clipboard: cells
// separated by a tab, rows separated by CRLF, nothing quoted. Values holding
// the delimiter or a line break do not survive a plain round trip; the Quote
// and Quoted options switch both directions to RFC 4180 quoting.
package codec

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/log"
)

// DefaultDelimiter separates cells when none is configured.
const DefaultDelimiter = '\t'

// RowSeparator terminates every encoded row except the last.
const RowSeparator = "\r\n"

// EncodeOptions controls Encode.
type EncodeOptions struct {
	// Delimiter separates cells. Zero means DefaultDelimiter.
	Delimiter rune
	// IncludeHeader prepends a line built from HeaderNames.
	IncludeHeader bool
	// HeaderNames is one name per matrix column. Missing names encode as empty cells.
	HeaderNames []string
	// Quote wraps fields containing the delimiter, a quote or a line break.
	Quote bool
}

// DecodeOptions controls Decode.
type DecodeOptions struct {
	// Delimiter separates cells. Zero means DefaultDelimiter; Auto detects
	// it from the text.
	Delimiter rune
	// Quoted honours RFC 4180 quoted fields. Line breaks inside quoted
	// fields come back as \n.
	Quoted bool
}

// Encode serializes m. Rows are joined by CRLF with no trailing separator.
func Encode(m grid.Matrix, opts EncodeOptions) string {
	delim := delimiterOrDefault(opts.Delimiter)
	var b strings.Builder
	first := true
	writeRow := func(row []string) {
		if !first {
			b.WriteString(RowSeparator)
		}
		first = false
		for i, cell := range row {
			if i > 0 {
				b.WriteRune(delim)
			}
			if opts.Quote {
				cell = quoteField(cell, delim)
			}
			b.WriteString(cell)
		}
	}

	if opts.IncludeHeader {
		width := max(m.Cols(), len(opts.HeaderNames))
		header := make([]string, width)
		copy(header, opts.HeaderNames)
		writeRow(header)
	}
	for _, row := range m {
		writeRow(row)
	}
	return b.String()
}

// Decode parses delimited text into a matrix. It never fails: empty input
// yields an empty matrix, rows may be ragged, blank lines are dropped.
func Decode(text string, opts DecodeOptions) grid.Matrix {
	delim := opts.Delimiter
	if delim == Auto {
		delim = DetectDelimiter(text)
		log.Debug(log.CatCodec, "detected delimiter", "delimiter", DelimiterName(delim))
	}
	delim = delimiterOrDefault(delim)
	if opts.Quoted {
		m, err := decodeQuoted(text, delim)
		if err == nil {
			return m
		}
		log.Debug(log.CatCodec, "quoted decode failed, splitting plainly", "error", err)
	}
	return decodePlain(text, delim)
}

func decodePlain(text string, delim rune) grid.Matrix {
	lines := strings.FieldsFunc(text, isLineBreak)
	m := make(grid.Matrix, 0, len(lines))
	sep := string(delim)
	for _, line := range lines {
		m = append(m, strings.Split(line, sep))
	}
	return m
}

func decodeQuoted(text string, delim rune) (grid.Matrix, error) {
	// encoding/csv only understands \n and \r\n; a lone \r or \f still ends a row.
	normalized := strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n").Replace(text)
	r := csv.NewReader(strings.NewReader(normalized))
	r.Comma = delim
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading quoted text: %w", err)
	}
	return grid.Matrix(records), nil
}

func quoteField(s string, delim rune) string {
	if !strings.ContainsRune(s, delim) && !strings.ContainsAny(s, "\"\r\n\f") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r' || r == '\f'
}

func delimiterOrDefault(d rune) rune {
	if d == 0 || d == Auto {
		return DefaultDelimiter
	}
	return d
}
