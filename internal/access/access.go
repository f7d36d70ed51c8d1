// Package access is the seam between the clipboard engine and per-column
// rendering/editing behaviour. Copy reads cells through Strategy.Get and
// paste writes them through Strategy.Set; neither looks at formatters or
// editors directly.
package access

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/zjrosen/gridclip/internal/grid"
)

// Strategy reads and writes one cell of a record.
type Strategy interface {
	// Get returns the value copy should serialize for col.
	Get(rec grid.Record, col grid.Column) any
	// Set stores text into rec for col.
	Set(rec grid.Record, col grid.Column, text string) error
}

// Restorer puts a captured value back verbatim. Undo uses it when the
// strategy provides it; otherwise it replays the captured value as text
// through Set.
type Restorer interface {
	Restore(rec grid.Record, col grid.Column, v Captured) error
}

// Captured is the raw content of one record field before a write.
type Captured struct {
	Value   any
	Present bool
}

// Capture reads the raw field behind col.
func Capture(rec grid.Record, col grid.Column) Captured {
	v, ok := rec[col.Field]
	return Captured{Value: v, Present: ok}
}

func restoreField(rec grid.Record, col grid.Column, v Captured) error {
	if !v.Present {
		delete(rec, col.Field)
		return nil
	}
	rec[col.Field] = v.Value
	return nil
}

// CoercionError reports text that does not fit a typed column.
type CoercionError struct {
	Field string
	Type  grid.ColumnType
	Text  string
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot store %q in %s column %q: %v", e.Text, e.Type, e.Field, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// PlainField reads and writes rec[col.Field]. Set coerces text according to
// the column type; blank text clears typed columns.
type PlainField struct{}

func (PlainField) Get(rec grid.Record, col grid.Column) any {
	return rec[col.Field]
}

func (PlainField) Set(rec grid.Record, col grid.Column, text string) error {
	v, err := Coerce(col, text)
	if err != nil {
		return err
	}
	rec[col.Field] = v
	return nil
}

func (PlainField) Restore(rec grid.Record, col grid.Column, v Captured) error {
	return restoreField(rec, col, v)
}

// Coerce converts text to the Go value stored for col.
func Coerce(col grid.Column, text string) (any, error) {
	switch col.Type {
	case grid.ColumnNumber:
		s := strings.TrimSpace(text)
		if s == "" {
			return nil, nil
		}
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, &CoercionError{Field: col.Field, Type: col.Type, Text: text, Err: err}
		}
		return f, nil
	case grid.ColumnBool:
		s := strings.TrimSpace(text)
		if s == "" {
			return nil, nil
		}
		b, err := cast.ToBoolE(s)
		if err != nil {
			return nil, &CoercionError{Field: col.Field, Type: col.Type, Text: text, Err: err}
		}
		return b, nil
	default:
		return text, nil
	}
}

// FormatterBased reads through the column formatter when one is set.
// Writes always go to the plain field.
type FormatterBased struct{}

func (FormatterBased) Get(rec grid.Record, col grid.Column) any {
	if col.Formatter == nil {
		return PlainField{}.Get(rec, col)
	}
	return col.Formatter(rec[col.Field], col, rec)
}

func (FormatterBased) Set(rec grid.Record, col grid.Column, text string) error {
	return PlainField{}.Set(rec, col, text)
}

func (FormatterBased) Restore(rec grid.Record, col grid.Column, v Captured) error {
	return restoreField(rec, col, v)
}

// EditorBased delegates to the column editor when one is set.
type EditorBased struct{}

func (EditorBased) Get(rec grid.Record, col grid.Column) any {
	if col.Editor == nil {
		return PlainField{}.Get(rec, col)
	}
	return col.Editor.Serialize(rec, col)
}

func (EditorBased) Set(rec grid.Record, col grid.Column, text string) error {
	if col.Editor == nil {
		return PlainField{}.Set(rec, col, text)
	}
	return col.Editor.Apply(rec, col, text)
}

func (EditorBased) Restore(rec grid.Record, col grid.Column, v Captured) error {
	return restoreField(rec, col, v)
}

// Custom uses host-supplied functions. A nil function falls back to PlainField.
type Custom struct {
	GetFunc func(rec grid.Record, col grid.Column) any
	SetFunc func(rec grid.Record, col grid.Column, text string) error
}

// Restore writes the raw field unless a SetFunc is installed, in which case
// the value is replayed as text so the host setter sees it.
func (c Custom) Restore(rec grid.Record, col grid.Column, v Captured) error {
	if c.SetFunc == nil {
		return restoreField(rec, col, v)
	}
	return c.SetFunc(rec, col, Text(v.Value))
}

func (c Custom) Get(rec grid.Record, col grid.Column) any {
	if c.GetFunc == nil {
		return PlainField{}.Get(rec, col)
	}
	return c.GetFunc(rec, col)
}

func (c Custom) Set(rec grid.Record, col grid.Column, text string) error {
	if c.SetFunc == nil {
		return PlainField{}.Set(rec, col, text)
	}
	return c.SetFunc(rec, col, text)
}

// Options configures Default.
type Options struct {
	// IgnoreFormatting lists fields always read and written as plain values.
	IgnoreFormatting []string
	// Extractor replaces formatter/editor lookup on reads when set.
	Extractor func(rec grid.Record, col grid.Column) any
	// Setter replaces editor lookup on writes when set.
	Setter func(rec grid.Record, col grid.Column, text string) error
}

// Default returns the standard lookup chain.
//
// Get: ignored field, then custom extractor, then formatter, then editor,
// then plain field. Set: ignored field, then custom setter, then editor,
// then plain field.
func Default(opts Options) Strategy {
	ignored := make(map[string]struct{}, len(opts.IgnoreFormatting))
	for _, f := range opts.IgnoreFormatting {
		ignored[f] = struct{}{}
	}
	return &chain{ignored: ignored, extractor: opts.Extractor, setter: opts.Setter}
}

type chain struct {
	ignored   map[string]struct{}
	extractor func(rec grid.Record, col grid.Column) any
	setter    func(rec grid.Record, col grid.Column, text string) error
}

func (c *chain) Get(rec grid.Record, col grid.Column) any {
	if _, ok := c.ignored[col.Field]; ok {
		return PlainField{}.Get(rec, col)
	}
	switch {
	case c.extractor != nil:
		return c.extractor(rec, col)
	case col.Formatter != nil:
		return FormatterBased{}.Get(rec, col)
	case col.Editor != nil:
		return EditorBased{}.Get(rec, col)
	default:
		return PlainField{}.Get(rec, col)
	}
}

func (c *chain) Set(rec grid.Record, col grid.Column, text string) error {
	if _, ok := c.ignored[col.Field]; ok {
		return PlainField{}.Set(rec, col, text)
	}
	switch {
	case c.setter != nil:
		return c.setter(rec, col, text)
	case col.Editor != nil:
		return EditorBased{}.Set(rec, col, text)
	default:
		return PlainField{}.Set(rec, col, text)
	}
}

func (c *chain) Restore(rec grid.Record, col grid.Column, v Captured) error {
	if _, ok := c.ignored[col.Field]; !ok && c.setter != nil {
		return c.setter(rec, col, Text(v.Value))
	}
	return restoreField(rec, col, v)
}

// Text stringifies a value the way copy writes it. nil becomes "".
func Text(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
