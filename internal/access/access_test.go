package access

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridclip/internal/grid"
)

type upperEditor struct{}

func (upperEditor) Serialize(rec grid.Record, col grid.Column) string {
	return strings.ToUpper(Text(rec[col.Field]))
}

func (upperEditor) Apply(rec grid.Record, col grid.Column, text string) error {
	if text == "bad" {
		return errors.New("rejected")
	}
	rec[col.Field] = strings.ToLower(text)
	return nil
}

func currency(v any, _ grid.Column, _ grid.Record) string {
	return "$" + Text(v)
}

func TestPlainField_SetCoercesByType(t *testing.T) {
	rec := grid.Record{}
	p := PlainField{}

	require.NoError(t, p.Set(rec, grid.Column{Field: "name"}, " apple "))
	require.Equal(t, " apple ", rec["name"])

	require.NoError(t, p.Set(rec, grid.Column{Field: "qty", Type: grid.ColumnNumber}, " 4.5 "))
	require.Equal(t, 4.5, rec["qty"])

	require.NoError(t, p.Set(rec, grid.Column{Field: "ok", Type: grid.ColumnBool}, "true"))
	require.Equal(t, true, rec["ok"])

	require.NoError(t, p.Set(rec, grid.Column{Field: "qty", Type: grid.ColumnNumber}, ""))
	require.Nil(t, rec["qty"])
}

func TestPlainField_SetRejectsBadNumber(t *testing.T) {
	rec := grid.Record{"qty": 1.0}
	err := PlainField{}.Set(rec, grid.Column{Field: "qty", Type: grid.ColumnNumber}, "abc")

	var cerr *CoercionError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "qty", cerr.Field)
	require.Equal(t, 1.0, rec["qty"], "failed write leaves the value untouched")
}

func TestPlainField_SetRejectsBadBool(t *testing.T) {
	err := PlainField{}.Set(grid.Record{}, grid.Column{Field: "ok", Type: grid.ColumnBool}, "maybe")
	require.Error(t, err)
}

func TestFormatterBased(t *testing.T) {
	col := grid.Column{Field: "price", Formatter: currency}
	rec := grid.Record{"price": 3}

	require.Equal(t, "$3", FormatterBased{}.Get(rec, col))
	require.Equal(t, 3, FormatterBased{}.Get(rec, grid.Column{Field: "price"}))

	require.NoError(t, FormatterBased{}.Set(rec, col, "5"))
	require.Equal(t, "5", rec["price"])
}

func TestEditorBased(t *testing.T) {
	col := grid.Column{Field: "code", Editor: upperEditor{}}
	rec := grid.Record{"code": "ab"}

	require.Equal(t, "AB", EditorBased{}.Get(rec, col))
	require.NoError(t, EditorBased{}.Set(rec, col, "XY"))
	require.Equal(t, "xy", rec["code"])
	require.Error(t, EditorBased{}.Set(rec, col, "bad"))
}

func TestCustom_FallsBackToPlain(t *testing.T) {
	rec := grid.Record{"a": "1"}
	col := grid.Column{Field: "a"}
	require.Equal(t, "1", Custom{}.Get(rec, col))

	c := Custom{GetFunc: func(grid.Record, grid.Column) any { return "custom" }}
	require.Equal(t, "custom", c.Get(rec, col))
}

func TestDefault_LookupOrder(t *testing.T) {
	formatted := grid.Column{Field: "price", Formatter: currency, Editor: upperEditor{}}
	edited := grid.Column{Field: "code", Editor: upperEditor{}}
	rec := grid.Record{"price": 3, "code": "ab"}

	s := Default(Options{})
	require.Equal(t, "$3", s.Get(rec, formatted), "formatter wins over editor on read")
	require.Equal(t, "AB", s.Get(rec, edited))

	require.NoError(t, s.Set(rec, formatted, "ZZ"))
	require.Equal(t, "zz", rec["price"], "editor handles writes")
}

func TestDefault_IgnoredFieldsArePlain(t *testing.T) {
	col := grid.Column{Field: "price", Formatter: currency, Editor: upperEditor{}}
	rec := grid.Record{"price": 3}

	s := Default(Options{IgnoreFormatting: []string{"price"}})
	require.Equal(t, 3, s.Get(rec, col))
	require.NoError(t, s.Set(rec, col, "ZZ"))
	require.Equal(t, "ZZ", rec["price"])
}

func TestDefault_CustomExtractorAndSetter(t *testing.T) {
	col := grid.Column{Field: "price", Formatter: currency}
	rec := grid.Record{"price": 3}
	var setCalls int

	s := Default(Options{
		Extractor: func(rec grid.Record, col grid.Column) any { return "x" + Text(rec[col.Field]) },
		Setter: func(rec grid.Record, col grid.Column, text string) error {
			setCalls++
			rec[col.Field] = "set:" + text
			return nil
		},
	})
	require.Equal(t, "x3", s.Get(rec, col))
	require.NoError(t, s.Set(rec, col, "9"))
	require.Equal(t, "set:9", rec["price"])
	require.Equal(t, 1, setCalls)
}

func TestRestore_PutsRawValueBack(t *testing.T) {
	col := grid.Column{Field: "qty", Type: grid.ColumnNumber}
	rec := grid.Record{"qty": 7}
	before := Capture(rec, col)

	s := Default(Options{})
	require.NoError(t, s.Set(rec, col, "8"))
	require.NoError(t, s.(Restorer).Restore(rec, col, before))
	require.Equal(t, 7, rec["qty"])
}

func TestRestore_RemovesFieldThatWasAbsent(t *testing.T) {
	col := grid.Column{Field: "new"}
	rec := grid.Record{}
	before := Capture(rec, col)
	require.False(t, before.Present)

	require.NoError(t, PlainField{}.Set(rec, col, "v"))
	require.NoError(t, PlainField{}.Restore(rec, col, before))
	_, ok := rec["new"]
	require.False(t, ok)
}

func TestText(t *testing.T) {
	require.Equal(t, "", Text(nil))
	require.Equal(t, "4.5", Text(4.5))
	require.Equal(t, "3", Text(3))
	require.Equal(t, "true", Text(true))
	require.Equal(t, "abc", Text("abc"))
}
