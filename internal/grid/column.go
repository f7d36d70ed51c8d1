package grid

// ColumnType identifies the semantic type of a column's values.
// Paste coerces incoming text according to it.
type ColumnType int

const (
	// ColumnText stores values as strings (default).
	ColumnText ColumnType = iota
	// ColumnNumber stores values as float64.
	ColumnNumber
	// ColumnBool stores values as bool.
	ColumnBool
)

func (t ColumnType) String() string {
	switch t {
	case ColumnNumber:
		return "number"
	case ColumnBool:
		return "bool"
	default:
		return "text"
	}
}

// ParseColumnType maps a config/storage name back to a ColumnType.
// Unknown names are treated as text.
func ParseColumnType(s string) ColumnType {
	switch s {
	case "number":
		return ColumnNumber
	case "bool":
		return ColumnBool
	default:
		return ColumnText
	}
}

// Formatter renders a cell value for display. Copy uses it as the value
// extractor when no custom extractor takes precedence.
type Formatter func(value any, col Column, rec Record) string

// Editor converts between a record's stored value and its text form.
type Editor interface {
	// Serialize returns the text representation of the column's value in rec.
	Serialize(rec Record, col Column) string
	// Apply parses text and stores it into rec.
	Apply(rec Record, col Column, text string) error
}

// Column describes one grid column.
// ID and Field are the stable identity; Name is the display header used when
// copying with headers.
type Column struct {
	ID               string
	Field            string
	Name             string
	Type             ColumnType
	Width            int
	MinWidth         int
	Sortable         bool
	Resizable        bool
	RerenderOnResize bool
	Formatter        Formatter `json:"-"`
	Editor           Editor    `json:"-"`
}

// Record is one row of grid data keyed by column field.
type Record map[string]any

// IDField is the record key holding the row identifier.
const IDField = "id"

// ID returns the record's identifier, or nil when unset.
func (r Record) ID() any { return r[IDField] }

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
