package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/zjrosen/gridclip/internal/grid"
)

// ColumnModel is one sheet_columns row.
type ColumnModel struct {
	Position         int
	ColumnID         string
	Field            string
	Name             string
	Type             string
	Width            int
	MinWidth         int
	Sortable         bool
	Resizable        bool
	RerenderOnResize bool
}

func toColumnModel(position int, c grid.Column) ColumnModel {
	return ColumnModel{
		Position:         position,
		ColumnID:         c.ID,
		Field:            c.Field,
		Name:             c.Name,
		Type:             c.Type.String(),
		Width:            c.Width,
		MinWidth:         c.MinWidth,
		Sortable:         c.Sortable,
		Resizable:        c.Resizable,
		RerenderOnResize: c.RerenderOnResize,
	}
}

func (m ColumnModel) toDomain() grid.Column {
	return grid.Column{
		ID:               m.ColumnID,
		Field:            m.Field,
		Name:             m.Name,
		Type:             grid.ParseColumnType(m.Type),
		Width:            m.Width,
		MinWidth:         m.MinWidth,
		Sortable:         m.Sortable,
		Resizable:        m.Resizable,
		RerenderOnResize: m.RerenderOnResize,
	}
}

// encodeRecord stores a record as a JSON object. Values are text, float64,
// bool or null, all of which survive the round trip unchanged.
func encodeRecord(rec grid.Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(data), nil
}

func decodeRecord(data string) (grid.Record, error) {
	rec := grid.Record{}
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
