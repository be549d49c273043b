package ddl

import (
	"fmt"

	"dataprep/pkg/frame"
)

// FromTable infers a table definition from t. With withIndex the index
// column comes first; it is skipped when t's index is unnamed. A column is
// Number when every present value is a number and at least one is present,
// otherwise Text. All columns are nullable.
func FromTable(t *frame.Table, fqn string, withIndex bool) (TableDef, error) {
	if fqn == "" {
		return TableDef{}, fmt.Errorf("ddl: missing table")
	}
	var defs []ColumnDef
	if withIndex && t.IndexName() != "" {
		labels := make([]frame.Value, t.Len())
		for i := range labels {
			labels[i] = t.Label(i)
		}
		defs = append(defs, ColumnDef{Name: t.IndexName(), Type: inferType(labels), Nullable: true})
	}
	for _, name := range t.Columns() {
		vals, err := t.Column(name)
		if err != nil {
			return TableDef{}, err
		}
		defs = append(defs, ColumnDef{Name: name, Type: inferType(vals), Nullable: true})
	}
	return TableDef{FQN: fqn, Columns: defs}, nil
}

func inferType(vals []frame.Value) Type {
	seen := false
	for _, v := range vals {
		switch v.Kind() {
		case frame.String:
			return Text
		case frame.Number:
			seen = true
		}
	}
	if seen {
		return Number
	}
	return Text
}

// Convert renders v for a column of type typ: float64 for Number columns,
// string for Text columns and nil for missing values.
func Convert(typ Type, v frame.Value) any {
	if v.IsMissing() {
		return nil
	}
	if typ == Number {
		if f, ok := v.Float(); ok {
			return f
		}
	}
	return v.String()
}
