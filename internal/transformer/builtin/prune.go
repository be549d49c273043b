package builtin

import "dataprep/pkg/frame"

// DropColumns removes columns from the schema. Every column must exist.
type DropColumns struct {
	Columns []string
}

func (DropColumns) Name() string { return "drop_columns" }

func (d DropColumns) Apply(t *frame.Table) (*frame.Table, error) {
	return t.Drop(d.Columns...)
}
