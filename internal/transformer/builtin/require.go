package builtin

import "dataprep/pkg/frame"

// Require removes every row missing a value in any of Fields. With no Fields
// every column is checked.
type Require struct {
	Fields []string
}

func (Require) Name() string { return "dropna" }

func (r Require) Apply(t *frame.Table) (*frame.Table, error) {
	return t.DropMissing(r.Fields...)
}
