package builtin

import "dataprep/pkg/frame"

// Filter keeps the rows whose Column equals Value, or, with Negate, the rows
// whose Column differs from it.
type Filter struct {
	Column string
	Value  frame.Value
	Negate bool
}

func (Filter) Name() string { return "filter" }

func (f Filter) Apply(t *frame.Table) (*frame.Table, error) {
	return t.Filter(f.Column, func(v frame.Value) bool { return (v == f.Value) != f.Negate })
}
