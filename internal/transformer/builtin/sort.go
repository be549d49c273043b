package builtin

import "dataprep/pkg/frame"

// Sort orders rows by Column. Missing values go last.
type Sort struct {
	Column string
	Order  frame.Order
}

func (Sort) Name() string { return "sort" }

func (s Sort) Apply(t *frame.Table) (*frame.Table, error) {
	return t.SortBy(s.Column, s.Order)
}
