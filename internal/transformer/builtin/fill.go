package builtin

import "dataprep/pkg/frame"

// FillNA replaces missing cells of Column with Value.
type FillNA struct {
	Column string
	Value  frame.Value
}

func (FillNA) Name() string { return "fillna" }

func (f FillNA) Apply(t *frame.Table) (*frame.Table, error) {
	return t.FillConstant(f.Column, f.Value)
}

// FillMean replaces missing cells of a numeric Column with its mean.
type FillMean struct {
	Column string
}

func (FillMean) Name() string { return "fill_mean" }

func (f FillMean) Apply(t *frame.Table) (*frame.Table, error) {
	return t.FillMean(f.Column)
}
