// Package report derives summary tables from a cleaned table.
//
// A report groups by one or more columns and either aggregates a column with
// value reducers or selects one whole row per group. Without group_by it
// summarizes a single column: value counts when no reducers are given, one
// row of whole-column reductions otherwise. Results are flat tables with a
// positional index, optionally sorted and truncated.
package report

import (
	"fmt"

	"dataprep/internal/config"
	"dataprep/pkg/frame"
)

// Build computes r over t.
func Build(t *frame.Table, r config.Report) (*frame.Table, error) {
	out, err := build(t, r)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", r.Name, err)
	}
	if r.SortBy != "" {
		order := frame.Ascending
		if r.Descending {
			order = frame.Descending
		}
		if out, err = out.SortBy(r.SortBy, order); err != nil {
			return nil, fmt.Errorf("report %s: %w", r.Name, err)
		}
	}
	if r.Limit > 0 {
		out = out.Head(r.Limit)
	}
	return out, nil
}

// BuildAll computes every report in order and returns them by name.
func BuildAll(t *frame.Table, rs []config.Report) (map[string]*frame.Table, error) {
	out := make(map[string]*frame.Table, len(rs))
	for _, r := range rs {
		tbl, err := Build(t, r)
		if err != nil {
			return nil, err
		}
		out[r.Name] = tbl
	}
	return out, nil
}

func build(t *frame.Table, r config.Report) (*frame.Table, error) {
	if len(r.GroupBy) == 0 {
		if r.SelectRow != nil {
			return nil, fmt.Errorf("select_row requires group_by")
		}
		if len(r.Reducers) == 0 {
			return t.ValueCounts(r.Column)
		}
		return reduceColumn(t, r.Column, r.Reducers)
	}

	g, err := t.GroupBy(r.GroupBy...)
	if err != nil {
		return nil, err
	}
	if r.SelectRow != nil {
		red := frame.MaxRowBy(r.SelectRow.By)
		if r.SelectRow.Smallest {
			red = frame.MinRowBy(r.SelectRow.By)
		}
		res, err := g.SelectRows(red)
		if err != nil {
			return nil, err
		}
		return res.Flatten()
	}

	reducers, err := parseReducers(r.Reducers)
	if err != nil {
		return nil, err
	}
	res, err := g.Agg(r.Column, reducers...)
	if err != nil {
		return nil, err
	}
	return res.Flatten()
}

// reduceColumn returns a one-row table with one column per reducer.
func reduceColumn(t *frame.Table, column string, names []string) (*frame.Table, error) {
	reducers, err := parseReducers(names)
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(reducers))
	row := make([]frame.Value, len(reducers))
	for i, red := range reducers {
		v, err := t.Reduce(column, red)
		if err != nil {
			return nil, err
		}
		cols[i] = red.Name()
		row[i] = v
	}
	b := frame.NewBuilder("", cols)
	if err := b.Append(frame.Num(0), row...); err != nil {
		return nil, err
	}
	return b.Build()
}

func parseReducers(names []string) ([]frame.Reducer, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no reducers")
	}
	out := make([]frame.Reducer, len(names))
	for i, n := range names {
		r, err := frame.ParseReducer(n)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}
