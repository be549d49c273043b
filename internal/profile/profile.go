// Package profile describes a table column by column: kind, missing and
// distinct counts and the value range. It backs the -profile flag and the
// exportable "profile" table.
package profile

import (
	"dataprep/internal/bitmap"
	"dataprep/pkg/frame"
)

// Column kinds reported by Of.
const (
	KindNumber = "number"
	KindText   = "text"
	KindMixed  = "mixed"
	KindEmpty  = "empty"
)

// Columns of the table returned by Of, indexed by "column".
var Columns = []string{"kind", "present", "missing", "distinct", "min", "max", "mean"}

// Summary holds table-wide counts.
type Summary struct {
	Rows         int
	Columns      int
	CompleteRows int // rows without any missing cell
	Duplicates   int // rows equal to an earlier row
}

// Summarize counts rows, complete rows and duplicate rows of t.
func Summarize(t *frame.Table) Summary {
	rows, cols := t.Shape()
	s := Summary{Rows: rows, Columns: cols}

	incomplete := bitmap.New(rows)
	for _, name := range t.Columns() {
		vals, _ := t.Column(name)
		incomplete.Or(missing(vals))
	}
	s.CompleteRows = rows - incomplete.Count()

	for dup := range t.Duplicated() {
		if dup {
			s.Duplicates++
		}
	}
	return s
}

// Of returns one row per column of t, in schema order. min and max compare
// values with frame ordering; mean is present for number columns only.
func Of(t *frame.Table) (*frame.Table, error) {
	b := frame.NewBuilder("column", Columns)
	b.Grow(len(t.Columns()))
	for _, name := range t.Columns() {
		vals, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		row, err := describe(t, name, vals)
		if err != nil {
			return nil, err
		}
		if err := b.Append(frame.Str(name), row...); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func describe(t *frame.Table, name string, vals []frame.Value) ([]frame.Value, error) {
	miss := missing(vals)
	present := len(vals) - miss.Count()

	distinct := make(map[frame.Value]struct{})
	var numbers, texts int
	for i, v := range vals {
		if miss.Has(i) {
			continue
		}
		distinct[v] = struct{}{}
		if v.Kind() == frame.Number {
			numbers++
		} else {
			texts++
		}
	}

	kind := KindEmpty
	switch {
	case numbers > 0 && texts > 0:
		kind = KindMixed
	case numbers > 0:
		kind = KindNumber
	case texts > 0:
		kind = KindText
	}

	row := []frame.Value{
		frame.Str(kind),
		frame.Num(float64(present)),
		frame.Num(float64(miss.Count())),
		frame.Num(float64(len(distinct))),
		frame.Null, frame.Null, frame.Null,
	}
	if present == 0 {
		return row, nil
	}
	for j, r := range []frame.ReducerKind{frame.ReduceMin, frame.ReduceMax} {
		v, err := t.Reduce(name, frame.Reducer{Kind: r})
		if err != nil {
			return nil, err
		}
		row[4+j] = v
	}
	if kind == KindNumber {
		v, err := t.Reduce(name, frame.Reducer{Kind: frame.ReduceMean})
		if err != nil {
			return nil, err
		}
		row[6] = v
	}
	return row, nil
}

// missing marks the positions of missing values.
func missing(vals []frame.Value) *bitmap.Bitmap {
	bm := bitmap.New(len(vals))
	for i, v := range vals {
		if v.IsMissing() {
			bm.Add(i)
		}
	}
	return bm
}
