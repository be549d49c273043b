package frame

import "fmt"

// PolicyKind selects what a Policy does with missing cells.
type PolicyKind uint8

const (
	// DropRows removes rows missing a value in any of the policy's columns.
	DropRows PolicyKind = iota + 1
	// FillValue replaces missing cells with a constant.
	FillValue
	// FillWithMean replaces missing cells with the column mean.
	FillWithMean
)

// Policy is one missing-value rule. Build it with DropPolicy, FillPolicy or
// MeanPolicy.
type Policy struct {
	Kind    PolicyKind
	Columns []string
	Value   Value
}

// DropPolicy removes rows missing any of columns.
func DropPolicy(columns ...string) Policy { return Policy{Kind: DropRows, Columns: columns} }

// FillPolicy replaces missing cells of column with v.
func FillPolicy(column string, v Value) Policy {
	return Policy{Kind: FillValue, Columns: []string{column}, Value: v}
}

// MeanPolicy replaces missing cells of column with the column mean.
func MeanPolicy(column string) Policy {
	return Policy{Kind: FillWithMean, Columns: []string{column}}
}

// HandleMissing applies the policies in order and returns the result. The
// first failing policy aborts the whole operation.
func (t *Table) HandleMissing(policies ...Policy) (*Table, error) {
	out := t
	for _, p := range policies {
		var err error
		switch p.Kind {
		case DropRows:
			out, err = out.DropMissing(p.Columns...)
		case FillValue, FillWithMean:
			if len(p.Columns) != 1 {
				return nil, fmt.Errorf("frame: fill policy needs exactly one column, got %d", len(p.Columns))
			}
			if p.Kind == FillValue {
				out, err = out.FillConstant(p.Columns[0], p.Value)
			} else {
				out, err = out.FillMean(p.Columns[0])
			}
		default:
			return nil, fmt.Errorf("frame: unknown missing-value policy %d", p.Kind)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DropMissing returns the rows that have a value in every listed column. With
// no columns every column is checked.
func (t *Table) DropMissing(columns ...string) (*Table, error) {
	idx := make([]int, 0, len(columns))
	for _, name := range columns {
		c, err := t.lookup("dropna", name)
		if err != nil {
			return nil, err
		}
		idx = append(idx, c)
	}
	if len(columns) == 0 {
		for c := range t.cols {
			idx = append(idx, c)
		}
	}

	keep := make([]int, 0, len(t.rows))
rows:
	for i, row := range t.rows {
		for _, c := range idx {
			if row[c].kind == Missing {
				continue rows
			}
		}
		keep = append(keep, i)
	}
	if len(keep) == len(t.rows) {
		return t, nil
	}
	return t.selectRows(keep), nil
}

// FillConstant replaces the missing cells of column with v.
func (t *Table) FillConstant(column string, v Value) (*Table, error) {
	c, err := t.lookup("fillna", column)
	if err != nil {
		return nil, err
	}
	if v.IsMissing() {
		return nil, ErrMissingFill
	}
	return t.fill(c, v), nil
}

// FillMean replaces the missing cells of a numeric column with the mean of its
// present values. It fails with *EmptyColumnError when no value is present and
// with *KindError when the column holds text.
func (t *Table) FillMean(column string) (*Table, error) {
	c, err := t.lookup("fill mean", column)
	if err != nil {
		return nil, err
	}
	vals := t.column(c)
	if err := requireNumbers("fill mean", column, vals); err != nil {
		return nil, err
	}
	m, ok := mean(vals)
	if !ok {
		return nil, &EmptyColumnError{Column: column}
	}
	return t.fill(c, m), nil
}

func (t *Table) fill(c int, v Value) *Table {
	vals := t.column(c)
	changed := false
	for i, x := range vals {
		if x.kind == Missing {
			vals[i] = v
			changed = true
		}
	}
	if !changed {
		return t
	}
	return t.withColumn(c, vals)
}

func requireNumbers(op, column string, vals []Value) error {
	for _, v := range vals {
		if v.kind == String {
			return &KindError{Op: op, Column: column, Want: Number, Got: String}
		}
	}
	return nil
}
