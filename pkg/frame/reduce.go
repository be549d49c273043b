package frame

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// ReducerKind enumerates the summaries a Reducer can compute.
type ReducerKind uint8

const (
	// ReduceCount counts present (non-missing) values, like pandas count.
	// ReduceLen counts rows instead.
	ReduceCount ReducerKind = iota + 1
	// ReduceLen counts rows, missing or not.
	ReduceLen
	// ReduceSum adds numeric values.
	ReduceSum
	// ReduceMin picks the smallest present value.
	ReduceMin
	// ReduceMax picks the largest present value.
	ReduceMax
	// ReduceMean averages numeric values.
	ReduceMean
	// ReduceFirst picks the first present value.
	ReduceFirst
	// ReduceExtremumRow selects a whole row: the one with the largest (or
	// smallest) value in the By column.
	ReduceExtremumRow
)

// Reducer summarizes a group's values into one value, or, for
// ReduceExtremumRow, selects one row of the group.
type Reducer struct {
	Kind ReducerKind

	// By names the comparator column of a ReduceExtremumRow reducer.
	By string
	// Largest selects the maximum of By; false selects the minimum.
	Largest bool
}

// MaxRowBy selects, per group, the row with the largest value in column.
func MaxRowBy(column string) Reducer {
	return Reducer{Kind: ReduceExtremumRow, By: column, Largest: true}
}

// MinRowBy selects, per group, the row with the smallest value in column.
func MinRowBy(column string) Reducer {
	return Reducer{Kind: ReduceExtremumRow, By: column}
}

var reducerNames = map[ReducerKind]string{
	ReduceCount: "count",
	ReduceLen:   "len",
	ReduceSum:   "sum",
	ReduceMin:   "min",
	ReduceMax:   "max",
	ReduceMean:  "mean",
	ReduceFirst: "first",
}

// Name is the output column name used for the reducer in a Result.
func (r Reducer) Name() string {
	if r.Kind == ReduceExtremumRow {
		if r.Largest {
			return "max_row(" + r.By + ")"
		}
		return "min_row(" + r.By + ")"
	}
	if n, ok := reducerNames[r.Kind]; ok {
		return n
	}
	return fmt.Sprintf("reducer(%d)", r.Kind)
}

// ParseReducer maps a value reducer name ("count", "len", "size", "sum",
// "min", "max", "mean", "avg", "first") to a Reducer.
func ParseReducer(name string) (Reducer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "count":
		return Reducer{Kind: ReduceCount}, nil
	case "len", "size":
		return Reducer{Kind: ReduceLen}, nil
	case "sum":
		return Reducer{Kind: ReduceSum}, nil
	case "min":
		return Reducer{Kind: ReduceMin}, nil
	case "max":
		return Reducer{Kind: ReduceMax}, nil
	case "mean", "avg":
		return Reducer{Kind: ReduceMean}, nil
	case "first":
		return Reducer{Kind: ReduceFirst}, nil
	}
	return Reducer{}, fmt.Errorf("frame: unknown reducer %q", name)
}

// reduce applies a value reducer to vals, which came from column.
func (r Reducer) reduce(column string, vals []Value) (Value, error) {
	switch r.Kind {
	case ReduceCount:
		n := 0
		for _, v := range vals {
			if v.kind != Missing {
				n++
			}
		}
		return Num(float64(n)), nil
	case ReduceLen:
		return Num(float64(len(vals))), nil
	case ReduceSum:
		if err := requireNumbers("sum", column, vals); err != nil {
			return Null, err
		}
		s, _ := sum(vals)
		f, _ := s.Float64()
		return Num(f), nil
	case ReduceMin, ReduceMax:
		best := Null
		for _, v := range vals {
			if v.kind == Missing {
				continue
			}
			if best.kind == Missing {
				best = v
				continue
			}
			c := v.Compare(best)
			if (r.Kind == ReduceMin && c < 0) || (r.Kind == ReduceMax && c > 0) {
				best = v
			}
		}
		return best, nil
	case ReduceMean:
		if err := requireNumbers("mean", column, vals); err != nil {
			return Null, err
		}
		m, _ := mean(vals)
		return m, nil
	case ReduceFirst:
		for _, v := range vals {
			if v.kind != Missing {
				return v, nil
			}
		}
		return Null, nil
	case ReduceExtremumRow:
		return Null, fmt.Errorf("%w: %s selects rows, not values", ErrRowReducer, r.Name())
	}
	return Null, fmt.Errorf("frame: unknown reducer kind %d", r.Kind)
}

// sum adds the numeric values exactly and reports how many were added.
func sum(vals []Value) (decimal.Decimal, int) {
	total := decimal.Zero
	n := 0
	for _, v := range vals {
		if v.kind != Number {
			continue
		}
		total = total.Add(decimal.NewFromFloat(v.num))
		n++
	}
	return total, n
}

// mean returns the arithmetic mean of the numeric values, or false when there
// are none. Accumulating in decimal keeps the result independent of row order.
func mean(vals []Value) (Value, bool) {
	total, n := sum(vals)
	if n == 0 {
		return Null, false
	}
	f, _ := total.Div(decimal.NewFromInt(int64(n))).Float64()
	return Num(f), true
}

// Reduce summarizes a whole column with a value reducer.
func (t *Table) Reduce(column string, r Reducer) (Value, error) {
	c, err := t.lookup("reduce", column)
	if err != nil {
		return Null, err
	}
	return r.reduce(column, t.column(c))
}

// ValueCounts counts the present values of column. The result is indexed by
// the counted value and has a single "count" column, ordered by descending
// count with ties in first-appearance order.
func (t *Table) ValueCounts(column string) (*Table, error) {
	c, err := t.lookup("value counts", column)
	if err != nil {
		return nil, err
	}
	counts := make(map[Value]int)
	var order []Value
	for _, row := range t.rows {
		v := row[c]
		if v.kind == Missing {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	slices.SortStableFunc(order, func(a, b Value) int {
		return cmp.Compare(counts[b], counts[a])
	})

	b := NewBuilder(column, []string{"count"})
	b.Grow(len(order))
	for _, v := range order {
		if err := b.Append(v, Num(float64(counts[v]))); err != nil {
			return nil, err
		}
	}
	return b.Build()
}
