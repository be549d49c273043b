package frame

import (
	"errors"
	"fmt"
	"slices"
)

// Grouping partitions a table's rows by the values of one or more key
// columns. Groups are ordered by the first appearance of their key.
type Grouping struct {
	t      *Table
	keys   []string
	keyIdx []int
	groups [][]int
}

// GroupBy partitions the rows by the given key columns. Missing is a valid
// key value and forms its own group. Each key column may be named once.
func (t *Table) GroupBy(keys ...string) (*Grouping, error) {
	if len(keys) == 0 {
		return nil, errors.New("frame: group by needs at least one key column")
	}
	g := &Grouping{t: t, keys: slices.Clone(keys), keyIdx: make([]int, len(keys))}
	for i, k := range keys {
		if slices.Contains(keys[:i], k) {
			return nil, fmt.Errorf("frame: group by key %q given twice", k)
		}
		c, err := t.lookup("group by", k)
		if err != nil {
			return nil, err
		}
		g.keyIdx[i] = c
	}

	s := newRowSet(t, 0)
	s.cols = g.keyIdx
	group := make(map[int]int) // first row of a key -> group number
	for i := range t.rows {
		j := s.first(i)
		if j == i {
			group[i] = len(g.groups)
			g.groups = append(g.groups, nil)
		}
		n := group[j]
		g.groups[n] = append(g.groups[n], i)
	}
	return g, nil
}

// Len returns the number of groups.
func (g *Grouping) Len() int { return len(g.groups) }

// Keys returns the key column names.
func (g *Grouping) Keys() []string { return slices.Clone(g.keys) }

func (g *Grouping) key(n int) []Value {
	row := g.t.rows[g.groups[n][0]]
	k := make([]Value, len(g.keyIdx))
	for i, c := range g.keyIdx {
		k[i] = row[c]
	}
	return k
}

// Agg applies each value reducer to column within every group. The result
// has one column per reducer, named after it, or "<column>_<reducer>" when
// the reducer name is also a key column.
func (g *Grouping) Agg(column string, reducers ...Reducer) (*Result, error) {
	c, err := g.t.lookup("aggregate", column)
	if err != nil {
		return nil, err
	}
	if len(reducers) == 0 {
		return nil, errors.New("frame: aggregate needs at least one reducer")
	}
	names := make([]string, len(reducers))
	for i, r := range reducers {
		if r.Kind == ReduceExtremumRow {
			return nil, fmt.Errorf("%w: use SelectRows for %s", ErrRowReducer, r.Name())
		}
		names[i] = r.Name()
		if slices.Contains(g.keys, names[i]) {
			names[i] = column + "_" + names[i]
		}
		if slices.Contains(names[:i], names[i]) {
			return nil, fmt.Errorf("frame: reducer %s given twice", names[i])
		}
	}

	res := newResult(g.keys, names)
	vals := make([]Value, 0)
	for n, rows := range g.groups {
		vals = vals[:0]
		for _, i := range rows {
			vals = append(vals, g.t.rows[i][c])
		}
		out := make([]Value, len(reducers))
		for j, r := range reducers {
			if out[j], err = r.reduce(column, vals); err != nil {
				return nil, err
			}
		}
		res.add(g.key(n), out, Null)
	}
	return res, nil
}

// SelectRows picks one whole row per group with a row reducer (MaxRowBy,
// MinRowBy). Ties go to the earliest row of the group. Groups whose
// comparator column is missing in every row are left out.
func (g *Grouping) SelectRows(r Reducer) (*Result, error) {
	if r.Kind != ReduceExtremumRow {
		return nil, fmt.Errorf("%w: %s does not select rows", ErrRowReducer, r.Name())
	}
	by, err := g.t.lookup("select rows", r.By)
	if err != nil {
		return nil, err
	}

	res := newResult(g.keys, g.t.cols)
	res.rows = true
	res.index = g.t.index
	for n, rows := range g.groups {
		best := -1
		for _, i := range rows {
			v := g.t.rows[i][by]
			if v.kind == Missing {
				continue
			}
			if best < 0 {
				best = i
				continue
			}
			c := v.Compare(g.t.rows[best][by])
			if (r.Largest && c > 0) || (!r.Largest && c < 0) {
				best = i
			}
		}
		if best < 0 {
			continue
		}
		res.add(g.key(n), g.t.rows[best], g.t.labels[best])
	}
	return res, nil
}

// Result is the outcome of an aggregation: one entry per group, keyed by the
// group's key values.
type Result struct {
	keys   []string
	cols   []string
	rows   bool   // entries are whole source rows
	index  string // source index name for row selections
	kv     [][]Value
	vals   [][]Value
	labels []Value
	pos    map[string]int
}

func newResult(keys, cols []string) *Result {
	return &Result{keys: keys, cols: cols, pos: make(map[string]int)}
}

func (r *Result) add(key, vals []Value, label Value) {
	r.pos[keyString(key)] = len(r.kv)
	r.kv = append(r.kv, key)
	r.vals = append(r.vals, vals)
	r.labels = append(r.labels, label)
}

func keyString(key []Value) string {
	var b []byte
	for _, v := range key {
		b = appendValue(b, v)
	}
	return string(b)
}

// Len returns the number of groups in the result.
func (r *Result) Len() int { return len(r.kv) }

// Keys returns the key column names, outermost first.
func (r *Result) Keys() []string { return slices.Clone(r.keys) }

// Columns returns the result column names.
func (r *Result) Columns() []string { return slices.Clone(r.cols) }

// Key returns the key values of entry i.
func (r *Result) Key(i int) []Value { return slices.Clone(r.kv[i]) }

// Values returns the result values of entry i, in Columns order.
func (r *Result) Values(i int) []Value { return slices.Clone(r.vals[i]) }

// Label returns the source index label of entry i for row selections, and
// Null for aggregations.
func (r *Result) Label(i int) Value { return r.labels[i] }

// Lookup returns the values stored for a full key.
func (r *Result) Lookup(key ...Value) ([]Value, bool) {
	if len(key) != len(r.keys) {
		return nil, false
	}
	i, ok := r.pos[keyString(key)]
	if !ok {
		return nil, false
	}
	return slices.Clone(r.vals[i]), true
}

// Series returns one result column as a table indexed by the key. It is only
// defined for single-key results; otherwise ErrMultiLevel is returned.
func (r *Result) Series(column string) (*Table, error) {
	if len(r.keys) != 1 {
		return nil, ErrMultiLevel
	}
	c := slices.Index(r.cols, column)
	if c < 0 {
		return nil, &UnknownColumnError{Op: "series", Column: column}
	}
	t, err := newTable(r.keys[0], []string{column})
	if err != nil {
		return nil, err
	}
	t.labels = make([]Value, len(r.kv))
	t.rows = make([][]Value, len(r.kv))
	for i := range r.kv {
		t.labels[i] = r.kv[i][0]
		t.rows[i] = []Value{r.vals[i][c]}
	}
	return t, nil
}

// Level is one node of the nested key view. Inner nodes hold the next key
// level in Sub and have Row -1; leaves point at a Result entry.
type Level struct {
	Key Value
	Row int
	Sub []Level
}

// Levels returns the result as a tree with one level per key column. Nodes on
// each level keep first-appearance order.
func (r *Result) Levels() []Level {
	rows := make([]int, len(r.kv))
	for i := range rows {
		rows[i] = i
	}
	return r.levels(0, rows)
}

func (r *Result) levels(depth int, rows []int) []Level {
	var out []Level
	at := make(map[Value]int)
	var members [][]int
	for _, i := range rows {
		k := r.kv[i][depth]
		n, ok := at[k]
		if !ok {
			n = len(out)
			at[k] = n
			out = append(out, Level{Key: k, Row: -1})
			members = append(members, nil)
		}
		members[n] = append(members[n], i)
	}
	for n := range out {
		if depth == len(r.keys)-1 {
			out[n].Row = members[n][0]
			continue
		}
		out[n].Sub = r.levels(depth+1, members[n])
	}
	return out
}

// Flatten turns the result into a plain table: key columns first, then the
// source index (row selections only) and the result columns. For row
// selections the source key columns are omitted since they repeat the key.
// The table has a positional index.
func (r *Result) Flatten() (*Table, error) {
	cols := slices.Clone(r.keys)
	withLabel := r.rows && r.index != "" && !slices.Contains(cols, r.index)
	if withLabel {
		cols = append(cols, r.index)
	}
	var keep []int
	for c, name := range r.cols {
		if r.rows && slices.Contains(cols, name) {
			continue
		}
		keep = append(keep, c)
		cols = append(cols, name)
	}

	t, err := newTable("", cols)
	if err != nil {
		return nil, fmt.Errorf("flatten: %w", err)
	}
	t.labels = make([]Value, len(r.kv))
	t.rows = make([][]Value, len(r.kv))
	for i := range r.kv {
		row := make([]Value, 0, len(cols))
		row = append(row, r.kv[i]...)
		if withLabel {
			row = append(row, r.labels[i])
		}
		for _, c := range keep {
			row = append(row, r.vals[i][c])
		}
		t.labels[i] = Num(float64(i))
		t.rows[i] = row
	}
	return t, nil
}
