// Package frame implements an immutable, in-memory table and the cleaning and
// aggregation operations applied to it: duplicate removal, column pruning,
// missing-value handling, label encoding, grouping and sorting.
//
// A Table is never modified after it is built. Every operation returns a new
// Table (or a derived structure) and leaves its receiver untouched, so a table
// can be handed to several consumers at once. Row slices are shared between
// tables derived from one another; they are treated as read-only.
//
// Columns are addressed by name and every lookup is checked against the
// schema: an absent name fails with *UnknownColumnError.
package frame

import (
	"fmt"
	"slices"
)

// Table is an ordered sequence of rows sharing one column schema, plus an
// index column holding one label per row.
type Table struct {
	index  string
	labels []Value
	cols   []string
	pos    map[string]int
	rows   [][]Value
}

// Builder accumulates rows for a new Table.
type Builder struct {
	t   *Table
	err error
}

// NewBuilder starts a table with the given index column name and schema.
// Column names must be non-empty and unique; the index name may be empty.
func NewBuilder(index string, columns []string) *Builder {
	t, err := newTable(index, slices.Clone(columns))
	return &Builder{t: t, err: err}
}

// Grow reserves capacity for n more rows.
func (b *Builder) Grow(n int) {
	if b.err != nil || n <= 0 {
		return
	}
	b.t.labels = slices.Grow(b.t.labels, n)
	b.t.rows = slices.Grow(b.t.rows, n)
}

// Append adds a row. The values are copied; len(values) must equal the number
// of columns.
func (b *Builder) Append(label Value, values ...Value) error {
	if b.err != nil {
		return b.err
	}
	if len(values) != len(b.t.cols) {
		return fmt.Errorf("frame: row has %d values, schema has %d columns", len(values), len(b.t.cols))
	}
	b.t.labels = append(b.t.labels, label)
	b.t.rows = append(b.t.rows, slices.Clone(values))
	return nil
}

// Build returns the table. The builder must not be used afterwards.
func (b *Builder) Build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	t := b.t
	b.t = nil
	return t, nil
}

func newTable(index string, cols []string) (*Table, error) {
	pos := make(map[string]int, len(cols))
	for i, c := range cols {
		if c == "" {
			return nil, fmt.Errorf("frame: column %d has an empty name", i)
		}
		if _, dup := pos[c]; dup {
			return nil, fmt.Errorf("frame: duplicate column name %q", c)
		}
		pos[c] = i
	}
	return &Table{index: index, cols: cols, pos: pos}, nil
}

// derive returns a table with t's index and schema and the given rows.
func (t *Table) derive(labels []Value, rows [][]Value) *Table {
	return &Table{index: t.index, labels: labels, cols: t.cols, pos: t.pos, rows: rows}
}

// selectRows returns a table holding the rows at the given positions, in order.
func (t *Table) selectRows(idx []int) *Table {
	labels := make([]Value, len(idx))
	rows := make([][]Value, len(idx))
	for i, r := range idx {
		labels[i] = t.labels[r]
		rows[i] = t.rows[r]
	}
	return t.derive(labels, rows)
}

// withColumn returns a table whose column c is replaced by vals.
func (t *Table) withColumn(c int, vals []Value) *Table {
	rows := make([][]Value, len(t.rows))
	for i, row := range t.rows {
		if row[c] == vals[i] {
			rows[i] = row
			continue
		}
		nr := slices.Clone(row)
		nr[c] = vals[i]
		rows[i] = nr
	}
	return t.derive(t.labels, rows)
}

func (t *Table) lookup(op, column string) (int, error) {
	c, ok := t.pos[column]
	if !ok {
		return 0, &UnknownColumnError{Op: op, Column: column}
	}
	return c, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Shape returns the row and column counts.
func (t *Table) Shape() (rows, cols int) { return len(t.rows), len(t.cols) }

// IndexName returns the name of the index column.
func (t *Table) IndexName() string { return t.index }

// Columns returns a copy of the column names in schema order.
func (t *Table) Columns() []string { return slices.Clone(t.cols) }

// Has reports whether column is part of the schema.
func (t *Table) Has(column string) bool {
	_, ok := t.pos[column]
	return ok
}

// Label returns the index label of row i.
func (t *Table) Label(i int) Value { return t.labels[i] }

// Row returns a copy of row i's values in schema order.
func (t *Table) Row(i int) []Value { return slices.Clone(t.rows[i]) }

// Value returns the cell at row i, column name.
func (t *Table) Value(i int, column string) (Value, error) {
	c, err := t.lookup("value", column)
	if err != nil {
		return Null, err
	}
	return t.rows[i][c], nil
}

// Column returns a copy of the named column's values.
func (t *Table) Column(column string) ([]Value, error) {
	c, err := t.lookup("column", column)
	if err != nil {
		return nil, err
	}
	return t.column(c), nil
}

func (t *Table) column(c int) []Value {
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out
}

// Where returns the rows whose column equals v.
func (t *Table) Where(column string, v Value) (*Table, error) {
	return t.Filter(column, func(x Value) bool { return x == v })
}

// Filter returns the rows for which keep reports true on the cell of column,
// in their original order.
func (t *Table) Filter(column string, keep func(Value) bool) (*Table, error) {
	c, err := t.lookup("filter", column)
	if err != nil {
		return nil, err
	}
	var idx []int
	for i, row := range t.rows {
		if keep(row[c]) {
			idx = append(idx, i)
		}
	}
	return t.selectRows(idx), nil
}

// Head returns the first n rows (all rows when n exceeds the length).
func (t *Table) Head(n int) *Table {
	n = max(0, min(n, len(t.rows)))
	return t.derive(t.labels[:n:n], t.rows[:n:n])
}

// Map returns the table with fn applied to every cell of column. The input is
// left untouched; unchanged rows are shared.
func (t *Table) Map(column string, fn func(Value) Value) (*Table, error) {
	c, err := t.lookup("map", column)
	if err != nil {
		return nil, err
	}
	vals := t.column(c)
	for i, v := range vals {
		vals[i] = fn(v)
	}
	return t.withColumn(c, vals), nil
}
