package frame

// Drop returns the table without the named columns. Every name must be part
// of the current schema; otherwise *UnknownColumnError is returned and nothing
// is dropped. Dropping the same column twice in one call is allowed.
func (t *Table) Drop(columns ...string) (*Table, error) {
	gone := make(map[int]bool, len(columns))
	for _, name := range columns {
		c, err := t.lookup("drop", name)
		if err != nil {
			return nil, err
		}
		gone[c] = true
	}
	if len(gone) == 0 {
		return t, nil
	}

	keep := make([]int, 0, len(t.cols)-len(gone))
	cols := make([]string, 0, len(t.cols)-len(gone))
	for c, name := range t.cols {
		if !gone[c] {
			keep = append(keep, c)
			cols = append(cols, name)
		}
	}
	out, err := newTable(t.index, cols)
	if err != nil {
		return nil, err
	}

	out.labels = t.labels
	out.rows = make([][]Value, len(t.rows))
	for i, row := range t.rows {
		nr := make([]Value, len(keep))
		for j, c := range keep {
			nr[j] = row[c]
		}
		out.rows[i] = nr
	}
	return out, nil
}

// Select returns the table restricted to the named columns, in the given
// order.
func (t *Table) Select(columns ...string) (*Table, error) {
	idx := make([]int, len(columns))
	for i, name := range columns {
		c, err := t.lookup("select", name)
		if err != nil {
			return nil, err
		}
		idx[i] = c
	}
	out, err := newTable(t.index, append([]string(nil), columns...))
	if err != nil {
		return nil, err
	}
	out.labels = t.labels
	out.rows = make([][]Value, len(t.rows))
	for i, row := range t.rows {
		nr := make([]Value, len(idx))
		for j, c := range idx {
			nr[j] = row[c]
		}
		out.rows[i] = nr
	}
	return out, nil
}
