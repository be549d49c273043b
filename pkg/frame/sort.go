package frame

import (
	"fmt"
	"slices"
	"strings"
)

// Order is a sort direction.
type Order uint8

const (
	Ascending Order = iota
	Descending
)

// ParseOrder accepts "asc"/"ascending" and "desc"/"descending"; the empty
// string means Ascending.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Ascending, fmt.Errorf("frame: unknown sort order %q", s)
}

// SortBy returns the rows ordered by column. The sort is stable, so rows with
// equal values keep their relative order. Missing values go last in either
// direction.
func (t *Table) SortBy(column string, order Order) (*Table, error) {
	c, err := t.lookup("sort", column)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(t.rows))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		va, vb := t.rows[a][c], t.rows[b][c]
		switch {
		case va.kind == Missing && vb.kind == Missing:
			return 0
		case va.kind == Missing:
			return 1
		case vb.kind == Missing:
			return -1
		}
		if order == Descending {
			return vb.Compare(va)
		}
		return va.Compare(vb)
	})
	return t.selectRows(idx), nil
}
