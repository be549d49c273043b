package frame

import (
	"encoding/binary"
	"iter"
	"math"

	"github.com/zeebo/xxh3"
)

// Duplicated returns a mask with one entry per row, true when the row's
// values equal those of an earlier row. The first occurrence is never marked.
// Index labels do not take part in the comparison.
//
// The sequence is computed lazily and may be iterated any number of times;
// each pass starts from an empty set of seen rows.
func (t *Table) Duplicated() iter.Seq[bool] {
	return func(yield func(bool) bool) {
		s := newRowSet(t, len(t.rows))
		for i := range t.rows {
			if !yield(!s.add(i)) {
				return
			}
		}
	}
}

// DropDuplicates returns the table without the rows flagged by Duplicated,
// preserving the relative order of the rest.
func (t *Table) DropDuplicates() *Table {
	keep := make([]int, 0, len(t.rows))
	i := 0
	for dup := range t.Duplicated() {
		if !dup {
			keep = append(keep, i)
		}
		i++
	}
	if len(keep) == len(t.rows) {
		return t
	}
	return t.selectRows(keep)
}

// rowSet tracks distinct rows by xxh3 fingerprint. Buckets hold row
// positions so that fingerprint collisions fall back to a full comparison.
type rowSet struct {
	t       *Table
	cols    []int // nil means all columns
	buckets map[uint64][]int
	buf     []byte
}

func newRowSet(t *Table, hint int) *rowSet {
	return &rowSet{t: t, buckets: make(map[uint64][]int, hint)}
}

// add records row i and reports whether it was not seen before.
func (s *rowSet) add(i int) bool { return s.first(i) == i }

// first returns the earliest row equal to row i, recording i when it is new.
func (s *rowSet) first(i int) int {
	h := s.fingerprint(s.t.rows[i])
	for _, j := range s.buckets[h] {
		if s.equal(s.t.rows[i], s.t.rows[j]) {
			return j
		}
	}
	s.buckets[h] = append(s.buckets[h], i)
	return i
}

func (s *rowSet) equal(a, b []Value) bool {
	if s.cols == nil {
		for c := range a {
			if a[c] != b[c] {
				return false
			}
		}
		return true
	}
	for _, c := range s.cols {
		if a[c] != b[c] {
			return false
		}
	}
	return true
}

func (s *rowSet) fingerprint(row []Value) uint64 {
	s.buf = s.buf[:0]
	if s.cols == nil {
		for _, v := range row {
			s.buf = appendValue(s.buf, v)
		}
	} else {
		for _, c := range s.cols {
			s.buf = appendValue(s.buf, row[c])
		}
	}
	return xxh3.Hash(s.buf)
}

// appendValue writes a self-delimiting encoding of v: kind byte, then eight
// bytes of float bits or a length-prefixed string.
func appendValue(b []byte, v Value) []byte {
	b = append(b, byte(v.kind))
	switch v.kind {
	case Number:
		f := v.num
		if f == 0 {
			f = 0 // fold -0 so it hashes like 0, matching ==
		}
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(f))
	case String:
		b = binary.AppendUvarint(b, uint64(len(v.str)))
		b = append(b, v.str...)
	}
	return b
}

// Keep selects which row of a set of duplicates survives.
type Keep uint8

const (
	KeepFirst Keep = iota
	KeepLast
)

// DropDuplicatesBy removes rows whose values in columns repeat those of
// another row. With no columns every column is compared. KeepFirst retains
// the earliest row of each set, KeepLast the latest; survivors keep their
// relative order either way.
func (t *Table) DropDuplicatesBy(keep Keep, columns ...string) (*Table, error) {
	s := newRowSet(t, len(t.rows))
	for _, name := range columns {
		c, err := t.lookup("drop duplicates", name)
		if err != nil {
			return nil, err
		}
		s.cols = append(s.cols, c)
	}

	keepRow := make([]bool, len(t.rows))
	n := 0
	for k := range t.rows {
		i := k
		if keep == KeepLast {
			i = len(t.rows) - 1 - k
		}
		if s.add(i) {
			keepRow[i] = true
			n++
		}
	}
	if n == len(t.rows) {
		return t, nil
	}
	idx := make([]int, 0, n)
	for i, ok := range keepRow {
		if ok {
			idx = append(idx, i)
		}
	}
	return t.selectRows(idx), nil
}
