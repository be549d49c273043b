// Package bitmap is a fixed-size set of row positions backed by uint64 words.
// Table operations use it to mark rows (missing cells, rows to keep) without
// a map per row.
package bitmap

import "math/bits"

// Bitmap holds positions in [0, Len()).
type Bitmap struct {
	n    int
	data []uint64
}

// New allocates a bitmap for positions 0..n-1. n <= 0 gives an empty set
// that ignores Add.
func New(n int) *Bitmap {
	if n <= 0 {
		return &Bitmap{}
	}
	return &Bitmap{n: n, data: make([]uint64, (n+63)/64)}
}

// Len returns the number of positions the bitmap covers.
func (b *Bitmap) Len() int { return b.n }

// Add sets position i. Positions outside [0, Len()) are ignored.
func (b *Bitmap) Add(i int) {
	if i < 0 || i >= b.n {
		return
	}
	b.data[i/64] |= 1 << uint(i%64)
}

// Has reports whether position i is set.
func (b *Bitmap) Has(i int) bool {
	if i < 0 || i >= b.n {
		return false
	}
	return b.data[i/64]&(1<<uint(i%64)) != 0
}

// Count returns the number of set positions.
func (b *Bitmap) Count() int {
	n := 0
	for _, w := range b.data {
		n += bits.OnesCount64(w)
	}
	return n
}

// Or sets every position set in o. Positions beyond Len() are dropped.
func (b *Bitmap) Or(o *Bitmap) {
	for i := range min(len(b.data), len(o.data)) {
		b.data[i] |= o.data[i]
	}
	if r := b.n % 64; r != 0 && len(b.data) > 0 {
		b.data[len(b.data)-1] &= 1<<uint(r) - 1
	}
}
