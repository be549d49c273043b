package frame

import (
	"fmt"
	"slices"
)

// Encoding maps the distinct values of one column to small integer codes,
// assigned 0, 1, 2, ... in order of first appearance. The mapping is not
// canonical: the same values in a different row order get different codes.
type Encoding struct {
	column string
	codes  map[Value]int
	values []Value
}

// Encode replaces every present value of column with its integer code and
// returns the encoded table together with the mapping. Missing cells stay
// missing and receive no code.
func (t *Table) Encode(column string) (*Table, *Encoding, error) {
	c, err := t.lookup("encode", column)
	if err != nil {
		return nil, nil, err
	}
	e := &Encoding{column: column, codes: make(map[Value]int)}
	vals := t.column(c)
	for i, v := range vals {
		if v.kind == Missing {
			continue
		}
		code, ok := e.codes[v]
		if !ok {
			code = len(e.values)
			e.codes[v] = code
			e.values = append(e.values, v)
		}
		vals[i] = Num(float64(code))
	}
	return t.withColumn(c, vals), e, nil
}

// Column is the name of the column the encoding was built from.
func (e *Encoding) Column() string { return e.column }

// Len is the number of distinct values.
func (e *Encoding) Len() int { return len(e.values) }

// Code returns the code assigned to v.
func (e *Encoding) Code(v Value) (int, bool) {
	code, ok := e.codes[v]
	return code, ok
}

// Decode returns the value that was assigned code.
func (e *Encoding) Decode(code int) (Value, bool) {
	if code < 0 || code >= len(e.values) {
		return Null, false
	}
	return e.values[code], true
}

// Values returns the encoded values in code order.
func (e *Encoding) Values() []Value { return slices.Clone(e.values) }

// Apply encodes column of another table with this mapping. A present value
// that has no code fails with ErrUnknownCategory.
func (e *Encoding) Apply(t *Table, column string) (*Table, error) {
	c, err := t.lookup("encode", column)
	if err != nil {
		return nil, err
	}
	vals := t.column(c)
	for i, v := range vals {
		if v.kind == Missing {
			continue
		}
		code, ok := e.codes[v]
		if !ok {
			return nil, fmt.Errorf("%w: %q in column %q", ErrUnknownCategory, v.String(), column)
		}
		vals[i] = Num(float64(code))
	}
	return t.withColumn(c, vals), nil
}

// Table renders the mapping as a table indexed by "code" with one column
// holding the original values.
func (e *Encoding) Table() *Table {
	t, _ := newTable("code", []string{e.column})
	t.labels = make([]Value, len(e.values))
	t.rows = make([][]Value, len(e.values))
	for i, v := range e.values {
		t.labels[i] = Num(float64(i))
		t.rows[i] = []Value{v}
	}
	return t
}

// Decode reverses an encoding on column: every code is replaced by the value
// it stands for. A cell that is not a known code fails with
// ErrUnknownCategory.
func (t *Table) Decode(column string, e *Encoding) (*Table, error) {
	c, err := t.lookup("decode", column)
	if err != nil {
		return nil, err
	}
	vals := t.column(c)
	for i, v := range vals {
		if v.kind == Missing {
			continue
		}
		f, ok := v.Float()
		code := int(f)
		if ok && float64(code) == f {
			if orig, ok := e.Decode(code); ok {
				vals[i] = orig
				continue
			}
		}
		return nil, fmt.Errorf("%w: %q is not a code of column %q", ErrUnknownCategory, v.String(), e.column)
	}
	return t.withColumn(c, vals), nil
}
