package frame

import (
	"cmp"
	"strconv"
)

// Kind tags the payload carried by a Value.
type Kind uint8

const (
	// Missing marks an absent cell (NaN/empty in the source file).
	Missing Kind = iota
	// Number is a float64 payload.
	Number
	// String is a text payload.
	String
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Number:
		return "number"
	case String:
		return "string"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single table cell. The zero Value is missing. Values are
// comparable and can be used as map keys.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Null is the missing value.
var Null = Value{}

// Num returns a numeric Value.
func Num(f float64) Value { return Value{kind: Number, num: f} }

// Str returns a text Value.
func Str(s string) Value { return Value{kind: String, str: s} }

// Kind reports the payload kind.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is the missing value.
func (v Value) IsMissing() bool { return v.kind == Missing }

// Float returns the numeric payload and whether v is a Number.
func (v Value) Float() (float64, bool) { return v.num, v.kind == Number }

// Text returns the string payload and whether v is a String.
func (v Value) Text() (string, bool) { return v.str, v.kind == String }

// String renders v for export. Numbers use the shortest representation that
// round-trips; missing renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case String:
		return v.str
	default:
		return ""
	}
}

// Any returns the payload as float64, string or nil, the shape database
// drivers expect.
func (v Value) Any() any {
	switch v.kind {
	case Number:
		return v.num
	case String:
		return v.str
	default:
		return nil
	}
}

// Equal reports kind and payload equality. Two missing values are equal.
func (v Value) Equal(o Value) bool { return v == o }

// Compare orders values: numbers before strings, numbers numerically, strings
// lexicographically. Missing sorts after everything; callers that need a
// different placement must check IsMissing first.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		return cmp.Compare(rank(v.kind), rank(o.kind))
	}
	switch v.kind {
	case Number:
		return cmp.Compare(v.num, o.num)
	case String:
		return cmp.Compare(v.str, o.str)
	default:
		return 0
	}
}

func rank(k Kind) int {
	switch k {
	case Number:
		return 0
	case String:
		return 1
	default:
		return 2
	}
}
