package builtin

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"dataprep/pkg/frame"
)

// Coerce converts columns to "number" or "text". Text that does not parse as
// a finite number becomes missing when coerced to number.
type Coerce struct {
	// Types maps column name to target type.
	Types map[string]string
}

func (Coerce) Name() string { return "coerce" }

func (c Coerce) Apply(t *frame.Table) (*frame.Table, error) {
	out := t
	// Sorted for deterministic error reporting.
	for _, col := range slices.Sorted(maps.Keys(c.Types)) {
		var fn func(frame.Value) frame.Value
		switch strings.ToLower(c.Types[col]) {
		case "number", "float", "int", "numeric":
			fn = toNumber
		case "text", "string":
			fn = toText
		default:
			return nil, fmt.Errorf("column %q: unknown type %q", col, c.Types[col])
		}
		var err error
		if out, err = out.Map(col, fn); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func toNumber(v frame.Value) frame.Value {
	s, ok := v.Text()
	if !ok {
		return v
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return frame.Null
	}
	return frame.Num(f)
}

func toText(v frame.Value) frame.Value {
	if _, ok := v.Float(); ok {
		return frame.Str(v.String())
	}
	return v
}
