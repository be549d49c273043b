package builtin

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"dataprep/pkg/frame"
)

// Normalize tidies text cells: it repairs the common "Â " mojibake, trims
// surrounding space and optionally strips accents and lowercases. Text that
// becomes empty turns into a missing value. With no Columns every column is
// processed; numbers and missing cells pass through.
type Normalize struct {
	Columns      []string
	StripAccents bool
	Lower        bool
}

func (Normalize) Name() string { return "normalize" }

func (n Normalize) Apply(t *frame.Table) (*frame.Table, error) {
	cols := n.Columns
	if len(cols) == 0 {
		cols = t.Columns()
	}
	var strip transform.Transformer
	if n.StripAccents {
		strip = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	}

	out := t
	for _, col := range cols {
		var err error
		out, err = out.Map(col, func(v frame.Value) frame.Value {
			s, ok := v.Text()
			if !ok {
				return v
			}
			s = strings.TrimSpace(strings.ReplaceAll(s, "Â ", " "))
			if strip != nil {
				if r, _, err := transform.String(strip, s); err == nil {
					s = r
				}
			}
			if n.Lower {
				s = strings.ToLower(s)
			}
			if s == "" {
				return frame.Null
			}
			return frame.Str(s)
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
