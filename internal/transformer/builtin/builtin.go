// Package builtin contains the cleaning stages a pipeline can configure and
// the factory that builds them from config.Transform entries.
package builtin

import (
	"fmt"

	"dataprep/internal/config"
	"dataprep/internal/transformer"
	"dataprep/pkg/frame"
)

// Build constructs the stage described by t. Missing required options are
// reported here rather than when the stage runs.
func Build(t config.Transform) (transformer.Stage, error) {
	o := t.Options
	switch normalizeKind(t.Kind) {
	case "normalize":
		return Normalize{
			Columns:      o.StringSlice("columns"),
			StripAccents: o.Bool("strip_accents", false),
			Lower:        o.Bool("lower", false),
		}, nil
	case "dedupe":
		return DeDup{Keys: o.StringSlice("keys"), Policy: o.String("policy", "keep-first")}, nil
	case "drop_columns":
		cols := o.StringSlice("columns")
		if len(cols) == 0 {
			return nil, fmt.Errorf("drop_columns: options.columns must list at least one column")
		}
		return DropColumns{Columns: cols}, nil
	case "dropna":
		return Require{Fields: o.StringSlice("columns")}, nil
	case "fillna":
		col, err := requireColumn(t)
		if err != nil {
			return nil, err
		}
		v, err := valueOf(o.Any("value"))
		if err != nil {
			return nil, fmt.Errorf("fillna: options.value: %w", err)
		}
		if v.IsMissing() {
			return nil, fmt.Errorf("fillna: options.value is required")
		}
		return FillNA{Column: col, Value: v}, nil
	case "fill_mean":
		col, err := requireColumn(t)
		if err != nil {
			return nil, err
		}
		return FillMean{Column: col}, nil
	case "label_encode":
		col, err := requireColumn(t)
		if err != nil {
			return nil, err
		}
		return &LabelEncode{Column: col}, nil
	case "filter":
		col, err := requireColumn(t)
		if err != nil {
			return nil, err
		}
		v, err := valueOf(o.Any("equals"))
		if err != nil {
			return nil, fmt.Errorf("filter: options.equals: %w", err)
		}
		return Filter{Column: col, Value: v, Negate: o.Bool("negate", false)}, nil
	case "sort":
		col, err := requireColumn(t)
		if err != nil {
			return nil, err
		}
		order, err := frame.ParseOrder(o.String("order", ""))
		if err != nil {
			return nil, fmt.Errorf("sort: %w", err)
		}
		return Sort{Column: col, Order: order}, nil
	case "coerce":
		types := o.StringMap("types")
		if len(types) == 0 {
			return nil, fmt.Errorf("coerce: options.types must map at least one column")
		}
		return Coerce{Types: types}, nil
	}
	return nil, fmt.Errorf("unsupported transform kind %q", t.Kind)
}

// BuildChain constructs a chain from configuration, in order.
func BuildChain(ts []config.Transform) (transformer.Chain, error) {
	c := transformer.Chain{}
	for i, t := range ts {
		s, err := Build(t)
		if err != nil {
			return nil, fmt.Errorf("transform[%d]: %w", i, err)
		}
		c = append(c, s)
	}
	return c, nil
}

// normalizeKind maps accepted aliases onto canonical kinds.
func normalizeKind(k string) string {
	switch k {
	case "dedup", "drop_duplicates":
		return "dedupe"
	case "drop", "prune":
		return "drop_columns"
	case "require", "drop_missing":
		return "dropna"
	case "fill_constant":
		return "fillna"
	case "encode":
		return "label_encode"
	}
	return k
}

func requireColumn(t config.Transform) (string, error) {
	col := t.Options.String("column", "")
	if col == "" {
		return "", fmt.Errorf("%s: options.column is required", t.Kind)
	}
	return col, nil
}

// valueOf converts a decoded JSON/YAML scalar into a cell value.
func valueOf(v any) (frame.Value, error) {
	switch x := v.(type) {
	case nil:
		return frame.Null, nil
	case float64:
		return frame.Num(x), nil
	case int:
		return frame.Num(float64(x)), nil
	case string:
		return frame.Str(x), nil
	case bool:
		if x {
			return frame.Str("true"), nil
		}
		return frame.Str("false"), nil
	}
	return frame.Null, fmt.Errorf("unsupported value %v (%T)", v, v)
}
