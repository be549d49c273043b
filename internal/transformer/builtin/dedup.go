package builtin

import (
	"fmt"
	"strings"

	"dataprep/pkg/frame"
)

// DeDup removes duplicate rows. With no Keys a row is a duplicate when every
// column equals an earlier row; with Keys only those columns are compared.
//
// Policy selects the survivor: "keep-first" (default) keeps the earliest
// row, "keep-last" the latest. Survivors keep their input order.
type DeDup struct {
	Keys   []string
	Policy string
}

func (DeDup) Name() string { return "dedupe" }

func (d DeDup) Apply(t *frame.Table) (*frame.Table, error) {
	keep := frame.KeepFirst
	switch strings.ToLower(strings.TrimSpace(d.Policy)) {
	case "", "keep-first", "first":
	case "keep-last", "last":
		keep = frame.KeepLast
	default:
		return nil, fmt.Errorf("unknown dedupe policy %q", d.Policy)
	}
	if len(d.Keys) == 0 && keep == frame.KeepFirst {
		return t.DropDuplicates(), nil
	}
	return t.DropDuplicatesBy(keep, d.Keys...)
}
