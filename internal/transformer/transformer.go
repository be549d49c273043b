// Package transformer runs ordered chains of table stages.
package transformer

import (
	"fmt"
	"maps"
	"time"

	"dataprep/pkg/frame"
)

// Stage is one cleaning step. Apply must not modify its input table.
type Stage interface {
	Name() string
	Apply(t *frame.Table) (*frame.Table, error)
}

// Artifacts is implemented by stages that produce side tables, such as the
// mapping built by a label encoder. Keys name the tables for export.
type Artifacts interface {
	Artifacts() map[string]*frame.Table
}

// Observer is told about every stage a chain runs.
type Observer func(stage string, rowsIn, rowsOut int, d time.Duration, err error)

// Chain is an ordered list of stages.
type Chain []Stage

// Apply runs the stages in order and stops at the first error.
func (c Chain) Apply(t *frame.Table) (*frame.Table, error) { return c.Run(t, nil) }

// Run is Apply with an optional observer.
func (c Chain) Run(t *frame.Table, obs Observer) (*frame.Table, error) {
	out := t
	for i, s := range c {
		start := time.Now()
		in := out.Len()
		next, err := s.Apply(out)
		if obs != nil {
			n := 0
			if next != nil {
				n = next.Len()
			}
			obs(s.Name(), in, n, time.Since(start), err)
		}
		if err != nil {
			return nil, fmt.Errorf("transform[%d] %s: %w", i, s.Name(), err)
		}
		out = next
	}
	return out, nil
}

// Artifacts merges the side tables of all stages that produced any. Later
// stages win on name clashes.
func (c Chain) Artifacts() map[string]*frame.Table {
	out := map[string]*frame.Table{}
	for _, s := range c {
		if a, ok := s.(Artifacts); ok {
			maps.Copy(out, a.Artifacts())
		}
	}
	return out
}
