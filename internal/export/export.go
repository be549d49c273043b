// Package export writes named tables out of the process: delimited files
// (optionally compressed), xlsx workbooks and database tables.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"dataprep/internal/config"
	"dataprep/internal/metrics"
	"dataprep/pkg/frame"
)

// Result describes one finished export.
type Result struct {
	Table    string
	Kind     string
	Target   string // file path or database table
	Rows     int64
	Batches  int64
	Duration time.Duration
}

// Run writes every export in exports, taking the source table by name from
// tables. At most workers exports run at once; workers <= 0 runs them all in
// parallel. Results are returned in the order of exports. The first failure
// cancels the exports still running.
func Run(ctx context.Context, job string, exports []config.Export, tables map[string]*frame.Table, workers int) ([]Result, error) {
	for i, e := range exports {
		if _, ok := tables[e.Table]; !ok {
			return nil, fmt.Errorf("export[%d]: unknown table %q", i, e.Table)
		}
	}

	results := make([]Result, len(exports))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, e := range exports {
		g.Go(func() error {
			start := time.Now()
			res, err := Export(gctx, e, tables[e.Table])
			res.Duration = time.Since(start)

			metrics.RecordStage(job, "export "+e.Table, err, res.Duration)
			if err != nil {
				return fmt.Errorf("export[%d] %s to %s: %w", i, e.Table, e.Kind, err)
			}
			metrics.RecordRows(job, "exported", res.Rows)
			metrics.RecordBatches(job, res.Batches)
			slog.InfoContext(gctx, "export: done",
				"table", res.Table,
				"kind", res.Kind,
				"target", res.Target,
				"rows", res.Rows,
				"elapsed", res.Duration.Truncate(time.Millisecond))
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Export writes t according to e.
func Export(ctx context.Context, e config.Export, t *frame.Table) (Result, error) {
	res := Result{Table: e.Table, Kind: e.Kind, Target: e.Path}
	if t == nil {
		return res, fmt.Errorf("nil table")
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	var err error
	switch e.Kind {
	case "csv":
		res.Rows, err = WriteCSV(e.Path, e.Compression, t, !e.NoIndex)
	case "xlsx":
		sheet := e.Sheet
		if sheet == "" {
			sheet = e.Table
		}
		res.Rows, err = WriteXLSX(e.Path, sheet, t, !e.NoIndex)
	case "db":
		res.Target = e.Storage.DB.Table
		res.Rows, res.Batches, err = WriteDB(ctx, e.Storage, t, !e.NoIndex)
	default:
		err = fmt.Errorf("unsupported export kind %q", e.Kind)
	}
	return res, err
}

// header returns the output column names, led by the index name when
// withIndex is set.
func header(t *frame.Table, withIndex bool) []string {
	cols := t.Columns()
	if !withIndex {
		return cols
	}
	return append([]string{t.IndexName()}, cols...)
}

// record returns row i, led by its label when withIndex is set.
func record(t *frame.Table, i int, withIndex bool) []frame.Value {
	row := t.Row(i)
	if !withIndex {
		return row
	}
	return append([]frame.Value{t.Label(i)}, row...)
}
