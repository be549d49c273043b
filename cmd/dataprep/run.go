package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"time"

	"dataprep/internal/codec"
	"dataprep/internal/config"
	"dataprep/internal/datasource/file"
	"dataprep/internal/export"
	"dataprep/internal/metrics"
	"dataprep/internal/parser/csv"
	"dataprep/internal/profile"
	"dataprep/internal/report"
	"dataprep/internal/transformer"
	"dataprep/internal/transformer/builtin"
	"dataprep/pkg/frame"
)

// summary reports what one run did.
type summary struct {
	Loaded  int
	Skipped int
	Cleaned int
	Tables  []string
	Exports []export.Result
}

// run executes the pipeline: load, transform, reports, finalize, export.
// Every table handed to a later phase is a new value; nothing is modified in
// place.
func run(ctx context.Context, p config.Pipeline) (summary, error) {
	var sum summary

	raw, skipped, err := load(ctx, p)
	if err != nil {
		return sum, err
	}
	sum.Loaded, sum.Skipped = raw.Len(), skipped

	chain, err := builtin.BuildChain(p.Transform)
	if err != nil {
		return sum, fmt.Errorf("build transforms: %w", err)
	}
	cleaned, err := chain.Run(raw, observe(ctx, p.Job, "transform"))
	if err != nil {
		return sum, err
	}
	sum.Cleaned = cleaned.Len()
	metrics.RecordRows(p.Job, "cleaned", int64(cleaned.Len()))
	metrics.RecordRows(p.Job, "dropped", int64(raw.Len()-cleaned.Len()))

	start := time.Now()
	reports, err := report.BuildAll(cleaned, p.Reports)
	metrics.RecordStage(p.Job, "reports", err, time.Since(start))
	if err != nil {
		return sum, err
	}

	final := cleaned
	var finalize transformer.Chain
	if len(p.Finalize) > 0 {
		if finalize, err = builtin.BuildChain(p.Finalize); err != nil {
			return sum, fmt.Errorf("build finalize: %w", err)
		}
		if final, err = finalize.Run(cleaned, observe(ctx, p.Job, "finalize")); err != nil {
			return sum, fmt.Errorf("finalize: %w", err)
		}
	}

	prof, err := profile.Of(cleaned)
	if err != nil {
		return sum, fmt.Errorf("profile: %w", err)
	}

	tables := map[string]*frame.Table{config.CleanedTable: final, config.ProfileTable: prof}
	maps.Copy(tables, reports)
	maps.Copy(tables, chain.Artifacts())
	maps.Copy(tables, finalize.Artifacts())
	for name := range tables {
		sum.Tables = append(sum.Tables, name)
	}

	sum.Exports, err = export.Run(ctx, p.Job, p.Exports, tables, p.Runtime.ExportWorkers)
	if err != nil {
		return sum, err
	}
	return sum, nil
}

// load opens the configured source and parses it into a table.
func load(ctx context.Context, p config.Pipeline) (*frame.Table, int, error) {
	if p.Source.Kind != "file" {
		return nil, 0, fmt.Errorf("unsupported source.kind=%s", p.Source.Kind)
	}
	if p.Parser.Kind != "csv" {
		return nil, 0, fmt.Errorf("unsupported parser.kind=%s", p.Parser.Kind)
	}

	src := file.NewLocal(p.Source.File.Path)
	if p.Source.File.Compression != "" {
		k, err := codec.Parse(p.Source.File.Compression)
		if err != nil {
			return nil, 0, err
		}
		src = src.WithCompression(k)
	}

	start := time.Now()
	t, skipped, err := csv.NewParser(parserOptions(p.Parser.Options)).Load(ctx, src)
	metrics.RecordStage(p.Job, "load", err, time.Since(start))
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	metrics.RecordRows(p.Job, "loaded", int64(t.Len()))
	metrics.RecordRows(p.Job, "skipped", int64(skipped))

	st := profile.Summarize(t)
	slog.InfoContext(ctx, "load: done",
		"source", src.Name(),
		"rows", st.Rows,
		"columns", st.Columns,
		"complete_rows", st.CompleteRows,
		"duplicates", st.Duplicates,
		"skipped", skipped,
		"elapsed", time.Since(start).Truncate(time.Millisecond))
	return t, skipped, nil
}

// writeProfile loads the input and writes its column profile to w as CSV.
func writeProfile(ctx context.Context, p config.Pipeline, w io.Writer) error {
	t, _, err := load(ctx, p)
	if err != nil {
		return err
	}
	prof, err := profile.Of(t)
	if err != nil {
		return err
	}
	_, err = export.EncodeCSV(w, prof, true)
	return err
}

// parserOptions maps the free-form parser options onto csv.Options.
func parserOptions(o config.Options) csv.Options {
	comma, _ := o.Delimiter("comma", ',')
	opt := csv.Options{
		Comma:            comma,
		IndexColumn:      o.Int("index_column", 0),
		TrimSpace:        o.Bool("trim_space", false),
		NormalizeHeaders: o.Bool("normalize_headers", false),
		NullTokens:       o.StringSlice("null_tokens"),
		KeepText:         o.Bool("keep_text", false),
		Lenient:          o.Bool("lenient", false),
	}
	if m := o.StringMap("header_map"); len(m) > 0 {
		opt.HeaderMap = m
	}
	return opt
}

// observe returns a chain observer that logs and records each stage.
func observe(ctx context.Context, job, phase string) transformer.Observer {
	return func(stage string, rowsIn, rowsOut int, d time.Duration, err error) {
		metrics.RecordStage(job, phase+" "+stage, err, d)
		if err != nil {
			return
		}
		slog.DebugContext(ctx, phase+": stage done",
			"stage", stage,
			"rows_in", rowsIn,
			"rows_out", rowsOut,
			"elapsed", d.Truncate(time.Microsecond))
	}
}
