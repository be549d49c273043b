// Package config defines the pipeline document that drives a dataprep run:
// where the input comes from, how it is parsed, which cleaning transforms run,
// which group reports are derived and where results are exported.
//
// Pipeline files are JSON (configs/pipelines/*.json) or YAML (*.yaml, *.yml).
// Field names in Go mirror the keys used in those files.
//
// Example (trimmed):
//
//	{
//	  "job":       "wine",
//	  "source":    { "kind": "file", "file": { "path": "data/winemag.csv" } },
//	  "parser":    { "kind": "csv", "options": { "index_column": 0 } },
//	  "transform": [ { "kind": "dedupe" }, { "kind": "fill_mean", "options": { "column": "price" } } ],
//	  "reports":   [ { "name": "price_by_country", "group_by": ["country"], "column": "price", "reducers": ["mean", "max"] } ],
//	  "exports":   [ { "table": "cleaned", "kind": "csv", "path": "out/cleaned.csv.gz" } ]
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job string `json:"job" yaml:"job" validate:"required"`

	// Source describes where input bytes come from.
	Source Source `json:"source" yaml:"source"`

	// Parser configures how bytes become a table.
	Parser Parser `json:"parser" yaml:"parser"`

	// Transform lists the cleaning stages applied to the loaded table, in order.
	Transform []Transform `json:"transform" yaml:"transform" validate:"dive"`

	// Reports are computed from the table produced by Transform.
	Reports []Report `json:"reports" yaml:"reports" validate:"dive"`

	// Finalize lists transforms applied after the reports, e.g. label encoding
	// that would otherwise hide category names from the reports.
	Finalize []Transform `json:"finalize" yaml:"finalize" validate:"dive"`

	// Exports write tables out of the process.
	Exports []Export `json:"exports" yaml:"exports" validate:"dive"`

	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`
	Logging Logging       `json:"logging" yaml:"logging"`
}

// RuntimeConfig controls concurrency of the export phase.
type RuntimeConfig struct {
	// ExportWorkers bounds how many exports run at once. Zero means one per
	// export.
	ExportWorkers int `json:"export_workers" yaml:"export_workers" validate:"gte=0"`
}

// Logging configures the process logger.
type Logging struct {
	Level    string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format   string `json:"format" yaml:"format" validate:"omitempty,oneof=json text"`
	Output   string `json:"output" yaml:"output" validate:"omitempty,oneof=stdout stderr file both"`
	FilePath string `json:"file_path" yaml:"file_path"`
}

// Source identifies the data source.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string `json:"kind" yaml:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file" yaml:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path" yaml:"path"`

	// Compression overrides detection by extension ("gzip", "zstd", "lz4",
	// "s2", "none").
	Compression string `json:"compression" yaml:"compression"`
}

// Parser selects how to parse the raw source into a table.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind" yaml:"kind"`

	// Options is interpreted by the parser. For CSV:
	//   comma (string), index_column (int, -1 for none), trim_space (bool),
	//   normalize_headers (bool), header_map (object), null_tokens (array),
	//   keep_text (bool), lenient (bool)
	Options Options `json:"options" yaml:"options"`
}

// Transform defines a single cleaning step.
type Transform struct {
	// Kind selects the transform ("normalize", "dedupe", "drop_columns",
	// "dropna", "fillna", "fill_mean", "label_encode", "filter", "sort").
	Kind string `json:"kind" yaml:"kind" validate:"required"`

	// Options is interpreted by the selected transform.
	Options Options `json:"options" yaml:"options"`
}

// Report derives a grouped summary of the cleaned table.
//
// With GroupBy and Reducers, Column is aggregated per group. With GroupBy and
// SelectRow, one whole row is picked per group. Without GroupBy, the values
// of Column are counted.
type Report struct {
	Name       string     `json:"name" yaml:"name" validate:"required"`
	GroupBy    []string   `json:"group_by" yaml:"group_by"`
	Column     string     `json:"column" yaml:"column"`
	Reducers   []string   `json:"reducers" yaml:"reducers"`
	SelectRow  *SelectRow `json:"select_row" yaml:"select_row"`
	SortBy     string     `json:"sort_by" yaml:"sort_by"`
	Descending bool       `json:"descending" yaml:"descending"`
	Limit      int        `json:"limit" yaml:"limit" validate:"gte=0"`
}

// SelectRow picks the row with the largest By value in each group, or the
// smallest when Smallest is set.
type SelectRow struct {
	By       string `json:"by" yaml:"by" validate:"required"`
	Smallest bool   `json:"smallest" yaml:"smallest"`
}

// Export writes one named table. Table is "cleaned", a report name or
// "encoding.<column>" for a label encoding built by the pipeline.
type Export struct {
	Table string `json:"table" yaml:"table" validate:"required"`

	// Kind is "csv", "xlsx" or "db".
	Kind string `json:"kind" yaml:"kind" validate:"required,oneof=csv xlsx db"`

	// Path is the output file for csv and xlsx exports. A csv path ending in
	// .gz, .zst, .lz4 or .sz is compressed accordingly.
	Path string `json:"path" yaml:"path"`

	// Compression overrides detection by extension for csv exports.
	Compression string `json:"compression" yaml:"compression"`

	// NoIndex leaves the index column out of file exports.
	NoIndex bool `json:"no_index" yaml:"no_index"`

	// Sheet names the xlsx worksheet; defaults to the table name.
	Sheet string `json:"sheet" yaml:"sheet"`

	// Storage configures "db" exports.
	Storage Storage `json:"storage" yaml:"storage"`
}

// Storage selects the database a "db" export writes to.
type Storage struct {
	// Kind selects the backend: "sqlite" or "postgres".
	Kind string `json:"kind" yaml:"kind"`

	DB DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the DB sink.
type DBConfig struct {
	// DSN is the connection string (a file path or URI for sqlite,
	// postgresql://... for postgres).
	DSN string `json:"dsn" yaml:"dsn"`

	// Table is the destination table name (e.g., "public.wine_reviews").
	Table string `json:"table" yaml:"table"`

	// AutoCreateTable creates the table from the exported table's schema when
	// it does not exist.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`

	// BatchSize is the number of rows per COPY batch. Zero uses the default.
	BatchSize int `json:"batch_size" yaml:"batch_size" validate:"gte=0"`
}

// Load reads a pipeline file. Files ending in .yaml or .yml are decoded as
// YAML, everything else as JSON. Unknown keys are rejected in both formats.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read pipeline config: %w", err)
	}
	var p Pipeline
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, fmt.Errorf("parse pipeline yaml %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, fmt.Errorf("parse pipeline json %s: %w", path, err)
		}
	}
	return p, nil
}
