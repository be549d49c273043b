package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"unicode/utf8"
)

// -----------------------------------------------------------------------------
// Pipeline decoding tests
// -----------------------------------------------------------------------------

const wineJSON = `{
  "job": "wine",
  "source": { "kind": "file", "file": { "path": "data/winemag.csv.gz" } },
  "parser": { "kind": "csv", "options": { "index_column": 0, "null_tokens": ["", "NA"] } },
  "transform": [
    { "kind": "dedupe" },
    { "kind": "drop_columns", "options": { "columns": ["description", "title"] } },
    { "kind": "fillna", "options": { "column": "points", "value": 80 } },
    { "kind": "fill_mean", "options": { "column": "price" } }
  ],
  "reports": [
    { "name": "price_by_country", "group_by": ["country"], "column": "price", "reducers": ["mean", "max"] },
    { "name": "best_wine", "group_by": ["country", "province"], "select_row": { "by": "points" } }
  ],
  "finalize": [ { "kind": "label_encode", "options": { "column": "country" } } ],
  "exports": [
    { "table": "cleaned", "kind": "csv", "path": "out/cleaned.csv.zst" },
    { "table": "encoding.country", "kind": "xlsx", "path": "out/encoding.xlsx", "sheet": "country" },
    { "table": "price_by_country", "kind": "db",
      "storage": { "kind": "sqlite", "db": { "dsn": "out/wine.db", "table": "price_by_country", "auto_create_table": true } } }
  ],
  "runtime": { "export_workers": 2 },
  "logging": { "level": "debug", "format": "json" }
}`

func TestPipeline_DecodeJSON(t *testing.T) {
	t.Parallel()

	var p Pipeline
	if err := json.Unmarshal([]byte(wineJSON), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Job != "wine" || p.Source.File.Path != "data/winemag.csv.gz" {
		t.Fatalf("source decoded wrong: %+v", p.Source)
	}
	if got := p.Parser.Options.StringSlice("null_tokens"); !reflect.DeepEqual(got, []string{"", "NA"}) {
		t.Fatalf("null_tokens = %#v", got)
	}
	if len(p.Transform) != 4 || p.Transform[2].Options.Float("value", 0) != 80 {
		t.Fatalf("transforms decoded wrong: %+v", p.Transform)
	}
	if p.Reports[1].SelectRow == nil || p.Reports[1].SelectRow.By != "points" || p.Reports[1].SelectRow.Smallest {
		t.Fatalf("select_row decoded wrong: %+v", p.Reports[1])
	}
	if len(p.Finalize) != 1 || p.Finalize[0].Kind != "label_encode" {
		t.Fatalf("finalize decoded wrong: %+v", p.Finalize)
	}
	db := p.Exports[2].Storage.DB
	if p.Exports[2].Storage.Kind != "sqlite" || !db.AutoCreateTable || db.Table != "price_by_country" {
		t.Fatalf("db export decoded wrong: %+v", p.Exports[2])
	}
	if p.Runtime.ExportWorkers != 2 || p.Logging.Level != "debug" {
		t.Fatalf("runtime/logging decoded wrong: %+v %+v", p.Runtime, p.Logging)
	}
	if issues := ValidatePipeline(p); len(issues) != 0 {
		t.Fatalf("expected a clean pipeline, got %+v", issues)
	}
}

func TestLoad_JSONAndYAMLAgree(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "wine.json")
	if err := os.WriteFile(jsonPath, []byte(wineJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	const yml = `job: wine
source:
  kind: file
  file:
    path: data/winemag.csv.gz
parser:
  kind: csv
  options:
    index_column: 0
transform:
  - kind: fillna
    options:
      column: points
      value: 80
reports:
  - name: price_by_country
    group_by: [country]
    column: price
    reducers: [mean, max]
exports:
  - table: price_by_country
    kind: csv
    path: out/price.csv
`
	yamlPath := filepath.Join(dir, "wine.yaml")
	if err := os.WriteFile(yamlPath, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	pj, err := Load(jsonPath)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	py, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if pj.Job != py.Job || pj.Source != py.Source {
		t.Fatalf("json %+v and yaml %+v disagree", pj.Source, py.Source)
	}
	// YAML integers decode as int; the numeric helpers accept both.
	if py.Transform[0].Options.Float("value", 0) != 80 || py.Parser.Options.Int("index_column", -1) != 0 {
		t.Fatalf("yaml options decoded wrong: %+v", py.Transform[0].Options)
	}
	if !reflect.DeepEqual(pj.Reports[0], py.Reports[0]) {
		t.Fatalf("reports differ: %+v vs %+v", pj.Reports[0], py.Reports[0])
	}
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"bad.json": `{"job":"x","storage":{}}`,
		"bad.yml":  "job: x\nstorage: {}\n",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected unknown field error", name)
		}
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestEnv_Apply(t *testing.T) {
	t.Setenv("DATAPREP_LOG_LEVEL", "warn")
	t.Setenv("DATAPREP_EXPORT_WORKERS", "4")
	t.Setenv("DATAPREP_METRICS_BACKEND", "datadog")

	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if e.MetricsBackend != "datadog" || e.DatadogAddr != "127.0.0.1:8125" {
		t.Fatalf("env = %+v", e)
	}

	p := Pipeline{Logging: Logging{Level: "debug", Format: "json"}}
	e.Apply(&p)
	if p.Logging.Level != "warn" || p.Logging.Format != "json" || p.Runtime.ExportWorkers != 4 {
		t.Fatalf("applied pipeline = %+v %+v", p.Logging, p.Runtime)
	}

	t.Setenv("DATAPREP_EXPORT_WORKERS", "many")
	if _, err := LoadEnv(); err == nil {
		t.Fatalf("expected error for non-numeric export workers")
	}
}

// -----------------------------------------------------------------------------
// Options helper tests (hermetic).
// -----------------------------------------------------------------------------
//
// These tests validate minimal, deliberate coercion behavior and defaults. This
// protects against accidental changes in helper semantics that would silently
// alter pipeline behavior across the application.

func TestOptions_String_Bool_Int_Rune_DefaultsAndCoercion(t *testing.T) {
	t.Parallel()

	o := Options{
		"s": "hello",
		"b": true,
		"i": float64(42), // encoding/json decodes numbers as float64
		"r": ",",         // first rune will be used
	}

	// String
	if got := o.String("s", "def"); got != "hello" {
		t.Fatalf("String(s) = %q, want hello", got)
	}
	if got := o.String("missing", "def"); got != "def" {
		t.Fatalf("String(missing) = %q, want def", got)
	}

	// Bool
	if got := o.Bool("b", false); got != true {
		t.Fatalf("Bool(b) = %v, want true", got)
	}
	if got := o.Bool("missing", true); got != true {
		t.Fatalf("Bool(missing) = %v, want true", got)
	}

	// Int (float64 → int)
	if got := o.Int("i", 0); got != 42 {
		t.Fatalf("Int(i) = %d, want 42", got)
	}
	o["yi"] = 9 // yaml.v3 decodes integers as int
	if got := o.Int("yi", 0); got != 9 {
		t.Fatalf("Int(yi) = %d, want 9", got)
	}
	if got := o.Float("yi", 0); got != 9 {
		t.Fatalf("Float(yi) = %v, want 9", got)
	}
	if got := o.Int("missing", 7); got != 7 {
		t.Fatalf("Int(missing) = %d, want 7", got)
	}

	// Rune (first rune from string)
	if got := o.Rune("r", ';'); got != ',' {
		t.Fatalf("Rune(r) = %q, want ','", got)
	}
	if got := o.Rune("missing", 'X'); got != 'X' {
		t.Fatalf("Rune(missing) = %q, want 'X'", got)
	}

	// Validate that Rune picks the FIRST rune (not byte) for multi-byte char.
	o["r2"] = "ž" // multi-byte UTF-8 rune
	r := o.Rune("r2", 'x')
	if r == 0 || !utf8.ValidRune(r) {
		t.Fatalf("Rune(r2) = %#U, want valid rune", r)
	}
	if string(r) != "ž" {
		t.Fatalf("Rune(r2) = %#U (%q), want ž", r, string(r))
	}
}

func TestOptions_StringMap_StringSlice_Any(t *testing.T) {
	t.Parallel()

	o := Options{
		"m": map[string]any{"A": "a", "B": "b", "X": 1}, // non-string value "X" must be ignored
		"s1": []any{
			"alpha", "beta", 3, // ints ignored
		},
		"s2": []string{"gamma", "delta"},
		"nested": map[string]any{
			"k": "v",
		},
	}

	// StringMap should include only string values and skip non-strings.
	sm := o.StringMap("m")
	if !reflect.DeepEqual(sm, map[string]string{"A": "a", "B": "b"}) {
		t.Fatalf("StringMap(m) = %#v, want {A:a B:b}", sm)
	}
	// Missing key → empty map (not nil).
	sm2 := o.StringMap("missing")
	if sm2 == nil || len(sm2) != 0 {
		t.Fatalf("StringMap(missing) = %#v, want empty map", sm2)
	}

	// StringSlice supports []any with strings and filters non-strings.
	ss1 := o.StringSlice("s1")
	if !reflect.DeepEqual(ss1, []string{"alpha", "beta"}) {
		t.Fatalf("StringSlice(s1) = %#v, want [alpha beta]", ss1)
	}
	// And the native []string case.
	ss2 := o.StringSlice("s2")
	if !reflect.DeepEqual(ss2, []string{"gamma", "delta"}) {
		t.Fatalf("StringSlice(s2) = %#v, want [gamma delta]", ss2)
	}
	// A single string becomes a one-element slice.
	o["s3"] = "title"
	if got := o.StringSlice("s3"); !reflect.DeepEqual(got, []string{"title"}) {
		t.Fatalf("StringSlice(s3) = %#v, want [title]", got)
	}
	// Missing key → nil (intentional to distinguish unspecified from empty).
	if got := o.StringSlice("missing"); got != nil {
		t.Fatalf("StringSlice(missing) = %#v, want nil", got)
	}

	// Any returns raw nested values for callers to unmarshal later.
	anyv := o.Any("nested")
	m, ok := anyv.(map[string]any)
	if !ok || m["k"] != "v" {
		t.Fatalf("Any(nested) = %#v, want map with k=v", anyv)
	}
	if o.Any("missing") != nil {
		t.Fatalf("Any(missing) should be nil when key absent")
	}
}

// -----------------------------------------------------------------------------
// Options.UnmarshalJSON behavior tests
// -----------------------------------------------------------------------------
//
// These tests ensure that decoding Options from JSON yields a non-nil, empty
// map when the field is missing or explicitly null. This avoids nil-checks at
// call sites and is a deliberate design choice for simplicity.

func TestOptions_UnmarshalJSON_NullYieldsEmptyMap(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Opts Options `json:"options"`
	}

	// options is explicitly null → non-nil, empty Options.
	const jsNull = `{"options": null}`
	var w wrapper
	if err := json.Unmarshal([]byte(jsNull), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.Opts == nil || len(w.Opts) != 0 {
		t.Fatalf("Opts after null unmarshal = %#v, want non-nil empty map", w.Opts)
	}
}

func TestOptions_MissingLeavesUsableNilMap(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Opts Options `json:"options"`
	}

	// UnmarshalJSON is not called for an absent key; reads on the nil map
	// still return the defaults.
	var w wrapper
	if err := json.Unmarshal([]byte(`{}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.Opts.String("column", "price") != "price" || w.Opts.StringSlice("columns") != nil {
		t.Fatalf("nil Options must return defaults, got %#v", w.Opts)
	}
}

func TestOptions_UnmarshalJSON_ObjectDecodesAsMap(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Opts Options `json:"options"`
	}

	const jsObj = `{"options": {"a":"x","b":true,"n": 3}}`
	var w wrapper
	if err := json.Unmarshal([]byte(jsObj), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if w.Opts.String("a", "") != "x" {
		t.Fatalf("Opts.String(a) = %q, want x", w.Opts.String("a", ""))
	}
	if w.Opts.Bool("b", false) != true {
		t.Fatalf("Opts.Bool(b) = %v, want true", w.Opts.Bool("b", false))
	}
	if w.Opts.Int("n", 0) != 3 {
		t.Fatalf("Opts.Int(n) = %d, want 3", w.Opts.Int("n", 0))
	}
}

func TestOptions_Delimiter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     any
		want   rune
		wantOK bool
	}{
		{";", ';', true},
		{"\t", '\t', true},
		{"tab", '\t', true},
		{`\t`, '\t', true},
		{"Pipe", '|', true},
		{";;", ',', false},
		{"", ',', false},
		{`"`, ',', false},
		{float64(9), ',', false},
	}
	for _, tt := range tests {
		got, ok := Options{"comma": tt.in}.Delimiter("comma", ',')
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("Delimiter(%#v) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
	if got, ok := (Options{}).Delimiter("comma", ','); got != ',' || !ok {
		t.Fatalf("missing key = %q, %v; want ',', true", got, ok)
	}
}
