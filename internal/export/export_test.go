package export

import (
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dataprep/internal/codec"
	"dataprep/internal/config"
	_ "dataprep/internal/storage/sqlite"
	"dataprep/pkg/frame"
)

// wines is a small cleaned table indexed by "id".
func wines(t *testing.T) *frame.Table {
	t.Helper()
	b := frame.NewBuilder("id", []string{"country", "points", "price"})
	require.NoError(t, b.Append(frame.Num(0), frame.Str("US"), frame.Num(87), frame.Num(14)))
	require.NoError(t, b.Append(frame.Num(3), frame.Str("Italy, North"), frame.Num(80), frame.Null))
	require.NoError(t, b.Append(frame.Num(7), frame.Str("France"), frame.Num(91), frame.Num(22.5)))
	tbl, err := b.Build()
	require.NoError(t, err)
	return tbl
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := codec.NewReader(f, codec.FromPath(path))
	require.NoError(t, err)
	defer zr.Close()
	recs, err := csv.NewReader(zr).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	want := [][]string{
		{"id", "country", "points", "price"},
		{"0", "US", "87", "14"},
		{"3", "Italy, North", "80", ""},
		{"7", "France", "91", "22.5"},
	}

	for _, name := range []string{"out.csv", "out.csv.gz", "out.csv.zst", "out.csv.lz4", "nested/out.csv.sz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			n, err := WriteCSV(path, "", wines(t), true)
			require.NoError(t, err)
			assert.EqualValues(t, 3, n)
			assert.Equal(t, want, readCSV(t, path))
		})
	}
}

func TestWriteCSVNoIndexAndOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.csv")
	_, err := WriteCSV(path, "none", wines(t), false)
	require.NoError(t, err)
	recs := readCSV(t, path)
	assert.Equal(t, []string{"country", "points", "price"}, recs[0])
	assert.Equal(t, []string{"US", "87", "14"}, recs[1])

	_, err = WriteCSV(path, "brotli", wines(t), false)
	assert.Error(t, err)
	_, err = WriteCSV("", "", wines(t), false)
	assert.Error(t, err)
}

func TestWriteCSVLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteCSV(filepath.Join(dir, "a.csv"), "", wines(t), true)
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.csv", entries[0].Name())
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wine.xlsx")
	n, err := WriteXLSX(path, "price_by_country", wines(t), true)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"price_by_country"}, f.GetSheetList())
	rows, err := f.GetRows("price_by_country")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"id", "country", "points", "price"}, rows[0])
	assert.Equal(t, []string{"0", "US", "87", "14"}, rows[1])
	assert.Equal(t, "Italy, North", rows[2][1])
	assert.Len(t, rows[2], 3, "trailing missing cell is empty")
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "encoding.country", SheetName("encoding.country"))
	assert.Equal(t, "a_b_c", SheetName("a/b:c"))
	assert.Equal(t, "Sheet1", SheetName(""))
	assert.Len(t, []rune(SheetName("reviews_by_country_and_province_sorted")), 31)
}

func TestWriteDBSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "wine.db")
	cfg := config.Storage{Kind: "sqlite", DB: config.DBConfig{
		DSN: dsn, Table: "cleaned", AutoCreateTable: true, BatchSize: 2,
	}}

	rows, batches, err := WriteDB(ctx, cfg, wines(t), true)
	require.NoError(t, err)
	assert.EqualValues(t, 3, rows)
	assert.EqualValues(t, 2, batches)

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "cleaned" WHERE "price" IS NULL`).Scan(&count))
	assert.Equal(t, 1, count)

	var id, price float64
	require.NoError(t, db.QueryRowContext(ctx, `SELECT "id", "price" FROM "cleaned" WHERE "country" = 'France'`).Scan(&id, &price))
	assert.Equal(t, 7.0, id)
	assert.Equal(t, 22.5, price)
}

func TestWriteDBWithoutTable(t *testing.T) {
	cfg := config.Storage{Kind: "sqlite", DB: config.DBConfig{
		DSN: filepath.Join(t.TempDir(), "wine.db"), Table: "missing",
	}}
	_, _, err := WriteDB(context.Background(), cfg, wines(t), true)
	assert.Error(t, err, "without auto_create_table the insert must fail")

	cfg.Kind = "oracle"
	_, _, err = WriteDB(context.Background(), cfg, wines(t), true)
	assert.ErrorContains(t, err, "unsupported storage.kind")
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cleaned := wines(t)
	_, enc, err := cleaned.Encode("country")
	require.NoError(t, err)

	tables := map[string]*frame.Table{
		"cleaned":          cleaned,
		"encoding.country": enc.Table(),
	}
	exports := []config.Export{
		{Table: "cleaned", Kind: "csv", Path: filepath.Join(dir, "cleaned.csv.gz")},
		{Table: "cleaned", Kind: "xlsx", Path: filepath.Join(dir, "cleaned.xlsx")},
		{Table: "encoding.country", Kind: "csv", Path: filepath.Join(dir, "encoding.csv")},
		{Table: "cleaned", Kind: "db", Storage: config.Storage{Kind: "sqlite", DB: config.DBConfig{
			DSN: filepath.Join(dir, "wine.db"), Table: "wine", AutoCreateTable: true,
		}}},
	}

	results, err := Run(context.Background(), "wine", exports, tables, 2)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, exports[i].Table, r.Table)
		assert.Equal(t, exports[i].Kind, r.Kind)
	}
	assert.EqualValues(t, 3, results[0].Rows)
	assert.Equal(t, "wine", results[3].Target)
	assert.EqualValues(t, 1, results[3].Batches)

	assert.Equal(t, [][]string{
		{"code", "country"},
		{"0", "US"},
		{"1", "Italy, North"},
		{"2", "France"},
	}, readCSV(t, filepath.Join(dir, "encoding.csv")))
}

func TestRunErrors(t *testing.T) {
	tables := map[string]*frame.Table{"cleaned": wines(t)}

	_, err := Run(context.Background(), "wine", []config.Export{{Table: "nope", Kind: "csv", Path: "x.csv"}}, tables, 0)
	assert.ErrorContains(t, err, `unknown table "nope"`)

	_, err = Run(context.Background(), "wine", []config.Export{{Table: "cleaned", Kind: "parquet"}}, tables, 0)
	assert.ErrorContains(t, err, "unsupported export kind")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, "wine", []config.Export{{Table: "cleaned", Kind: "csv", Path: filepath.Join(t.TempDir(), "a.csv")}}, tables, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
