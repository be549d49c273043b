// Package csv loads delimited text into a frame.Table. The first column is
// used as the row index by default, empty cells and common null tokens become
// missing values, and columns whose every present cell is numeric are typed
// as numbers.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"dataprep/internal/datasource"
	"dataprep/internal/datasource/file"
	"dataprep/pkg/frame"
)

// NoIndex disables the index column; rows are then labeled 0, 1, 2, ...
const NoIndex = -1

// DefaultNullTokens are the cell texts read as missing when Options.NullTokens
// is nil.
var DefaultNullTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL"}

// skipLogLimit caps the per-row log lines in lenient mode.
const skipLogLimit = 400

// Options configures the loader. The zero value reads comma-separated input
// with a header row and the first column as index.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// IndexColumn is the position of the index column, or NoIndex.
	IndexColumn int

	// TrimSpace trims leading/trailing spaces from every cell.
	TrimSpace bool

	// HeaderMap renames source headers. It is applied before normalization.
	HeaderMap map[string]string

	// NormalizeHeaders rewrites headers as lowercase ASCII identifiers:
	// accents are stripped and runs of separators become one underscore.
	NormalizeHeaders bool

	// NullTokens overrides DefaultNullTokens.
	NullTokens []string

	// KeepText disables numeric type inference.
	KeepText bool

	// Lenient skips rows that cannot be read or have the wrong width instead
	// of failing with *frame.FormatError. Skips are logged and counted.
	Lenient bool
}

// Parser parses delimited input according to Options. It is safe to reuse
// across inputs but not concurrently.
type Parser struct {
	opt   Options
	nulls map[string]bool
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	tokens := opt.NullTokens
	if tokens == nil {
		tokens = DefaultNullTokens
	}
	nulls := make(map[string]bool, len(tokens))
	for _, s := range tokens {
		nulls[s] = true
	}
	return &Parser{opt: opt, nulls: nulls}
}

// ReadFile loads the file at path. Compressed files are decompressed by
// extension. A missing path fails with *frame.NotFoundError, unparseable
// content with *frame.FormatError.
func ReadFile(ctx context.Context, path string, opt Options) (*frame.Table, error) {
	t, _, err := NewParser(opt).Load(ctx, file.NewLocal(path))
	return t, err
}

// Load opens src and parses it. Format errors carry the source name.
func (p *Parser) Load(ctx context.Context, src datasource.Source) (*frame.Table, int, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	t, skipped, err := p.Parse(rc)
	var fe *frame.FormatError
	if errors.As(err, &fe) && fe.Path == "" {
		fe.Path = src.Name()
	}
	return t, skipped, err
}

// Parse reads r to the end and returns the table and the number of rows
// skipped in lenient mode.
func (p *Parser) Parse(r io.Reader) (*frame.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if err == io.EOF {
		return nil, 0, &frame.FormatError{Line: 1, Err: errors.New("empty input, no header")}
	}
	if err != nil {
		return nil, 0, &frame.FormatError{Line: lineOf(err, 1), Err: err}
	}
	headers := p.normalizeHeaders(h)
	if p.opt.IndexColumn >= len(headers) {
		return nil, 0, &frame.FormatError{Line: 1, Err: fmt.Errorf("index column %d out of range, header has %d fields", p.opt.IndexColumn, len(headers))}
	}

	var rows [][]string
	var skipped int
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line := 0
		if err == nil {
			line, _ = cr.FieldPos(0)
			if len(row) != len(headers) {
				err = fmt.Errorf("incorrect number of fields (expected %d, got %d)", len(headers), len(row))
			}
		}
		if err != nil {
			if !p.opt.Lenient {
				return nil, skipped, &frame.FormatError{Line: lineOf(err, line), Err: err}
			}
			if skipped < skipLogLimit {
				slog.Warn("csv: skipping row", "line", lineOf(err, line), "err", err)
			}
			skipped++
			continue
		}
		if p.opt.TrimSpace {
			for i := range row {
				row[i] = strings.TrimSpace(row[i])
			}
		}
		rows = append(rows, row)
	}

	t, err := p.build(headers, rows)
	if err != nil {
		return nil, skipped, &frame.FormatError{Line: 1, Err: err}
	}
	return t, skipped, nil
}

func (p *Parser) build(headers []string, rows [][]string) (*frame.Table, error) {
	idx := p.opt.IndexColumn
	index := ""
	cols := make([]int, 0, len(headers))
	names := make([]string, 0, len(headers))
	for i, name := range headers {
		if i == idx {
			index = name
			continue
		}
		cols = append(cols, i)
		names = append(names, keyFor(i, headers))
	}

	numeric := make([]bool, len(headers))
	for i := range headers {
		numeric[i] = !p.opt.KeepText && p.numericColumn(rows, i)
	}

	b := frame.NewBuilder(index, names)
	b.Grow(len(rows))
	vals := make([]frame.Value, len(cols))
	for n, row := range rows {
		label := frame.Num(float64(n))
		if idx >= 0 {
			label = p.cell(row[idx], numeric[idx])
		}
		for j, c := range cols {
			vals[j] = p.cell(row[c], numeric[c])
		}
		if err := b.Append(label, vals...); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// numericColumn reports whether every present cell of column c parses as a
// finite number. A column with no present cells stays text.
func (p *Parser) numericColumn(rows [][]string, c int) bool {
	seen := false
	for _, row := range rows {
		s := row[c]
		if p.nulls[s] {
			continue
		}
		if _, ok := parseNumber(s); !ok {
			return false
		}
		seen = true
	}
	return seen
}

func (p *Parser) cell(s string, numeric bool) frame.Value {
	if p.nulls[s] {
		return frame.Null
	}
	if numeric {
		f, _ := parseNumber(s)
		return frame.Num(f)
	}
	return frame.Str(s)
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// keyFor returns the column name at idx, synthesizing "col_N" for blank
// headers.
func keyFor(idx int, headers []string) string {
	if headers[idx] != "" {
		return headers[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

func lineOf(err error, fallback int) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) && pe.Line > 0 {
		return pe.Line
	}
	return fallback
}

// normalizeHeaders strips a UTF-8 BOM from the first cell, then applies
// HeaderMap and, when enabled, identifier normalization.
func (p *Parser) normalizeHeaders(h []string) []string {
	res := StripHeaderBOM(append([]string(nil), h...))
	for i, col := range res {
		c := strings.TrimSpace(col)
		if m, ok := p.opt.HeaderMap[c]; ok {
			res[i] = m
			continue
		}
		if p.opt.NormalizeHeaders {
			c = NormalizeName(c)
		}
		res[i] = c
	}
	return res
}
