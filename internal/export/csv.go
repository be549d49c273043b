package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"dataprep/internal/codec"
	"dataprep/pkg/frame"
)

// WriteCSV writes t to path as comma-separated text with a header row.
// compression overrides the format implied by the path extension; "" keeps
// the extension's choice. The file is written next to path and renamed into
// place once complete.
func WriteCSV(path, compression string, t *frame.Table, withIndex bool) (int64, error) {
	if path == "" {
		return 0, fmt.Errorf("csv export: missing path")
	}
	kind := codec.FromPath(path)
	if compression != "" {
		k, err := codec.Parse(compression)
		if err != nil {
			return 0, err
		}
		kind = k
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	n, err := writeCompressedCSV(tmp, kind, t, withIndex)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	if err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("rename into %s: %w", path, err)
	}

	if st, err := os.Stat(path); err == nil {
		slog.Debug("export: csv written",
			"path", path,
			"rows", n,
			"size", humanize.Bytes(uint64(st.Size())),
			"compression", string(kind))
	}
	return n, nil
}

func writeCompressedCSV(f io.Writer, kind codec.Kind, t *frame.Table, withIndex bool) (int64, error) {
	bw := bufio.NewWriterSize(f, 1<<16)
	zw, err := codec.NewWriter(bw, kind)
	if err != nil {
		return 0, err
	}
	n, err := EncodeCSV(zw, t, withIndex)
	if cerr := zw.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("finish %s stream: %w", kind, cerr)
	}
	if err != nil {
		return 0, err
	}
	return n, bw.Flush()
}

// EncodeCSV writes t to w and returns the number of data rows. Missing
// values are written as empty cells and numbers in their shortest form.
func EncodeCSV(w io.Writer, t *frame.Table, withIndex bool) (int64, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header(t, withIndex)); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	width := len(header(t, withIndex))
	buf := make([]string, width)
	var n int64
	for i := range t.Len() {
		for j, v := range record(t, i, withIndex) {
			buf[j] = v.String()
		}
		if err := cw.Write(buf); err != nil {
			return n, fmt.Errorf("write row %d: %w", i, err)
		}
		n++
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("flush csv: %w", err)
	}
	return n, nil
}
