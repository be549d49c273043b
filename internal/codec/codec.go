// Package codec selects a stream compression format from a file name and
// wraps readers and writers with it.
package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Kind names a compression format.
type Kind string

const (
	None Kind = ""
	Gzip Kind = "gzip"
	Zstd Kind = "zstd"
	LZ4  Kind = "lz4"
	S2   Kind = "s2"
)

var extensions = map[string]Kind{
	".gz":   Gzip,
	".gzip": Gzip,
	".zst":  Zstd,
	".zstd": Zstd,
	".lz4":  LZ4,
	".sz":   S2,
	".s2":   S2,
}

// FromPath returns the format implied by the last extension of path, or None.
func FromPath(path string) Kind {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Parse maps a configured name ("gzip", "zstd", "lz4", "s2", "none" or "")
// to a Kind.
func Parse(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case None, Gzip, Zstd, LZ4, S2:
		return k, nil
	case "none":
		return None, nil
	}
	return None, fmt.Errorf("codec: unknown compression %q", name)
}

// Trim strips a compression extension from path: "wine.csv.gz" -> "wine.csv".
func Trim(path string) string {
	if FromPath(path) == None {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// NewReader returns a reader that decompresses r. Closing it releases the
// decoder, not r.
func NewReader(r io.Reader, k Kind) (io.ReadCloser, error) {
	switch k {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("codec: gzip: %w", err)
		}
		return zr, nil
	case Zstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("codec: zstd: %w", err)
		}
		return zr.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	}
	return nil, fmt.Errorf("codec: unknown compression %q", k)
}

// NewWriter returns a writer that compresses into w. Close flushes the
// compressed stream; it does not close w.
func NewWriter(w io.Writer, k Kind) (io.WriteCloser, error) {
	switch k {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("codec: zstd: %w", err)
		}
		return zw, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case S2:
		return s2.NewWriter(w), nil
	}
	return nil, fmt.Errorf("codec: unknown compression %q", k)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
