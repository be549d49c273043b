// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"dataprep/internal/codec"
	"dataprep/pkg/frame"
)

// Local opens one file from the local disk. Files ending in a compression
// extension (.gz, .zst, .lz4, .sz) are decompressed on the fly.
type Local struct {
	path        string
	compression codec.Kind
}

// NewLocal returns a Local bound to path, with the compression implied by
// its extension.
func NewLocal(path string) *Local {
	return &Local{path: path, compression: codec.FromPath(path)}
}

// WithCompression overrides the compression detected from the extension.
func (l *Local) WithCompression(k codec.Kind) *Local {
	l.compression = k
	return l
}

// Name returns the path.
func (l *Local) Name() string { return l.path }

// Open returns a reader over the decompressed contents of the file.
//
// A canceled context is reported before the filesystem is touched. A path
// that does not exist fails with *frame.NotFoundError, which still matches
// errors.Is(err, fs.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &frame.NotFoundError{Path: l.path, Err: err}
		}
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)

	if st, err := f.Stat(); err == nil {
		slog.Debug("datasource: opened file",
			"path", l.path,
			"size", humanize.Bytes(uint64(st.Size())),
			"compression", string(l.compression))
	}

	dec, err := codec.NewReader(f, l.compression)
	if err != nil {
		f.Close()
		return nil, &frame.FormatError{Path: l.path, Err: err}
	}
	return &readCloser{Reader: dec, dec: dec, f: f}, nil
}

// readCloser closes the decoder and then the file.
type readCloser struct {
	io.Reader
	dec io.Closer
	f   *os.File
}

func (r *readCloser) Close() error {
	return errors.Join(r.dec.Close(), r.f.Close())
}
