// Package parser defines the contract shared by input format parsers.
package parser

import (
	"io"

	"dataprep/pkg/frame"
)

// Parser turns a byte stream into a table. The int result counts rows that
// were skipped instead of failing the parse.
type Parser interface {
	Parse(r io.Reader) (*frame.Table, int, error)
}
