// Package scope finds the extent of a nested block with a balanced-delimiter
// scan.
//
// The scanner is a naive lexical counter: delimiters inside string literals or
// comments are counted like any other. Callers target known-shape blocks; an
// unbalanced brace in a string within the block will shift the end.
package scope

import (
	"errors"
	"fmt"
	"strings"

	"scopepatch/internal/textutil"
)

// ErrMalformedScope means the block never closed or closed before it opened.
var ErrMalformedScope = errors.New("malformed scope")

// Delimiters is an open/close token pair. Tokens may be longer than one byte.
type Delimiters struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

// Braces is the default pair.
var Braces = Delimiters{Open: "{", Close: "}"}

// Validate rejects empty or identical tokens.
func (d Delimiters) Validate() error {
	if d.Open == "" || d.Close == "" {
		return errors.New("scope delimiters must be non-empty")
	}
	if d.Open == d.Close {
		return fmt.Errorf("scope delimiters must differ (both %q)", d.Open)
	}
	return nil
}

// Region is the byte span [Start, End) of a block. For scanned scopes Start
// is the scan origin and End sits right after the closing delimiter that
// brought depth back to zero.
type Region struct {
	Start int
	End   int
}

// Len returns the byte length of r.
func (r Region) Len() int { return r.End - r.Start }

// Extract scans text from offset from and returns the region up to and
// including the delimiter that closes the first block opened at or after
// from. An opening delimiter on the anchor line itself is honoured because
// the scan starts at the anchor, not at the next line.
func Extract(text string, from int, d Delimiters) (Region, error) {
	if err := d.Validate(); err != nil {
		return Region{}, err
	}
	if from < 0 || from > len(text) {
		return Region{}, fmt.Errorf("%w: start offset %d outside text", ErrMalformedScope, from)
	}
	depth := 0
	opened := false
	for i := from; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], d.Open):
			depth++
			opened = true
			i += len(d.Open)
		case strings.HasPrefix(text[i:], d.Close):
			depth--
			i += len(d.Close)
			if depth < 0 {
				return Region{}, fmt.Errorf("%w: %q at line %d closes before any %q",
					ErrMalformedScope, d.Close, lineAt(text, i-len(d.Close)), d.Open)
			}
			if opened && depth == 0 {
				return Region{Start: from, End: i}, nil
			}
		default:
			i++
		}
	}
	if !opened {
		return Region{}, fmt.Errorf("%w: no %q after line %d", ErrMalformedScope, d.Open, lineAt(text, from))
	}
	return Region{}, fmt.Errorf("%w: block opened after line %d never closes (depth %d at end of file)",
		ErrMalformedScope, lineAt(text, from), depth)
}

// WholeLines widens r to full lines of src: from the beginning of the line
// holding r.Start to the end (terminator included) of the line holding the
// last byte of r.
func WholeLines(src textutil.Source, r Region) Region {
	startLine := src.LineOf(r.Start)
	last := r.End - 1
	if last < r.Start {
		last = r.Start
	}
	endLine := src.LineOf(last)
	end := len(src.Text())
	if endLine+1 < src.Len() {
		end = src.LineStart(endLine + 1)
	}
	return Region{Start: src.LineStart(startLine), End: end}
}

// lineAt returns the 1-based line of off, for messages.
func lineAt(text string, off int) int {
	if off > len(text) {
		off = len(text)
	}
	return 1 + strings.Count(text[:off], "\n")
}
