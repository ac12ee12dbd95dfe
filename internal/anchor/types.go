// Package anchor resolves declarative anchors against a source snapshot.
//
// An anchor says where a patch applies. Supported kinds:
//
//	literal  first line containing Text
//	window   literal, but only lines MinLine..MaxLine (1-based, inclusive) count
//	line     the fixed 1-based line Line, optionally required to contain Text
//	regex    RE2 Pattern over the whole text; Multiline lets '.' cross lines
//	symbol   declaration of Name in language Lang (compiled into a regex)
//	marker   body of the "// region Name" ... "// endregion Name" pair
//
// Line anchors are brittle: any edit above the target shifts them. They exist
// for files whose shape is frozen; prefer literal or regex anchors with an
// expect check.
package anchor

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind selects the matching strategy.
type Kind string

const (
	KindLiteral Kind = "literal"
	KindWindow  Kind = "window"
	KindLine    Kind = "line"
	KindRegex   Kind = "regex"
	KindSymbol  Kind = "symbol"
	KindMarker  Kind = "marker"
)

// Occurrence decides which candidate wins when an anchor matches more than once.
type Occurrence string

const (
	OccurrenceFirst  Occurrence = "first" // default
	OccurrenceLast   Occurrence = "last"
	OccurrenceUnique Occurrence = "unique"
	OccurrenceNth    Occurrence = "nth"
)

var (
	// ErrNotFound means no candidate matched (or the requested nth does not exist).
	ErrNotFound = errors.New("anchor not found")
	// ErrAmbiguous means a unique anchor matched more than one site.
	ErrAmbiguous = errors.New("anchor is ambiguous")
)

// Anchor is the declarative description of a location.
type Anchor struct {
	Kind       Kind       `yaml:"kind"`
	Text       string     `yaml:"text,omitempty"`
	MinLine    int        `yaml:"min_line,omitempty"` // 1-based, inclusive
	MaxLine    int        `yaml:"max_line,omitempty"` // 1-based, inclusive; 0 = end of file
	Line       int        `yaml:"line,omitempty"`     // 1-based
	Pattern    string     `yaml:"pattern,omitempty"`
	Multiline  bool       `yaml:"multiline,omitempty"`
	Lang       string     `yaml:"lang,omitempty"`
	Name       string     `yaml:"name,omitempty"`
	Occurrence Occurrence `yaml:"occurrence,omitempty"`
	Index      int        `yaml:"index,omitempty"` // 1-based, for OccurrenceNth
}

// Site is a resolved anchor. Line is 0-based; Start/End are byte offsets of
// the match in the whole text (End exclusive).
type Site struct {
	Line  int `json:"line"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Validate reports the first structural problem of a.
func (a Anchor) Validate() error {
	switch a.Kind {
	case KindLiteral:
		if a.Text == "" {
			return errors.New("literal anchor needs text")
		}
	case KindWindow:
		if a.Text == "" {
			return errors.New("window anchor needs text")
		}
		if a.MinLine < 1 {
			return fmt.Errorf("window anchor min_line must be >= 1 (got %d)", a.MinLine)
		}
		if a.MaxLine != 0 && a.MaxLine < a.MinLine {
			return fmt.Errorf("window anchor max_line %d is before min_line %d", a.MaxLine, a.MinLine)
		}
	case KindLine:
		if a.Line < 1 {
			return fmt.Errorf("line anchor line must be >= 1 (got %d)", a.Line)
		}
	case KindRegex:
		if a.Pattern == "" {
			return errors.New("regex anchor needs pattern")
		}
		if _, err := a.compile(); err != nil {
			return err
		}
	case KindSymbol:
		if a.Name == "" {
			return errors.New("symbol anchor needs name")
		}
		if _, err := symbolPattern(a.Lang, a.Name); err != nil {
			return err
		}
	case KindMarker:
		if a.Name == "" {
			return errors.New("marker anchor needs name")
		}
	case "":
		return errors.New("anchor kind is required")
	default:
		return fmt.Errorf("unknown anchor kind %q", a.Kind)
	}
	switch a.Occurrence {
	case "", OccurrenceFirst, OccurrenceLast, OccurrenceUnique:
	case OccurrenceNth:
		if a.Index < 1 {
			return fmt.Errorf("occurrence nth needs index >= 1 (got %d)", a.Index)
		}
	default:
		return fmt.Errorf("unknown occurrence %q", a.Occurrence)
	}
	return nil
}

// String renders a for one-line diagnostics.
func (a Anchor) String() string {
	switch a.Kind {
	case KindLiteral:
		return "literal " + strconv.Quote(a.Text)
	case KindWindow:
		hi := "EOF"
		if a.MaxLine > 0 {
			hi = strconv.Itoa(a.MaxLine)
		}
		return fmt.Sprintf("window %q in lines %d-%s", a.Text, a.MinLine, hi)
	case KindLine:
		if a.Text == "" {
			return fmt.Sprintf("line %d", a.Line)
		}
		return fmt.Sprintf("line %d containing %q", a.Line, a.Text)
	case KindRegex:
		return "regex /" + a.Pattern + "/"
	case KindSymbol:
		return fmt.Sprintf("symbol %s:%s", a.Lang, a.Name)
	case KindMarker:
		return "marker " + a.Name
	default:
		return string(a.Kind)
	}
}
