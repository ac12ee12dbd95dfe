// Package patch applies declarative, idempotent edits to a source snapshot.
//
// A run is Locate -> (Extract) -> Apply -> Verify. Every stage works on an
// immutable textutil.Source; a failed run hands back the input unchanged.
package patch

import (
	"errors"
	"fmt"
	"strings"

	"scopepatch/internal/anchor"
	"scopepatch/internal/scope"
)

// Mode selects the transformation.
type Mode string

const (
	ModeInsertAfter   Mode = "insert_after"
	ModeReplaceLines  Mode = "replace_lines"
	ModeReplaceRegion Mode = "replace_region"
)

// IndentMode says where inserted lines get their indentation from.
type IndentMode string

const (
	IndentFixed   IndentMode = "fixed"   // Indent.Text verbatim
	IndentCapture IndentMode = "capture" // leading whitespace of the anchor line
)

// Indent is the indentation policy for insert_after and replace_lines payloads.
type Indent struct {
	Mode IndentMode `yaml:"mode,omitempty"`
	Text string     `yaml:"text,omitempty"`
}

// RegionSource says how replace_region finds its span.
type RegionSource string

const (
	RegionScope RegionSource = "scope" // balanced-delimiter scan from the anchor
	RegionMatch RegionSource = "match" // the anchor match itself (regex spans)
)

// Spec is one named patch.
type Spec struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Anchor      anchor.Anchor `yaml:"anchor"`
	Mode        Mode          `yaml:"mode"`

	// Expect[k] must occur in the original line site.Line+k. Empty entries
	// are skipped. A mismatch is a precondition failure.
	Expect []string `yaml:"expect,omitempty"`

	// Payload is the new text. Insert and replace_lines split it into lines;
	// replace_region substitutes it verbatim.
	Payload string `yaml:"payload"`
	Indent  Indent `yaml:"indent,omitempty"`

	// ReplaceCount is the number of lines replace_lines overwrites;
	// 0 means as many as the payload has.
	ReplaceCount int `yaml:"replace_count,omitempty"`

	Region     RegionSource     `yaml:"region,omitempty"`
	Delimiters scope.Delimiters `yaml:"delimiters,omitempty"`
	WholeLines bool             `yaml:"whole_lines,omitempty"`
}

// ErrPrecondition marks content that is present but not what the patch expects.
var ErrPrecondition = errors.New("precondition failed")

// Validate checks a spec after defaults have been merged.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("patch name is required")
	}
	if err := s.Anchor.Validate(); err != nil {
		return fmt.Errorf("anchor: %w", err)
	}
	switch s.Mode {
	case ModeInsertAfter, ModeReplaceLines:
		if s.Payload == "" {
			return fmt.Errorf("%s needs a payload", s.Mode)
		}
		if s.ReplaceCount < 0 {
			return fmt.Errorf("replace_count must be >= 0 (got %d)", s.ReplaceCount)
		}
		switch s.Indent.Mode {
		case "", IndentFixed, IndentCapture:
		default:
			return fmt.Errorf("unknown indent mode %q", s.Indent.Mode)
		}
	case ModeReplaceRegion:
		// A deleted region leaves nothing behind to recognise on a rerun.
		if strings.TrimSpace(s.Payload) == "" {
			return errors.New("replace_region needs a non-blank payload; deletions cannot be verified as already applied")
		}
		switch s.Region {
		case RegionScope:
			if err := s.ScopeDelimiters().Validate(); err != nil {
				return err
			}
		case RegionMatch:
		default:
			return fmt.Errorf("replace_region needs region: scope|match (got %q)", s.Region)
		}
	case "":
		return errors.New("patch mode is required")
	default:
		return fmt.Errorf("unknown patch mode %q", s.Mode)
	}
	return nil
}

// ScopeDelimiters returns the configured delimiters, braces when unset.
func (s Spec) ScopeDelimiters() scope.Delimiters {
	if s.Delimiters.Open == "" && s.Delimiters.Close == "" {
		return scope.Braces
	}
	return s.Delimiters
}

// payloadLines splits the payload on "\n", dropping one trailing newline so a
// YAML block scalar yields exactly the lines the author wrote.
func (s Spec) payloadLines() []string {
	p := strings.TrimSuffix(s.Payload, "\n")
	p = strings.TrimSuffix(p, "\r")
	lines := strings.Split(p, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	return lines
}
