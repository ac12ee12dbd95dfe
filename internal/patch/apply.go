package patch

import (
	"fmt"
	"strings"

	"scopepatch/internal/anchor"
	"scopepatch/internal/scope"
	"scopepatch/internal/textutil"
)

// Change describes what Apply did, in 1-based lines of the original text.
type Change struct {
	StartLine int
	EndLine   int
	OldLines  int
	NewLines  int
}

func (c Change) String() string {
	if c.OldLines == 0 {
		return fmt.Sprintf("inserted %d line(s) after line %d", c.NewLines, c.StartLine)
	}
	return fmt.Sprintf("replaced lines %d-%d (%d lines -> %d lines)", c.StartLine, c.EndLine, c.OldLines, c.NewLines)
}

// Apply performs spec at site and returns the new snapshot. On any error the
// returned Source is src itself. When the content is already in the patched
// shape it returns src and a nil error; Verify turns that into AlreadyApplied.
//
// The already-patched check runs before the expect check, so a rerun whose
// expect text was consumed by the first run still reports AlreadyApplied.
func Apply(src textutil.Source, spec Spec, site anchor.Site) (textutil.Source, Change, error) {
	switch spec.Mode {
	case ModeInsertAfter:
		return insertAfter(src, spec, site)
	case ModeReplaceLines:
		return replaceLines(src, spec, site)
	case ModeReplaceRegion:
		return replaceRegion(src, spec, site)
	default:
		return src, Change{}, fmt.Errorf("unknown patch mode %q", spec.Mode)
	}
}

func checkExpect(src textutil.Source, expect []string, line int) error {
	for k, want := range expect {
		if want == "" {
			continue
		}
		i := line + k
		if i >= src.Len() {
			return fmt.Errorf("%w: expected %q at line %d, past end of file", ErrPrecondition, want, i+1)
		}
		if !strings.Contains(src.Line(i), want) {
			return fmt.Errorf("%w: line %d does not contain %q", ErrPrecondition, i+1, want)
		}
	}
	return nil
}

// render indents payload lines and terminates them with eol. Blank lines
// stay blank.
func render(lines []string, indent, eol string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			out[i] = eol
			continue
		}
		out[i] = indent + l + eol
	}
	return out
}

func indentFor(src textutil.Source, spec Spec, line int) string {
	if spec.Indent.Mode == IndentCapture {
		return textutil.LeadingWhitespace(src.Line(line))
	}
	return spec.Indent.Text
}

func insertAfter(src textutil.Source, spec Spec, site anchor.Site) (textutil.Source, Change, error) {
	eol := src.EOL()
	block := render(spec.payloadLines(), indentFor(src, spec, site.Line), eol)
	if sameContent(src, site.Line+1, block) {
		return src, Change{}, nil
	}
	if err := checkExpect(src, spec.Expect, site.Line); err != nil {
		return src, Change{}, err
	}

	old := src.Lines()
	out := make([]string, 0, len(old)+len(block))
	out = append(out, old[:site.Line+1]...)
	if textutil.Terminator(old[site.Line]) == "" {
		// Anchor is the unterminated last line: terminate it and keep the
		// file's missing final newline on the inserted block instead.
		out[site.Line] += eol
		block[len(block)-1] = textutil.Content(block[len(block)-1])
	}
	out = append(out, block...)
	out = append(out, old[site.Line+1:]...)
	return textutil.FromLines(out), Change{StartLine: site.Line + 1, EndLine: site.Line + 1, NewLines: len(block)}, nil
}

func replaceLines(src textutil.Source, spec Spec, site anchor.Site) (textutil.Source, Change, error) {
	payload := spec.payloadLines()
	count := spec.ReplaceCount
	if count == 0 {
		count = len(payload)
	}
	block := render(payload, indentFor(src, spec, site.Line), src.EOL())
	if sameContent(src, site.Line, block) {
		return src, Change{}, nil
	}
	if err := checkExpect(src, spec.Expect, site.Line); err != nil {
		return src, Change{}, err
	}
	end := site.Line + count
	if end > src.Len() {
		return src, Change{}, fmt.Errorf("%w: need %d line(s) from line %d, file has %d",
			ErrPrecondition, count, site.Line+1, src.Len())
	}

	old := src.Lines()
	if textutil.Terminator(old[end-1]) == "" {
		block[len(block)-1] = textutil.Content(block[len(block)-1])
	}
	out := make([]string, 0, len(old)-count+len(block))
	out = append(out, old[:site.Line]...)
	out = append(out, block...)
	out = append(out, old[end:]...)
	return textutil.FromLines(out), Change{StartLine: site.Line + 1, EndLine: end, OldLines: count, NewLines: len(block)}, nil
}

func replaceRegion(src textutil.Source, spec Spec, site anchor.Site) (textutil.Source, Change, error) {
	r, err := regionFor(src, spec, site)
	if err != nil {
		return src, Change{}, err
	}
	text := src.Text()
	payload := spec.Payload
	if src.EOL() != "\n" {
		payload = strings.ReplaceAll(strings.ReplaceAll(payload, "\r\n", "\n"), "\n", src.EOL())
	}
	if spec.Anchor.Kind == anchor.KindMarker || (spec.WholeLines && textutil.Terminator(text[r.Start:r.End]) != "") {
		payload = textutil.EnsureTrailingEOL(payload, src.EOL())
	}
	if text[r.Start:r.End] == payload {
		return src, Change{}, nil
	}
	if err := checkExpect(src, spec.Expect, site.Line); err != nil {
		return src, Change{}, err
	}

	out := textutil.NewSource(text[:r.Start] + payload + text[r.End:])
	added := len(textutil.SplitLinesKeepNL(payload))
	if r.Len() == 0 {
		return out, Change{StartLine: src.LineOf(r.Start), EndLine: src.LineOf(r.Start), NewLines: added}, nil
	}
	first := src.LineOf(r.Start)
	last := src.LineOf(max(r.Start, r.End-1))
	return out, Change{
		StartLine: first + 1,
		EndLine:   last + 1,
		OldLines:  last - first + 1,
		NewLines:  added,
	}, nil
}

// regionFor resolves the span replace_region operates on.
func regionFor(src textutil.Source, spec Spec, site anchor.Site) (scope.Region, error) {
	var r scope.Region
	switch spec.Region {
	case RegionScope:
		var err error
		r, err = scope.Extract(src.Text(), site.Start, spec.ScopeDelimiters())
		if err != nil {
			return scope.Region{}, err
		}
	default:
		r = scope.Region{Start: site.Start, End: site.End}
	}
	// Marker bodies are already whole lines and may be empty.
	if spec.WholeLines && spec.Anchor.Kind != anchor.KindMarker {
		r = scope.WholeLines(src, r)
	}
	return r, nil
}

// sameContent reports whether src, from line at on, already holds block
// (compared without terminators).
func sameContent(src textutil.Source, at int, block []string) bool {
	if at+len(block) > src.Len() {
		return false
	}
	for k, l := range block {
		if textutil.Content(src.Line(at+k)) != textutil.Content(l) {
			return false
		}
	}
	return true
}

// containsBlock reports whether the payload lines already appear as a run of
// consecutive lines in src, ignoring indentation. It backs the idempotence
// check for patches whose own application removes their anchor.
func containsBlock(src textutil.Source, payload []string) bool {
	want := make([]string, 0, len(payload))
	for _, l := range payload {
		want = append(want, strings.TrimSpace(l))
	}
	if len(want) == 0 || (len(want) == 1 && want[0] == "") {
		return false
	}
	for i := 0; i+len(want) <= src.Len(); i++ {
		match := true
		for k, w := range want {
			if strings.TrimSpace(src.Line(i+k)) != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
