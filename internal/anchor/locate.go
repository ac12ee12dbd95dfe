package anchor

import (
	"fmt"
	"regexp"
	"strings"

	"scopepatch/internal/textutil"
)

// Locate resolves a against src and applies the occurrence policy.
// It returns ErrNotFound or ErrAmbiguous (possibly wrapped) when no single
// site can be chosen; it never panics on user input.
func Locate(src textutil.Source, a Anchor) (Site, error) {
	cands, err := Candidates(src, a)
	if err != nil {
		return Site{}, err
	}
	return pick(cands, a)
}

// Candidates returns every site a matches, in text order.
func Candidates(src textutil.Source, a Anchor) ([]Site, error) {
	switch a.Kind {
	case KindLiteral:
		return scanLines(src, a.Text, 1, 0), nil
	case KindWindow:
		return scanLines(src, a.Text, a.MinLine, a.MaxLine), nil
	case KindLine:
		return scanLines(src, a.Text, a.Line, a.Line), nil
	case KindMarker:
		return scanMarkers(src, a.Name), nil
	case KindRegex, KindSymbol:
		re, err := a.compile()
		if err != nil {
			return nil, err
		}
		return scanText(src, re), nil
	default:
		return nil, fmt.Errorf("unknown anchor kind %q", a.Kind)
	}
}

// scanLines collects lines in [lo..hi] (1-based, inclusive; hi == 0 means
// end of file) whose content contains text. An empty text matches the whole
// line content.
func scanLines(src textutil.Source, text string, lo, hi int) []Site {
	if lo < 1 {
		lo = 1
	}
	if hi == 0 || hi > src.Len() {
		hi = src.Len()
	}
	var out []Site
	off := src.LineStart(lo - 1)
	for i := lo - 1; i < hi; i++ {
		line := src.Line(i)
		content := textutil.Content(line)
		if text == "" {
			out = append(out, Site{Line: i, Start: off, End: off + len(content)})
		} else if k := strings.Index(content, text); k >= 0 {
			out = append(out, Site{Line: i, Start: off + k, End: off + k + len(text)})
		}
		off += len(line)
	}
	return out
}

func scanText(src textutil.Source, re *regexp.Regexp) []Site {
	text := src.Text()
	locs := re.FindAllStringIndex(text, -1)
	out := make([]Site, 0, len(locs))
	for _, m := range locs {
		out = append(out, Site{Line: src.LineOf(m[0]), Start: m[0], End: m[1]})
	}
	return out
}

func (a Anchor) compile() (*regexp.Regexp, error) {
	if a.Kind == KindSymbol {
		return symbolPattern(a.Lang, a.Name)
	}
	expr := a.Pattern
	if a.Multiline {
		expr = "(?s)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile anchor pattern: %w", err)
	}
	return re, nil
}

func pick(cands []Site, a Anchor) (Site, error) {
	if len(cands) == 0 {
		return Site{}, fmt.Errorf("%w: %s", ErrNotFound, a)
	}
	switch a.Occurrence {
	case OccurrenceLast:
		return cands[len(cands)-1], nil
	case OccurrenceUnique:
		if len(cands) > 1 {
			return Site{}, fmt.Errorf("%w: %s matched %d sites (lines %s)", ErrAmbiguous, a, len(cands), lineList(cands))
		}
		return cands[0], nil
	case OccurrenceNth:
		if a.Index < 1 || a.Index > len(cands) {
			return Site{}, fmt.Errorf("%w: %s has %d matches, wanted #%d", ErrNotFound, a, len(cands), a.Index)
		}
		return cands[a.Index-1], nil
	default:
		return cands[0], nil
	}
}

// lineList renders the 1-based lines of sites, capped to keep messages short.
func lineList(sites []Site) string {
	const max = 5
	parts := make([]string, 0, max+1)
	for i, s := range sites {
		if i == max {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, fmt.Sprint(s.Line+1))
	}
	return strings.Join(parts, ",")
}
