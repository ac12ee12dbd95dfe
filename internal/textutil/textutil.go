// Package textutil holds the immutable text snapshot every patch stage works
// on, plus the small line helpers shared by the locator and the applicator.
package textutil

import "strings"

// Source is a read-only snapshot of a target file. It can be viewed as one
// string or as lines that keep their original terminators. Transformations
// never modify a Source; they build a new one.
type Source struct {
	text  string
	lines []string
	eol   string
}

// NewSource snapshots text. The EOL convention is taken from the first line
// terminator found; files without any newline default to "\n".
func NewSource(text string) Source {
	return Source{
		text:  text,
		lines: SplitLinesKeepNL(text),
		eol:   DetectEOL(text),
	}
}

// FromLines joins lines (each carrying its own terminator) into a Source.
func FromLines(lines []string) Source {
	return NewSource(strings.Join(lines, ""))
}

// Text returns the whole content.
func (s Source) Text() string { return s.text }

// EOL returns the line terminator convention of the snapshot.
func (s Source) EOL() string { return s.eol }

// Len returns the number of lines.
func (s Source) Len() int { return len(s.lines) }

// Line returns line i (0-based) including its terminator.
func (s Source) Line(i int) string { return s.lines[i] }

// Lines returns a copy of the line slice so callers cannot mutate the snapshot.
func (s Source) Lines() []string {
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// LineStart returns the byte offset at which line i begins. i == Len() maps
// to the end of the text.
func (s Source) LineStart(i int) int {
	off := 0
	for k := 0; k < i && k < len(s.lines); k++ {
		off += len(s.lines[k])
	}
	return off
}

// LineOf maps a byte offset to its 0-based line index.
func (s Source) LineOf(off int) int {
	if off <= 0 {
		return 0
	}
	if off > len(s.text) {
		off = len(s.text)
	}
	return strings.Count(s.text[:off], "\n")
}

// SplitLinesKeepNL splits into lines and keeps the newline characters, so
// joining the result restores the input byte for byte.
func SplitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	// SplitAfter leaves an empty tail when s ends with "\n".
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// DetectEOL reports "\r\n" when the first terminator in s is CRLF, "\n" otherwise.
func DetectEOL(s string) string {
	i := strings.IndexByte(s, '\n')
	if i > 0 && s[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// Terminator returns the trailing "\r\n", "\n" or "" of line.
func Terminator(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	default:
		return ""
	}
}

// Content strips the terminator from line.
func Content(line string) string {
	return strings.TrimSuffix(line, Terminator(line))
}

// LeadingWhitespace returns the run of spaces and tabs that starts line.
func LeadingWhitespace(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i]
}

// EnsureTrailingEOL appends eol if s does not already end with a newline.
func EnsureTrailingEOL(s, eol string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + eol
}
