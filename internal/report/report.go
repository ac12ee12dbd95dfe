// Package report turns patch results into process exit codes and the
// one-line diagnostics printed on stdout.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"scopepatch/internal/patch"
)

// Exit codes.
const (
	ExitOK             = 0
	ExitError          = 1 // I/O or patch-set problems
	ExitUsage          = 2
	ExitAnchorNotFound = 3
	ExitPrecondition   = 4
	ExitMalformedScope = 5
)

// ExitCode maps a status to the process exit code.
func ExitCode(s patch.Status) int {
	switch s {
	case patch.StatusApplied, patch.StatusAlreadyApplied:
		return ExitOK
	case patch.StatusAnchorNotFound:
		return ExitAnchorNotFound
	case patch.StatusPreconditionFailed:
		return ExitPrecondition
	case patch.StatusMalformedScope:
		return ExitMalformedScope
	default:
		return ExitError
	}
}

// Worst returns the exit code of the first failed result, or ExitOK.
func Worst(results []patch.Result) int {
	for _, r := range results {
		if code := ExitCode(r.Status); code != ExitOK {
			return code
		}
	}
	return ExitOK
}

// Line renders one result, e.g.
//
//	applied            fix-scales: replaced lines 41-42 (2 lines -> 2 lines)
func Line(r patch.Result) string {
	return fmt.Sprintf("%-19s %s: %s", r.Status, r.Patch, r.Reason)
}

// Summary counts results by status in a fixed order, e.g.
// "5 patch(es): 4 applied, 1 already-applied".
func Summary(results []patch.Result) string {
	order := []patch.Status{
		patch.StatusApplied,
		patch.StatusAlreadyApplied,
		patch.StatusAnchorNotFound,
		patch.StatusPreconditionFailed,
		patch.StatusMalformedScope,
	}
	counts := make(map[patch.Status]int, len(order))
	for _, r := range results {
		counts[r.Status]++
	}
	var parts []string
	for _, s := range order {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	if len(parts) == 0 {
		return "0 patch(es)"
	}
	return fmt.Sprintf("%d patch(es): %s", len(results), strings.Join(parts, ", "))
}

// Run is the machine-readable report of one apply invocation.
type Run struct {
	Target  string         `json:"target"`
	RunID   string         `json:"runId"`
	Results []patch.Result `json:"results"`
	Summary string         `json:"summary"`
	DryRun  bool           `json:"dryRun"`
	Written bool           `json:"written"`
	Diff    string         `json:"diff,omitempty"`
}

// WriteJSON encodes run as indented JSON followed by a newline.
func WriteJSON(w io.Writer, run Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}
