package patch

import (
	"errors"
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"

	"scopepatch/internal/anchor"
	"scopepatch/internal/scope"
	"scopepatch/internal/textutil"
)

// Status classifies the outcome of one patch.
type Status string

const (
	StatusApplied            Status = "applied"
	StatusAlreadyApplied     Status = "already-applied"
	StatusAnchorNotFound     Status = "anchor-not-found"
	StatusPreconditionFailed Status = "precondition-failed"
	StatusMalformedScope     Status = "malformed-scope"
)

// OK is true for outcomes that leave the file in the intended state.
func (s Status) OK() bool {
	return s == StatusApplied || s == StatusAlreadyApplied
}

// Stats summarizes an applied change.
type Stats struct {
	Inserted  int `json:"inserted"`  // characters added
	Deleted   int `json:"deleted"`   // characters removed
	LineDelta int `json:"lineDelta"` // after.Len() - before.Len()
}

// Result is the outcome of one patch run.
type Result struct {
	Patch  string       `json:"patch"`
	Status Status       `json:"status"`
	Reason string       `json:"reason"`
	Site   *anchor.Site `json:"site,omitempty"`
	Stats  Stats        `json:"stats"`
}

// Verify classifies a run. err is the first error from locating, scoping or
// applying; change is the Apply summary used for the reason text.
func Verify(before, after textutil.Source, site *anchor.Site, change Change, err error) Result {
	r := Result{Site: site}
	switch {
	case errors.Is(err, anchor.ErrNotFound):
		r.Status, r.Reason = StatusAnchorNotFound, err.Error()
	case errors.Is(err, anchor.ErrAmbiguous), errors.Is(err, ErrPrecondition):
		r.Status, r.Reason = StatusPreconditionFailed, err.Error()
	case errors.Is(err, scope.ErrMalformedScope):
		r.Status, r.Reason = StatusMalformedScope, err.Error()
	case err != nil:
		r.Status, r.Reason = StatusPreconditionFailed, err.Error()
	case before.Text() == after.Text():
		r.Status, r.Reason = StatusAlreadyApplied, "content already in patched form"
		if site != nil {
			r.Reason = fmt.Sprintf("content already in patched form at line %d", site.Line+1)
		}
	default:
		r.Status, r.Reason = StatusApplied, change.String()
		r.Stats = diffStats(before, after)
	}
	return r
}

// diffStats counts changed characters with a line-mode diff.
func diffStats(before, after textutil.Source) Stats {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before.Text(), after.Text())
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	st := Stats{LineDelta: after.Len() - before.Len()}
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			st.Inserted += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			st.Deleted += len([]rune(d.Text))
		}
	}
	return st
}
