// Package diff renders unified diffs for dry-run previews.
// It uses github.com/pmezard/go-difflib/difflib to produce classic unified
// patches (---/+++ headers, @@ hunks, lines prefixed with ' ', '-', '+').
package diff

import (
	"fmt"

	difflib "github.com/pmezard/go-difflib/difflib"

	"scopepatch/internal/textutil"
)

// Options controls patch generation behavior.
type Options struct {
	// MaxBytes is a guardrail on input size (old+new). When exceeded,
	// a placeholder is returned and oversize=true. 0 means "no limit".
	MaxBytes int

	// Context controls the number of context lines in unified hunks.
	// If 0, default to 3.
	Context int
}

// Unified produces a unified patch for a↦b labelled "a/<name>" and
// "b/<name>". Identical inputs yield "".
func Unified(name, a, b string, opt Options) (body string, oversize bool) {
	if a == b {
		return "", false
	}
	from, to := "a/"+name, "b/"+name
	if opt.MaxBytes > 0 && len(a)+len(b) > opt.MaxBytes {
		return omitted(from, to), true
	}
	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}

	u := difflib.UnifiedDiff{
		A:        textutil.SplitLinesKeepNL(a),
		B:        textutil.SplitLinesKeepNL(b),
		FromFile: from,
		ToFile:   to,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil || s == "" {
		// Very rare; return placeholder instead of an empty patch.
		return omitted(from, to), false
	}
	return s, false
}

// omitted returns a compact placeholder when a diff cannot be shown.
func omitted(from, to string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted\n", from, to)
}
