package patch

import (
	"errors"

	"go.uber.org/zap"

	"scopepatch/internal/anchor"
	"scopepatch/internal/textutil"
)

// Engine runs specs against snapshots. It holds no per-run state.
type Engine struct {
	log *zap.Logger
}

// NewEngine returns an Engine logging to log (nil means no logging).
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Run applies one spec. The returned Source is src unless the result is
// StatusApplied.
func (e *Engine) Run(src textutil.Source, spec Spec) (textutil.Source, Result) {
	log := e.log.With(zap.String("patch", spec.Name), zap.Stringer("anchor", spec.Anchor))

	site, err := anchor.Locate(src, spec.Anchor)
	if err != nil {
		if errors.Is(err, anchor.ErrNotFound) && spec.Mode != ModeInsertAfter && containsBlock(src, spec.payloadLines()) {
			// Replacements can consume their own anchor; the payload being
			// present means an earlier run already did the work.
			log.Debug("anchor gone but payload present")
			res := Verify(src, src, nil, Change{}, nil)
			res.Patch = spec.Name
			return src, res
		}
		log.Debug("locate failed", zap.Error(err))
		res := Verify(src, src, nil, Change{}, err)
		res.Patch = spec.Name
		return src, res
	}
	log.Debug("anchor located", zap.Int("line", site.Line+1), zap.Int("offset", site.Start))

	out, change, err := Apply(src, spec, site)
	res := Verify(src, out, &site, change, err)
	res.Patch = spec.Name
	if !res.Status.OK() {
		out = src
	}
	log.Debug("patch verified", zap.String("status", string(res.Status)), zap.String("reason", res.Reason))
	return out, res
}

// RunAll applies specs in order, each against the previous output. It stops
// at the first failure and then returns src unchanged, so callers never see a
// partially patched snapshot.
func (e *Engine) RunAll(src textutil.Source, specs []Spec) (textutil.Source, []Result) {
	cur := src
	results := make([]Result, 0, len(specs))
	for _, s := range specs {
		next, res := e.Run(cur, s)
		results = append(results, res)
		if !res.Status.OK() {
			return src, results
		}
		cur = next
	}
	return cur, results
}
