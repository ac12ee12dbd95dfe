package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scopepatch/internal/diff"
	"scopepatch/internal/fileio"
	"scopepatch/internal/patch"
	"scopepatch/internal/report"
	"scopepatch/internal/specfile"
	"scopepatch/internal/textutil"
)

type applyOptions struct {
	file         string
	names        []string
	dryRun       bool
	showDiff     bool
	diffContext  int
	diffMaxBytes int
	json         bool
}

func (a *app) applyCmd() *cobra.Command {
	var o applyOptions
	cmd := &cobra.Command{
		Use:   "apply <target>",
		Short: "Apply patches to a file",
		Long: `Applies the selected patches (all of them without -p) in file order, each
against the result of the previous one. The target is written once, atomically,
and only if every patch succeeded.

Example:
  scopepatch apply src/engine.js -f scales.yaml
  scopepatch apply src/engine.js -f scales.yaml -p fix-scales --dry-run --diff
  scopepatch apply src/engine.js -f scales.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runApply(args[0], o)
		},
	}
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "patch set (YAML)")
	cmd.Flags().StringArrayVarP(&o.names, "patch", "p", nil, "patch to apply (repeatable; default all)")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "report without writing")
	cmd.Flags().BoolVar(&o.showDiff, "diff", false, "print a unified diff of the change")
	cmd.Flags().IntVar(&o.diffContext, "diff-context", 3, "context lines in --diff output")
	cmd.Flags().IntVar(&o.diffMaxBytes, "diff-max-bytes", 4<<20, "omit --diff output above this many bytes (0 = no limit)")
	cmd.Flags().BoolVar(&o.json, "json", false, "print one JSON report instead of result lines")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) runApply(target string, o applyOptions) error {
	run := report.Run{Target: target, RunID: uuid.NewString(), DryRun: o.dryRun}
	log := a.log.With(zap.String("run_id", run.RunID), zap.String("target", target))

	set, err := specfile.Load(o.file)
	if err != nil {
		return fail(report.ExitError, err)
	}
	specs, err := set.Select(o.names)
	if err != nil {
		return fail(report.ExitError, err)
	}
	text, err := fileio.Read(target)
	if err != nil {
		return fail(report.ExitError, err)
	}
	log.Debug("loaded", zap.String("patch_set", o.file), zap.Int("patches", len(specs)))

	src := textutil.NewSource(text)
	out, results := patch.NewEngine(log).RunAll(src, specs)
	run.Results = results
	run.Summary = report.Summary(results)
	if !o.json {
		for _, r := range results {
			fmt.Fprintln(a.stdout, report.Line(r))
		}
	}

	if code := report.Worst(results); code != report.ExitOK {
		if skipped := len(specs) - len(results); skipped > 0 {
			run.Summary += fmt.Sprintf(", %d not run", skipped)
		}
		log.Warn("patch set failed, target left unchanged", zap.String("summary", run.Summary))
		if err := a.emitJSON(o, run); err != nil {
			return fail(report.ExitError, err)
		}
		return fail(code, errors.New(target+": "+run.Summary+"; file not written"))
	}

	if o.showDiff {
		body, oversize := diff.Unified(target, src.Text(), out.Text(),
			diff.Options{Context: o.diffContext, MaxBytes: o.diffMaxBytes})
		if oversize {
			log.Warn("diff omitted", zap.Int("max_bytes", o.diffMaxBytes))
		}
		run.Diff = body
		if !o.json {
			fmt.Fprint(a.stdout, body)
		}
	}

	note := ""
	switch {
	case out.Text() == src.Text():
		note = "; nothing to write"
	case o.dryRun:
		note = "; dry run, file not written"
	default:
		if err := fileio.WriteAtomic(target, out.Text()); err != nil {
			return fail(report.ExitError, fmt.Errorf("write %s: %w", target, err))
		}
		run.Written = true
		log.Info("target written", zap.Int("lines", out.Len()))
	}
	if o.json {
		return a.emitJSON(o, run)
	}
	fmt.Fprintf(a.stdout, "%s: %s%s\n", target, run.Summary, note)
	return nil
}

func (a *app) emitJSON(o applyOptions, run report.Run) error {
	if !o.json {
		return nil
	}
	return report.WriteJSON(a.stdout, run)
}
