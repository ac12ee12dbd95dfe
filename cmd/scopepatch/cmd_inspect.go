package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scopepatch/internal/anchor"
	"scopepatch/internal/fileio"
	"scopepatch/internal/patch"
	"scopepatch/internal/report"
	"scopepatch/internal/scope"
	"scopepatch/internal/specfile"
	"scopepatch/internal/textutil"
)

func (a *app) listCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the patches in a patch set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := specfile.Load(file)
			if err != nil {
				return fail(report.ExitError, err)
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, p := range set.Patches {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.Mode, p.Anchor, p.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "patch set (YAML)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) locateCmd() *cobra.Command {
	var file, name string
	cmd := &cobra.Command{
		Use:   "locate <target>",
		Short: "Show where a patch's anchor resolves",
		Long: `Prints every candidate site of the patch's anchor, the one its occurrence
policy picks and, for scope patches, the block found from there. Nothing is
written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLocate(args[0], file, name)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "patch set (YAML)")
	cmd.Flags().StringVarP(&name, "patch", "p", "", "patch name")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("patch")
	return cmd
}

func (a *app) runLocate(target, file, name string) error {
	set, err := specfile.Load(file)
	if err != nil {
		return fail(report.ExitError, err)
	}
	spec, ok := set.Find(name)
	if !ok {
		return fail(report.ExitError, fmt.Errorf("no patch named %q (have: %s)", name, strings.Join(set.Names(), ", ")))
	}
	text, err := fileio.Read(target)
	if err != nil {
		return fail(report.ExitError, err)
	}
	src := textutil.NewSource(text)

	cands, err := anchor.Candidates(src, spec.Anchor)
	if err != nil {
		return fail(report.ExitError, err)
	}
	fmt.Fprintf(a.stdout, "%s: %d candidate(s) for %s\n", name, len(cands), spec.Anchor)
	for _, c := range cands {
		fmt.Fprintf(a.stdout, "  line %d: %s\n", c.Line+1, strings.TrimSpace(src.Line(c.Line)))
	}

	site, err := anchor.Locate(src, spec.Anchor)
	if err != nil {
		return a.locateFailed(err)
	}
	fmt.Fprintf(a.stdout, "picked line %d (occurrence %s)\n", site.Line+1, occurrenceOf(spec.Anchor))

	if spec.Mode == patch.ModeReplaceRegion && spec.Region == patch.RegionScope {
		r, err := scope.Extract(src.Text(), site.Start, spec.ScopeDelimiters())
		if err != nil {
			return a.locateFailed(err)
		}
		fmt.Fprintf(a.stdout, "found block from line %d to line %d\n", src.LineOf(r.Start)+1, src.LineOf(r.End-1)+1)
	}
	return nil
}

func (a *app) locateFailed(err error) error {
	res := patch.Verify(textutil.Source{}, textutil.Source{}, nil, patch.Change{}, err)
	a.log.Debug("locate failed", zap.Error(err))
	return fail(report.ExitCode(res.Status), errors.New(string(res.Status)+": "+res.Reason))
}

func occurrenceOf(a anchor.Anchor) anchor.Occurrence {
	if a.Occurrence == "" {
		return anchor.OccurrenceFirst
	}
	return a.Occurrence
}
