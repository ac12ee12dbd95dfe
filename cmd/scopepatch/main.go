// Package main provides the scopepatch CLI, which applies declarative,
// idempotent patches to a single source file.
//
// Commands:
//   - apply  : scopepatch apply <target> -f patches.yaml [-p name]... [--dry-run] [--diff]
//   - list   : scopepatch list -f patches.yaml
//   - locate : scopepatch locate <target> -f patches.yaml -p name
//
// Results go to stdout, one line per patch; logs go to stderr. The exit code
// is 0 when every selected patch is applied or already applied.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scopepatch/internal/logging"
	"scopepatch/internal/report"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func fail(code int, err error) error {
	return &exitError{code: code, err: err}
}

// app holds what the subcommands share.
type app struct {
	stdout, stderr io.Writer
	newLogger      func(logging.Options) (*zap.Logger, error)

	verbose bool
	logJSON bool
	log     *zap.Logger
}

func run(args []string, stdout, stderr io.Writer) int {
	return runWith(&app{stdout: stdout, stderr: stderr, newLogger: logging.New}, args)
}

func runWith(a *app, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	err := root.Execute()
	if a.log != nil {
		_ = a.log.Sync()
	}
	if err == nil {
		return report.ExitOK
	}
	fmt.Fprintf(a.stderr, "scopepatch: %v\n", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Anything cobra rejected before a command ran.
	return report.ExitUsage
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "scopepatch",
		Short: "Apply anchored, idempotent source patches",
		Long: `scopepatch applies named patches from a YAML patch set to one source file.

Each patch finds its place with an anchor (literal, line window, fixed line,
regex or symbol), optionally expands it to a brace-balanced scope, and then
inserts or replaces text. Re-running a patch set is safe: patches already in
place report already-applied and the file is left alone.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := a.newLogger(logging.Options{Verbose: a.verbose, JSON: a.logJSON})
			if err != nil {
				return fail(report.ExitUsage, err)
			}
			a.log = log
			return nil
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging on stderr")
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "log as JSON")

	root.AddCommand(a.applyCmd(), a.listCmd(), a.locateCmd())
	return root
}
