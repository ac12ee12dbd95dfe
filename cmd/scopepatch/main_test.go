package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scopepatch/internal/logging"
	"scopepatch/internal/patch"
	"scopepatch/internal/report"
)

// execute runs the CLI with a silent logger and returns exit code and stdout.
func execute(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := &app{
		stdout: &out,
		stderr: &errOut,
		newLogger: func(logging.Options) (*zap.Logger, error) {
			return zap.NewNop(), nil
		},
	}
	code := runWith(a, args)
	if code != report.ExitOK {
		t.Logf("stderr: %s", errOut.String())
	}
	return code, out.String()
}

// workspace copies the duel engine fixture and its patch set into a temp dir.
func workspace(t *testing.T) (target, patches string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"engine.js", "patches.yaml"} {
		b, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o644))
	}
	return filepath.Join(dir, "engine.js"), filepath.Join(dir, "patches.yaml")
}

// statuses maps patch name to status from the per-patch result lines.
func statuses(stdout string) map[string]string {
	m := map[string]string{}
	for _, line := range strings.Split(stdout, "\n") {
		f := strings.Fields(line)
		if len(f) >= 2 && strings.HasSuffix(f[1], ":") {
			m[strings.TrimSuffix(f[1], ":")] = f[0]
		}
	}
	return m
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestApplyPatchSetThenRerun(t *testing.T) {
	target, patches := workspace(t)
	want := readFile(t, filepath.Join("testdata", "engine.patched.js"))

	code, out := execute(t, "apply", target, "-f", patches)
	require.Equal(t, report.ExitOK, code, out)
	assert.Equal(t, want, readFile(t, target))
	assert.Equal(t, map[string]string{
		"fix-scales":             "applied",
		"add-ui-update":          "applied",
		"init-scales":            "applied",
		"replace-checkpoints":    "applied",
		"replace-checkpoints-v2": "already-applied",
	}, statuses(out))
	assert.Contains(t, out, "fix-scales: replaced lines 41-42 (2 lines -> 2 lines)")
	assert.Contains(t, out, "init-scales: inserted 1 line(s) after line 22")

	code, out = execute(t, "apply", target, "-f", patches)
	require.Equal(t, report.ExitOK, code, out)
	for name, status := range statuses(out) {
		assert.Equal(t, "already-applied", status, name)
	}
	assert.Contains(t, out, "nothing to write")
	assert.Equal(t, want, readFile(t, target))
}

func TestApplyDryRunWithDiff(t *testing.T) {
	target, patches := workspace(t)
	before := readFile(t, target)

	code, out := execute(t, "apply", target, "-f", patches, "-p", "init-scales", "--dry-run", "--diff")
	require.Equal(t, report.ExitOK, code)
	assert.Contains(t, out, "+++ b/"+target)
	assert.Contains(t, out, "+            if (this.uiManager.updateScales) this.uiManager.updateScales(this.scales);")
	assert.Contains(t, out, "dry run, file not written")
	assert.Equal(t, before, readFile(t, target))
}

func TestApplyFailureLeavesTargetUntouched(t *testing.T) {
	target, _ := workspace(t)
	before := readFile(t, target)
	patches := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(patches, []byte(`version: 1
patches:
  - name: first
    anchor: {kind: literal, text: "this.nextTurn();"}
    mode: insert_after
    payload: "this.log('turn');"
  - name: missing
    anchor: {kind: literal, text: "this.doesNotExist();"}
    mode: insert_after
    payload: "x();"
`), 0o644))

	code, out := execute(t, "apply", target, "-f", patches)
	assert.Equal(t, report.ExitAnchorNotFound, code)
	assert.Equal(t, map[string]string{"first": "applied", "missing": "anchor-not-found"}, statuses(out))
	assert.Equal(t, before, readFile(t, target))
}

func TestApplyStripsBOM(t *testing.T) {
	target, patches := workspace(t)
	require.NoError(t, os.WriteFile(target, append([]byte("\xef\xbb\xbf"), readFile(t, target)...), 0o644))

	code, _ := execute(t, "apply", target, "-f", patches, "-p", "init-scales")
	require.Equal(t, report.ExitOK, code)
	got := readFile(t, target)
	assert.False(t, strings.HasPrefix(got, "\xef\xbb\xbf"))
	assert.Contains(t, got, "this.uiManager.updateScales(this.scales);")
}

func TestList(t *testing.T) {
	_, patches := workspace(t)
	code, out := execute(t, "list", "-f", patches)
	require.Equal(t, report.ExitOK, code)
	for _, name := range []string{"fix-scales", "add-ui-update", "init-scales", "replace-checkpoints", "replace-checkpoints-v2"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "window")
}

func TestLocateScope(t *testing.T) {
	target, patches := workspace(t)
	code, out := execute(t, "locate", target, "-f", patches, "-p", "replace-checkpoints-v2")
	require.Equal(t, report.ExitOK, code)
	assert.Contains(t, out, "1 candidate(s)")
	assert.Contains(t, out, "picked line 49 (occurrence first)")
	assert.Contains(t, out, "found block from line 49 to line 54")
}

func TestLocateNotFound(t *testing.T) {
	target, patches := workspace(t)
	code, _ := execute(t, "locate", target, "-f", patches, "-p", "add-ui-update")
	assert.Equal(t, report.ExitAnchorNotFound, code)
}

func TestUsageAndInputErrors(t *testing.T) {
	target, patches := workspace(t)

	code, _ := execute(t, "apply", target)
	assert.Equal(t, report.ExitUsage, code, "missing -f")

	code, _ = execute(t, "apply", "-f", patches)
	assert.Equal(t, report.ExitUsage, code, "missing target")

	code, _ = execute(t, "apply", target, "-f", patches, "-p", "nope")
	assert.Equal(t, report.ExitError, code, "unknown patch")

	code, _ = execute(t, "apply", filepath.Join(t.TempDir(), "missing.js"), "-f", patches)
	assert.Equal(t, report.ExitError, code, "missing target file")
}

func TestApplyJSONReport(t *testing.T) {
	target, patches := workspace(t)

	code, out := execute(t, "apply", target, "-f", patches, "-p", "init-scales", "--json")
	require.Equal(t, report.ExitOK, code)

	var run report.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, target, run.Target)
	assert.NotEmpty(t, run.RunID)
	assert.True(t, run.Written)
	require.Len(t, run.Results, 1)
	assert.Equal(t, patch.StatusApplied, run.Results[0].Status)
	require.NotNil(t, run.Results[0].Site)
	assert.Equal(t, 21, run.Results[0].Site.Line)

	code, out = execute(t, "apply", target, "-f", patches, "-p", "add-ui-update", "--json")
	assert.Equal(t, report.ExitAnchorNotFound, code)
	var failed report.Run
	require.NoError(t, json.Unmarshal([]byte(out), &failed))
	assert.False(t, failed.Written)
	require.Len(t, failed.Results, 1)
	assert.Equal(t, patch.StatusAnchorNotFound, failed.Results[0].Status)
	assert.Nil(t, failed.Results[0].Site)
}

func TestApplyDiffSizeCap(t *testing.T) {
	target, patches := workspace(t)
	code, out := execute(t, "apply", target, "-f", patches, "-p", "init-scales", "--dry-run", "--diff", "--diff-max-bytes", "64")
	require.Equal(t, report.ExitOK, code)
	assert.Contains(t, out, "# diff omitted")
	assert.NotContains(t, out, "@@ -")
}
