package cmd

import (
	"io"
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/spf13/cobra"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it. runScript prints directly to os.Stdout
// (mirroring the teacher's CLI commands), so a pipe swap is the only way
// to observe it from a test.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read captured stdout: %v", err)
	}
	return string(out)
}

func runJsvm(t *testing.T, expr string) (string, error) {
	t.Helper()
	runEvalExpr = expr
	dumpAST = false
	traceRun = false
	defer func() { runEvalExpr = "" }()

	cmd := &cobra.Command{}
	cmd.Flags().BoolP("verbose", "v", true, "")

	var runErr error
	out := captureStdout(t, func() {
		runErr = runScript(cmd, nil)
	})
	return out, runErr
}

func TestRunCommandSnapshots(t *testing.T) {
	cases := []struct {
		name string
		expr string
	}{
		{"arithmetic", `1 + 2 * 3`},
		{"string_concat", `"a" + "b" + 1`},
		{"array_literal", `[1, 2, 3].join("-")`},
		{"ternary", `(5 > 3) ? "yes" : "no"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := runJsvm(t, tc.expr)
			if err != nil {
				t.Fatalf("unexpected error running %q: %v", tc.expr, err)
			}
			snaps.MatchSnapshot(t, out)
		})
	}
}

func TestRunCommandReportsThrownErrors(t *testing.T) {
	_, err := runJsvm(t, `throw new Error("boom")`)
	if err == nil {
		t.Fatalf("expected runScript to report an error for an uncaught throw")
	}
}
