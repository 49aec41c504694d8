package cmd

import (
	"fmt"
	"os"

	"github.com/cellang/jsvm/internal/diag"
	"github.com/cellang/jsvm/internal/interp"
	"github.com/cellang/jsvm/internal/lexer"
	"github.com/cellang/jsvm/internal/parser"
	"github.com/cellang/jsvm/internal/stdlib"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	runEvalExpr string
	dumpAST     bool
	traceRun    bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a JavaScript file or expression",
	Long: `Execute a JavaScript program from a file or inline expression.

Examples:
  # Run a script file
  jsvm run script.js

  # Evaluate an inline expression
  jsvm run -e "console.log(1 + 2)"

  # Run with AST dump and an execution trace
  jsvm run --dump-ast --trace script.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed cons-cell AST before running")
	runCmd.Flags().BoolVar(&traceRun, "trace", false, "trace function calls during execution")
}

func runScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(runEvalExpr != "", prependEval(runEvalExpr, args))
	if err != nil {
		return err
	}

	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()

	if len(p.Errors()) > 0 {
		errs := toDiagErrors(p.Errors(), input, filename)
		fmt.Fprint(os.Stderr, diag.FormatErrors(errs, true))
		return fmt.Errorf("parsing failed with %d error(s)", len(p.Errors()))
	}

	if dumpAST {
		fmt.Fprintln(os.Stdout, "AST:")
		fmt.Fprintln(os.Stdout, program.String())
		fmt.Fprintln(os.Stdout)
	}

	interpreter := interp.New(os.Stdout)
	stdlib.Install(interpreter)

	if traceRun {
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.DebugLevel)
		interpreter.Trace = func(format string, args ...any) {
			logger.Debugf(format, args...)
		}
	}

	result, err := interpreter.Eval(program)
	if err != nil {
		if te, ok := err.(*interp.ThrownError); ok {
			fmt.Fprintln(os.Stderr, te.Error())
		} else {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		return fmt.Errorf("execution failed")
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose && result != nil {
		fmt.Fprintln(os.Stdout, result.String())
	}

	return nil
}

// prependEval re-shapes the -e expression as if it were a positional
// arg, so readSource's existing -e/file/stdin dispatch (shared with the
// parse subcommand) can serve run.go unchanged.
func prependEval(expr string, args []string) []string {
	if expr == "" {
		return args
	}
	return []string{expr}
}
