package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cellang/jsvm/internal/diag"
	"github.com/cellang/jsvm/internal/lexer"
	"github.com/cellang/jsvm/internal/parser"
	"github.com/spf13/cobra"
)

var parseExpression bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse JavaScript source and display the cons-cell AST",
	Long: `Parse JavaScript source code and print the resulting S-expression AST.

If no file is provided, reads from stdin.
Use -e to parse a single expression from the command line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse an expression from the command line")
}

func runParse(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(parseExpression, args)
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

	fmt.Println(program.String())
	return nil
}

// readSource resolves a command's input from -e, a file argument, or
// stdin, shared by the run/parse subcommands.
func readSource(inlineFlag bool, args []string) (input, filename string, err error) {
	switch {
	case inlineFlag:
		if len(args) == 0 {
			return "", "", fmt.Errorf("no expression provided")
		}
		return args[0], "<eval>", nil
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("error reading file: %w", err)
		}
		return string(data), args[0], nil
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("error reading stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}
}

func toDiagErrors(perrs []*parser.ParseError, source, file string) []*diag.SourceError {
	out := make([]*diag.SourceError, 0, len(perrs))
	for _, e := range perrs {
		out = append(out, diag.NewSourceError(e.Pos, e.Message, source, file))
	}
	return out
}
