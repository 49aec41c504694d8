// Package diag formats compiler and runtime errors with source context,
// line/column information, and a caret pointing at the offending column,
// the way the host CLI (cmd/jsvm) reports failures to a terminal.
package diag

import (
	"fmt"
	"strings"

	"github.com/cellang/jsvm/internal/lexer"
)

// SourceError is a single diagnostic tied to a position in a source file.
type SourceError struct {
	Message string
	Source  string
	File    string
	Pos     lexer.Position
}

// NewSourceError builds a SourceError from a position and message.
func NewSourceError(pos lexer.Position, message, source, file string) *SourceError {
	return &SourceError{Pos: pos, Message: message, Source: source, File: file}
}

func (e *SourceError) Error() string { return e.Format(false) }

// Format renders the error with a one-line source excerpt and caret. With
// color set, the caret is wrapped in ANSI bold/red codes.
func (e *SourceError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "%s:%d:%d: ", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%d:%d: ", e.Pos.Line, e.Pos.Column)
	}
	sb.WriteString(e.Message)
	sb.WriteString("\n")

	if line := e.sourceLine(e.Pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+max(e.Pos.Column-1, 0)))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (e *SourceError) sourceLine(n int) string {
	if e.Source == "" || n < 1 {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FormatErrors renders a batch of SourceErrors, one after another, with a
// count header when there is more than one.
func FormatErrors(errs []*SourceError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s):\n\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(&sb, "[%d/%d] ", i+1, len(errs))
		sb.WriteString(e.Format(color))
	}
	return sb.String()
}

// FromParseErrors adapts parser.ParseError values (which carry their own
// lexer.Position but no source/file context) into SourceErrors for display.
func FromParseErrors(errs []ParseError, source, file string) []*SourceError {
	out := make([]*SourceError, 0, len(errs))
	for _, e := range errs {
		out = append(out, NewSourceError(e.Pos, e.Message, source, file))
	}
	return out
}

// ParseError mirrors parser.ParseError's shape so this package doesn't
// need to import internal/parser (which would create a cycle were parser
// ever to report diagnostics through this package directly).
type ParseError struct {
	Message string
	Pos     lexer.Position
}

// FormatRuntimeError renders an uncaught-exception message from the
// interpreter. Runtime values don't carry a reliable source position the
// way parse errors do, so this is a plain one-line report.
func FormatRuntimeError(err error, file string) string {
	if file != "" {
		return fmt.Sprintf("%s: %s\n", file, err.Error())
	}
	return err.Error() + "\n"
}
