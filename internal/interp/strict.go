package interp

import "github.com/cellang/jsvm/internal/cell"

// applyDirectivePrologue scans the leading `(ExprStmt (StringLit ...))`
// statements of a program or function body for a `"use strict"` directive
// and marks env strict if found, per spec.md §7's strict-mode error
// variants (undeclared-identifier assignment, const reassignment,
// frozen/sealed writes).
func applyDirectivePrologue(stmts []*cell.Cell, env *Environment) {
	for _, stmt := range stmts {
		if !stmt.Is(cell.TagExprStmt) {
			break
		}
		inner := stmt.Nth(0)
		if !inner.Is(cell.TagStringLit) {
			break
		}
		s, _ := inner.Nth(0).AsString()
		if s == "use strict" {
			env.Strict = true
		}
		// Any further string-literal statement is still a directive
		// slot syntactically, but only "use strict" has kernel meaning.
	}
}
