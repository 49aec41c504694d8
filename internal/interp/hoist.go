package interp

import "github.com/cellang/jsvm/internal/cell"

// hoist scans a function/script body for `var` and function declarations
// and pre-binds them in env (which must already be the nearest function
// scope): `var` to Undefined, function declarations to their closure
// value. Block-scoped `let`/`const` are pre-registered as Uninitialized
// sentinels so reads before the declarator executes raise a reference
// error (TDZ, spec.md §4.3).
func (i *Interpreter) hoist(body *cell.Cell, env *Environment) {
	i.hoistVarsAndFunctions(body, env, env)
	i.hoistLexical(body, env)
}

// hoistVarsAndFunctions recurses into nested statements (but not into
// nested function bodies) collecting `var` declarations into the
// function-scope env, and binds top-level function declarations eagerly
// so they're callable before their textual position.
func (i *Interpreter) hoistVarsAndFunctions(node *cell.Cell, fnScope, env *Environment) {
	if node.IsEmpty() {
		return
	}
	for _, stmt := range node.NodeArgs() {
		i.hoistStatement(stmt, fnScope, env)
	}
}

func (i *Interpreter) hoistStatement(stmt *cell.Cell, fnScope, env *Environment) {
	if stmt.IsEmpty() {
		return
	}
	switch stmt.HeadSymbol() {
	case cell.TagVar:
		i.hoistVarTarget(stmt.Nth(0), fnScope)
		if stmt.NodeArgs()[0].Is(cell.TagIdent) && stmt.Len()-1 >= 1 {
			// function declarations are desugared to (Var Ident (Function ...))
			if fn := stmt.Nth(1); fn.Is(cell.TagFunction) {
				name, _ := stmt.Nth(0).Nth(0).AsSymbol()
				if name != nil {
					v := i.makeFunction(fn, env)
					fnScope.Define(name.Name, v, Binding{})
				}
			}
		}
	case cell.TagBlock:
		if stmt.Nth(0).IsEmpty() && stmt.Len() > 0 {
			// A desugared multi-declarator Var/Let/Const block from a single
			// statement; still just recurse.
		}
		i.hoistVarsAndFunctions(stmt, fnScope, env)
	case cell.TagIf:
		i.hoistStatement(stmt.Nth(1), fnScope, env)
		i.hoistStatement(stmt.Nth(2), fnScope, env)
	case cell.TagFor, cell.TagForIn, cell.TagForOf:
		args := stmt.NodeArgs()
		for _, a := range args {
			if a.Is(cell.TagVar) {
				i.hoistVarTarget(a.Nth(0), fnScope)
			}
		}
		i.hoistStatement(args[len(args)-1], fnScope, env)
	case cell.TagWhile, cell.TagDoWhile:
		i.hoistStatement(stmt.Nth(1), fnScope, env)
	case cell.TagTry:
		i.hoistStatement(stmt.Nth(0), fnScope, env)
		if c := stmt.Nth(1); !c.IsEmpty() {
			i.hoistStatement(c.Nth(1), fnScope, env)
		}
		i.hoistStatement(stmt.Nth(2), fnScope, env)
	case cell.TagLabeled:
		i.hoistStatement(stmt.Nth(1), fnScope, env)
	case cell.TagSwitch:
		for _, c := range stmt.NodeArgs()[1:] {
			i.hoistVarsAndFunctions(c, fnScope, env)
		}
	case cell.TagWith:
		i.hoistStatement(stmt.Nth(1), fnScope, env)
	}
}

// hoistVarTarget registers every identifier named by a (possibly
// destructuring) var target as Undefined in fnScope, unless already
// locally bound (idempotent var redeclaration).
func (i *Interpreter) hoistVarTarget(target *cell.Cell, fnScope *Environment) {
	for _, name := range bindingNames(target) {
		if !fnScope.HasLocal(name) {
			fnScope.Define(name, TheUndefined, Binding{})
		}
	}
}

// bindingNames flattens an identifier/ArrayPattern/ObjectPattern target
// into the list of names it binds.
func bindingNames(target *cell.Cell) []string {
	if target.IsEmpty() {
		return nil
	}
	switch target.HeadSymbol() {
	case cell.TagIdent:
		if s, ok := target.Nth(0).AsSymbol(); ok {
			return []string{s.Name}
		}
	case cell.TagArrayPattern:
		var out []string
		for _, el := range target.NodeArgs() {
			out = append(out, bindingNames(unwrapPatternElement(el))...)
		}
		return out
	case cell.TagObjectPattern:
		var out []string
		for _, prop := range target.NodeArgs() {
			if prop.Is(cell.TagRestElement) {
				out = append(out, bindingNames(prop.Nth(0))...)
				continue
			}
			out = append(out, bindingNames(unwrapPatternElement(prop.Nth(1)))...)
		}
		return out
	case cell.TagDefaultValue:
		return bindingNames(target.Nth(0))
	case cell.TagRestElement:
		return bindingNames(target.Nth(0))
	}
	return nil
}

func unwrapPatternElement(el *cell.Cell) *cell.Cell {
	if el.Is(cell.TagDefaultValue) || el.Is(cell.TagRestElement) {
		return el
	}
	return el
}

// hoistLexical pre-registers block-scoped let/const bindings as
// Uninitialized in env, without recursing into nested blocks (each block
// performs its own lexical hoisting when evaluated).
func (i *Interpreter) hoistLexical(body *cell.Cell, env *Environment) {
	for _, stmt := range body.NodeArgs() {
		switch stmt.HeadSymbol() {
		case cell.TagLet, cell.TagConst:
			for _, name := range bindingNames(stmt.Nth(0)) {
				env.Define(name, uninitialized, Binding{Lexical: true, Const: stmt.Is(cell.TagConst)})
			}
		case cell.TagClass:
			if name := stmt.Nth(0); name.Is(cell.TagIdent) {
				// handled by TagVar wrapper from parseClassDeclaration; no-op here.
				_ = name
			}
		}
	}
}

// uninitialized is the TDZ sentinel (spec.md §3 invariant).
var uninitialized = tdzSentinel{}

type tdzSentinel struct{}

func (tdzSentinel) Type() string   { return "uninitialized" }
func (tdzSentinel) String() string { return "<uninitialized>" }
