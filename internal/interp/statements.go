package interp

import "github.com/cellang/jsvm/internal/cell"

// evalStatement dispatches on stmt's head symbol and executes it against
// env, setting ctx.Signal for any non-local control flow that escapes
// the statement (spec.md §4.3).
func (i *Interpreter) evalStatement(stmt *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	if stmt.IsEmpty() {
		return TheUndefined
	}
	switch stmt.HeadSymbol() {
	case cell.TagExprStmt:
		return i.evalExpr(stmt.Nth(0), env, ctx)
	case cell.TagEmptyStmt:
		return TheUndefined
	case cell.TagBlock:
		return i.evalBlock(stmt, env, ctx)
	case cell.TagVar, cell.TagLet, cell.TagConst:
		return i.evalDeclaration(stmt, env, ctx)
	case cell.TagIf:
		return i.evalIf(stmt, env, ctx)
	case cell.TagWhile:
		return i.evalWhile(stmt, env, ctx)
	case cell.TagDoWhile:
		return i.evalDoWhile(stmt, env, ctx)
	case cell.TagFor:
		return i.evalFor(stmt, env, ctx)
	case cell.TagForIn:
		return i.evalForIn(stmt, env, ctx)
	case cell.TagForOf:
		return i.evalForOf(stmt, env, ctx)
	case cell.TagSwitch:
		return i.evalSwitch(stmt, env, ctx)
	case cell.TagTry:
		return i.evalTry(stmt, env, ctx)
	case cell.TagThrow:
		v := i.evalExpr(stmt.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		ctx.setThrow(v)
		return TheUndefined
	case cell.TagReturn:
		v := Value(TheUndefined)
		if !stmt.Nth(0).IsEmpty() {
			v = i.evalExpr(stmt.Nth(0), env, ctx)
		}
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		ctx.setReturn(v)
		return TheUndefined
	case cell.TagBreak:
		label := ""
		if l := stmt.Nth(0); !l.IsEmpty() {
			if s, ok := l.Nth(0).AsSymbol(); ok {
				label = s.Name
			}
		}
		ctx.setBreak(label)
		return TheUndefined
	case cell.TagContinue:
		label := ""
		if l := stmt.Nth(0); !l.IsEmpty() {
			if s, ok := l.Nth(0).AsSymbol(); ok {
				label = s.Name
			}
		}
		ctx.setContinue(label)
		return TheUndefined
	case cell.TagLabeled:
		return i.evalLabeled(stmt, env, ctx)
	case cell.TagWith:
		return i.evalWith(stmt, env, ctx)
	default:
		return i.evalExpr(stmt, env, ctx)
	}
}

func (i *Interpreter) evalBlock(block *cell.Cell, parent *Environment, ctx *EvaluationContext) Value {
	env := NewEnclosedEnvironment(parent, false)
	i.hoistLexical(block, env)
	var last Value = TheUndefined
	for _, stmt := range block.NodeArgs() {
		v := i.evalStatement(stmt, env, ctx)
		if v != nil {
			last = v
		}
		if ctx.Signal.Kind != SigNone {
			break
		}
	}
	return last
}

func (i *Interpreter) evalDeclaration(decl *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	target := decl.Nth(0)
	initExpr := decl.Nth(1)

	var init Value = TheUndefined
	hasInit := !initExpr.IsEmpty()
	if hasInit {
		init = i.evalExpr(initExpr, env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
	}

	switch decl.HeadSymbol() {
	case cell.TagVar:
		scope := env.FunctionScope()
		i.bindPattern(target, init, scope, ctx, Binding{})
	case cell.TagLet:
		i.bindPattern(target, init, env, ctx, Binding{Lexical: true})
	case cell.TagConst:
		i.bindPattern(target, init, env, ctx, Binding{Lexical: true, Const: true})
	}
	return TheUndefined
}

func (i *Interpreter) evalIf(stmt *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	cond := i.evalExpr(stmt.Nth(0), env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	if ToBoolean(cond) {
		return i.evalStatement(stmt.Nth(1), env, ctx)
	}
	if els := stmt.Nth(2); !els.IsEmpty() {
		return i.evalStatement(els, env, ctx)
	}
	return TheUndefined
}

func (i *Interpreter) evalWhile(stmt *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	ownLabel := takeLoopLabel(ctx)
	cond, body := stmt.Nth(0), stmt.Nth(1)
	for {
		c := i.evalExpr(cond, env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		if !ToBoolean(c) {
			break
		}
		i.evalStatement(body, env, ctx)
		if !i.consumeLoopSignal(ctx, ownLabel) {
			break
		}
	}
	return TheUndefined
}

func (i *Interpreter) evalDoWhile(stmt *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	ownLabel := takeLoopLabel(ctx)
	cond, body := stmt.Nth(0), stmt.Nth(1)
	for {
		i.evalStatement(body, env, ctx)
		if !i.consumeLoopSignal(ctx, ownLabel) {
			break
		}
		c := i.evalExpr(cond, env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		if !ToBoolean(c) {
			break
		}
	}
	return TheUndefined
}

func (i *Interpreter) evalFor(stmt *cell.Cell, parent *Environment, ctx *EvaluationContext) Value {
	ownLabel := takeLoopLabel(ctx)
	env := NewEnclosedEnvironment(parent, false)
	init, cond, update, body := stmt.Nth(0), stmt.Nth(1), stmt.Nth(2), stmt.Nth(3)
	if !init.IsEmpty() {
		i.evalStatement(init, env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
	}
	for {
		if !cond.IsEmpty() {
			c := i.evalExpr(cond, env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
			if !ToBoolean(c) {
				break
			}
		}
		i.evalStatement(body, env, ctx)
		if !i.consumeLoopSignal(ctx, ownLabel) {
			break
		}
		if !update.IsEmpty() {
			i.evalExpr(update, env, ctx)
			if ctx.Signal.Kind == SigThrow {
				return TheUndefined
			}
		}
	}
	return TheUndefined
}

func (i *Interpreter) evalForIn(stmt *cell.Cell, parent *Environment, ctx *EvaluationContext) Value {
	ownLabel := takeLoopLabel(ctx)
	declOrTarget, rightExpr, body := stmt.Nth(0), stmt.Nth(1), stmt.Nth(2)
	right := i.evalExpr(rightExpr, parent, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	keys := enumerableKeys(right)
	for _, k := range keys {
		env := NewEnclosedEnvironment(parent, false)
		i.assignForTarget(declOrTarget, String(k), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		i.evalStatement(body, env, ctx)
		if !i.consumeLoopSignal(ctx, ownLabel) {
			break
		}
	}
	return TheUndefined
}

func (i *Interpreter) evalForOf(stmt *cell.Cell, parent *Environment, ctx *EvaluationContext) Value {
	ownLabel := takeLoopLabel(ctx)
	declOrTarget, rightExpr, body := stmt.Nth(0), stmt.Nth(1), stmt.Nth(2)
	right := i.evalExpr(rightExpr, parent, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	items, err := i.iterate(right)
	if err != nil {
		ctx.throwError("TypeError", err.Error())
		return TheUndefined
	}
	for _, v := range items {
		env := NewEnclosedEnvironment(parent, false)
		i.assignForTarget(declOrTarget, v, env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		i.evalStatement(body, env, ctx)
		if !i.consumeLoopSignal(ctx, ownLabel) {
			break
		}
	}
	return TheUndefined
}

// assignForTarget binds one for-in/for-of iteration value, either
// through a fresh let/var declarator or an existing assignment target.
func (i *Interpreter) assignForTarget(declOrTarget *cell.Cell, v Value, env *Environment, ctx *EvaluationContext) {
	switch declOrTarget.HeadSymbol() {
	case cell.TagVar:
		i.bindPattern(declOrTarget.Nth(0), v, env.FunctionScope(), ctx, Binding{})
	case cell.TagLet:
		i.bindPattern(declOrTarget.Nth(0), v, env, ctx, Binding{Lexical: true})
	case cell.TagConst:
		i.bindPattern(declOrTarget.Nth(0), v, env, ctx, Binding{Lexical: true, Const: true})
	default:
		i.assignPattern(declOrTarget, v, env, ctx)
	}
}

// consumeLoopSignal clears and consumes Continue/Break signals for the
// innermost loop, returning whether the loop should keep iterating.
// ownLabel is the label immediately wrapping this loop (if any), so that
// `continue <ownLabel>` is treated as continuing this loop rather than
// propagating past it.
func (i *Interpreter) consumeLoopSignal(ctx *EvaluationContext, ownLabel string) bool {
	switch ctx.Signal.Kind {
	case SigNone:
		return true
	case SigContinue:
		if ctx.Signal.Label == "" || ctx.Signal.Label == ownLabel {
			ctx.clear()
			return true
		}
		return false // labeled continue for an outer loop: propagate
	case SigBreak:
		if ctx.Signal.Label == "" || ctx.Signal.Label == ownLabel {
			ctx.clear()
		}
		return false
	default: // Return, Throw, Yield: propagate
		return false
	}
}

// takeLoopLabel consumes and clears ctx.pendingLoopLabel, returning it.
// Every loop-eval function calls this once at entry so the label is only
// honored by the loop directly named, not by nested loops reusing a
// stale pendingLoopLabel.
func takeLoopLabel(ctx *EvaluationContext) string {
	l := ctx.pendingLoopLabel
	ctx.pendingLoopLabel = ""
	return l
}

func (i *Interpreter) evalSwitch(stmt *cell.Cell, parent *Environment, ctx *EvaluationContext) Value {
	env := NewEnclosedEnvironment(parent, false)
	args := stmt.NodeArgs()
	disc := i.evalExpr(args[0], env, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	cases := args[1:]

	matched := -1
	for idx, c := range cases {
		if !c.Is(cell.TagCase) {
			continue
		}
		test := i.evalExpr(c.Nth(0), env, ctx)
		if ctx.Signal.Kind == SigThrow {
			return TheUndefined
		}
		if strictEquals(disc, test) {
			matched = idx
			break
		}
	}
	if matched == -1 {
		for idx, c := range cases {
			if c.Is(cell.TagDefault) {
				matched = idx
				break
			}
		}
	}
	if matched == -1 {
		return TheUndefined
	}

	for _, c := range cases[matched:] {
		var body []*cell.Cell
		if c.Is(cell.TagCase) {
			body = c.NodeArgs()[1:]
		} else {
			body = c.NodeArgs()
		}
		for _, s := range body {
			i.evalStatement(s, env, ctx)
			if ctx.Signal.Kind != SigNone {
				goto done
			}
		}
	}
done:
	if ctx.Signal.Kind == SigBreak && ctx.Signal.Label == "" {
		ctx.clear()
	}
	return TheUndefined
}

func (i *Interpreter) evalTry(stmt *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	block, catchNode, finallyNode := stmt.Nth(0), stmt.Nth(1), stmt.Nth(2)

	i.evalStatement(block, env, ctx)

	if ctx.Signal.Kind == SigThrow && !catchNode.IsEmpty() {
		thrown := ctx.Signal.Value
		ctx.clear()
		catchEnv := NewEnclosedEnvironment(env, false)
		if param := catchNode.Nth(0); !param.IsEmpty() {
			i.bindPattern(param, thrown, catchEnv, ctx, Binding{Lexical: true})
		}
		i.evalStatement(catchNode.Nth(1), catchEnv, ctx)
	}

	if !finallyNode.IsEmpty() {
		saved := ctx.Signal
		ctx.clear()
		i.evalStatement(finallyNode, env, ctx)
		if ctx.Signal.Kind == SigNone {
			ctx.Signal = saved // finally completed normally: restore prior signal
		}
		// else: finally's own signal (return/throw/break/continue) overrides.
	}
	return TheUndefined
}

func (i *Interpreter) evalLabeled(stmt *cell.Cell, env *Environment, ctx *EvaluationContext) Value {
	label, _ := stmt.Nth(0).AsSymbol()
	name := ""
	if label != nil {
		name = label.Name
	}
	ctx.pushLabel(name)
	body := stmt.Nth(1)
	if isLoopNode(body) {
		ctx.pendingLoopLabel = name
	}
	i.evalStatement(body, env, ctx)
	ctx.popLabel(name)

	if (ctx.Signal.Kind == SigBreak || ctx.Signal.Kind == SigContinue) && ctx.Signal.Label == name {
		ctx.clear()
	}
	return TheUndefined
}

func isLoopNode(n *cell.Cell) bool {
	switch n.HeadSymbol() {
	case cell.TagFor, cell.TagForIn, cell.TagForOf, cell.TagWhile, cell.TagDoWhile:
		return true
	}
	return false
}

func (i *Interpreter) evalWith(stmt *cell.Cell, parent *Environment, ctx *EvaluationContext) Value {
	objVal := i.evalExpr(stmt.Nth(0), parent, ctx)
	if ctx.Signal.Kind == SigThrow {
		return TheUndefined
	}
	obj, ok := objVal.(*Object)
	if !ok {
		ctx.throwError("TypeError", "Cannot apply 'with' to a non-object value")
		return TheUndefined
	}
	env := NewEnclosedEnvironment(parent, false)
	env.WithObject = obj
	return i.evalStatement(stmt.Nth(1), env, ctx)
}
