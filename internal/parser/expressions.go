package parser

import (
	"math/big"
	"strconv"

	"github.com/cellang/jsvm/internal/cell"
	"github.com/cellang/jsvm/internal/lexer"
)

// parseExpression parses a comma-separated sequence expression.
func (p *Parser) parseExpression() *cell.Cell {
	pos := p.cur.Pos
	first := p.parseAssignExpr()
	if !p.curIs(lexer.COMMA) {
		return first
	}
	exprs := []any{first}
	for p.accept(lexer.COMMA) {
		exprs = append(exprs, p.parseAssignExpr())
	}
	return cell.Node(cell.TagSequence, exprs...).WithRef(pos)
}

var assignOps = map[lexer.TokenType]string{
	lexer.ASSIGN:             "=",
	lexer.PLUS_ASSIGN:        "+=",
	lexer.MINUS_ASSIGN:       "-=",
	lexer.STAR_ASSIGN:        "*=",
	lexer.SLASH_ASSIGN:       "/=",
	lexer.PERCENT_ASSIGN:     "%=",
	lexer.STARSTAR_ASSIGN:    "**=",
	lexer.SHL_ASSIGN:         "<<=",
	lexer.SHR_ASSIGN:         ">>=",
	lexer.USHR_ASSIGN:        ">>>=",
	lexer.AND_ASSIGN:         "&=",
	lexer.OR_ASSIGN:          "|=",
	lexer.XOR_ASSIGN:         "^=",
	lexer.LOGICAL_AND_ASSIGN: "&&=",
	lexer.LOGICAL_OR_ASSIGN:  "||=",
	lexer.NULLISH_ASSIGN:     "??=",
}

// parseAssignExpr handles arrow-function detection and right-assoc
// assignment, then falls through to the ternary/binary precedence ladder.
func (p *Parser) parseAssignExpr() *cell.Cell {
	if arrow := p.tryParseArrow(); arrow != nil {
		return arrow
	}
	if p.curIs(lexer.YIELD) {
		return p.parseYield()
	}

	pos := p.cur.Pos
	left := p.parseTernary()

	if op, ok := assignOps[p.cur.Type]; ok {
		p.next()
		right := p.parseAssignExpr()
		if op == "=" {
			return cell.Node(cell.TagAssign, left, right).WithRef(pos)
		}
		return cell.Node(cell.TagCompoundAssig, cell.Operator(op), left, right).WithRef(pos)
	}
	return left
}

func (p *Parser) parseYield() *cell.Cell {
	pos := p.cur.Pos
	p.next()
	star := p.accept(lexer.STAR)
	var arg *cell.Cell = cell.Empty
	if !p.curIs(lexer.SEMI) && !p.curIs(lexer.RPAREN) && !p.curIs(lexer.RBRACE) &&
		!p.curIs(lexer.RBRACKET) && !p.curIs(lexer.COMMA) && !p.curIs(lexer.COLON) && !p.curIs(lexer.EOF) {
		arg = p.parseAssignExpr()
	}
	if star {
		return cell.Node(cell.TagYieldStar, arg).WithRef(pos)
	}
	return cell.Node(cell.TagYield, arg).WithRef(pos)
}

func (p *Parser) parseTernary() *cell.Cell {
	pos := p.cur.Pos
	cond := p.parseNullish()
	if p.accept(lexer.QUESTION) {
		then := p.parseAssignExpr()
		p.expect(lexer.COLON)
		els := p.parseAssignExpr()
		return cell.Node(cell.TagTernary, cond, then, els).WithRef(pos)
	}
	return cond
}

func (p *Parser) parseNullish() *cell.Cell {
	pos := p.cur.Pos
	left := p.parseLogicalOr()
	for p.curIs(lexer.NULLISH) {
		p.next()
		right := p.parseLogicalOr()
		left = cell.Node(cell.TagNullish, left, right).WithRef(pos)
	}
	return left
}

func (p *Parser) parseLogicalOr() *cell.Cell {
	pos := p.cur.Pos
	left := p.parseLogicalAnd()
	for p.curIs(lexer.LOGICAL_OR) {
		p.next()
		right := p.parseLogicalAnd()
		left = cell.Node(cell.TagLogical, cell.Operator("||"), left, right).WithRef(pos)
	}
	return left
}

func (p *Parser) parseLogicalAnd() *cell.Cell {
	pos := p.cur.Pos
	left := p.parseBitOr()
	for p.curIs(lexer.LOGICAL_AND) {
		p.next()
		right := p.parseBitOr()
		left = cell.Node(cell.TagLogical, cell.Operator("&&"), left, right).WithRef(pos)
	}
	return left
}

func (p *Parser) parseBitOr() *cell.Cell {
	pos := p.cur.Pos
	left := p.parseBitXor()
	for p.curIs(lexer.PIPE) {
		p.next()
		right := p.parseBitXor()
		left = cell.Node(cell.TagOperatorNode, cell.Operator("|"), left, right).WithRef(pos)
	}
	return left
}

func (p *Parser) parseBitXor() *cell.Cell {
	pos := p.cur.Pos
	left := p.parseBitAnd()
	for p.curIs(lexer.CARET) {
		p.next()
		right := p.parseBitAnd()
		left = cell.Node(cell.TagOperatorNode, cell.Operator("^"), left, right).WithRef(pos)
	}
	return left
}

func (p *Parser) parseBitAnd() *cell.Cell {
	pos := p.cur.Pos
	left := p.parseEquality()
	for p.curIs(lexer.AMP) {
		p.next()
		right := p.parseEquality()
		left = cell.Node(cell.TagOperatorNode, cell.Operator("&"), left, right).WithRef(pos)
	}
	return left
}

var equalityOps = map[lexer.TokenType]string{
	lexer.EQ: "==", lexer.NOT_EQ: "!=", lexer.STRICT_EQ: "===", lexer.STRICT_NOT_EQ: "!==",
}

func (p *Parser) parseEquality() *cell.Cell {
	pos := p.cur.Pos
	left := p.parseRelational()
	for {
		op, ok := equalityOps[p.cur.Type]
		if !ok {
			return left
		}
		p.next()
		right := p.parseRelational()
		left = cell.Node(cell.TagOperatorNode, cell.Operator(op), left, right).WithRef(pos)
	}
}

var relationalOps = map[lexer.TokenType]string{
	lexer.LT: "<", lexer.LE: "<=", lexer.GT: ">", lexer.GE: ">=",
	lexer.INSTANCEOF: "instanceof", lexer.IN: "in",
}

func (p *Parser) parseRelational() *cell.Cell {
	pos := p.cur.Pos
	left := p.parseShift()
	for {
		op, ok := relationalOps[p.cur.Type]
		if !ok {
			return left
		}
		p.next()
		right := p.parseShift()
		left = cell.Node(cell.TagOperatorNode, cell.Operator(op), left, right).WithRef(pos)
	}
}

var shiftOps = map[lexer.TokenType]string{
	lexer.SHL: "<<", lexer.SHR: ">>", lexer.USHR: ">>>",
}

func (p *Parser) parseShift() *cell.Cell {
	pos := p.cur.Pos
	left := p.parseAdditive()
	for {
		op, ok := shiftOps[p.cur.Type]
		if !ok {
			return left
		}
		p.next()
		right := p.parseAdditive()
		left = cell.Node(cell.TagOperatorNode, cell.Operator(op), left, right).WithRef(pos)
	}
}

func (p *Parser) parseAdditive() *cell.Cell {
	pos := p.cur.Pos
	left := p.parseMultiplicative()
	for p.curIs(lexer.PLUS) || p.curIs(lexer.MINUS) {
		op := "+"
		if p.curIs(lexer.MINUS) {
			op = "-"
		}
		p.next()
		right := p.parseMultiplicative()
		left = cell.Node(cell.TagOperatorNode, cell.Operator(op), left, right).WithRef(pos)
	}
	return left
}

var multiplicativeOps = map[lexer.TokenType]string{
	lexer.STAR: "*", lexer.SLASH: "/", lexer.PERCENT: "%",
}

func (p *Parser) parseMultiplicative() *cell.Cell {
	pos := p.cur.Pos
	left := p.parseExponent()
	for {
		op, ok := multiplicativeOps[p.cur.Type]
		if !ok {
			return left
		}
		p.next()
		right := p.parseExponent()
		left = cell.Node(cell.TagOperatorNode, cell.Operator(op), left, right).WithRef(pos)
	}
}

// parseExponent is right-associative: 2 ** 3 ** 2 == 2 ** (3 ** 2).
func (p *Parser) parseExponent() *cell.Cell {
	pos := p.cur.Pos
	left := p.parseUnary()
	if p.curIs(lexer.STARSTAR) {
		p.next()
		right := p.parseExponent()
		return cell.Node(cell.TagOperatorNode, cell.Operator("**"), left, right).WithRef(pos)
	}
	return left
}

func (p *Parser) parseUnary() *cell.Cell {
	pos := p.cur.Pos
	switch p.cur.Type {
	case lexer.BANG:
		p.next()
		return cell.Node(cell.TagNot, p.parseUnary()).WithRef(pos)
	case lexer.MINUS:
		p.next()
		return cell.Node(cell.TagNegate, p.parseUnary()).WithRef(pos)
	case lexer.PLUS:
		p.next()
		return cell.Node(cell.TagPlus, p.parseUnary()).WithRef(pos)
	case lexer.TILDE:
		p.next()
		return cell.Node(cell.TagBitNot, p.parseUnary()).WithRef(pos)
	case lexer.TYPEOF:
		p.next()
		return cell.Node(cell.TagTypeof, p.parseUnary()).WithRef(pos)
	case lexer.VOID:
		p.next()
		return cell.Node(cell.TagVoid, p.parseUnary()).WithRef(pos)
	case lexer.DELETE:
		p.next()
		return cell.Node(cell.TagDelete, p.parseUnary()).WithRef(pos)
	case lexer.AWAIT:
		p.next()
		return cell.Node(cell.TagAwait, p.parseUnary()).WithRef(pos)
	case lexer.INC, lexer.DEC:
		op := "++"
		if p.cur.Type == lexer.DEC {
			op = "--"
		}
		p.next()
		target := p.parseUnary()
		return cell.Node(cell.TagUpdate, cell.Operator(op), boolCell(true), target).WithRef(pos)
	default:
		return p.parsePostfix()
	}
}

func boolCell(b bool) *cell.Cell { return cell.Pair(b, cell.Empty) }

func (p *Parser) parsePostfix() *cell.Cell {
	pos := p.cur.Pos
	expr := p.parseCallOrMember(p.parsePrimary())
	if (p.curIs(lexer.INC) || p.curIs(lexer.DEC)) && p.cur.Pos.Line == pos.Line {
		op := "++"
		if p.cur.Type == lexer.DEC {
			op = "--"
		}
		p.next()
		return cell.Node(cell.TagUpdate, cell.Operator(op), boolCell(false), expr).WithRef(pos)
	}
	return expr
}

// parseCallOrMember builds member/index/call/optional-chain suffix chains
// onto an already-parsed primary expression.
func (p *Parser) parseCallOrMember(base *cell.Cell) *cell.Cell {
	for {
		pos := p.cur.Pos
		switch {
		case p.curIs(lexer.DOT):
			p.next()
			name := p.cur.Literal
			p.next()
			base = cell.Node(cell.TagGetProperty, base, cell.Pair(name, cell.Empty)).WithRef(pos)
		case p.curIs(lexer.OPTIONAL_CHAIN):
			p.next()
			if p.curIs(lexer.LPAREN) {
				args := p.parseArguments()
				base = cell.Node(cell.TagOptionalChain, cell.Node(cell.TagCall, append([]any{base}, args...)...)).WithRef(pos)
				continue
			}
			if p.curIs(lexer.LBRACKET) {
				p.next()
				idx := p.parseExpression()
				p.expect(lexer.RBRACKET)
				base = cell.Node(cell.TagOptionalChain, cell.Node(cell.TagGetIndex, base, idx)).WithRef(pos)
				continue
			}
			name := p.cur.Literal
			p.next()
			base = cell.Node(cell.TagOptionalChain, cell.Node(cell.TagGetProperty, base, cell.Pair(name, cell.Empty))).WithRef(pos)
		case p.curIs(lexer.LBRACKET):
			p.next()
			idx := p.parseExpression()
			p.expect(lexer.RBRACKET)
			base = cell.Node(cell.TagGetIndex, base, idx).WithRef(pos)
		case p.curIs(lexer.LPAREN):
			args := p.parseArguments()
			base = cell.Node(cell.TagCall, append([]any{base}, args...)...).WithRef(pos)
		case p.curIs(lexer.TEMPLATE):
			tmpl := p.parseTemplateLiteral()
			base = cell.Node(cell.TagTaggedTemp, base, tmpl).WithRef(pos)
		default:
			return base
		}
	}
}

func (p *Parser) parseArguments() []any {
	p.expect(lexer.LPAREN)
	var args []any
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SPREAD) {
			pos := p.cur.Pos
			p.next()
			args = append(args, cell.Node(cell.TagSpread, p.parseAssignExpr()).WithRef(pos))
		} else {
			args = append(args, p.parseAssignExpr())
		}
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

func (p *Parser) parsePrimary() *cell.Cell {
	pos := p.cur.Pos
	switch p.cur.Type {
	case lexer.NUMBER:
		tok := p.cur
		p.next()
		if tok.IsBigInt {
			n := new(big.Int)
			n.SetString(strconv.FormatFloat(tok.Number, 'f', -1, 64), 10)
			return cell.Node(cell.TagBigIntLit, n).WithRef(pos)
		}
		return cell.Node(cell.TagNumberLit, tok.Number).WithRef(pos)
	case lexer.STRING:
		tok := p.cur
		p.next()
		return cell.Node(cell.TagStringLit, tok.Literal).WithRef(pos)
	case lexer.TEMPLATE:
		return p.parseTemplateLiteral()
	case lexer.REGEX:
		tok := p.cur
		p.next()
		return cell.Node(cell.TagRegexLit, tok.RegexBody, tok.RegexFlags).WithRef(pos)
	case lexer.TRUELIT:
		p.next()
		return cell.Node(cell.TagBoolLit, true).WithRef(pos)
	case lexer.FALSELIT:
		p.next()
		return cell.Node(cell.TagBoolLit, false).WithRef(pos)
	case lexer.NULLLIT:
		p.next()
		return cell.Node(cell.TagNullLit).WithRef(pos)
	case lexer.UNDEFINEDLIT:
		p.next()
		return cell.Node(cell.TagUndefinedLit).WithRef(pos)
	case lexer.THIS:
		p.next()
		return cell.Node(cell.TagThis).WithRef(pos)
	case lexer.SUPER:
		p.next()
		if p.curIs(lexer.LPAREN) {
			args := p.parseArguments()
			return cell.Node(cell.TagSuperCall, args...).WithRef(pos)
		}
		return cell.Node(cell.TagSuper).WithRef(pos)
	case lexer.IDENT:
		name := p.cur.Literal
		p.next()
		return cell.Node(cell.TagIdent, cell.Intern(name)).WithRef(pos)
	case lexer.NEW:
		p.next()
		callee := p.parseCallOrMemberNoCall(p.parsePrimary())
		var args []any
		if p.curIs(lexer.LPAREN) {
			args = p.parseArguments()
		}
		node := cell.Node(cell.TagNew, append([]any{callee}, args...)...).WithRef(pos)
		return p.parseCallOrMember(node)
	case lexer.FUNCTION:
		return p.parseFunctionExpr(false)
	case lexer.ASYNC:
		if p.peekIs(lexer.FUNCTION) {
			p.next()
			return p.parseFunctionExpr(true)
		}
		apos := p.cur.Pos
		p.next()
		if p.curIs(lexer.LPAREN) && p.looksLikeArrowParams() {
			params := p.parseParamList()
			p.expect(lexer.ARROW)
			body := p.parseArrowBody()
			return cell.Node(cell.TagAsync, cell.Node(cell.TagLambda, params, body).WithRef(apos)).WithRef(apos)
		}
		return p.parseIdentAsArrowOrIdent(true)
	case lexer.CLASS:
		return p.parseClassExpr()
	case lexer.LPAREN:
		p.next()
		expr := p.parseExpression()
		p.expect(lexer.RPAREN)
		return expr
	case lexer.LBRACKET:
		return p.parseArrayLiteral()
	case lexer.LBRACE:
		return p.parseObjectLiteral()
	default:
		p.addError("unexpected token " + p.cur.Type.String())
		tok := p.cur
		p.next()
		return cell.Node(cell.TagUndefinedLit).WithRef(tok.Pos)
	}
}

// parseCallOrMemberNoCall parses member-access suffixes but stops before a
// call suffix, since `new Foo()` must bind the parens to `new`, not to a
// trailing call on the callee.
func (p *Parser) parseCallOrMemberNoCall(base *cell.Cell) *cell.Cell {
	for {
		pos := p.cur.Pos
		switch {
		case p.curIs(lexer.DOT):
			p.next()
			name := p.cur.Literal
			p.next()
			base = cell.Node(cell.TagGetProperty, base, cell.Pair(name, cell.Empty)).WithRef(pos)
		case p.curIs(lexer.LBRACKET):
			p.next()
			idx := p.parseExpression()
			p.expect(lexer.RBRACKET)
			base = cell.Node(cell.TagGetIndex, base, idx).WithRef(pos)
		default:
			return base
		}
	}
}

func (p *Parser) parseIdentAsArrowOrIdent(asyncPrefix bool) *cell.Cell {
	pos := p.cur.Pos
	name := p.cur.Literal
	p.next()
	if p.curIs(lexer.ARROW) {
		p.next()
		param := cell.Node(cell.TagParam, cell.Node(cell.TagIdent, cell.Intern(name)), cell.Empty)
		body := p.parseArrowBody()
		tag := cell.TagLambda
		node := cell.Node(tag, cell.List(param), body).WithRef(pos)
		if asyncPrefix {
			return cell.Node(cell.TagAsync, node).WithRef(pos)
		}
		return node
	}
	return cell.Node(cell.TagIdent, cell.Intern(name)).WithRef(pos)
}

func (p *Parser) parseTemplateLiteral() *cell.Cell {
	pos := p.cur.Pos
	tok := p.cur
	p.next()
	var parts []any
	for _, chunk := range tok.TemplateParts {
		if chunk.IsExpr {
			sub, errs := Parse(chunk.Text + ";")
			for _, e := range errs {
				p.errors = append(p.errors, e)
			}
			var exprCell *cell.Cell = cell.Empty
			if args := sub.NodeArgs(); len(args) > 0 {
				if stmt := args[0]; stmt.Is(cell.TagExprStmt) {
					exprCell = stmt.Nth(0)
				}
			}
			parts = append(parts, cell.Node(cell.TagSpread, exprCell))
		} else {
			parts = append(parts, cell.Node(cell.TagStringLit, chunk.Cooked))
		}
	}
	return cell.Node(cell.TagTemplate, parts...).WithRef(pos)
}

func (p *Parser) parseArrayLiteral() *cell.Cell {
	pos := p.cur.Pos
	p.expect(lexer.LBRACKET)
	var elems []any
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.COMMA) {
			elems = append(elems, cell.Node(cell.TagElision))
			p.next()
			continue
		}
		if p.curIs(lexer.SPREAD) {
			spos := p.cur.Pos
			p.next()
			elems = append(elems, cell.Node(cell.TagSpread, p.parseAssignExpr()).WithRef(spos))
		} else {
			elems = append(elems, p.parseAssignExpr())
		}
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	return cell.Node(cell.TagArrayLiteral, elems...).WithRef(pos)
}

func (p *Parser) parseObjectLiteral() *cell.Cell {
	pos := p.cur.Pos
	p.expect(lexer.LBRACE)
	var props []any
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		props = append(props, p.parseObjectMember())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE)
	return cell.Node(cell.TagObjectLiteral, props...).WithRef(pos)
}

func (p *Parser) parseObjectMember() *cell.Cell {
	pos := p.cur.Pos

	if p.curIs(lexer.SPREAD) {
		p.next()
		return cell.Node(cell.TagSpread, p.parseAssignExpr()).WithRef(pos)
	}

	isGetter := false
	isSetter := false
	if p.curIs(lexer.GET) && !p.peekIs(lexer.COLON) && !p.peekIs(lexer.LPAREN) && !p.peekIs(lexer.COMMA) && !p.peekIs(lexer.RBRACE) {
		isGetter = true
		p.next()
	} else if p.curIs(lexer.SET) && !p.peekIs(lexer.COLON) && !p.peekIs(lexer.LPAREN) && !p.peekIs(lexer.COMMA) && !p.peekIs(lexer.RBRACE) {
		isSetter = true
		p.next()
	}

	isAsync := false
	isGen := false
	if p.curIs(lexer.ASYNC) && !p.peekIs(lexer.COLON) && !p.peekIs(lexer.LPAREN) && !p.peekIs(lexer.COMMA) && !p.peekIs(lexer.RBRACE) {
		isAsync = true
		p.next()
	}
	if p.curIs(lexer.STAR) {
		isGen = true
		p.next()
	}

	var key *cell.Cell
	var computed bool
	switch {
	case p.curIs(lexer.LBRACKET):
		p.next()
		key = p.parseAssignExpr()
		p.expect(lexer.RBRACKET)
		computed = true
	case p.curIs(lexer.STRING):
		key = cell.Pair(p.cur.Literal, cell.Empty)
		p.next()
	case p.curIs(lexer.NUMBER):
		key = cell.Pair(strconv.FormatFloat(p.cur.Number, 'f', -1, 64), cell.Empty)
		p.next()
	default:
		key = cell.Pair(p.cur.Literal, cell.Empty)
		p.next()
	}
	if computed {
		key = cell.Node(cell.TagComputedKey, key)
	}

	if isGetter || isSetter {
		params, body := p.parseFunctionRest()
		tag := cell.TagGetter
		if isSetter {
			tag = cell.TagSetter
		}
		fn := cell.Node(tag, key, params, body).WithRef(pos)
		return fn
	}

	if p.curIs(lexer.LPAREN) {
		params, body := p.parseFunctionRest()
		flags := methodFlags(isAsync, isGen)
		return cell.Node(cell.TagMethod, key, params, body, flags).WithRef(pos)
	}

	if p.accept(lexer.COLON) {
		val := p.parseAssignExpr()
		return cell.Node(cell.TagProperty, key, val).WithRef(pos)
	}

	// Shorthand property: { x } === { x: x }.
	name, _ := key.AsString()
	val := cell.Node(cell.TagIdent, cell.Intern(name)).WithRef(pos)
	return cell.Node(cell.TagProperty, key, val).WithRef(pos)
}

func methodFlags(isAsync, isGen bool) *cell.Cell {
	return cell.Pair(isAsync, cell.Pair(isGen, cell.Empty))
}
