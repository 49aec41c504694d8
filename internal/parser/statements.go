package parser

import (
	"github.com/cellang/jsvm/internal/cell"
	"github.com/cellang/jsvm/internal/lexer"
)

func (p *Parser) parseStatement() *cell.Cell {
	switch p.cur.Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.VAR, lexer.LET, lexer.CONST:
		stmt := p.parseVariableDeclaration()
		p.semi()
		return stmt
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration(false)
	case lexer.ASYNC:
		if p.peekIs(lexer.FUNCTION) {
			p.next()
			return p.parseFunctionDeclaration(true)
		}
		return p.parseExpressionStatement()
	case lexer.CLASS:
		return p.parseClassDeclaration()
	case lexer.IF:
		return p.parseIf()
	case lexer.FOR:
		return p.parseFor()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.DO:
		return p.parseDoWhile()
	case lexer.SWITCH:
		return p.parseSwitch()
	case lexer.TRY:
		return p.parseTry()
	case lexer.THROW:
		return p.parseThrow()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.BREAK:
		return p.parseBreakContinue(cell.TagBreak)
	case lexer.CONTINUE:
		return p.parseBreakContinue(cell.TagContinue)
	case lexer.WITH:
		return p.parseWith()
	case lexer.SEMI:
		pos := p.cur.Pos
		p.next()
		return cell.Node(cell.TagEmptyStmt).WithRef(pos)
	case lexer.IDENT:
		if p.peekIs(lexer.COLON) {
			return p.parseLabeled()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlock() *cell.Cell {
	pos := p.cur.Pos
	p.expect(lexer.LBRACE)
	var stmts []any
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		} else {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return cell.Node(cell.TagBlock, stmts...).WithRef(pos)
}

func (p *Parser) parseExpressionStatement() *cell.Cell {
	pos := p.cur.Pos
	expr := p.parseExpression()
	p.semi()
	return cell.Node(cell.TagExprStmt, expr).WithRef(pos)
}

func (p *Parser) parseIf() *cell.Cell {
	pos := p.cur.Pos
	p.next()
	p.expect(lexer.LPAREN)
	cond := p.parseExpression()
	p.expect(lexer.RPAREN)
	then := p.parseStatement()
	var els *cell.Cell = cell.Empty
	if p.accept(lexer.ELSE) {
		els = p.parseStatement()
	}
	return cell.Node(cell.TagIf, cond, then, els).WithRef(pos)
}

func (p *Parser) parseWhile() *cell.Cell {
	pos := p.cur.Pos
	p.next()
	p.expect(lexer.LPAREN)
	cond := p.parseExpression()
	p.expect(lexer.RPAREN)
	body := p.parseStatement()
	return cell.Node(cell.TagWhile, cond, body).WithRef(pos)
}

func (p *Parser) parseDoWhile() *cell.Cell {
	pos := p.cur.Pos
	p.next()
	body := p.parseStatement()
	p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	cond := p.parseExpression()
	p.expect(lexer.RPAREN)
	p.semi()
	return cell.Node(cell.TagDoWhile, cond, body).WithRef(pos)
}

// parseFor handles `for(;;)`, `for(x in y)`, and `for(x of y)`.
func (p *Parser) parseFor() *cell.Cell {
	pos := p.cur.Pos
	p.next()
	p.expect(lexer.LPAREN)

	if p.curIs(lexer.SEMI) {
		return p.finishClassicFor(pos, cell.Empty)
	}

	var init *cell.Cell
	switch p.cur.Type {
	case lexer.VAR, lexer.LET, lexer.CONST:
		declTok := p.cur.Type
		declPos := p.cur.Pos
		p.next()
		target := p.parseBindingTarget()
		if p.curIs(lexer.IN) || p.curIs(lexer.OF) {
			isOf := p.curIs(lexer.OF)
			p.next()
			right := p.parseAssignExpr()
			p.expect(lexer.RPAREN)
			body := p.parseStatement()
			kindTag := declKindTag(declTok)
			decl := cell.Node(kindTag, target, cell.Empty).WithRef(declPos)
			if isOf {
				return cell.Node(cell.TagForOf, decl, right, body).WithRef(pos)
			}
			return cell.Node(cell.TagForIn, decl, right, body).WithRef(pos)
		}
		init = p.finishVariableDeclarationFrom(declTok, declPos, target)
	default:
		expr := p.parseExpression()
		if p.curIs(lexer.IN) || p.curIs(lexer.OF) {
			isOf := p.curIs(lexer.OF)
			p.next()
			right := p.parseAssignExpr()
			p.expect(lexer.RPAREN)
			body := p.parseStatement()
			if isOf {
				return cell.Node(cell.TagForOf, expr, right, body).WithRef(pos)
			}
			return cell.Node(cell.TagForIn, expr, right, body).WithRef(pos)
		}
		init = cell.Node(cell.TagExprStmt, expr)
	}
	return p.finishClassicFor(pos, init)
}

func (p *Parser) finishClassicFor(pos lexer.Position, init *cell.Cell) *cell.Cell {
	p.expect(lexer.SEMI)
	var cond *cell.Cell = cell.Empty
	if !p.curIs(lexer.SEMI) {
		cond = p.parseExpression()
	}
	p.expect(lexer.SEMI)
	var update *cell.Cell = cell.Empty
	if !p.curIs(lexer.RPAREN) {
		update = p.parseExpression()
	}
	p.expect(lexer.RPAREN)
	body := p.parseStatement()
	return cell.Node(cell.TagFor, init, cond, update, body).WithRef(pos)
}

func declKindTag(t lexer.TokenType) *cell.Symbol {
	switch t {
	case lexer.LET:
		return cell.TagLet
	case lexer.CONST:
		return cell.TagConst
	default:
		return cell.TagVar
	}
}

func (p *Parser) parseSwitch() *cell.Cell {
	pos := p.cur.Pos
	p.next()
	p.expect(lexer.LPAREN)
	disc := p.parseExpression()
	p.expect(lexer.RPAREN)
	p.expect(lexer.LBRACE)

	var cases []any
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		casePos := p.cur.Pos
		if p.accept(lexer.CASE) {
			test := p.parseExpression()
			p.expect(lexer.COLON)
			var stmts []any
			for !p.curIs(lexer.CASE) && !p.curIs(lexer.DEFAULT) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
				stmts = append(stmts, p.parseStatement())
			}
			cases = append(cases, cell.Node(cell.TagCase, append([]any{test}, stmts...)...).WithRef(casePos))
		} else if p.accept(lexer.DEFAULT) {
			p.expect(lexer.COLON)
			var stmts []any
			for !p.curIs(lexer.CASE) && !p.curIs(lexer.DEFAULT) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
				stmts = append(stmts, p.parseStatement())
			}
			cases = append(cases, cell.Node(cell.TagDefault, stmts...).WithRef(casePos))
		} else {
			p.addError("expected 'case' or 'default' in switch body")
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return cell.Node(cell.TagSwitch, append([]any{disc}, cases...)...).WithRef(pos)
}

func (p *Parser) parseTry() *cell.Cell {
	pos := p.cur.Pos
	p.next()
	block := p.parseBlock()

	var catchNode *cell.Cell = cell.Empty
	if p.accept(lexer.CATCH) {
		catchPos := p.cur.Pos
		var param *cell.Cell = cell.Empty
		if p.accept(lexer.LPAREN) {
			param = p.parseBindingTarget()
			p.expect(lexer.RPAREN)
		}
		body := p.parseBlock()
		catchNode = cell.Node(cell.TagCatch, param, body).WithRef(catchPos)
	}

	var finallyNode *cell.Cell = cell.Empty
	if p.accept(lexer.FINALLY) {
		finallyNode = p.parseBlock()
	}

	if catchNode.IsEmpty() && finallyNode.IsEmpty() {
		p.addError("missing catch or finally after try")
	}

	return cell.Node(cell.TagTry, block, catchNode, finallyNode).WithRef(pos)
}

func (p *Parser) parseThrow() *cell.Cell {
	pos := p.cur.Pos
	p.next()
	expr := p.parseExpression()
	p.semi()
	return cell.Node(cell.TagThrow, expr).WithRef(pos)
}

func (p *Parser) parseReturn() *cell.Cell {
	pos := p.cur.Pos
	p.next()
	var val *cell.Cell = cell.Empty
	if !p.curIs(lexer.SEMI) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		val = p.parseExpression()
	}
	p.semi()
	return cell.Node(cell.TagReturn, val).WithRef(pos)
}

func (p *Parser) parseBreakContinue(tag *cell.Symbol) *cell.Cell {
	pos := p.cur.Pos
	p.next()
	var label *cell.Cell = cell.Empty
	if p.curIs(lexer.IDENT) && p.cur.Pos.Line == pos.Line {
		label = cell.Node(cell.TagIdent, cell.Intern(p.cur.Literal))
		p.next()
	}
	p.semi()
	return cell.Node(tag, label).WithRef(pos)
}

func (p *Parser) parseLabeled() *cell.Cell {
	pos := p.cur.Pos
	name := cell.Intern(p.cur.Literal)
	p.next()
	p.expect(lexer.COLON)
	body := p.parseStatement()
	return cell.Node(cell.TagLabeled, name, body).WithRef(pos)
}

func (p *Parser) parseWith() *cell.Cell {
	pos := p.cur.Pos
	p.next()
	p.expect(lexer.LPAREN)
	obj := p.parseExpression()
	p.expect(lexer.RPAREN)
	body := p.parseStatement()
	return cell.Node(cell.TagWith, obj, body).WithRef(pos)
}
