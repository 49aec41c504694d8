package parser

import (
	"github.com/cellang/jsvm/internal/cell"
	"github.com/cellang/jsvm/internal/lexer"
)

// parseVariableDeclaration parses `var|let|const binding [= init] (, ...)?`
// without consuming the trailing semicolon (the caller handles ASI).
func (p *Parser) parseVariableDeclaration() *cell.Cell {
	declTok := p.cur.Type
	pos := p.cur.Pos
	p.next()
	target := p.parseBindingTarget()
	return p.finishVariableDeclarationFrom(declTok, pos, target)
}

// finishVariableDeclarationFrom continues parsing after the declaration
// keyword and first binding target have already been consumed (used by the
// `for(let x ...)` head, which must look ahead for `in`/`of` before
// committing to a plain declaration).
func (p *Parser) finishVariableDeclarationFrom(declTok lexer.TokenType, pos lexer.Position, target *cell.Cell) *cell.Cell {
	var init *cell.Cell = cell.Empty
	if p.accept(lexer.ASSIGN) {
		init = p.parseAssignExpr()
	}
	kindTag := declKindTag(declTok)
	decls := []any{cell.Node(kindTag, target, init).WithRef(pos)}

	for p.accept(lexer.COMMA) {
		dpos := p.cur.Pos
		t := p.parseBindingTarget()
		var i *cell.Cell = cell.Empty
		if p.accept(lexer.ASSIGN) {
			i = p.parseAssignExpr()
		}
		decls = append(decls, cell.Node(kindTag, t, i).WithRef(dpos))
	}

	if len(decls) == 1 {
		return decls[0].(*cell.Cell)
	}
	return cell.Node(cell.TagBlock, decls...).WithRef(pos)
}

func (p *Parser) parseFunctionDeclaration(isAsync bool) *cell.Cell {
	pos := p.cur.Pos
	p.expect(lexer.FUNCTION)
	isGen := p.accept(lexer.STAR)
	name := p.cur.Literal
	p.expect(lexer.IDENT)
	params, body := p.parseFunctionRest()
	nameCell := cell.Node(cell.TagIdent, cell.Intern(name))
	fn := cell.Node(cell.TagFunction, nameCell, params, body, methodFlags(isAsync, isGen)).WithRef(pos)
	return cell.Node(cell.TagVar, nameCell, fn).WithRef(pos)
}

func (p *Parser) parseFunctionExpr(isAsync bool) *cell.Cell {
	pos := p.cur.Pos
	p.expect(lexer.FUNCTION)
	isGen := p.accept(lexer.STAR)
	var nameCell *cell.Cell = cell.Empty
	if p.curIs(lexer.IDENT) {
		nameCell = cell.Node(cell.TagIdent, cell.Intern(p.cur.Literal))
		p.next()
	}
	params, body := p.parseFunctionRest()
	return cell.Node(cell.TagFunction, nameCell, params, body, methodFlags(isAsync, isGen)).WithRef(pos)
}

// parseFunctionRest parses `(params) { body }` shared by function
// declarations/expressions, methods, and getters/setters.
func (p *Parser) parseFunctionRest() (*cell.Cell, *cell.Cell) {
	params := p.parseParamList()
	body := p.parseBlock()
	return params, body
}

func (p *Parser) parseParamList() *cell.Cell {
	p.expect(lexer.LPAREN)
	var params []any
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		params = append(params, p.parseParam())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return cell.List(params...)
}

func (p *Parser) parseParam() *cell.Cell {
	pos := p.cur.Pos
	if p.curIs(lexer.SPREAD) {
		p.next()
		target := p.parseBindingTarget()
		return cell.Node(cell.TagRestElement, target).WithRef(pos)
	}
	target := p.parseBindingTarget()
	if p.accept(lexer.ASSIGN) {
		def := p.parseAssignExpr()
		return cell.Node(cell.TagParam, target, def).WithRef(pos)
	}
	return cell.Node(cell.TagParam, target, cell.Empty).WithRef(pos)
}

// tryParseArrow attempts to recognize an arrow function at the current
// position without requiring backtracking: a bare identifier or a
// parenthesized, comma-separated binding list followed by `=>` commits to
// an arrow; otherwise nil is returned and the caller continues parsing an
// ordinary expression. The lexer is case-sensitive with a single token of
// lookahead, so we use the lexer's own SaveState-free design by scanning
// the parenthesized group once and replaying it as a param list when it
// is in fact followed by `=>`.
func (p *Parser) tryParseArrow() *cell.Cell {
	pos := p.cur.Pos

	if p.curIs(lexer.IDENT) && p.peekIs(lexer.ARROW) {
		name := p.cur.Literal
		p.next()
		p.next()
		param := cell.Node(cell.TagParam, cell.Node(cell.TagIdent, cell.Intern(name)), cell.Empty)
		body := p.parseArrowBody()
		return cell.Node(cell.TagLambda, cell.List(param), body).WithRef(pos)
	}

	if p.curIs(lexer.LPAREN) && p.looksLikeArrowParams() {
		params := p.parseParamList()
		if !p.curIs(lexer.ARROW) {
			p.addError("expected '=>' after parameter list")
		}
		p.next()
		body := p.parseArrowBody()
		return cell.Node(cell.TagLambda, params, body).WithRef(pos)
	}

	return nil
}

// looksLikeArrowParams scans ahead from a `(` using the lexer's token
// stream directly (bypassing the parser's 2-token buffer) to find the
// matching `)` and check whether `=>` follows. It restores nothing: the
// underlying lexer has no backtracking support, so instead we clone it.
func (p *Parser) looksLikeArrowParams() bool {
	// p.cur is the opening '(' (depth 1); p.peek is the next token the
	// parser already buffered, and clone resumes exactly where the
	// underlying lexer left off after producing p.peek.
	depth := 1
	tok := p.peek
	clone := p.l.Clone()
	for {
		switch tok.Type {
		case lexer.LPAREN:
			depth++
		case lexer.RPAREN:
			depth--
			if depth == 0 {
				next := clone.NextToken()
				return next.Type == lexer.ARROW
			}
		case lexer.EOF:
			return false
		}
		tok = clone.NextToken()
	}
}

func (p *Parser) parseArrowBody() *cell.Cell {
	if p.curIs(lexer.LBRACE) {
		return p.parseBlock()
	}
	expr := p.parseAssignExpr()
	return cell.Node(cell.TagReturn, expr)
}
