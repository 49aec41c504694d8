package parser

import (
	"strconv"

	"github.com/cellang/jsvm/internal/cell"
	"github.com/cellang/jsvm/internal/lexer"
)

func (p *Parser) parseClassDeclaration() *cell.Cell {
	cls := p.parseClassBody()
	nameCell, _ := cls.NodeArgs()[0], struct{}{}
	return cell.Node(cell.TagVar, nameCell, cls).WithRef(cls.Ref.Pos)
}

func (p *Parser) parseClassExpr() *cell.Cell {
	return p.parseClassBody()
}

// parseClassBody parses `class [Name] [extends Super] { members }` into
// (Class NameOrEmpty SuperOrEmpty member...).
func (p *Parser) parseClassBody() *cell.Cell {
	pos := p.cur.Pos
	p.expect(lexer.CLASS)

	var nameCell *cell.Cell = cell.Empty
	if p.curIs(lexer.IDENT) {
		nameCell = cell.Node(cell.TagIdent, cell.Intern(p.cur.Literal))
		p.next()
	}

	var super *cell.Cell = cell.Empty
	if p.accept(lexer.EXTENDS) {
		super = p.parseCallOrMember(p.parsePrimary())
	}

	p.expect(lexer.LBRACE)
	members := []any{nameCell, super}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if p.accept(lexer.SEMI) {
			continue
		}
		members = append(members, p.parseClassMember())
	}
	p.expect(lexer.RBRACE)

	return cell.Node(cell.TagClass, members...).WithRef(pos)
}

func (p *Parser) parseClassMember() *cell.Cell {
	pos := p.cur.Pos

	isStatic := false
	if p.curIs(lexer.STATIC) {
		if p.peekIs(lexer.LBRACE) {
			p.next()
			body := p.parseBlock()
			return cell.Node(cell.TagStaticBlock, body).WithRef(pos)
		}
		if !p.peekIs(lexer.LPAREN) && !p.peekIs(lexer.ASSIGN) {
			isStatic = true
			p.next()
		}
	}

	isGetter, isSetter := false, false
	if p.curIs(lexer.GET) && !p.peekIs(lexer.LPAREN) && !p.peekIs(lexer.ASSIGN) && !p.peekIs(lexer.SEMI) {
		isGetter = true
		p.next()
	} else if p.curIs(lexer.SET) && !p.peekIs(lexer.LPAREN) && !p.peekIs(lexer.ASSIGN) && !p.peekIs(lexer.SEMI) {
		isSetter = true
		p.next()
	}

	isAsync := false
	if p.curIs(lexer.ASYNC) && !p.peekIs(lexer.LPAREN) && !p.peekIs(lexer.ASSIGN) {
		isAsync = true
		p.next()
	}
	isGen := p.accept(lexer.STAR)

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
		return cell.Node(tag, key, params, body, staticFlag(isStatic)).WithRef(pos)
	}

	if p.curIs(lexer.LPAREN) {
		params, body := p.parseFunctionRest()
		flags := cell.Pair(isAsync, cell.Pair(isGen, cell.Pair(isStatic, cell.Empty)))
		return cell.Node(cell.TagMethod, key, params, body, flags).WithRef(pos)
	}

	// Class field: `key [= init];`
	var init *cell.Cell = cell.Empty
	if p.accept(lexer.ASSIGN) {
		init = p.parseAssignExpr()
	}
	p.semi()
	return cell.Node(cell.TagProperty, key, init, staticFlag(isStatic)).WithRef(pos)
}

func staticFlag(isStatic bool) *cell.Cell {
	return cell.Pair(isStatic, cell.Empty)
}
