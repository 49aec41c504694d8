package parser

import (
	"strconv"

	"github.com/cellang/jsvm/internal/cell"
	"github.com/cellang/jsvm/internal/lexer"
)

// parseBindingTarget parses a destructuring target: a plain identifier, an
// array pattern `[a, , ...rest]`, or an object pattern
// `{a, b: c, ...rest}`. Defaults nested inside a pattern are captured as
// DefaultValue wrappers around the element.
func (p *Parser) parseBindingTarget() *cell.Cell {
	switch p.cur.Type {
	case lexer.LBRACKET:
		return p.parseArrayPattern()
	case lexer.LBRACE:
		return p.parseObjectPattern()
	default:
		pos := p.cur.Pos
		name := p.cur.Literal
		p.expect(lexer.IDENT)
		return cell.Node(cell.TagIdent, cell.Intern(name)).WithRef(pos)
	}
}

func (p *Parser) parseArrayPattern() *cell.Cell {
	pos := p.cur.Pos
	p.expect(lexer.LBRACKET)
	var elems []any
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		switch {
		case p.curIs(lexer.COMMA):
			elems = append(elems, cell.Node(cell.TagElision))
		case p.curIs(lexer.SPREAD):
			spos := p.cur.Pos
			p.next()
			elems = append(elems, cell.Node(cell.TagRestElement, p.parseBindingTarget()).WithRef(spos))
		default:
			target := p.parseBindingTarget()
			if p.accept(lexer.ASSIGN) {
				def := p.parseAssignExpr()
				target = cell.Node(cell.TagDefaultValue, target, def)
			}
			elems = append(elems, target)
		}
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	return cell.Node(cell.TagArrayPattern, elems...).WithRef(pos)
}

func (p *Parser) parseObjectPattern() *cell.Cell {
	pos := p.cur.Pos
	p.expect(lexer.LBRACE)
	var props []any
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SPREAD) {
			spos := p.cur.Pos
			p.next()
			name := p.cur.Literal
			p.expect(lexer.IDENT)
			props = append(props, cell.Node(cell.TagRestElement, cell.Node(cell.TagIdent, cell.Intern(name))).WithRef(spos))
			if !p.accept(lexer.COMMA) {
				break
			}
			continue
		}

		ppos := p.cur.Pos
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

		var value *cell.Cell
		if p.accept(lexer.COLON) {
			value = p.parseBindingTarget()
		} else {
			name, _ := key.AsString()
			value = cell.Node(cell.TagIdent, cell.Intern(name)).WithRef(ppos)
		}
		if p.accept(lexer.ASSIGN) {
			def := p.parseAssignExpr()
			value = cell.Node(cell.TagDefaultValue, value, def)
		}
		props = append(props, cell.Node(cell.TagProperty, key, value).WithRef(ppos))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE)
	return cell.Node(cell.TagObjectPattern, props...).WithRef(pos)
}
