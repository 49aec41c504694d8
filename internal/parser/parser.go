// Package parser implements a recursive-descent, one-token-lookahead
// parser that turns a token stream into the cons-cell AST defined by
// package cell.
package parser

import (
	"fmt"

	"github.com/cellang/jsvm/internal/cell"
	"github.com/cellang/jsvm/internal/lexer"
)

// ParseError is a single parse error with position information.
type ParseError struct {
	Message string
	Pos     lexer.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// Parser consumes a token stream from a Lexer and produces a cell.Cell
// AST. It buffers a small lookahead window to support backtracking-free
// decisions (e.g. arrow-function detection).
type Parser struct {
	l *lexer.Lexer

	cur  lexer.Token
	peek lexer.Token

	errors []*ParseError
}

// New creates a Parser reading tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Errors returns all parse errors accumulated so far, plus any lexical
// errors surfaced by the underlying lexer.
func (p *Parser) Errors() []*ParseError {
	errs := append([]*ParseError{}, p.errors...)
	for _, le := range p.l.Errors() {
		errs = append(errs, &ParseError{Message: le.Message, Pos: le.Pos})
	}
	return errs
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{Message: msg, Pos: p.cur.Pos})
}

func (p *Parser) addErrorAt(msg string, pos lexer.Position) {
	p.errors = append(p.errors, &ParseError{Message: msg, Pos: pos})
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

// expect consumes the current token if it matches t, reporting an error
// and not advancing otherwise. Returns the (possibly stale) token.
func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	tok := p.cur
	if p.cur.Type != t {
		p.addError(fmt.Sprintf("expected %s, got %s (%q)", t, p.cur.Type, p.cur.Literal))
		return tok
	}
	p.next()
	return tok
}

// accept consumes the current token if it matches t and reports whether
// it did, without emitting an error when it doesn't.
func (p *Parser) accept(t lexer.TokenType) bool {
	if p.cur.Type == t {
		p.next()
		return true
	}
	return false
}

// semi consumes an optional trailing `;` (ASI is approximated by simply
// treating the semicolon as optional before `}` / EOF / a newline-started
// token; the lexer does not track newlines across tokens beyond this, so
// the parser is permissive here rather than fully implementing ASI).
func (p *Parser) semi() {
	p.accept(lexer.SEMI)
}

// ParseProgram parses an entire source file into a (Program stmt...) cell.
func (p *Parser) ParseProgram() *cell.Cell {
	pos := p.cur.Pos
	var stmts []any
	for !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		} else {
			// Avoid an infinite loop on unrecoverable tokens.
			p.next()
		}
	}
	return cell.Node(cell.TagProgram, stmts...).WithRef(pos)
}

// Parse is the package-level convenience entry point: lex + parse a
// complete program from source text.
func Parse(source string) (*cell.Cell, []*ParseError) {
	p := New(lexer.New(source))
	prog := p.ParseProgram()
	return prog, p.Errors()
}
