package parser

import (
	"testing"

	"github.com/cellang/jsvm/internal/cell"
	"github.com/cellang/jsvm/internal/lexer"
)

func testParser(input string) *Parser {
	return New(lexer.New(input))
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errs := p.Errors()
	if len(errs) == 0 {
		return
	}
	t.Errorf("parser has %d error(s)", len(errs))
	for _, e := range errs {
		t.Errorf("parser error: %s", e)
	}
}

func TestParseLetDeclaration(t *testing.T) {
	p := testParser(`let x = 1 + 2;`)
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmts := program.NodeArgs()
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}

	letNode := stmts[0]
	if !letNode.Is(cell.TagLet) {
		t.Fatalf("expected Let node, got %s", letNode.HeadSymbol())
	}
}

func TestParseIfElse(t *testing.T) {
	p := testParser(`if (x) { y(); } else { z(); }`)
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmts := program.NodeArgs()
	if len(stmts) != 1 || !stmts[0].Is(cell.TagIf) {
		t.Fatalf("expected a single If node, got %#v", stmts)
	}
	args := stmts[0].NodeArgs()
	if len(args) != 3 {
		t.Fatalf("expected If(cond, then, else), got %d args", len(args))
	}
}

func TestParseArrowFunction(t *testing.T) {
	p := testParser(`const add = (a, b) => a + b;`)
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmts := program.NodeArgs()
	if len(stmts) != 1 || !stmts[0].Is(cell.TagConst) {
		t.Fatalf("expected Const node, got %#v", stmts)
	}
}

func TestParseClassWithMethod(t *testing.T) {
	p := testParser(`class Point { constructor(x) { this.x = x; } getX() { return this.x; } }`)
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmts := program.NodeArgs()
	if len(stmts) != 1 || !stmts[0].Is(cell.TagVar) || !stmts[0].Nth(1).Is(cell.TagClass) {
		t.Fatalf("expected (Var name (Class ...)) node, got %#v", stmts)
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	p := testParser(`try { risky(); } catch (e) { handle(e); } finally { cleanup(); }`)
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmts := program.NodeArgs()
	if len(stmts) != 1 || !stmts[0].Is(cell.TagTry) {
		t.Fatalf("expected Try node, got %#v", stmts)
	}
}

func TestParseDestructuringAssignment(t *testing.T) {
	p := testParser(`const { a, b: c } = obj;`)
	program := p.ParseProgram()
	checkParserErrors(t, p)

	if len(program.NodeArgs()) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.NodeArgs()))
	}
}

func TestParseTemplateLiteral(t *testing.T) {
	p := testParser("let s = `hello ${name}!`;")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	if len(program.NodeArgs()) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.NodeArgs()))
	}
}

func TestParseErrorOnUnexpectedToken(t *testing.T) {
	p := testParser(`let = ;`)
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected parse errors for malformed let declaration")
	}
}

func TestProgramStringRoundTripsStructure(t *testing.T) {
	p := testParser(`1 + 2;`)
	program := p.ParseProgram()
	checkParserErrors(t, p)

	s := program.String()
	if s == "" {
		t.Fatalf("expected a non-empty printed AST")
	}
}
