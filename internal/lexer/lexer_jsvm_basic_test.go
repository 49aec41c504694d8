package lexer

import "testing"

func TestNextTokenPunctuatorsAndKeywords(t *testing.T) {
	input := `let x = 5;
	x += 10;
	`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"let", LET},
		{"x", IDENT},
		{"=", ASSIGN},
		{"5", NUMBER},
		{";", SEMI},
		{"x", IDENT},
		{"+=", PLUS_ASSIGN},
		{"10", NUMBER},
		{";", SEMI},
		{"", EOF},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestCompoundAssignmentOperators(t *testing.T) {
	input := `a -= b *= c /= d %= e **= f`

	tests := []TokenType{IDENT, MINUS_ASSIGN, IDENT, STAR_ASSIGN, IDENT, SLASH_ASSIGN, IDENT, PERCENT_ASSIGN, IDENT, STARSTAR_ASSIGN, IDENT, EOF}

	l := New(input)
	for i, want := range tests {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s", i, want, tok.Type)
		}
	}
}

func TestOptionalChainingAndNullishCoalescing(t *testing.T) {
	input := `a?.b ?? c`
	tests := []struct {
		lit string
		typ TokenType
	}{
		{"a", IDENT},
		{"?.", OPTIONAL_CHAIN},
		{"b", IDENT},
		{"??", NULLISH},
		{"c", IDENT},
		{"", EOF},
	}
	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.typ || tok.Literal != tt.lit {
			t.Fatalf("tests[%d]: expected %s(%q), got %s(%q)", i, tt.typ, tt.lit, tok.Type, tok.Literal)
		}
	}
}

func TestRegexVsDivisionDisambiguation(t *testing.T) {
	// After `=`, a leading `/` must be lexed as a regex literal.
	l := New(`x = /ab+c/gi;`)
	l.NextToken() // x
	l.NextToken() // =
	tok := l.NextToken()
	if tok.Type != REGEX {
		t.Fatalf("expected REGEX token, got %s", tok.Type)
	}
	if tok.RegexBody != "ab+c" || tok.RegexFlags != "gi" {
		t.Fatalf("unexpected regex body/flags: %q/%q", tok.RegexBody, tok.RegexFlags)
	}

	// After an identifier, a leading `/` is division.
	l2 := New(`a / b`)
	l2.NextToken() // a
	tok2 := l2.NextToken()
	if tok2.Type != SLASH {
		t.Fatalf("expected SLASH token, got %s", tok2.Type)
	}
}

func TestTemplateLiteralChunks(t *testing.T) {
	l := New("`a${1+2}b`")
	tok := l.NextToken()
	if tok.Type != TEMPLATE {
		t.Fatalf("expected TEMPLATE token, got %s", tok.Type)
	}
	if len(tok.TemplateParts) != 3 {
		t.Fatalf("expected 3 template chunks, got %d: %+v", len(tok.TemplateParts), tok.TemplateParts)
	}
	if tok.TemplateParts[0].IsExpr || tok.TemplateParts[0].Cooked != "a" {
		t.Fatalf("unexpected first chunk: %+v", tok.TemplateParts[0])
	}
	if !tok.TemplateParts[1].IsExpr || tok.TemplateParts[1].Text != "1+2" {
		t.Fatalf("unexpected expr chunk: %+v", tok.TemplateParts[1])
	}
}

func TestUnterminatedStringProducesError(t *testing.T) {
	l := New(`"unterminated`)
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Fatalf("expected a lexer error for an unterminated string")
	}
}

func TestUnterminatedBlockCommentProducesError(t *testing.T) {
	l := New("/* never closed")
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Fatalf("expected a lexer error for an unterminated block comment")
	}
}
