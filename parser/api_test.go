package parser

import (
	"errors"
	"strings"
	"testing"
)

func TestParseStringProducesStatements(t *testing.T) {
	src := `
let answer = 41;
answer + 1;
`
	stmts, err := ParseString(src)
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected two statements, got %d", len(stmts))
	}
	let, ok := stmts[0].(*LetStmt)
	if !ok {
		t.Fatalf("expected let statement, got %T", stmts[0])
	}
	if let.Name.Lexeme != "answer" {
		t.Fatalf("expected let target answer, got %s", let.Name.Lexeme)
	}
	lit, ok := let.Init.(*LiteralExpr)
	if !ok || lit.Value.(float64) != 41 {
		t.Fatalf("expected answer initializer 41, got %v", let.Init)
	}
}

func TestParseStringPropagatesSyntaxErrors(t *testing.T) {
	if _, err := ParseString("let = 1;"); err == nil || !strings.Contains(err.Error(), "expected variable name") {
		t.Fatalf("expected syntax error for malformed let declaration, got %v", err)
	}
}

func TestParseStringCombinesLexerAndParserErrors(t *testing.T) {
	_, err := ParseString("let a = @;")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	got := perr.Diagnostics()
	if len(got) != 2 {
		t.Fatalf("expected lexer and parser diagnostics, got %v", err)
	}
	if got[0].Kind.String() != "LexerError" || got[1].Kind.String() != "SyntaxError" {
		t.Fatalf("unexpected kinds %s, %s", got[0].Kind, got[1].Kind)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestParseReaderHandlesIOReturns(t *testing.T) {
	if _, err := ParseReader(failingReader{}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected underlying IO error, got %v", err)
	}

	stmts, err := ParseReader(strings.NewReader("let value = 5; value;"))
	if err != nil {
		t.Fatalf("ParseReader returned error: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected two statements from reader, got %d", len(stmts))
	}
}
