package compiler

import (
	"strings"
	"testing"
)

func parseSource(t *testing.T, src string) (*Program, error) {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	return Parse(tokens, src)
}

func TestParseDeclaration(t *testing.T) {
	prog, err := parseSource(t, "int x = 1 + 2;")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*DeclareStmt)
	if !ok {
		t.Fatalf("expected *DeclareStmt, got %T", prog.Statements[0])
	}
	if decl.Name != "x" {
		t.Errorf("expected name x, got %q", decl.Name)
	}
	bin, ok := decl.Value.(*BinaryExpr)
	if !ok {
		t.Fatalf("expected *BinaryExpr, got %T", decl.Value)
	}
	if bin.Op != PLUS {
		t.Errorf("expected PLUS, got %v", bin.Op)
	}
}

func TestParsePrecedence(t *testing.T) {
	prog, err := parseSource(t, "int x = 1 + 2 * 3;")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	decl := prog.Statements[0].(*DeclareStmt)
	// Must parse as 1 + (2 * 3), not (1 + 2) * 3.
	if got := decl.Value.String(); got != "(1 '+' (2 '*' 3))" {
		t.Errorf("unexpected tree: %s", got)
	}
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	prog, err := parseSource(t, "int x = (1 + 2) * 3;")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	decl := prog.Statements[0].(*DeclareStmt)
	if got := decl.Value.String(); got != "((1 '+' 2) '*' 3)" {
		t.Errorf("unexpected tree: %s", got)
	}
}

func TestParsePrint(t *testing.T) {
	prog, err := parseSource(t, "int x = 5;\nPrint(x);")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	pr, ok := prog.Statements[1].(*PrintStmt)
	if !ok {
		t.Fatalf("expected *PrintStmt, got %T", prog.Statements[1])
	}
	if _, ok := pr.Value.(*VarRef); !ok {
		t.Errorf("expected *VarRef, got %T", pr.Value)
	}
}

func TestParseErrorsCarrySourceLine(t *testing.T) {
	tests := []string{
		"int = 5;",          // missing identifier
		"int x 5;",          // missing equals
		"int x = 5",         // missing semicolon
		"Print x;",          // missing parens
		"Print(x;",          // missing closing paren
		"x = 5;",            // not a statement
		"int x = ;",         // missing expression
		"int x = 1 + + 2;",  // dangling operator
	}
	for _, src := range tests {
		_, err := parseSource(t, src)
		if err == nil {
			t.Errorf("source %q: expected parse error", src)
			continue
		}
		if !strings.Contains(err.Error(), "line 1") {
			t.Errorf("source %q: error lacks line info: %v", src, err)
		}
	}
}
