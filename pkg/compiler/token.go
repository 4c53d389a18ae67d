package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable name
	INTEGER    // decimal integer literal

	// Keywords
	INT   // "int"
	PRINT // "Print"

	// Punctuation
	EQUALS    // =
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )

	// Operators
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /
)

var tokenNames = map[TokenType]string{
	EOF:        "EOF",
	IDENTIFIER: "identifier",
	INTEGER:    "integer",
	INT:        "'int'",
	PRINT:      "'Print'",
	EQUALS:     "'='",
	SEMICOLON:  "';'",
	LPAREN:     "'('",
	RPAREN:     "')'",
	PLUS:       "'+'",
	MINUS:      "'-'",
	STAR:       "'*'",
	SLASH:      "'/'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one lexical unit of the source text.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int // 1-based source line
}
