package compiler

import (
	"fmt"
	"unicode"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"int":   INT,
	"Print": PRINT,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

// Lex scans src into a flat token slice, without an EOF terminator.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

func (l *Lexer) next() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.src) {
		return Token{Type: EOF, Line: l.line}, nil
	}

	line := l.line
	r := l.peek()

	switch {
	case unicode.IsLetter(r) || r == '_':
		return l.scanIdentifier(), nil
	case unicode.IsDigit(r):
		return l.scanNumber(), nil
	}

	l.advance()
	switch r {
	case '=':
		return Token{Type: EQUALS, Lexeme: "=", Line: line}, nil
	case ';':
		return Token{Type: SEMICOLON, Lexeme: ";", Line: line}, nil
	case '(':
		return Token{Type: LPAREN, Lexeme: "(", Line: line}, nil
	case ')':
		return Token{Type: RPAREN, Lexeme: ")", Line: line}, nil
	case '+':
		return Token{Type: PLUS, Lexeme: "+", Line: line}, nil
	case '-':
		return Token{Type: MINUS, Lexeme: "-", Line: line}, nil
	case '*':
		return Token{Type: STAR, Lexeme: "*", Line: line}, nil
	case '/':
		return Token{Type: SLASH, Lexeme: "/", Line: line}, nil
	}

	return Token{}, fmt.Errorf("line %d: unexpected character %q", line, r)
}

func (l *Lexer) scanIdentifier() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && (unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) || l.peek() == '_') {
		l.advance()
	}
	text := string(l.src[start:l.pos])
	if kw, ok := keywords[text]; ok {
		return Token{Type: kw, Lexeme: text, Line: line}
	}
	return Token{Type: IDENTIFIER, Lexeme: text, Line: line}
}

func (l *Lexer) scanNumber() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	return Token{Type: INTEGER, Lexeme: string(l.src[start:l.pos]), Line: line}
}
