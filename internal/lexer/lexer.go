// Package lexer turns PDL text into a line-oriented token stream.
//
// Every non-blank line produces INDENT, its content tokens and NEWLINE; a
// blank line produces a bare NEWLINE.
// Indentation is significant to the parser, so it is measured here and tabs
// are rejected rather than guessed at.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"version":      VERSION,
	"major":        MAJOR,
	"minor":        MINOR,
	"include":      INCLUDE,
	"domain":       DOMAIN,
	"depends":      DEPENDS,
	"on":           ON,
	"type":         TYPE,
	"extends":      EXTENDS,
	"array":        ARRAY,
	"of":           OF,
	"command":      COMMAND,
	"event":        EVENT,
	"parameters":   PARAMETERS,
	"returns":      RETURNS,
	"properties":   PROPERTIES,
	"enum":         ENUM,
	"experimental": EXPERIMENTAL,
	"deprecated":   DEPRECATED,
	"optional":     OPTIONAL,
	"redirect":     REDIRECT,
}

// Error reports an unrecognised character.
type Error struct {
	File    string // set by callers that know it
	Line    int
	Excerpt string
	Reason  string
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("lex: %s:%d: %s\n  |> %s", e.File, e.Line, e.Reason, e.Excerpt)
	}
	return fmt.Sprintf("lex: line %d: %s\n  |> %s", e.Line, e.Reason, e.Excerpt)
}

func (e *Error) Code() string { return "lex_error" }

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	out  []Token
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1}
}

// Lex scans src completely.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	for l.pos < len(l.src) {
		if err := l.scanLine(); err != nil {
			return nil, err
		}
	}
	l.out = append(l.out, Token{Type: EOF, Line: l.line})
	return l.out, nil
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) atEOL() bool {
	r := l.peek()
	return l.pos >= len(l.src) || r == '\n' || (r == '\r' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '\n') || (r == '\r' && l.pos+1 == len(l.src))
}

// excerpt returns the trimmed text of the current line.
func (l *Lexer) excerpt() string {
	start := l.pos
	for start > 0 && l.src[start-1] != '\n' {
		start--
	}
	end := l.pos
	for end < len(l.src) && l.src[end] != '\n' {
		end++
	}
	return strings.TrimSpace(string(l.src[start:end]))
}

func (l *Lexer) fail(format string, args ...any) error {
	return &Error{Line: l.line, Excerpt: l.excerpt(), Reason: fmt.Sprintf(format, args...)}
}

// scanLine consumes one physical line including its terminator.
func (l *Lexer) scanLine() error {
	width := 0
	for l.peek() == ' ' {
		l.pos++
		width++
	}
	if l.peek() == '\t' {
		return l.fail("tab in indentation")
	}
	if l.atEOL() {
		// Blank lines carry no content but end a description block.
		l.out = append(l.out, Token{Type: NEWLINE, Line: l.line})
		l.endLine()
		return nil
	}

	line := l.line
	l.out = append(l.out, Token{Type: INDENT, Line: line, Width: width})
	if l.peek() == '#' {
		l.pos++
		start := l.pos
		for !l.atEOL() {
			l.pos++
		}
		text := strings.TrimRight(string(l.src[start:l.pos]), " \r")
		text = strings.TrimPrefix(text, " ")
		l.out = append(l.out, Token{Type: COMMENT, Lexeme: text, Line: line})
		l.out = append(l.out, Token{Type: NEWLINE, Line: line})
		l.endLine()
		return nil
	}

	for !l.atEOL() {
		r := l.peek()
		switch {
		case r == ' ':
			l.pos++
		case isWordRune(r):
			l.out = append(l.out, l.scanWord())
		default:
			return l.fail("unexpected character %q", r)
		}
	}
	l.out = append(l.out, Token{Type: NEWLINE, Line: line})
	l.endLine()
	return nil
}

// endLine consumes "\n" or "\r\n" and advances the line counter.
func (l *Lexer) endLine() {
	if l.peek() == '\r' {
		l.pos++
	}
	if l.peek() == '\n' {
		l.pos++
		l.line++
	}
}

// scanWord collects an identifier, number or keyword. The first rune must
// still be at l.peek().
func (l *Lexer) scanWord() Token {
	start := l.pos
	for l.pos < len(l.src) && isWordRune(l.peek()) {
		l.pos++
	}
	lexeme := string(l.src[start:l.pos])
	if kw, ok := keywords[lexeme]; ok {
		return Token{Type: kw, Lexeme: lexeme, Line: l.line}
	}
	if isDigits(lexeme) {
		return Token{Type: NUMBER, Lexeme: lexeme, Line: l.line}
	}
	return Token{Type: IDENT, Lexeme: lexeme, Line: l.line}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' || r == '/'
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
