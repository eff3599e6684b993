package lexer

import (
	"errors"
	"reflect"
	"testing"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []Token{{Type: EOF, Line: 1}},
		},
		{
			name:  "Domain header",
			input: "experimental domain DOM\n",
			expected: []Token{
				{Type: INDENT, Line: 1},
				{Type: EXPERIMENTAL, Lexeme: "experimental", Line: 1},
				{Type: DOMAIN, Lexeme: "domain", Line: 1},
				{Type: IDENT, Lexeme: "DOM", Line: 1},
				{Type: NEWLINE, Line: 1},
				{Type: EOF, Line: 2},
			},
		},
		{
			name:  "Indented property with qualified type",
			input: "      optional array of Page.FrameId frameIds",
			expected: []Token{
				{Type: INDENT, Line: 1, Width: 6},
				{Type: OPTIONAL, Lexeme: "optional", Line: 1},
				{Type: ARRAY, Lexeme: "array", Line: 1},
				{Type: OF, Lexeme: "of", Line: 1},
				{Type: IDENT, Lexeme: "Page.FrameId", Line: 1},
				{Type: IDENT, Lexeme: "frameIds", Line: 1},
				{Type: NEWLINE, Line: 1},
				{Type: EOF, Line: 1},
			},
		},
		{
			name:  "Comments keep their text",
			input: "  # Unique DOM node identifier.\n  #\n",
			expected: []Token{
				{Type: INDENT, Line: 1, Width: 2},
				{Type: COMMENT, Lexeme: "Unique DOM node identifier.", Line: 1},
				{Type: NEWLINE, Line: 1},
				{Type: INDENT, Line: 2, Width: 2},
				{Type: COMMENT, Lexeme: "", Line: 2},
				{Type: NEWLINE, Line: 2},
				{Type: EOF, Line: 3},
			},
		},
		{
			name:  "Blank lines and CRLF",
			input: "version\r\n\r\n  major 1\r\n",
			expected: []Token{
				{Type: INDENT, Line: 1},
				{Type: VERSION, Lexeme: "version", Line: 1},
				{Type: NEWLINE, Line: 1},
				{Type: NEWLINE, Line: 2},
				{Type: INDENT, Line: 3, Width: 2},
				{Type: MAJOR, Lexeme: "major", Line: 3},
				{Type: NUMBER, Lexeme: "1", Line: 3},
				{Type: NEWLINE, Line: 3},
				{Type: EOF, Line: 4},
			},
		},
		{
			name:  "Enum literals and include paths",
			input: "        first-line\ninclude domains/DOM.pdl\n",
			expected: []Token{
				{Type: INDENT, Line: 1, Width: 8},
				{Type: IDENT, Lexeme: "first-line", Line: 1},
				{Type: NEWLINE, Line: 1},
				{Type: INDENT, Line: 2},
				{Type: INCLUDE, Lexeme: "include", Line: 2},
				{Type: IDENT, Lexeme: "domains/DOM.pdl", Line: 2},
				{Type: NEWLINE, Line: 2},
				{Type: EOF, Line: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("Lex() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("Lex() mismatch\n got=%v\nwant=%v", got, tt.expected)
			}
		})
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{name: "Tab indentation", input: "domain A\n\ttype X extends string\n", line: 2},
		{name: "Unknown character", input: "domain A\n  type X extends string {\n", line: 2},
		{name: "Stray carriage return", input: "domain A\rB\n", line: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.input)
			if err == nil {
				t.Fatalf("Lex() expected error")
			}
			var le *Error
			if !errors.As(err, &le) {
				t.Fatalf("error = %T, want *Error", err)
			}
			if le.Line != tt.line {
				t.Fatalf("line = %d, want %d", le.Line, tt.line)
			}
			if le.Excerpt == "" {
				t.Fatalf("expected excerpt")
			}
		})
	}
}

func TestKeywordsAreClassified(t *testing.T) {
	for word, tt := range keywords {
		toks, err := Lex(word)
		if err != nil {
			t.Fatalf("Lex(%q) error = %v", word, err)
		}
		if toks[1].Type != tt || !tt.IsKeyword() {
			t.Fatalf("Lex(%q) = %v, want keyword %v", word, toks[1], tt)
		}
	}
}
