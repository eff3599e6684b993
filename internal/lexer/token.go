package lexer

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Layout
	INDENT  // leading spaces of a non-blank line; Width holds the count
	NEWLINE // end of a non-blank line

	// Literals
	COMMENT // "# text"; Lexeme holds the text without the marker
	IDENT   // names, qualified names, enum literals, include paths
	NUMBER  // decimal digits

	// Keywords
	VERSION
	MAJOR
	MINOR
	INCLUDE
	DOMAIN
	DEPENDS
	ON
	TYPE
	EXTENDS
	ARRAY
	OF
	COMMAND
	EVENT
	PARAMETERS
	RETURNS
	PROPERTIES
	ENUM
	EXPERIMENTAL
	DEPRECATED
	OPTIONAL
	REDIRECT
)

var tokenNames = map[TokenType]string{
	EOF:          "EOF",
	INDENT:       "INDENT",
	NEWLINE:      "NEWLINE",
	COMMENT:      "COMMENT",
	IDENT:        "IDENT",
	NUMBER:       "NUMBER",
	VERSION:      "version",
	MAJOR:        "major",
	MINOR:        "minor",
	INCLUDE:      "include",
	DOMAIN:       "domain",
	DEPENDS:      "depends",
	ON:           "on",
	TYPE:         "type",
	EXTENDS:      "extends",
	ARRAY:        "array",
	OF:           "of",
	COMMAND:      "command",
	EVENT:        "event",
	PARAMETERS:   "parameters",
	RETURNS:      "returns",
	PROPERTIES:   "properties",
	ENUM:         "enum",
	EXPERIMENTAL: "experimental",
	DEPRECATED:   "deprecated",
	OPTIONAL:     "optional",
	REDIRECT:     "redirect",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// IsKeyword reports whether t is a reserved word. Keywords remain valid in
// name position (a property may be called "type").
func (t TokenType) IsKeyword() bool {
	return t >= VERSION && t <= REDIRECT
}

// Token is a lexed token with its 1-based source line.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Width  int // INDENT only
}

func (t Token) String() string {
	switch t.Type {
	case INDENT:
		return fmt.Sprintf("INDENT(%d)", t.Width)
	case NEWLINE, EOF:
		return t.Type.String()
	default:
		return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
	}
}
