// Package parser builds the per-file schema tree from lexer tokens.
//
// Grammar (indentation in spaces is significant):
//
//	file     = [header] { include | domain }
//	header   = "version" NL  2:"major" NUMBER NL  2:"minor" NUMBER NL
//	include  = "include" PATH NL
//	domain   = [stab] "domain" NAME NL { 2:depends | 2:typedef | 2:member }
//	depends  = "depends" "on" NAME NL
//	typedef  = [stab] "type" NAME "extends" ["array" "of"] TYPE NL
//	           { 4:"enum" NL {6:LITERAL NL} | 4:"properties" NL {6:prop} | 4:"redirect" QNAME NL }
//	member   = [stab] ("command"|"event") NAME NL
//	           { 4:"parameters" NL {6:prop} | 4:"returns" NL {6:prop} | 4:"redirect" NAME NL }
//	prop     = [stab] ["optional"] ["array" "of"] TYPE NAME NL [ {8:LITERAL NL} ]
//	stab     = ["experimental"] ["deprecated"]
//
// Comment lines directly above an item become its description; a blank line
// in between discards them. The parser validates local shape only;
// references stay unresolved.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/pdlgen/internal/ir"
	"github.com/reoring/pdlgen/internal/lexer"
)

const (
	indentMember   = 2
	indentBlock    = 4
	indentItem     = 6
	indentLiteral  = 8
	headerIndent   = 2
	topLevelIndent = 0
)

// Error is a structural grammar violation.
type Error struct {
	File     string
	Line     int
	Expected string
	Found    string
}

func (e *Error) Error() string {
	pos := fmt.Sprintf("line %d", e.Line)
	if e.File != "" {
		pos = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	return fmt.Sprintf("parse: %s: expected %s, found %s", pos, e.Expected, e.Found)
}

func (e *Error) Code() string { return "parse_error" }

// line is one source line without its INDENT/NEWLINE tokens.
type line struct {
	indent  int
	toks    []lexer.Token
	num     int
	comment bool
	blank   bool
}

// Parser consumes the lines of one file.
type Parser struct {
	file  string
	lines []line
	pos   int
	desc  []string // pending description from comment lines
}

// Parse parses the token stream of one file.
func Parse(file string, tokens []lexer.Token) (*ir.File, error) {
	p := &Parser{file: file, lines: splitLines(tokens)}
	return p.parseFile()
}

// ParseText lexes and parses src.
func ParseText(file, src string) (*ir.File, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		var le *lexer.Error
		if errors.As(err, &le) {
			le.File = file
		}
		return nil, err
	}
	return Parse(file, toks)
}

func splitLines(tokens []lexer.Token) []line {
	var out []line
	var cur *line
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.INDENT:
			out = append(out, line{indent: tok.Width, num: tok.Line})
			cur = &out[len(out)-1]
		case lexer.NEWLINE:
			if cur == nil {
				out = append(out, line{num: tok.Line, blank: true})
			}
			cur = nil
		case lexer.EOF:
		default:
			if cur == nil {
				continue
			}
			if tok.Type == lexer.COMMENT {
				cur.comment = true
			}
			cur.toks = append(cur.toks, tok)
		}
	}
	return out
}

// peek returns the next non-comment line, collecting comment lines on the
// way into the pending description.
func (p *Parser) peek() (*line, bool) {
	for p.pos < len(p.lines) && (p.lines[p.pos].comment || p.lines[p.pos].blank) {
		if p.lines[p.pos].blank {
			p.desc = nil
		} else {
			p.desc = append(p.desc, p.lines[p.pos].toks[0].Lexeme)
		}
		p.pos++
	}
	if p.pos >= len(p.lines) {
		return nil, false
	}
	return &p.lines[p.pos], true
}

// advance consumes the current line. Any description not taken by the item
// on that line is dropped.
func (p *Parser) advance() {
	p.pos++
	p.desc = nil
}

func (p *Parser) takeDesc() string {
	d := strings.Join(p.desc, "\n")
	p.desc = nil
	return d
}

func (p *Parser) errorf(ln *line, expected, found string) error {
	num := 0
	if ln != nil {
		num = ln.num
	} else if len(p.lines) > 0 {
		num = p.lines[len(p.lines)-1].num
	}
	return &Error{File: p.file, Line: num, Expected: expected, Found: found}
}

// cursor walks the tokens of one line.
type cursor struct {
	ln  *line
	pos int
}

func (c *cursor) peek() (lexer.Token, bool) {
	if c.pos >= len(c.ln.toks) {
		return lexer.Token{Type: lexer.NEWLINE, Line: c.ln.num}, false
	}
	return c.ln.toks[c.pos], true
}

func (c *cursor) accept(tt lexer.TokenType) bool {
	if tok, ok := c.peek(); ok && tok.Type == tt {
		c.pos++
		return true
	}
	return false
}

func describe(tok lexer.Token, ok bool) string {
	if !ok {
		return "end of line"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

func (p *Parser) expect(c *cursor, tt lexer.TokenType) error {
	tok, ok := c.peek()
	if !ok || tok.Type != tt {
		return p.errorf(c.ln, fmt.Sprintf("%q", tt.String()), describe(tok, ok))
	}
	c.pos++
	return nil
}

// name consumes an identifier. Keywords are accepted in name position.
func (p *Parser) name(c *cursor, what string) (string, error) {
	tok, ok := c.peek()
	if !ok || (tok.Type != lexer.IDENT && !tok.Type.IsKeyword()) {
		return "", p.errorf(c.ln, what, describe(tok, ok))
	}
	c.pos++
	return tok.Lexeme, nil
}

func (p *Parser) end(c *cursor) error {
	if tok, ok := c.peek(); ok {
		return p.errorf(c.ln, "end of line", describe(tok, ok))
	}
	return nil
}

func (p *Parser) stability(c *cursor) ir.Flags {
	var f ir.Flags
	for {
		switch {
		case c.accept(lexer.EXPERIMENTAL):
			f.Experimental = true
		case c.accept(lexer.DEPRECATED):
			f.Deprecated = true
		default:
			return f
		}
	}
}

func (p *Parser) parseFile() (*ir.File, error) {
	f := &ir.File{Name: p.file}
	for {
		ln, ok := p.peek()
		if !ok {
			return f, nil
		}
		if ln.indent != topLevelIndent {
			return nil, p.errorf(ln, "top-level declaration", fmt.Sprintf("indentation %d", ln.indent))
		}
		c := &cursor{ln: ln}
		tok, _ := c.peek()
		switch tok.Type {
		case lexer.VERSION:
			if f.Version != nil {
				return nil, p.errorf(ln, "domain", "second version header")
			}
			v, err := p.parseVersion(c)
			if err != nil {
				return nil, err
			}
			f.Version = v
		case lexer.INCLUDE:
			c.pos++
			path, err := p.name(c, "include path")
			if err != nil {
				return nil, err
			}
			if err := p.end(c); err != nil {
				return nil, err
			}
			f.Includes = append(f.Includes, path)
			p.advance()
		default:
			d, err := p.parseDomain(c)
			if err != nil {
				return nil, err
			}
			f.Domains = append(f.Domains, d)
		}
	}
}

func (p *Parser) parseVersion(c *cursor) (*ir.Version, error) {
	c.pos++
	if err := p.end(c); err != nil {
		return nil, err
	}
	p.advance()
	v := &ir.Version{}
	for _, field := range []lexer.TokenType{lexer.MAJOR, lexer.MINOR} {
		ln, ok := p.peek()
		if !ok || ln.indent != headerIndent {
			return nil, p.errorf(ln, fmt.Sprintf("%q", field.String()), "end of version header")
		}
		lc := &cursor{ln: ln}
		if err := p.expect(lc, field); err != nil {
			return nil, err
		}
		tok, ok := lc.peek()
		if !ok || tok.Type != lexer.NUMBER {
			return nil, p.errorf(ln, "version number", describe(tok, ok))
		}
		lc.pos++
		if err := p.end(lc); err != nil {
			return nil, err
		}
		if field == lexer.MAJOR {
			v.Major = tok.Lexeme
		} else {
			v.Minor = tok.Lexeme
		}
		p.advance()
	}
	return v, nil
}

func (p *Parser) parseDomain(c *cursor) (*ir.Domain, error) {
	desc := p.takeDesc()
	flags := p.stability(c)
	if err := p.expect(c, lexer.DOMAIN); err != nil {
		return nil, err
	}
	name, err := p.name(c, "domain name")
	if err != nil {
		return nil, err
	}
	if err := p.end(c); err != nil {
		return nil, err
	}
	d := &ir.Domain{Name: name, Description: desc, Flags: flags, Pos: ir.Pos{File: p.file, Line: c.ln.num}}
	p.advance()

	for {
		ln, ok := p.peek()
		if !ok || ln.indent == topLevelIndent {
			return d, nil
		}
		if ln.indent != indentMember {
			return nil, p.errorf(ln, "domain member at indentation 2", fmt.Sprintf("indentation %d", ln.indent))
		}
		mc := &cursor{ln: ln}
		if mc.accept(lexer.DEPENDS) {
			if err := p.expect(mc, lexer.ON); err != nil {
				return nil, err
			}
			dep, err := p.name(mc, "domain name")
			if err != nil {
				return nil, err
			}
			if err := p.end(mc); err != nil {
				return nil, err
			}
			d.DependsOn = append(d.DependsOn, dep)
			p.advance()
			continue
		}
		desc := p.takeDesc()
		flags := p.stability(mc)
		tok, ok := mc.peek()
		switch {
		case ok && tok.Type == lexer.TYPE:
			t, err := p.parseType(mc, desc, flags)
			if err != nil {
				return nil, err
			}
			d.Types = append(d.Types, t)
		case ok && tok.Type == lexer.COMMAND:
			cmd, err := p.parseCommand(mc, desc, flags)
			if err != nil {
				return nil, err
			}
			d.Commands = append(d.Commands, cmd)
		case ok && tok.Type == lexer.EVENT:
			ev, err := p.parseEvent(mc, desc, flags)
			if err != nil {
				return nil, err
			}
			d.Events = append(d.Events, ev)
		default:
			return nil, p.errorf(ln, `"type", "command", "event" or "depends on"`, describe(tok, ok))
		}
	}
}

// typeSpec is the "[array of] TYPE" part of a declaration.
type typeSpec struct {
	array bool
	name  string
}

func (p *Parser) parseTypeSpec(c *cursor) (typeSpec, error) {
	var ts typeSpec
	if c.accept(lexer.ARRAY) {
		if err := p.expect(c, lexer.OF); err != nil {
			return ts, err
		}
		ts.array = true
	}
	name, err := p.name(c, "type name")
	if err != nil {
		return ts, err
	}
	ts.name = name
	return ts, nil
}

// node builds the schema for a type spec; enum literals come from the caller.
func (ts typeSpec) node(values []string) ir.Schema {
	var elem ir.Schema
	switch {
	case ts.name == "enum":
		elem = &ir.Enum{Values: values}
	case ir.IsPrimitive(ts.name):
		elem = &ir.Primitive{Name: ts.name}
	default:
		elem = &ir.Ref{Target: ir.ParseQName(ts.name)}
	}
	if ts.array {
		return &ir.Array{Items: elem}
	}
	return elem
}

func (p *Parser) parseType(c *cursor, desc string, flags ir.Flags) (*ir.TypeDef, error) {
	c.pos++ // type
	id, err := p.name(c, "type name")
	if err != nil {
		return nil, err
	}
	if err := p.expect(c, lexer.EXTENDS); err != nil {
		return nil, err
	}
	ts, err := p.parseTypeSpec(c)
	if err != nil {
		return nil, err
	}
	if err := p.end(c); err != nil {
		return nil, err
	}
	td := &ir.TypeDef{ID: id, Description: desc, Flags: flags, Pos: ir.Pos{File: p.file, Line: c.ln.num}}
	p.advance()

	var (
		values     []string
		hasEnum    bool
		properties []*ir.Property
		hasProps   bool
	)
	for {
		ln, ok := p.peek()
		if !ok || ln.indent <= indentMember {
			break
		}
		if ln.indent != indentBlock {
			return nil, p.errorf(ln, "type body at indentation 4", fmt.Sprintf("indentation %d", ln.indent))
		}
		bc := &cursor{ln: ln}
		tok, tokOK := bc.peek()
		switch {
		case bc.accept(lexer.ENUM):
			if err := p.end(bc); err != nil {
				return nil, err
			}
			if ts.name != ir.String || ts.array || hasEnum {
				return nil, p.errorf(ln, "enum only on a string type", "enum")
			}
			p.advance()
			hasEnum = true
			values, err = p.parseLiterals(indentItem)
			if err != nil {
				return nil, err
			}
		case bc.accept(lexer.PROPERTIES):
			if err := p.end(bc); err != nil {
				return nil, err
			}
			if ts.name != ir.FreeObject || ts.array || hasProps {
				return nil, p.errorf(ln, "properties only on an object type", "properties")
			}
			p.advance()
			hasProps = true
			properties, err = p.parseProperties()
			if err != nil {
				return nil, err
			}
		case bc.accept(lexer.REDIRECT):
			target, err := p.name(bc, "redirect target")
			if err != nil {
				return nil, err
			}
			if err := p.end(bc); err != nil {
				return nil, err
			}
			q := ir.ParseQName(target)
			if !q.Qualified() {
				q = ir.QName{Domain: target, Name: id}
			}
			td.Redirect = &q
			p.advance()
		default:
			return nil, p.errorf(ln, `"enum", "properties" or "redirect"`, describe(tok, tokOK))
		}
	}

	switch {
	case hasEnum:
		td.Type = &ir.Enum{Values: values}
	case hasProps:
		td.Type = &ir.Object{Properties: properties}
	default:
		td.Type = ts.node(nil)
	}
	return td, nil
}

func (p *Parser) parseCommand(c *cursor, desc string, flags ir.Flags) (*ir.Command, error) {
	c.pos++
	name, err := p.name(c, "command name")
	if err != nil {
		return nil, err
	}
	if err := p.end(c); err != nil {
		return nil, err
	}
	cmd := &ir.Command{Name: name, Description: desc, Flags: flags, Pos: ir.Pos{File: p.file, Line: c.ln.num}}
	p.advance()
	err = p.parseMemberBody(name, true, func(kind lexer.TokenType, props []*ir.Property) {
		if kind == lexer.PARAMETERS {
			cmd.Parameters = props
		} else {
			cmd.Returns = props
		}
	}, func(q ir.QName) { cmd.Redirect = &q })
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

func (p *Parser) parseEvent(c *cursor, desc string, flags ir.Flags) (*ir.Event, error) {
	c.pos++
	name, err := p.name(c, "event name")
	if err != nil {
		return nil, err
	}
	if err := p.end(c); err != nil {
		return nil, err
	}
	ev := &ir.Event{Name: name, Description: desc, Flags: flags, Pos: ir.Pos{File: p.file, Line: c.ln.num}}
	p.advance()
	err = p.parseMemberBody(name, false, func(_ lexer.TokenType, props []*ir.Property) {
		ev.Parameters = props
	}, func(q ir.QName) { ev.Redirect = &q })
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// parseMemberBody reads the parameters/returns/redirect blocks shared by
// commands and events.
func (p *Parser) parseMemberBody(member string, command bool, setProps func(lexer.TokenType, []*ir.Property), setRedirect func(ir.QName)) error {
	seen := map[lexer.TokenType]bool{}
	for {
		ln, ok := p.peek()
		if !ok || ln.indent <= indentMember {
			return nil
		}
		if ln.indent != indentBlock {
			return p.errorf(ln, "member body at indentation 4", fmt.Sprintf("indentation %d", ln.indent))
		}
		bc := &cursor{ln: ln}
		tok, tokOK := bc.peek()
		switch {
		case bc.accept(lexer.PARAMETERS), command && bc.accept(lexer.RETURNS):
			kind := tok.Type
			if err := p.end(bc); err != nil {
				return err
			}
			if seen[kind] {
				return p.errorf(ln, "a single "+kind.String()+" block", "a second one")
			}
			seen[kind] = true
			p.advance()
			props, err := p.parseProperties()
			if err != nil {
				return err
			}
			setProps(kind, props)
		case bc.accept(lexer.REDIRECT):
			target, err := p.name(bc, "redirect target")
			if err != nil {
				return err
			}
			if err := p.end(bc); err != nil {
				return err
			}
			q := ir.ParseQName(target)
			if !q.Qualified() {
				q = ir.QName{Domain: target, Name: member}
			}
			setRedirect(q)
			p.advance()
		default:
			want := `"parameters" or "redirect"`
			if command {
				want = `"parameters", "returns" or "redirect"`
			}
			return p.errorf(ln, want, describe(tok, tokOK))
		}
	}
}

func (p *Parser) parseProperties() ([]*ir.Property, error) {
	props := []*ir.Property{}
	for {
		ln, ok := p.peek()
		if !ok || ln.indent <= indentBlock {
			return props, nil
		}
		if ln.indent != indentItem {
			return nil, p.errorf(ln, "property at indentation 6", fmt.Sprintf("indentation %d", ln.indent))
		}
		prop, err := p.parseProperty(&cursor{ln: ln})
		if err != nil {
			return nil, err
		}
		props = append(props, prop)
	}
}

func (p *Parser) parseProperty(c *cursor) (*ir.Property, error) {
	prop := &ir.Property{Description: p.takeDesc(), Pos: ir.Pos{File: p.file, Line: c.ln.num}}
	for {
		switch {
		case c.accept(lexer.EXPERIMENTAL):
			prop.Experimental = true
			continue
		case c.accept(lexer.DEPRECATED):
			prop.Deprecated = true
			continue
		case c.accept(lexer.OPTIONAL):
			prop.Optional = true
			continue
		}
		break
	}
	ts, err := p.parseTypeSpec(c)
	if err != nil {
		return nil, err
	}
	name, err := p.name(c, "property name")
	if err != nil {
		return nil, err
	}
	if err := p.end(c); err != nil {
		return nil, err
	}
	prop.Name = name
	p.advance()

	var values []string
	if ts.name == "enum" {
		values, err = p.parseLiterals(indentLiteral)
		if err != nil {
			return nil, err
		}
	}
	prop.Type = ts.node(values)
	return prop, nil
}

// parseLiterals reads one-word lines at exactly indent.
func (p *Parser) parseLiterals(indent int) ([]string, error) {
	values := []string{}
	for {
		ln, ok := p.peek()
		if !ok || ln.indent < indent {
			return values, nil
		}
		if ln.indent != indent || len(ln.toks) != 1 {
			return nil, p.errorf(ln, fmt.Sprintf("enum literal at indentation %d", indent), fmt.Sprintf("%d tokens at indentation %d", len(ln.toks), ln.indent))
		}
		tok := ln.toks[0]
		switch {
		case tok.Type == lexer.IDENT, tok.Type == lexer.NUMBER, tok.Type.IsKeyword():
			values = append(values, tok.Lexeme)
		default:
			return nil, p.errorf(ln, "enum literal", describe(tok, true))
		}
		p.advance()
	}
}
