// Package ir defines the schema model shared by the compiler stages. The
// parser builds it, the merger combines it, and everything from the resolver
// onward treats it as read-only except the filter, which prunes a Clone.
// This package is internal and not part of the public API.
package ir

import (
	"fmt"
	"strings"
)

// NodeKind identifies an IR node type.
type NodeKind int

const (
	NodePrimitive NodeKind = iota
	NodeEnum
	NodeObject
	NodeArray
	NodeRef
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeEnum:
		return "enum"
	case NodeObject:
		return "object"
	case NodeArray:
		return "array"
	case NodeRef:
		return "ref"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Schema is the type node interface.
type Schema interface {
	Kind() NodeKind
}

// Primitive names (PDL spelling).
const (
	Integer = "integer"
	Number  = "number"
	String  = "string"
	Boolean = "boolean"
	Any     = "any"
	Binary  = "binary"
	// FreeObject is an "object" without declared properties.
	FreeObject = "object"
)

// IsPrimitive reports whether name is a PDL builtin scalar (or free object).
func IsPrimitive(name string) bool {
	switch name {
	case Integer, Number, String, Boolean, Any, Binary, FreeObject:
		return true
	}
	return false
}

// Primitive represents integer/number/string/boolean/any/binary and
// free-form objects.
type Primitive struct {
	Name string
}

func (p *Primitive) Kind() NodeKind { return NodePrimitive }

// Enum is a closed set of string variants, in declaration order.
type Enum struct {
	Values []string
}

func (e *Enum) Kind() NodeKind { return NodeEnum }

// Object is a record with ordered properties.
type Object struct {
	Properties []*Property
}

func (o *Object) Kind() NodeKind { return NodeObject }

// Array represents an array of items.
type Array struct {
	Items Schema
}

func (a *Array) Kind() NodeKind { return NodeArray }

// Ref points at another TypeDef. Target.Domain is empty until resolution
// when the schema text used an unqualified name.
type Ref struct {
	Target QName
}

func (r *Ref) Kind() NodeKind { return NodeRef }

// QName is a (domain, local name) pair.
type QName struct {
	Domain string
	Name   string
}

// ParseQName splits "Domain.Name". A name without a dot is unqualified.
func ParseQName(s string) QName {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return QName{Domain: s[:i], Name: s[i+1:]}
	}
	return QName{Name: s}
}

// Qualified reports whether the domain part is present.
func (q QName) Qualified() bool { return q.Domain != "" }

func (q QName) String() string {
	if q.Domain == "" {
		return q.Name
	}
	return q.Domain + "." + q.Name
}

// Key is the case-insensitive lookup key "domain.name".
func (q QName) Key() string { return strings.ToLower(q.String()) }

// Flags carries the stability tier of a definition.
type Flags struct {
	Experimental bool
	Deprecated   bool
}

// Pos is a source position.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("line %d", p.Line)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Property is a named member of an object, parameter list or return list.
// Name is the exact wire key.
type Property struct {
	Name        string
	Description string
	Flags
	Optional bool
	Type     Schema
	Pos      Pos
}

// TypeDef is a named type in a domain. A non-nil Redirect turns it into an
// alias: nothing is emitted and references are rewritten to the target.
type TypeDef struct {
	ID          string
	Description string
	Flags
	Type     Schema
	Redirect *QName
	Pos      Pos
}

// Command is a request/response pair.
type Command struct {
	Name        string
	Description string
	Flags
	Parameters []*Property
	Returns    []*Property
	Redirect   *QName
	Pos        Pos
}

// Event is a notification payload.
type Event struct {
	Name        string
	Description string
	Flags
	Parameters []*Property
	Redirect   *QName
	Pos        Pos
}

// Domain groups types, commands and events.
type Domain struct {
	Name        string
	Description string
	Flags
	DependsOn []string
	Types     []*TypeDef
	Commands  []*Command
	Events    []*Event
	Pos       Pos
}

// Type returns the TypeDef with the given id or nil.
func (d *Domain) Type(id string) *TypeDef {
	for _, t := range d.Types {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Command returns the command with the given name or nil.
func (d *Domain) Command(name string) *Command {
	for _, c := range d.Commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Event returns the event with the given name or nil.
func (d *Domain) Event(name string) *Event {
	for _, e := range d.Events {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Version is the protocol version header.
type Version struct {
	Major string
	Minor string
}

// File is one parsed schema document.
type File struct {
	Name     string
	Version  *Version
	Includes []string
	Domains  []*Domain
}

// Protocol is the merged symbol space of all input files.
type Protocol struct {
	Version Version
	Domains []*Domain
}

// Domain returns the domain named name (case-insensitive) or nil.
func (p *Protocol) Domain(name string) *Domain {
	for _, d := range p.Domains {
		if strings.EqualFold(d.Name, name) {
			return d
		}
	}
	return nil
}

// LookupType returns the TypeDef for a qualified name or nil.
func (p *Protocol) LookupType(q QName) *TypeDef {
	d := p.Domain(q.Domain)
	if d == nil {
		return nil
	}
	return d.Type(q.Name)
}
