package gen

import (
	"fmt"
	"slices"
	"sort"

	"github.com/reoring/pdlgen/internal/ir"
	"github.com/reoring/pdlgen/internal/resolve"
)

func (g *generator) typeDef(d *ir.Domain, t *ir.TypeDef) {
	owner := "type " + d.Name + "." + t.ID
	ident := g.ns.declare(qualified(d.Name, t.ID), owner)
	self := ir.QName{Domain: d.Name, Name: t.ID}.Key()

	g.line("")
	g.doc(t.Description, t.Flags, nil)
	var pending []func()
	switch n := t.Type.(type) {
	case *ir.Enum:
		g.enum(ident, n.Values, owner)
		return
	case *ir.Object:
		g.line("type %s struct {", ident)
		pending = g.fields(d, self, ident, n.Properties)
		g.line("}")
	case *ir.Ref, *ir.Primitive:
		expr, _ := g.expr(d, ident, "", t.Type, &pending)
		if g.aliased(t.Type) {
			g.line("type %s = %s", ident, expr)
		} else {
			g.line("type %s %s", ident, expr)
		}
	default:
		expr, _ := g.expr(d, ident, "Item", t.Type, &pending)
		g.line("type %s %s", ident, expr)
	}
	g.flush(pending)
}

// aliased reports whether a named type must be an alias to keep the JSON
// methods of its underlying type.
func (g *generator) aliased(s ir.Schema) bool {
	switch n := s.(type) {
	case *ir.Ref:
		return true
	case *ir.Primitive:
		switch n.Name {
		case ir.Any, ir.FreeObject, ir.Binary:
			return true
		}
	}
	return false
}

func (g *generator) enum(ident string, values []string, owner string) {
	g.line("type %s string", ident)
	if len(values) > 0 {
		g.line("")
		g.line("const (")
		for _, v := range values {
			c := g.ns.declare(ident+exported(v), fmt.Sprintf("%s variant %q", owner, v))
			g.line("%s %s = %q", c, ident, v)
		}
		g.line(")")
	}
	g.line("")
	g.line("// Valid reports whether v is a declared variant.")
	g.line("func (v %s) Valid() bool {", ident)
	if len(values) > 0 {
		g.line("switch v {")
		g.out.WriteString("case ")
		for i, v := range values {
			if i > 0 {
				g.out.WriteString(", ")
			}
			g.out.WriteString(ident + exported(v))
		}
		g.line(":")
		g.line("return true")
		g.line("}")
	}
	g.line("return false")
	g.line("}")
}

// fields writes struct fields and returns the inline type declarations they
// need. self is the owning typedef key, empty for parameter structs.
// fields emits one struct field per property. A property whose name
// matches one of methods gets a trailing underscore; exported never
// yields "_", so the result cannot meet another property.
func (g *generator) fields(d *ir.Domain, self, ownerIdent string, props []*ir.Property, methods ...string) []func() {
	var pending []func()
	wire := map[string]string{}
	for _, prop := range props {
		name := exported(prop.Name)
		if slices.Contains(methods, name) {
			name += "_"
		}
		if first, ok := wire[name]; ok {
			g.ns.errs = append(g.ns.errs, &IdentifierCollisionError{
				Ident:  ownerIdent + "." + name,
				First:  "property " + first,
				Second: "property " + prop.Name,
			})
			continue
		}
		wire[name] = prop.Name

		expr, nilable := g.expr(d, ownerIdent, prop.Name, prop.Type, &pending)
		switch {
		case prop.Optional && !nilable:
			expr = "*" + expr
		case !prop.Optional && g.indirect(d, self, prop.Type):
			expr = "*" + expr
		}
		tag := prop.Name
		if prop.Optional {
			tag += ",omitempty"
		}
		g.doc(prop.Description, prop.Flags, nil)
		g.line("%s %s `json:%q`", name, expr, tag)
	}
	return pending
}

func (g *generator) flush(pending []func()) {
	for len(pending) > 0 {
		fn := pending[0]
		pending = pending[1:]
		fn()
	}
}

// expr returns the Go type expression for s and whether its zero value is
// nil. Inline enums and objects become named types <owner><Prop>, declared
// by the functions appended to pending.
func (g *generator) expr(d *ir.Domain, ownerIdent, prop string, s ir.Schema, pending *[]func()) (string, bool) {
	switch n := s.(type) {
	case *ir.Primitive:
		return primitive(n.Name)
	case *ir.Ref:
		return qualified(n.Target.Domain, n.Target.Name), g.nilable(n.Target)
	case *ir.Array:
		elem, _ := g.expr(d, ownerIdent, prop, n.Items, pending)
		return "[]" + elem, true
	case *ir.Enum:
		ident := g.ns.declare(ownerIdent+exported(prop), "inline enum "+ownerIdent+"."+prop)
		*pending = append(*pending, func() {
			g.line("")
			g.line("// %s is the type of %s.%s.", ident, ownerIdent, prop)
			g.enum(ident, n.Values, "inline enum "+ownerIdent+"."+prop)
		})
		return ident, false
	case *ir.Object:
		ident := g.ns.declare(ownerIdent+exported(prop), "inline object "+ownerIdent+"."+prop)
		*pending = append(*pending, func() {
			g.line("")
			g.line("// %s is the type of %s.%s.", ident, ownerIdent, prop)
			g.line("type %s struct {", ident)
			inner := g.fields(d, "", ident, n.Properties)
			g.line("}")
			g.flush(inner)
		})
		return ident, false
	}
	return "codec.RawMessage", true
}

func primitive(name string) (string, bool) {
	switch name {
	case ir.Integer:
		return "int64", false
	case ir.Number:
		return "float64", false
	case ir.String:
		return "string", false
	case ir.Boolean:
		return "bool", false
	case ir.Binary:
		return "codec.Binary", true
	default:
		return "codec.RawMessage", true
	}
}

// nilable reports whether the named type q has a nil zero value.
func (g *generator) nilable(q ir.QName) bool {
	t, _ := g.cont.terminal(q)
	if t == nil {
		return false
	}
	switch n := t.Type.(type) {
	case *ir.Array:
		return true
	case *ir.Primitive:
		_, nilable := primitive(n.Name)
		return nilable
	}
	return false
}

// indirect reports whether a required field of type s must be a pointer:
// its target is a struct reached over a deferred cycle edge, or one that
// contains the owner by value.
func (g *generator) indirect(d *ir.Domain, self string, s ir.Schema) bool {
	ref, ok := s.(*ir.Ref)
	if !ok {
		return false
	}
	t, key := g.cont.terminal(ref.Target)
	if t == nil {
		return false
	}
	if _, ok := t.Type.(*ir.Object); !ok {
		return false
	}
	if g.res.Deferred(d.Name, ref.Target.Domain) {
		return true
	}
	return self != "" && g.cont.cyclic(self, key)
}

func (g *generator) command(d *ir.Domain, c *ir.Command) {
	owner := "command " + d.Name + "." + c.Name
	base := qualified(d.Name, c.Name)
	method := g.ns.declare("Method"+base, owner)
	params := g.ns.declare(base+"Params", owner)
	returns := g.ns.declare(base+"Returns", owner)

	g.line("")
	g.line("// %s is the dispatch string of %s.%s.", method, d.Name, c.Name)
	g.line("const %s = %q", method, d.Name+"."+c.Name)

	g.line("")
	g.line("// %s holds the parameters of %s.%s.", params, d.Name, c.Name)
	if c.Description != "" || c.Redirect != nil || c.Experimental || c.Deprecated {
		g.line("//")
		g.doc(c.Description, c.Flags, c.Redirect)
	}
	g.line("type %s struct {", params)
	pending := g.fields(d, "", params, c.Parameters, "Method", "Response")
	g.line("}")
	g.flush(pending)

	g.line("")
	g.line("// Method returns %s.", method)
	g.line("func (*%s) Method() string { return %s }", params, method)
	g.line("")
	g.line("// Response returns an empty %s to decode the result into.", returns)
	g.line("func (*%s) Response() *%s { return &%s{} }", params, returns, returns)

	g.line("")
	g.line("// %s is the result of %s.%s.", returns, d.Name, c.Name)
	g.line("type %s struct {", returns)
	pending = g.fields(d, "", returns, c.Returns)
	g.line("}")
	g.flush(pending)

	g.line("")
	g.line("var _ codec.Command[*%s] = (*%s)(nil)", returns, params)
}

func (g *generator) event(d *ir.Domain, e *ir.Event) {
	owner := "event " + d.Name + "." + e.Name
	base := qualified(d.Name, e.Name)
	method := g.ns.declare("Event"+base, owner)
	payload := g.ns.declare(base+"Event", owner)

	g.line("")
	g.line("// %s is the dispatch string of %s.%s.", method, d.Name, e.Name)
	g.line("const %s = %q", method, d.Name+"."+e.Name)

	g.line("")
	g.line("// %s is the payload of %s.%s.", payload, d.Name, e.Name)
	if e.Description != "" || e.Redirect != nil || e.Experimental || e.Deprecated {
		g.line("//")
		g.doc(e.Description, e.Flags, e.Redirect)
	}
	g.line("type %s struct {", payload)
	pending := g.fields(d, "", payload, e.Parameters, "Method")
	g.line("}")
	g.flush(pending)

	g.line("")
	g.line("// Method returns %s.", method)
	g.line("func (*%s) Method() string { return %s }", payload, method)

	g.events = append(g.events, [2]string{method, payload})
}

// containment finds struct typedefs that contain each other by value through
// required fields.
type containment struct {
	p    *ir.Protocol
	comp map[string]int
	size map[int]int
	self map[string]bool
}

func newContainment(p *ir.Protocol) *containment {
	c := &containment{p: p, comp: map[string]int{}, size: map[int]int{}, self: map[string]bool{}}
	var nodes []string
	succ := map[string][]string{}
	for _, d := range p.Domains {
		for _, t := range d.Types {
			obj, ok := t.Type.(*ir.Object)
			if !ok || t.Redirect != nil {
				continue
			}
			key := ir.QName{Domain: d.Name, Name: t.ID}.Key()
			nodes = append(nodes, key)
			seen := map[string]bool{}
			for _, prop := range obj.Properties {
				ref, ok := prop.Type.(*ir.Ref)
				if !ok || prop.Optional {
					continue
				}
				target, tk := c.terminal(ref.Target)
				if target == nil || seen[tk] {
					continue
				}
				if _, ok := target.Type.(*ir.Object); !ok {
					continue
				}
				seen[tk] = true
				succ[key] = append(succ[key], tk)
				if tk == key {
					c.self[key] = true
				}
			}
			sort.Slice(succ[key], func(i, j int) bool { return resolve.LexLess(succ[key][i], succ[key][j]) })
		}
	}
	for i, comp := range resolve.StronglyConnected(nodes, func(k string) []string { return succ[k] }) {
		c.size[i] = len(comp)
		for _, k := range comp {
			c.comp[k] = i
		}
	}
	return c
}

// terminal follows alias typedefs from q to the first non-alias definition.
func (c *containment) terminal(q ir.QName) (*ir.TypeDef, string) {
	for i := 0; i < 64; i++ {
		t := c.p.LookupType(q)
		if t == nil {
			return nil, ""
		}
		ref, ok := t.Type.(*ir.Ref)
		if !ok {
			return t, q.Key()
		}
		q = ref.Target
	}
	return nil, ""
}

func (c *containment) cyclic(a, b string) bool {
	ca, okA := c.comp[a]
	cb, okB := c.comp[b]
	if !okA || !okB || ca != cb {
		return false
	}
	return c.size[ca] > 1 || c.self[a]
}
