// Package gen emits Go bindings for a resolved, filtered protocol.
//
// Output is one formatted Go file. Regenerating from the same inputs yields
// identical bytes: every ordering comes from declaration order or Order, and
// no map iteration or clock reaches the output.
package gen

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/reoring/pdlgen/internal/diag"
	"github.com/reoring/pdlgen/internal/ir"
	"github.com/reoring/pdlgen/internal/resolve"
)

// Header is the first line of every generated file.
const Header = "// Code generated by pdlgen. DO NOT EDIT."

// CodecImport is the import path of the runtime contract package.
const CodecImport = "github.com/reoring/pdlgen/codec"

// Options control emission.
type Options struct {
	// Package is the package clause; "cdp" when empty.
	Package string
	// Revision is emitted as const Revision when set.
	Revision string
}

// Generate renders p, the filtered copy of res.Protocol.
func Generate(res *resolve.Resolution, p *ir.Protocol, opts Options) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "cdp"
	}
	g := newGenerator(res, p)
	g.file(opts)
	if len(g.ns.errs) > 0 {
		return nil, diag.List(g.ns.errs).Err()
	}
	src, err := format.Source([]byte(g.out.String()))
	if err != nil {
		return nil, fmt.Errorf("gen: format output: %w", err)
	}
	return src, nil
}

type generator struct {
	res   *resolve.Resolution
	p     *ir.Protocol
	ns    *namespace
	out   strings.Builder
	cont  *containment
	order []*ir.Domain
	// events holds dispatch constant and payload type, in emission order.
	events [][2]string
}

func newGenerator(res *resolve.Resolution, p *ir.Protocol) *generator {
	return &generator{
		res:   res,
		p:     p,
		ns:    newNamespace(),
		cont:  newContainment(p),
		order: Order(res, p),
	}
}

func (g *generator) line(format string, args ...any) {
	fmt.Fprintf(&g.out, format+"\n", args...)
}

// doc writes a description as comment lines followed by stability notes.
func (g *generator) doc(desc string, flags ir.Flags, redirect *ir.QName) {
	var paras []string
	if desc = strings.TrimSpace(desc); desc != "" {
		paras = append(paras, desc)
	}
	if redirect != nil {
		paras = append(paras, fmt.Sprintf("Redirects to %s.", redirect))
	}
	if flags.Experimental {
		paras = append(paras, "Experimental.")
	}
	if flags.Deprecated {
		paras = append(paras, "Deprecated: marked deprecated in the protocol definition.")
	}
	for i, para := range paras {
		if i > 0 {
			g.line("//")
		}
		for _, l := range strings.Split(para, "\n") {
			g.line("// %s", strings.TrimRight(l, " "))
		}
	}
}

func (g *generator) file(opts Options) {
	g.line(Header)
	g.line("")
	if v := g.p.Version; v.Major != "" {
		g.line("// Package %s holds protocol bindings for version %s.%s.", opts.Package, v.Major, v.Minor)
	} else {
		g.line("// Package %s holds protocol bindings.", opts.Package)
	}
	g.line("package %s", opts.Package)
	g.line("")
	g.line("import %q", CodecImport)
	g.line("")
	g.line("// Protocol version the bindings were generated from.")
	g.line("const (")
	g.line("ProtocolMajor = %q", g.p.Version.Major)
	g.line("ProtocolMinor = %q", g.p.Version.Minor)
	g.line(")")
	if opts.Revision != "" {
		g.line("")
		g.line("// Revision is the browser revision of the protocol definition.")
		g.line("const Revision = %q", opts.Revision)
	}
	for _, d := range g.order {
		g.domain(d)
	}
	g.eventTable()
}

func (g *generator) domain(d *ir.Domain) {
	g.line("")
	g.line("// Domain %s.", d.Name)
	if d.Description != "" || d.Experimental || d.Deprecated {
		g.line("//")
		g.doc(d.Description, d.Flags, nil)
	}
	for _, t := range d.Types {
		if t.Redirect != nil {
			continue
		}
		g.typeDef(d, t)
	}
	for _, c := range d.Commands {
		g.command(d, c)
	}
	for _, e := range d.Events {
		g.event(d, e)
	}
}

func (g *generator) eventTable() {
	g.line("")
	g.line("// EventTypes maps an event dispatch string to a payload factory.")
	g.line("var EventTypes = map[string]func() codec.Event{")
	for _, ev := range g.events {
		g.line("%s: func() codec.Event { return new(%s) },", ev[0], ev[1])
	}
	g.line("}")
}
