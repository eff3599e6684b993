// Package resolve binds every type reference of a merged protocol to its
// definition, chases redirects, and decides which cross-domain dependency
// cycles may compile.
//
// Domains that reference each other form strongly-connected components of the
// domain graph. A component compiles only when every edge inside it is made
// of allow-listed (referrer, target) pairs; such edges are reported as
// deferred and the generator breaks them with pointer indirection.
package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/reoring/pdlgen/allowlist"
	"github.com/reoring/pdlgen/internal/diag"
	"github.com/reoring/pdlgen/internal/ir"
)

// UnresolvedError reports a reference or redirect whose target does not exist.
type UnresolvedError struct {
	Kind     string // "type", "command" or "event"
	Domain   string // as written; empty for an unqualified reference
	Name     string
	Referrer string
	Pos      ir.Pos
}

func (e *UnresolvedError) Error() string {
	target := ir.QName{Domain: e.Domain, Name: e.Name}
	return fmt.Sprintf("unresolved %s %s referenced by %s at %s", e.Kind, target, e.Referrer, e.Pos)
}

func (e *UnresolvedError) Code() string { return "unresolved_type" }

// RedirectCycleError reports a redirect chain that returns to itself. Chain
// starts and ends with the same name.
type RedirectCycleError struct {
	Kind  string
	Chain []string
}

func (e *RedirectCycleError) Error() string {
	return fmt.Sprintf("%s redirect cycle: %s", e.Kind, strings.Join(e.Chain, " -> "))
}

func (e *RedirectCycleError) Code() string { return "redirect_cycle" }

// CircularError reports a dependency cycle with at least one edge that is
// not allow-listed. Path starts with that edge and returns to its origin;
// Refs lists the references on the first edge the allow-list rejected.
type CircularError struct {
	Path []string
	Refs []RefPair
}

func (e *CircularError) Error() string {
	refs := make([]string, 0, len(e.Refs))
	for _, r := range e.Refs {
		refs = append(refs, r.String())
	}
	return fmt.Sprintf("circular dependency: %s (not allow-listed: %s)", strings.Join(e.Path, " -> "), strings.Join(refs, ", "))
}

func (e *CircularError) Code() string { return "circular_dependency" }

// Resolution is the outcome of a successful Resolve.
type Resolution struct {
	// Protocol is a copy of the input with every reference rewritten to its
	// canonical, fully-qualified terminus.
	Protocol *ir.Protocol
	Graph    *Graph
	// Components are the strongly-connected components, each sorted, ordered
	// by first member.
	Components [][]string
	Warnings   *diag.Warnings

	component map[string]int
	deferred  map[[2]string]bool
}

// Deferred reports whether the edge from->to lies on an allow-listed cycle.
func (r *Resolution) Deferred(from, to string) bool {
	return r.deferred[[2]string{strings.ToLower(from), strings.ToLower(to)}]
}

// Component returns the index into Components of the domain, or -1.
func (r *Resolution) Component(domain string) int {
	if i, ok := r.component[strings.ToLower(domain)]; ok {
		return i
	}
	return -1
}

// aliasResult memoizes the terminus of a type redirect chain.
type aliasResult struct {
	target ir.QName
	ok     bool
}

type resolver struct {
	p       *ir.Protocol
	allow   *allowlist.List
	graph   *Graph
	aliases map[string]aliasResult
	members map[string]aliasResult
	warn    *diag.Warnings
	errs    diag.List
}

// Resolve resolves a copy of p. All unresolved references, redirect cycles
// and rejected dependency cycles are reported together.
func Resolve(p *ir.Protocol, allow *allowlist.List) (*Resolution, error) {
	cp := p.Clone()
	names := make([]string, 0, len(cp.Domains))
	for _, d := range cp.Domains {
		names = append(names, d.Name)
	}
	r := &resolver{
		p:       cp,
		allow:   allow,
		graph:   newGraph(names),
		aliases: map[string]aliasResult{},
		members: map[string]aliasResult{},
		warn:    &diag.Warnings{},
	}
	for _, d := range cp.Domains {
		r.domain(d)
	}
	r.aliasCycles()
	res := &Resolution{
		Protocol:  cp,
		Graph:     r.graph,
		Warnings:  r.warn,
		component: map[string]int{},
		deferred:  map[[2]string]bool{},
	}
	res.Components = r.graph.components()
	for i, comp := range res.Components {
		for _, d := range comp {
			res.component[strings.ToLower(d)] = i
		}
		if len(comp) > 1 {
			r.cycle(comp, res.deferred)
		}
	}
	r.dependsOn()
	if err := r.errs.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// aliasCycles reports type definitions that alias one another in a loop
// and so never reach a concrete shape. It runs after references are
// rewritten to their canonical definitions.
func (r *resolver) aliasCycles() {
	done := map[string]bool{}
	for _, d := range r.p.Domains {
		for _, t := range d.Types {
			var (
				chain []string
				seen  = map[string]int{}
				cur   = ir.QName{Domain: d.Name, Name: t.ID}
				def   = t
			)
			for def != nil && def.Redirect == nil {
				key := cur.Key()
				if done[key] {
					break
				}
				if i, loop := seen[key]; loop {
					names := append(slices.Clone(chain[i:]), cur.String())
					r.errs = append(r.errs, &RedirectCycleError{Kind: "alias", Chain: names})
					break
				}
				seen[key] = len(chain)
				chain = append(chain, cur.String())
				ref, ok := def.Type.(*ir.Ref)
				if !ok {
					break
				}
				cur = ref.Target
				def = r.p.LookupType(cur)
			}
			for key := range seen {
				done[key] = true
			}
		}
	}
}

func (r *resolver) domain(d *ir.Domain) {
	for _, t := range d.Types {
		self := ir.QName{Domain: d.Name, Name: t.ID}
		if t.Redirect != nil {
			r.chaseType(self)
			continue
		}
		r.schema(t.Type, d, self, t.Pos)
	}
	for _, c := range d.Commands {
		self := ir.QName{Domain: d.Name, Name: c.Name}
		r.props(c.Parameters, d, self)
		r.props(c.Returns, d, self)
		if c.Redirect != nil {
			if q, ok := r.chaseMember("command", self); ok {
				c.Redirect = &q
			}
		}
	}
	for _, e := range d.Events {
		self := ir.QName{Domain: d.Name, Name: e.Name}
		r.props(e.Parameters, d, self)
		if e.Redirect != nil {
			if q, ok := r.chaseMember("event", self); ok {
				e.Redirect = &q
			}
		}
	}
}

func (r *resolver) props(ps []*ir.Property, owner *ir.Domain, referrer ir.QName) {
	for _, p := range ps {
		r.schema(p.Type, owner, referrer, p.Pos)
	}
}

func (r *resolver) schema(s ir.Schema, owner *ir.Domain, referrer ir.QName, pos ir.Pos) {
	switch n := s.(type) {
	case *ir.Ref:
		r.ref(n, owner, referrer, pos)
	case *ir.Array:
		r.schema(n.Items, owner, referrer, pos)
	case *ir.Object:
		r.props(n.Properties, owner, referrer)
	}
}

func (r *resolver) ref(ref *ir.Ref, owner *ir.Domain, referrer ir.QName, pos ir.Pos) {
	q, ok := r.canonicalType(ref.Target, owner.Name)
	if !ok {
		r.unresolved("type", ref.Target, referrer, pos)
		return
	}
	term, ok := r.chaseType(q)
	if !ok {
		return
	}
	ref.Target = term
	if !strings.EqualFold(term.Domain, owner.Name) {
		r.graph.add(owner.Name, term.Domain, RefPair{Referrer: referrer, Target: term})
	}
}

// canonicalType qualifies q with owner when needed and returns the declared
// spelling. Unqualified names only resolve inside owner.
func (r *resolver) canonicalType(q ir.QName, owner string) (ir.QName, bool) {
	if !q.Qualified() {
		q.Domain = owner
	}
	d := r.p.Domain(q.Domain)
	if d == nil {
		return ir.QName{}, false
	}
	t := d.Type(q.Name)
	if t == nil {
		return ir.QName{}, false
	}
	return ir.QName{Domain: d.Name, Name: t.ID}, true
}

// chaseType follows type redirects from the existing type q to the first
// type that is not a redirect.
func (r *resolver) chaseType(q ir.QName) (ir.QName, bool) {
	return r.chase("type", q, r.aliases, func(cur ir.QName) (*ir.QName, ir.Pos) {
		t := r.p.LookupType(cur)
		return t.Redirect, t.Pos
	}, r.canonicalType)
}

// chaseMember follows command or event redirects from the existing member q.
func (r *resolver) chaseMember(kind string, q ir.QName) (ir.QName, bool) {
	lookup := func(cur ir.QName) (*ir.QName, ir.Pos) {
		d := r.p.Domain(cur.Domain)
		if kind == "command" {
			c := d.Command(cur.Name)
			return c.Redirect, c.Pos
		}
		e := d.Event(cur.Name)
		return e.Redirect, e.Pos
	}
	canonical := func(q ir.QName, owner string) (ir.QName, bool) {
		if !q.Qualified() {
			q.Domain = owner
		}
		d := r.p.Domain(q.Domain)
		if d == nil {
			return ir.QName{}, false
		}
		if kind == "command" {
			if c := d.Command(q.Name); c != nil {
				return ir.QName{Domain: d.Name, Name: c.Name}, true
			}
		} else if e := d.Event(q.Name); e != nil {
			return ir.QName{Domain: d.Name, Name: e.Name}, true
		}
		return ir.QName{}, false
	}
	return r.chase(kind, q, r.members, lookup, canonical)
}

// chase walks a redirect chain. Results are memoized for every name on the
// chain so each cycle and each dangling target is reported once.
func (r *resolver) chase(
	kind string,
	start ir.QName,
	memo map[string]aliasResult,
	lookup func(ir.QName) (*ir.QName, ir.Pos),
	canonical func(ir.QName, string) (ir.QName, bool),
) (ir.QName, bool) {
	var (
		chain []ir.QName
		seen  = map[string]int{}
		res   aliasResult
		cur   = start
	)
	for {
		key := kind + ":" + cur.Key()
		if m, done := memo[key]; done {
			res = m
			break
		}
		if i, loop := seen[key]; loop {
			names := make([]string, 0, len(chain)-i+1)
			for _, c := range chain[i:] {
				names = append(names, c.String())
			}
			names = append(names, cur.String())
			r.errs = append(r.errs, &RedirectCycleError{Kind: kind, Chain: names})
			break
		}
		seen[key] = len(chain)
		chain = append(chain, cur)
		redirect, pos := lookup(cur)
		if redirect == nil {
			res = aliasResult{target: cur, ok: true}
			break
		}
		next, ok := canonical(*redirect, cur.Domain)
		if !ok {
			r.unresolved(kind, *redirect, cur, pos)
			break
		}
		cur = next
	}
	for _, c := range chain {
		memo[kind+":"+c.Key()] = res
	}
	return res.target, res.ok
}

func (r *resolver) unresolved(kind string, target, referrer ir.QName, pos ir.Pos) {
	r.errs = append(r.errs, &UnresolvedError{
		Kind:     kind,
		Domain:   target.Domain,
		Name:     target.Name,
		Referrer: referrer.String(),
		Pos:      pos,
	})
}

// cycle classifies every edge inside one non-trivial component.
func (r *resolver) cycle(comp []string, deferred map[[2]string]bool) {
	members := make(map[string]bool, len(comp))
	for _, d := range comp {
		members[d] = true
	}
	for _, u := range comp {
		for _, v := range r.graph.Successors(u) {
			if !members[v] {
				continue
			}
			var rejected []RefPair
			for _, ref := range r.graph.Refs(u, v) {
				if !r.allow.Allows(ref.Referrer.String(), ref.Target.String()) {
					rejected = append(rejected, ref)
				}
			}
			if len(rejected) == 0 {
				deferred[[2]string{strings.ToLower(u), strings.ToLower(v)}] = true
				continue
			}
			path := append([]string{u}, r.graph.shortestPath(v, u, members)...)
			r.errs = append(r.errs, &CircularError{Path: path, Refs: rejected})
		}
	}
}

// dependsOn records references to domains missing from "depends on", and
// "depends on" lines naming unknown domains.
func (r *resolver) dependsOn() {
	for _, d := range r.p.Domains {
		declared := map[string]bool{}
		for _, dep := range d.DependsOn {
			declared[strings.ToLower(dep)] = true
			if r.p.Domain(dep) == nil {
				r.warn.Warnf("domain %s: depends on unknown domain %s", d.Name, dep)
			}
		}
		for _, to := range r.graph.Successors(d.Name) {
			if !declared[strings.ToLower(to)] {
				r.warn.Warnf("domain %s: references %s without \"depends on %s\"", d.Name, to, to)
			}
		}
	}
}
