// Package filter removes definitions outside the requested stability tiers.
//
// Pruning is transitive: an alias or array typedef over a pruned type goes
// with it. Afterwards every remaining reference is checked again; optional
// properties over pruned types are dropped, required ones are errors.
package filter

import (
	"fmt"

	"github.com/reoring/pdlgen/internal/diag"
	"github.com/reoring/pdlgen/internal/ir"
)

// Options selects the stability tiers to keep.
type Options struct {
	IncludeExperimental bool
	IncludeDeprecated   bool
}

func (o Options) keep(f ir.Flags) bool {
	if f.Experimental && !o.IncludeExperimental {
		return false
	}
	if f.Deprecated && !o.IncludeDeprecated {
		return false
	}
	return true
}

// PrunedDependencyError reports a required property, parameter or return
// value whose type was removed.
type PrunedDependencyError struct {
	Referrer string // owning type, command or event
	Property string
	Target   string
	Pos      ir.Pos
}

func (e *PrunedDependencyError) Error() string {
	return fmt.Sprintf("%s.%s at %s requires pruned type %s", e.Referrer, e.Property, e.Pos, e.Target)
}

func (e *PrunedDependencyError) Code() string { return "pruned_dependency" }

// Apply returns a pruned copy of a resolved protocol. References are
// expected to be canonical, as produced by the resolver.
func Apply(p *ir.Protocol, opts Options) (*ir.Protocol, error) {
	out := &ir.Protocol{Version: p.Version}
	pruned := map[string]bool{}

	for _, src := range p.Domains {
		d := src.Clone()
		if !opts.keep(d.Flags) {
			for _, t := range d.Types {
				pruned[typeKey(d.Name, t.ID)] = true
			}
			continue
		}
		types := d.Types[:0]
		for _, t := range d.Types {
			if opts.keep(t.Flags) {
				types = append(types, t)
			} else {
				pruned[typeKey(d.Name, t.ID)] = true
			}
		}
		d.Types = types
		commands := d.Commands[:0]
		for _, c := range d.Commands {
			if opts.keep(c.Flags) {
				commands = append(commands, c)
			}
		}
		d.Commands = commands
		events := d.Events[:0]
		for _, e := range d.Events {
			if opts.keep(e.Flags) {
				events = append(events, e)
			}
		}
		d.Events = events
		out.Domains = append(out.Domains, d)
	}

	cascade(out, pruned)

	var errs diag.List
	check := func(owner ir.QName, ps []*ir.Property) []*ir.Property {
		return properties(owner, ps, opts, pruned, &errs)
	}
	for _, d := range out.Domains {
		for _, t := range d.Types {
			if obj, ok := t.Type.(*ir.Object); ok && t.Redirect == nil {
				obj.Properties = check(ir.QName{Domain: d.Name, Name: t.ID}, obj.Properties)
			}
		}
		for _, c := range d.Commands {
			self := ir.QName{Domain: d.Name, Name: c.Name}
			c.Parameters = check(self, c.Parameters)
			c.Returns = check(self, c.Returns)
		}
		for _, e := range d.Events {
			e.Parameters = check(ir.QName{Domain: d.Name, Name: e.Name}, e.Parameters)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// cascade prunes alias and array typedefs whose element is pruned, until
// nothing changes.
func cascade(p *ir.Protocol, pruned map[string]bool) {
	for changed := true; changed; {
		changed = false
		for _, d := range p.Domains {
			types := d.Types[:0]
			for _, t := range d.Types {
				if t.Redirect == nil && prunedElement(t.Type, pruned) {
					pruned[typeKey(d.Name, t.ID)] = true
					changed = true
					continue
				}
				types = append(types, t)
			}
			d.Types = types
		}
	}
}

func prunedElement(s ir.Schema, pruned map[string]bool) bool {
	switch n := s.(type) {
	case *ir.Ref:
		return pruned[n.Target.Key()]
	case *ir.Array:
		return prunedElement(n.Items, pruned)
	}
	return false
}

// properties drops flagged properties and optional properties over pruned
// types, and records required ones.
func properties(owner ir.QName, ps []*ir.Property, opts Options, pruned map[string]bool, errs *diag.List) []*ir.Property {
	if ps == nil {
		return nil
	}
	out := ps[:0]
	for _, prop := range ps {
		if !opts.keep(prop.Flags) {
			continue
		}
		if target, ok := prunedRef(prop.Type, pruned); ok {
			if !prop.Optional {
				*errs = append(*errs, &PrunedDependencyError{
					Referrer: owner.String(),
					Property: prop.Name,
					Target:   target.String(),
					Pos:      prop.Pos,
				})
			}
			continue
		}
		if obj, ok := prop.Type.(*ir.Object); ok {
			obj.Properties = properties(owner, obj.Properties, opts, pruned, errs)
		}
		out = append(out, prop)
	}
	return out
}

func prunedRef(s ir.Schema, pruned map[string]bool) (ir.QName, bool) {
	for _, r := range ir.Refs(s) {
		if pruned[r.Target.Key()] {
			return r.Target, true
		}
	}
	return ir.QName{}, false
}

func typeKey(domain, id string) string { return ir.QName{Domain: domain, Name: id}.Key() }
