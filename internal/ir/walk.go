package ir

// Refs returns every Ref reachable from s, in declaration order.
func Refs(s Schema) []*Ref {
	var out []*Ref
	var walk func(Schema)
	walk = func(s Schema) {
		switch n := s.(type) {
		case *Ref:
			out = append(out, n)
		case *Array:
			walk(n.Items)
		case *Object:
			for _, p := range n.Properties {
				walk(p.Type)
			}
		}
	}
	walk(s)
	return out
}

// Clone returns a deep copy of the protocol. The filter prunes the copy so
// earlier stages keep seeing the full model.
func (p *Protocol) Clone() *Protocol {
	if p == nil {
		return nil
	}
	out := &Protocol{Version: p.Version, Domains: make([]*Domain, 0, len(p.Domains))}
	for _, d := range p.Domains {
		out.Domains = append(out.Domains, d.Clone())
	}
	return out
}

// Clone returns a deep copy of the domain.
func (d *Domain) Clone() *Domain {
	out := *d
	out.DependsOn = append([]string(nil), d.DependsOn...)
	out.Types = make([]*TypeDef, 0, len(d.Types))
	for _, t := range d.Types {
		ct := *t
		ct.Type = CloneSchema(t.Type)
		ct.Redirect = cloneQName(t.Redirect)
		out.Types = append(out.Types, &ct)
	}
	out.Commands = make([]*Command, 0, len(d.Commands))
	for _, c := range d.Commands {
		cc := *c
		cc.Parameters = CloneProperties(c.Parameters)
		cc.Returns = CloneProperties(c.Returns)
		cc.Redirect = cloneQName(c.Redirect)
		out.Commands = append(out.Commands, &cc)
	}
	out.Events = make([]*Event, 0, len(d.Events))
	for _, e := range d.Events {
		ce := *e
		ce.Parameters = CloneProperties(e.Parameters)
		ce.Redirect = cloneQName(e.Redirect)
		out.Events = append(out.Events, &ce)
	}
	return &out
}

// CloneProperties deep-copies a property list.
func CloneProperties(ps []*Property) []*Property {
	if ps == nil {
		return nil
	}
	out := make([]*Property, 0, len(ps))
	for _, p := range ps {
		cp := *p
		cp.Type = CloneSchema(p.Type)
		out = append(out, &cp)
	}
	return out
}

// CloneSchema deep-copies a type node.
func CloneSchema(s Schema) Schema {
	switch n := s.(type) {
	case *Primitive:
		c := *n
		return &c
	case *Enum:
		return &Enum{Values: append([]string(nil), n.Values...)}
	case *Object:
		return &Object{Properties: CloneProperties(n.Properties)}
	case *Array:
		return &Array{Items: CloneSchema(n.Items)}
	case *Ref:
		c := *n
		return &c
	default:
		return nil
	}
}

func cloneQName(q *QName) *QName {
	if q == nil {
		return nil
	}
	c := *q
	return &c
}
