package gen

import (
	"sort"
	"strings"

	"github.com/reoring/pdlgen/internal/ir"
	"github.com/reoring/pdlgen/internal/resolve"
)

// Order returns the domains of p in emission order.
//
// Domains are ordered topologically over the condensation of the dependency
// graph, dependencies first. Among the components that are ready at a step,
// the one whose smallest member is lexically smallest goes first (lower-case
// name, then exact spelling); the members of one component follow each other
// in lexical order. Domains of p unknown to res are emitted last, in lexical
// order.
func Order(res *resolve.Resolution, p *ir.Protocol) []*ir.Domain {
	present := map[string]*ir.Domain{}
	for _, d := range p.Domains {
		present[strings.ToLower(d.Name)] = d
	}

	comps := res.Components
	deps := make([]map[int]bool, len(comps))
	dependents := make([][]int, len(comps))
	for i, comp := range comps {
		deps[i] = map[int]bool{}
		for _, from := range comp {
			for _, to := range res.Graph.Successors(from) {
				j := res.Component(to)
				if j < 0 || j == i || deps[i][j] {
					continue
				}
				deps[i][j] = true
				dependents[j] = append(dependents[j], i)
			}
		}
	}

	var ready []int
	for i := range comps {
		if len(deps[i]) == 0 {
			ready = append(ready, i)
		}
	}
	var out []*ir.Domain
	seen := map[string]bool{}
	for len(ready) > 0 {
		sort.Slice(ready, func(a, b int) bool { return resolve.LexLess(comps[ready[a]][0], comps[ready[b]][0]) })
		i := ready[0]
		ready = ready[1:]
		for _, name := range comps[i] {
			if d, ok := present[strings.ToLower(name)]; ok {
				out = append(out, d)
				seen[strings.ToLower(name)] = true
			}
		}
		for _, j := range dependents[i] {
			delete(deps[j], i)
			if len(deps[j]) == 0 {
				ready = append(ready, j)
			}
		}
	}

	var rest []*ir.Domain
	for key, d := range present {
		if !seen[key] {
			rest = append(rest, d)
		}
	}
	sort.Slice(rest, func(a, b int) bool { return resolve.LexLess(rest[a].Name, rest[b].Name) })
	return append(out, rest...)
}
