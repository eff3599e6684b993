package resolve

import (
	"sort"
	"strings"

	"github.com/reoring/pdlgen/internal/ir"
)

// LexLess orders names case-insensitively, falling back to the exact spelling
// so distinct names never compare equal. Every ordering decision in the
// compiler that is not dictated by declaration order uses it.
func LexLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// RefPair is one reference that produced a domain edge.
type RefPair struct {
	Referrer ir.QName // the type, command or event holding the reference
	Target   ir.QName // the resolved type it points at
}

func (r RefPair) String() string { return r.Referrer.String() + " -> " + r.Target.String() }

// Graph is the domain dependency graph. An edge A->B exists when a definition
// owned by A references a definition owned by B, B != A.
type Graph struct {
	nodes []string
	edges map[string]map[string][]RefPair
}

func newGraph(nodes []string) *Graph {
	sorted := append([]string(nil), nodes...)
	sort.Slice(sorted, func(i, j int) bool { return LexLess(sorted[i], sorted[j]) })
	return &Graph{nodes: sorted, edges: map[string]map[string][]RefPair{}}
}

func (g *Graph) add(from, to string, ref RefPair) {
	m, ok := g.edges[from]
	if !ok {
		m = map[string][]RefPair{}
		g.edges[from] = m
	}
	for _, r := range m[to] {
		if r == ref {
			return
		}
	}
	m[to] = append(m[to], ref)
}

// Nodes returns the domain names in lexical order.
func (g *Graph) Nodes() []string { return append([]string(nil), g.nodes...) }

// Successors returns the domains from depends on, in lexical order.
func (g *Graph) Successors(from string) []string {
	m := g.edges[from]
	out := make([]string, 0, len(m))
	for to := range m {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return LexLess(out[i], out[j]) })
	return out
}

// HasEdge reports whether from references to.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edges[from][to]
	return ok
}

// Refs returns the references behind the edge from->to, in discovery order.
func (g *Graph) Refs(from, to string) []RefPair {
	return append([]RefPair(nil), g.edges[from][to]...)
}

// components returns the strongly-connected components of the graph.
func (g *Graph) components() [][]string {
	return StronglyConnected(g.nodes, g.Successors)
}

// StronglyConnected computes strongly-connected components with Tarjan's
// algorithm. Nodes are visited in the given order and successors in the
// order succ returns them; each component is sorted with LexLess and the
// components are ordered by their first member.
func StronglyConnected(nodes []string, succ func(string) []string) [][]string {
	var (
		index   = map[string]int{}
		low     = map[string]int{}
		onStack = map[string]bool{}
		stack   []string
		next    int
		out     [][]string
	)
	var strong func(v string)
	strong = func(v string) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true
		for _, w := range succ(v) {
			if _, seen := index[w]; !seen {
				strong(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}
		if low[v] == index[v] {
			var comp []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Slice(comp, func(i, j int) bool { return LexLess(comp[i], comp[j]) })
			out = append(out, comp)
		}
	}
	for _, v := range nodes {
		if _, seen := index[v]; !seen {
			strong(v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return LexLess(out[i][0], out[j][0]) })
	return out
}

// shortestPath returns from..to inside members (BFS, lexical neighbours), or
// nil when to is unreachable.
func (g *Graph) shortestPath(from, to string, members map[string]bool) []string {
	prev := map[string]string{from: from}
	queue := []string{from}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if v == to {
			break
		}
		for _, w := range g.Successors(v) {
			if !members[w] {
				continue
			}
			if _, seen := prev[w]; seen {
				continue
			}
			prev[w] = v
			queue = append(queue, w)
		}
	}
	if _, ok := prev[to]; !ok {
		return nil
	}
	var path []string
	for v := to; ; v = prev[v] {
		path = append(path, v)
		if v == from {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
