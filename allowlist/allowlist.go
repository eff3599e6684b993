// Package allowlist holds the table of cross-domain references that may sit
// on a dependency cycle and still compile.
//
// The table is curated by hand: which references are safe to break with
// indirection is protocol knowledge, not something the schema states. Entries
// are (referrer, target) pairs of qualified names compared
// case-insensitively; a referrer of "*" matches any referrer of the target.
//
//	l := allowlist.Default().With(allowlist.Pair{Referrer: "A.Get", Target: "B.Id"})
//	ok := l.Allows("a.get", "B.id") // true
package allowlist

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Any matches every referrer.
const Any = "*"

// Pair is one sanctioned reference.
type Pair struct {
	Referrer string `yaml:"referrer"`
	Target   string `yaml:"target"`
}

func (p Pair) String() string { return p.Referrer + " -> " + p.Target }

func (p Pair) key() string {
	return strings.ToLower(p.Referrer) + " -> " + strings.ToLower(p.Target)
}

// List is an immutable, versioned set of pairs.
type List struct {
	version string
	pairs   map[string]Pair
}

// New builds a list. Invalid pairs are rejected.
func New(version string, pairs ...Pair) (*List, error) {
	l := &List{version: version, pairs: make(map[string]Pair, len(pairs))}
	for _, p := range pairs {
		if err := validate(p); err != nil {
			return nil, err
		}
		l.pairs[p.key()] = p
	}
	return l, nil
}

// MustNew is New for static tables.
func MustNew(version string, pairs ...Pair) *List {
	l, err := New(version, pairs...)
	if err != nil {
		panic(err)
	}
	return l
}

func validate(p Pair) error {
	if !qualified(p.Target) {
		return fmt.Errorf("allowlist: target %q is not a qualified Domain.Name", p.Target)
	}
	if p.Referrer != Any && !qualified(p.Referrer) {
		return fmt.Errorf("allowlist: referrer %q is neither %q nor a qualified Domain.Name", p.Referrer, Any)
	}
	return nil
}

func qualified(s string) bool {
	i := strings.IndexByte(s, '.')
	return i > 0 && i < len(s)-1
}

// Version identifies the table revision.
func (l *List) Version() string {
	if l == nil {
		return ""
	}
	return l.version
}

// Len returns the number of pairs.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.pairs)
}

// Allows reports whether a reference from referrer to target is sanctioned.
// A nil list allows nothing.
func (l *List) Allows(referrer, target string) bool {
	if l == nil {
		return false
	}
	if _, ok := l.pairs[Pair{Referrer: referrer, Target: target}.key()]; ok {
		return true
	}
	_, ok := l.pairs[Pair{Referrer: Any, Target: target}.key()]
	return ok
}

// Pairs returns the pairs sorted by referrer then target.
func (l *List) Pairs() []Pair {
	if l == nil {
		return nil
	}
	keys := make([]string, 0, len(l.pairs))
	for k := range l.pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Pair, 0, len(keys))
	for _, k := range keys {
		out = append(out, l.pairs[k])
	}
	return out
}

// With returns a copy extended by pairs.
func (l *List) With(pairs ...Pair) (*List, error) {
	return New(l.Version(), append(l.Pairs(), pairs...)...)
}

// document is the YAML layout of a table file:
//
//	version: "2"
//	pairs:
//	  - referrer: "*"
//	    target: DOM.NodeId
//	  - A.Get -> B.Id
type document struct {
	Version string      `yaml:"version"`
	Pairs   []yaml.Node `yaml:"pairs"`
}

// Load reads a YAML table.
func Load(r io.Reader) (*List, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return New("")
		}
		return nil, fmt.Errorf("allowlist: invalid YAML: %w", err)
	}
	pairs := make([]Pair, 0, len(doc.Pairs))
	for i := range doc.Pairs {
		n := &doc.Pairs[i]
		switch n.Kind {
		case yaml.ScalarNode:
			ref, target, ok := strings.Cut(n.Value, "->")
			if !ok {
				return nil, fmt.Errorf("allowlist: line %d: want \"Referrer -> Target\", got %q", n.Line, n.Value)
			}
			pairs = append(pairs, Pair{Referrer: strings.TrimSpace(ref), Target: strings.TrimSpace(target)})
		case yaml.MappingNode:
			for j := 0; j+1 < len(n.Content); j += 2 {
				if k := n.Content[j]; k.Value != "referrer" && k.Value != "target" {
					return nil, fmt.Errorf("allowlist: line %d: unknown pair field %q", k.Line, k.Value)
				}
			}
			var p Pair
			if err := n.Decode(&p); err != nil {
				return nil, fmt.Errorf("allowlist: line %d: %w", n.Line, err)
			}
			pairs = append(pairs, p)
		default:
			return nil, fmt.Errorf("allowlist: line %d: unsupported pair node", n.Line)
		}
	}
	return New(doc.Version, pairs...)
}

// LoadFile reads a YAML table from path.
func LoadFile(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("allowlist: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// Marshal renders the list in the Load format, pairs sorted.
func (l *List) Marshal() ([]byte, error) {
	type out struct {
		Version string `yaml:"version"`
		Pairs   []Pair `yaml:"pairs"`
	}
	return yaml.Marshal(out{Version: l.Version(), Pairs: l.Pairs()})
}
