package gen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IdentifierCollisionError reports two definitions mapping to one Go name.
type IdentifierCollisionError struct {
	Ident  string
	First  string
	Second string
}

func (e *IdentifierCollisionError) Error() string {
	return fmt.Sprintf("identifier %s is produced by both %s and %s", e.Ident, e.First, e.Second)
}

func (e *IdentifierCollisionError) Code() string { return "identifier_collision" }

// exported turns a wire name into an exported Go identifier. Runs of
// characters that cannot appear in an identifier split words; each word
// gets an upper-case first rune.
func exported(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	s := b.String()
	if s == "" {
		return "X"
	}
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsDigit(r) {
		return "V" + s
	}
	return s
}

// qualified is <Domain><Name>; the domain keeps its spelling.
func qualified(domain, name string) string {
	return exported(domain) + exported(name)
}

// namespace tracks declared package-level identifiers.
type namespace struct {
	owners map[string]string
	errs   []error
}

// fixed lists the package-level names every generated file declares.
var fixed = []string{"ProtocolMajor", "ProtocolMinor", "Revision", "EventTypes"}

func newNamespace() *namespace {
	n := &namespace{owners: map[string]string{}}
	for _, ident := range fixed {
		n.owners[ident] = "generated declaration " + ident
	}
	return n
}

// declare registers ident for owner and records a collision.
func (n *namespace) declare(ident, owner string) string {
	if first, ok := n.owners[ident]; ok {
		n.errs = append(n.errs, &IdentifierCollisionError{Ident: ident, First: first, Second: owner})
		return ident
	}
	n.owners[ident] = owner
	return ident
}
