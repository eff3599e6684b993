// Package diag holds the error aggregate and warning collector shared by the
// compiler stages.
package diag

import (
	"fmt"
	"strings"
)

// List aggregates errors found in one stage. It implements Unwrap() []error
// so errors.As reaches every member.
type List []error

// Error summarizes the first few errors.
func (l List) Error() string {
	if len(l) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := len(l)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(l[i].Error())
	}
	if len(l) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(l))
	}
	return b.String()
}

func (l List) Unwrap() []error { return l }

// Err returns nil for an empty list, the only member for a single error and
// the list otherwise.
func (l List) Err() error {
	switch len(l) {
	case 0:
		return nil
	case 1:
		return l[0]
	default:
		return l
	}
}

// Warnings collects non-fatal findings in the order they were made.
type Warnings struct{ ws []string }

func (w *Warnings) HasWarnings() bool { return w != nil && len(w.ws) > 0 }

// List returns a copy of the collected warnings.
func (w *Warnings) List() []string {
	if w == nil {
		return nil
	}
	return append([]string(nil), w.ws...)
}

func (w *Warnings) Warnf(f string, a ...any) { w.ws = append(w.ws, fmt.Sprintf(f, a...)) }
