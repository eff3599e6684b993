// Package merge unions parsed files into one protocol symbol space.
package merge

import (
	"fmt"
	"strings"

	"github.com/reoring/pdlgen/internal/diag"
	"github.com/reoring/pdlgen/internal/ir"
)

// DuplicateError reports a member defined twice in one (merged) domain, or a
// domain declared twice in one file.
type DuplicateError struct {
	Domain string
	Kind   string // "domain", "type", "command" or "event"
	Name   string
	First  ir.Pos
	Second ir.Pos
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s %s.%s: defined at %s and %s", e.Kind, e.Domain, e.Name, e.First, e.Second)
}

func (e *DuplicateError) Code() string { return "duplicate_definition" }

// Merge unions the domains of files in the given order. Members of a domain
// that appears in several files are concatenated in file order. The inputs
// are not modified.
func Merge(files []*ir.File) (*ir.Protocol, error) {
	p := &ir.Protocol{}
	versionSet := false
	index := map[string]*ir.Domain{}
	var errs diag.List

	for _, f := range files {
		if f == nil {
			continue
		}
		if f.Version != nil && !versionSet {
			p.Version = *f.Version
			versionSet = true
		}
		seenInFile := map[string]ir.Pos{}
		for _, src := range f.Domains {
			key := strings.ToLower(src.Name)
			if first, ok := seenInFile[key]; ok {
				errs = append(errs, &DuplicateError{Domain: src.Name, Kind: "domain", Name: src.Name, First: first, Second: src.Pos})
				continue
			}
			seenInFile[key] = src.Pos

			dst, ok := index[key]
			if !ok {
				dst = src.Clone()
				dst.Types, dst.Commands, dst.Events = nil, nil, nil
				index[key] = dst
				p.Domains = append(p.Domains, dst)
			} else {
				mergeHeader(dst, src)
			}
			errs = append(errs, mergeMembers(dst, src.Clone())...)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// mergeHeader folds the declaration-level attributes of a repeated domain.
func mergeHeader(dst, src *ir.Domain) {
	if dst.Description == "" {
		dst.Description = src.Description
	}
	dst.Experimental = dst.Experimental || src.Experimental
	dst.Deprecated = dst.Deprecated || src.Deprecated
	for _, dep := range src.DependsOn {
		if !containsFold(dst.DependsOn, dep) {
			dst.DependsOn = append(dst.DependsOn, dep)
		}
	}
}

func mergeMembers(dst, src *ir.Domain) []error {
	var errs []error
	for _, t := range src.Types {
		if prev := dst.Type(t.ID); prev != nil {
			errs = append(errs, &DuplicateError{Domain: dst.Name, Kind: "type", Name: t.ID, First: prev.Pos, Second: t.Pos})
			continue
		}
		dst.Types = append(dst.Types, t)
	}
	for _, c := range src.Commands {
		if prev := dst.Command(c.Name); prev != nil {
			errs = append(errs, &DuplicateError{Domain: dst.Name, Kind: "command", Name: c.Name, First: prev.Pos, Second: c.Pos})
			continue
		}
		dst.Commands = append(dst.Commands, c)
	}
	for _, e := range src.Events {
		if prev := dst.Event(e.Name); prev != nil {
			errs = append(errs, &DuplicateError{Domain: dst.Name, Kind: "event", Name: e.Name, First: prev.Pos, Second: e.Pos})
			continue
		}
		dst.Events = append(dst.Events, e)
	}
	return errs
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
