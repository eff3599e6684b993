// Package jsonschema exports compiled protocol types as a JSON Schema
// document with one $defs entry per type, command and event.
package jsonschema

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/reoring/pdlgen/internal/ir"
)

// Draft is the dialect of exported documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Core
	Schema      string   `json:"$schema,omitempty"`
	Ref         string   `json:"$ref,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type,omitempty"`
	Format      string   `json:"format,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// DefRef is the $ref of a definition name.
func DefRef(name string) string { return "#/$defs/" + name }

// Build converts a resolved protocol. Definitions are keyed "Domain.Type",
// "Domain.command.params", "Domain.command.returns" and "Domain.event".
func Build(p *ir.Protocol) *Schema {
	doc := &Schema{
		Schema: Draft,
		Title:  fmt.Sprintf("protocol %s.%s", p.Version.Major, p.Version.Minor),
		Defs:   map[string]*Schema{},
	}
	for _, d := range p.Domains {
		for _, t := range d.Types {
			if t.Redirect != nil {
				continue
			}
			s := node(t.Type)
			describe(s, t.Description, t.Flags)
			doc.Defs[d.Name+"."+t.ID] = s
		}
		for _, c := range d.Commands {
			params := object(c.Parameters)
			describe(params, c.Description, c.Flags)
			doc.Defs[d.Name+"."+c.Name+".params"] = params
			doc.Defs[d.Name+"."+c.Name+".returns"] = object(c.Returns)
		}
		for _, e := range d.Events {
			payload := object(e.Parameters)
			describe(payload, e.Description, e.Flags)
			doc.Defs[d.Name+"."+e.Name] = payload
		}
	}
	return doc
}

func describe(s *Schema, desc string, f ir.Flags) {
	s.Description = desc
	s.Deprecated = f.Deprecated
}

func object(props []*ir.Property) *Schema {
	s := &Schema{Type: "object", Properties: map[string]*Schema{}, AdditionalProperties: false}
	for _, p := range props {
		ps := node(p.Type)
		ps.Description = p.Description
		ps.Deprecated = p.Deprecated
		s.Properties[p.Name] = ps
		if !p.Optional {
			s.Required = append(s.Required, p.Name)
		}
	}
	return s
}

func node(n ir.Schema) *Schema {
	switch v := n.(type) {
	case *ir.Primitive:
		switch v.Name {
		case ir.Integer:
			return &Schema{Type: "integer"}
		case ir.Number:
			return &Schema{Type: "number"}
		case ir.String:
			return &Schema{Type: "string"}
		case ir.Boolean:
			return &Schema{Type: "boolean"}
		case ir.Binary:
			return &Schema{Type: "string", Format: "byte"}
		case ir.FreeObject:
			return &Schema{Type: "object"}
		}
		return &Schema{}
	case *ir.Enum:
		return &Schema{Type: "string", Enum: append([]string(nil), v.Values...)}
	case *ir.Object:
		return object(v.Properties)
	case *ir.Array:
		return &Schema{Type: "array", Items: node(v.Items)}
	case *ir.Ref:
		return &Schema{Ref: DefRef(v.Target.String())}
	}
	return &Schema{}
}

// Marshal renders s as indented JSON. Map keys are sorted, so equal
// protocols give equal bytes.
func Marshal(s *Schema) ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %w", err)
	}
	return append(b, '\n'), nil
}
