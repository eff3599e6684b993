package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/reoring/pdlgen/internal/ir"
	"github.com/reoring/pdlgen/internal/lexer"
)

const sample = `# Copyright header.

version
  major 1
  minor 3

# DOM domain.
experimental domain DOM
  depends on Runtime

  # Unique DOM node identifier.
  type NodeId extends integer

  type PseudoType extends string
    enum
      first-line
      before

  type Node extends object
    properties
      NodeId nodeId
      # Child nodes.
      optional array of Node children
      optional Page.FrameId frameId
      string type

  type Quad extends array of number

  deprecated type LegacyId extends integer
    redirect Runtime.RemoteObjectId

  # Returns the root node.
  command getDocument
    parameters
      optional integer depth
      experimental optional boolean pierce
    returns
      Node root

  deprecated command legacy
    redirect CSS

  event documentUpdated

  event attributeModified
    parameters
      NodeId nodeId
      optional enum mode
        add
        remove
`

func TestParseSample(t *testing.T) {
	f, err := ParseText("dom.pdl", sample)
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}
	if f.Version == nil || f.Version.Major != "1" || f.Version.Minor != "3" {
		t.Fatalf("version = %+v", f.Version)
	}
	if len(f.Domains) != 1 {
		t.Fatalf("domains = %d, want 1", len(f.Domains))
	}
	d := f.Domains[0]
	if d.Name != "DOM" || !d.Experimental || d.Deprecated {
		t.Fatalf("domain = %+v", d)
	}
	if d.Description != "DOM domain." {
		t.Fatalf("domain description = %q (header comment must not leak across a blank line)", d.Description)
	}
	if !reflect.DeepEqual(d.DependsOn, []string{"Runtime"}) {
		t.Fatalf("depends on = %v", d.DependsOn)
	}
	if d.Pos.Line != 8 || d.Pos.File != "dom.pdl" {
		t.Fatalf("domain pos = %v", d.Pos)
	}

	if len(d.Types) != 5 {
		t.Fatalf("types = %d, want 5", len(d.Types))
	}
	nodeID := d.Type("NodeId")
	if nodeID.Description != "Unique DOM node identifier." {
		t.Fatalf("NodeId description = %q", nodeID.Description)
	}
	if p, ok := nodeID.Type.(*ir.Primitive); !ok || p.Name != ir.Integer {
		t.Fatalf("NodeId type = %#v", nodeID.Type)
	}
	if e, ok := d.Type("PseudoType").Type.(*ir.Enum); !ok || !reflect.DeepEqual(e.Values, []string{"first-line", "before"}) {
		t.Fatalf("PseudoType = %#v", d.Type("PseudoType").Type)
	}

	obj, ok := d.Type("Node").Type.(*ir.Object)
	if !ok || len(obj.Properties) != 4 {
		t.Fatalf("Node = %#v", d.Type("Node").Type)
	}
	children := obj.Properties[1]
	if children.Name != "children" || !children.Optional || children.Description != "Child nodes." {
		t.Fatalf("children = %+v", children)
	}
	arr, ok := children.Type.(*ir.Array)
	if !ok {
		t.Fatalf("children type = %#v", children.Type)
	}
	if ref, ok := arr.Items.(*ir.Ref); !ok || ref.Target != (ir.QName{Name: "Node"}) {
		t.Fatalf("children items = %#v", arr.Items)
	}
	if ref, ok := obj.Properties[2].Type.(*ir.Ref); !ok || ref.Target != (ir.QName{Domain: "Page", Name: "FrameId"}) {
		t.Fatalf("frameId = %#v", obj.Properties[2].Type)
	}
	if obj.Properties[3].Name != "type" {
		t.Fatalf("keyword property name = %q", obj.Properties[3].Name)
	}

	if a, ok := d.Type("Quad").Type.(*ir.Array); !ok || a.Items.(*ir.Primitive).Name != ir.Number {
		t.Fatalf("Quad = %#v", d.Type("Quad").Type)
	}
	legacy := d.Type("LegacyId")
	if !legacy.Deprecated || legacy.Redirect == nil || *legacy.Redirect != (ir.QName{Domain: "Runtime", Name: "RemoteObjectId"}) {
		t.Fatalf("LegacyId = %+v", legacy)
	}

	if len(d.Commands) != 2 {
		t.Fatalf("commands = %d", len(d.Commands))
	}
	gd := d.Command("getDocument")
	if gd.Description != "Returns the root node." || len(gd.Parameters) != 2 || len(gd.Returns) != 1 {
		t.Fatalf("getDocument = %+v", gd)
	}
	if !gd.Parameters[1].Experimental || !gd.Parameters[1].Optional {
		t.Fatalf("pierce = %+v", gd.Parameters[1])
	}
	lc := d.Command("legacy")
	if lc.Redirect == nil || *lc.Redirect != (ir.QName{Domain: "CSS", Name: "legacy"}) {
		t.Fatalf("legacy redirect = %v", lc.Redirect)
	}

	if len(d.Events) != 2 {
		t.Fatalf("events = %d", len(d.Events))
	}
	if d.Event("documentUpdated").Parameters != nil {
		t.Fatalf("documentUpdated has parameters")
	}
	mode := d.Event("attributeModified").Parameters[1]
	if e, ok := mode.Type.(*ir.Enum); !ok || !reflect.DeepEqual(e.Values, []string{"add", "remove"}) {
		t.Fatalf("mode = %#v", mode.Type)
	}
}

func TestParseIncludes(t *testing.T) {
	f, err := ParseText("browser.pdl", "version\n  major 1\n  minor 3\n\ninclude domains/A.pdl\ninclude domains/B.pdl\n")
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}
	if !reflect.DeepEqual(f.Includes, []string{"domains/A.pdl", "domains/B.pdl"}) {
		t.Fatalf("includes = %v", f.Includes)
	}
}

func TestParseFragmentWithoutHeader(t *testing.T) {
	f, err := ParseText("frag.pdl", "domain A\n  type X extends string\n")
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}
	if f.Version != nil || len(f.Domains) != 1 {
		t.Fatalf("file = %+v", f)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		line     int
		expected string
	}{
		{
			name:     "Missing extends",
			input:    "domain A\n  type X string\n",
			line:     2,
			expected: `"extends"`,
		},
		{
			name:     "Bad member indentation",
			input:    "domain A\n   type X extends string\n",
			line:     2,
			expected: "domain member at indentation 2",
		},
		{
			name:     "Unknown member keyword",
			input:    "domain A\n  thing X\n",
			line:     2,
			expected: `"type", "command", "event" or "depends on"`,
		},
		{
			name:     "Returns on event",
			input:    "domain A\n  event e\n    returns\n",
			line:     3,
			expected: `"parameters" or "redirect"`,
		},
		{
			name:     "Property missing name",
			input:    "domain A\n  command c\n    parameters\n      string\n",
			line:     4,
			expected: "property name",
		},
		{
			name:     "Enum on integer",
			input:    "domain A\n  type X extends integer\n    enum\n      a\n",
			line:     3,
			expected: "enum only on a string type",
		},
		{
			name:     "Trailing tokens",
			input:    "domain A extra\n",
			line:     1,
			expected: "end of line",
		},
		{
			name:     "Truncated version header",
			input:    "version\n  major 1\ndomain A\n",
			line:     3,
			expected: `"minor"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseText("x.pdl", tt.input)
			if err == nil {
				t.Fatalf("ParseText() expected error")
			}
			var pe *Error
			if !errors.As(err, &pe) {
				t.Fatalf("error = %T (%v), want *Error", err, err)
			}
			if pe.Line != tt.line || pe.Expected != tt.expected || pe.File != "x.pdl" {
				t.Fatalf("error = %+v, want line=%d expected=%s", pe, tt.line, tt.expected)
			}
		})
	}
}

func TestParseTextPropagatesLexError(t *testing.T) {
	_, err := ParseText("x.pdl", "domain A {\n")
	var le *lexer.Error
	if !errors.As(err, &le) || le.File != "x.pdl" {
		t.Fatalf("error = %T, want *lexer.Error for x.pdl", err)
	}
}
