package pdlgen

import (
	"go/ast"
	"go/importer"
	goparser "go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"testing"

	"github.com/reoring/pdlgen/allowlist"
)

// typeCheck parses code as the generated file and type-checks it against
// the codec package of this module.
func typeCheck(t *testing.T, code []byte) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, filepath.Join(wd, GeneratedFile), code, 0)
	if err != nil {
		t.Fatalf("parse generated code: %v", err)
	}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	if _, err := conf.Check("cdp", fset, []*ast.File{f}, nil); err != nil {
		t.Fatalf("type-check generated code: %v", err)
	}
}

// awkward exercises names and shapes that stress the generated file:
// fields named like generated methods, a domain named Protocol, cross-domain
// by-value containment and a self-containing struct.
const awkward = `version
  major 1
  minor 3

domain Protocol
  type Version extends object
    properties
      string major
      string method
      string response

domain Fetch
  depends on Network
  type RequestPattern extends object
    properties
      optional string urlPattern
      Network.Request request
  command continueRequest
    parameters
      string requestId
      optional string method
      optional string response
    returns
      string method
      Network.Request response
  event requestPaused
    parameters
      string method
      Network.Request request
      optional enum stage
        Request
        Response

domain Network
  depends on Fetch
  type Method extends string
    enum
      GET
      POST
  type Request extends object
    properties
      Method method
      Fetch.RequestPattern pattern
      optional Request redirected
      optional array of Request chain
  type Node extends object
    properties
      Node next
  type NodeAlias extends Node
  command getRequest
    returns
      Request request
      NodeAlias node
  event method
    parameters
      Method method
`

func TestGeneratedCodeTypeChecks(t *testing.T) {
	allow := allowlist.MustNew("test",
		allowlist.Pair{Referrer: "*", Target: "Network.Request"},
		allowlist.Pair{Referrer: "*", Target: "Fetch.RequestPattern"},
	)
	tests := []struct {
		name string
		res  func(t *testing.T) *Result
	}{
		{"testdata", func(t *testing.T) *Result {
			return compileTestdata(t, WithDeprecated(true))
		}},
		{"awkward names", func(t *testing.T) *Result {
			res, err := Compile([]Input{{Name: "awkward.pdl", Text: awkward}}, WithAllowList(allow), WithRevision("1300000"))
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			return res
		}},
		{"allow-listed cycle", func(t *testing.T) *Result {
			res, err := Compile([]Input{{Name: "x.pdl", Text: crossLinked}}, WithAllowList(allowlist.MustNew("test",
				allowlist.Pair{Referrer: "A.Left", Target: "B.Right"},
				allowlist.Pair{Referrer: "B.Right", Target: "A.Left"},
			)))
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			return res
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typeCheck(t, tt.res(t).Code)
		})
	}
}
