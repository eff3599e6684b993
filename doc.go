// Package pdlgen provides:
//
// - A compiler from protocol-definition (PDL) schema files to Go bindings
// - Cross-domain reference resolution with an allow-list for sanctioned cycles
// - Stability-tier filtering (experimental/deprecated) with soundness checks
// - A stable error model: one typed error per stage, each with a code
//
// Design policy:
//   - Keep only public APIs in the root package; put the compiler stages under internal/.
//   - Place the runtime contract under codec/, the cycle table under allowlist/,
//     and the CLI under cmd/pdlgen.
//   - Output is deterministic: the same inputs always give the same bytes.
//
// Typical usage:
//
//	g := pdlgen.New(pdlgen.WithExperimental(true), pdlgen.WithDeprecated(false))
//	res, err := g.CompileSources([]pdlgen.Input{
//		{Name: "js_protocol.pdl", Text: js},
//		{Name: "browser_protocol.pdl", Text: browser},
//	})
//	err = res.WriteFiles("cdp")
//
// With WithOutDir the files are written as part of the compilation:
//
//	g = pdlgen.New(pdlgen.WithOutDir("cdp"))
//	res, err = g.CompileFiles(ctx, source.Dir{Root: "pdl"}, "js_protocol.pdl", "browser_protocol.pdl")
package pdlgen
