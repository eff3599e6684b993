// Command pdlgen compiles protocol-definition (PDL) files into Go bindings.
package main

import "github.com/reoring/pdlgen/internal/cli"

func main() {
	cli.Execute()
}
