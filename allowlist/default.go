package allowlist

// DefaultVersion is the revision of the built-in table.
const DefaultVersion = "1"

// defaultTargets are the Chrome DevTools Protocol types known to sit on
// cross-domain cycles. Any referrer may point at them.
var defaultTargets = []string{
	"Browser.BrowserContextID",
	"DOM.BackendNodeId",
	"DOM.BackendNode",
	"DOM.NodeId",
	"DOM.Node",
	"DOM.NodeType",
	"DOM.PseudoType",
	"DOM.RGBA",
	"DOM.ShadowRootType",
	"Network.LoaderId",
	"Network.MonotonicTime",
	"Network.TimeSinceEpoch",
	"Page.FrameId",
	"Page.Frame",
}

// Default returns the built-in table.
func Default() *List {
	pairs := make([]Pair, 0, len(defaultTargets))
	for _, t := range defaultTargets {
		pairs = append(pairs, Pair{Referrer: Any, Target: t})
	}
	return MustNew(DefaultVersion, pairs...)
}
