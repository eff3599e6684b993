package allowlist_test

import (
	"strings"
	"testing"

	"github.com/reoring/pdlgen/allowlist"
)

func TestAllowsIsCaseInsensitive(t *testing.T) {
	l := allowlist.MustNew("t", allowlist.Pair{Referrer: "A.Get", Target: "B.Id"})
	if !l.Allows("a.get", "b.ID") {
		t.Fatalf("expected pair to match case-insensitively")
	}
	if l.Allows("B.Node", "B.Id") {
		t.Fatalf("unexpected match for another referrer")
	}
	if l.Allows("B.Id", "A.Get") {
		t.Fatalf("pairs are directed")
	}
}

func TestWildcardReferrer(t *testing.T) {
	l := allowlist.Default()
	if !l.Allows("Network.Request", "page.frameid") {
		t.Fatalf("default table must sanction Page.FrameId from any referrer")
	}
	if l.Allows("Network.Request", "Page.Navigate") {
		t.Fatalf("unexpected match")
	}
	if l.Version() != allowlist.DefaultVersion || l.Len() != 14 {
		t.Fatalf("default = %s/%d", l.Version(), l.Len())
	}
}

func TestNilListAllowsNothing(t *testing.T) {
	var l *allowlist.List
	if l.Allows("A.B", "C.D") || l.Len() != 0 || l.Pairs() != nil {
		t.Fatalf("nil list must be empty")
	}
}

func TestNewRejectsUnqualified(t *testing.T) {
	if _, err := allowlist.New("t", allowlist.Pair{Referrer: "*", Target: "NodeId"}); err == nil {
		t.Fatalf("expected error for unqualified target")
	}
	if _, err := allowlist.New("t", allowlist.Pair{Referrer: "Get", Target: "B.Id"}); err == nil {
		t.Fatalf("expected error for unqualified referrer")
	}
}

func TestLoadYAML(t *testing.T) {
	src := `version: "7"
pairs:
  - referrer: A.Get
    target: B.Id
  - B.Node -> A.Handle
  - referrer: "*"
    target: DOM.NodeId
`
	l, err := allowlist.Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if l.Version() != "7" || l.Len() != 3 {
		t.Fatalf("list = %s/%d", l.Version(), l.Len())
	}
	if !l.Allows("B.Node", "A.Handle") || !l.Allows("X.Y", "dom.nodeid") {
		t.Fatalf("loaded pairs not honored: %v", l.Pairs())
	}

	out, err := l.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	again, err := allowlist.Load(strings.NewReader(string(out)))
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if again.Len() != 3 || !again.Allows("A.Get", "B.Id") {
		t.Fatalf("reloaded = %v", again.Pairs())
	}
}

func TestLoadErrors(t *testing.T) {
	for _, src := range []string{
		"pairs:\n  - just-a-name\n",
		"pairs:\n  - [a, b]\n",
		"unknown: 1\n",
		"pairs:\n  - referrer: A.B\n    target: C\n",
		"pairs:\n  - referer: A.B\n    target: C.D\n",
		"pairs:\n  - referrer: A.B\n    target: C.D\n    note: typo\n",
	} {
		if _, err := allowlist.Load(strings.NewReader(src)); err == nil {
			t.Fatalf("Load(%q) expected error", src)
		}
	}
}

func TestLoadRejectsUnknownPairField(t *testing.T) {
	_, err := allowlist.Load(strings.NewReader("version: \"1\"\npairs:\n  - referrer: A.B\n    target: C.D\n  - referrer: E.F\n    targets: G.H\n"))
	if err == nil || !strings.Contains(err.Error(), `line 6: unknown pair field "targets"`) {
		t.Fatalf("error = %v", err)
	}
}

func TestWith(t *testing.T) {
	base := allowlist.MustNew("3")
	ext, err := base.With(allowlist.Pair{Referrer: "A.Get", Target: "B.Id"})
	if err != nil {
		t.Fatalf("With() error = %v", err)
	}
	if base.Len() != 0 || ext.Len() != 1 || ext.Version() != "3" {
		t.Fatalf("base=%d ext=%d", base.Len(), ext.Len())
	}
}
