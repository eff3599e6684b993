package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("circular_dependency", nil); msg != "circular dependency between domains" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("circular_dependency", nil); msg == "circular dependency between domains" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// unknown languages fall back to en
	SetLanguage("xx")
	if msg := T("parse_error", map[string]string{"subject": "dom.pdl:3"}); msg != "schema syntax error: dom.pdl:3" {
		t.Fatalf("got %q", msg)
	}

	SetLanguage("en")
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "!" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	if msg := T("lex_error", nil); msg != "!lex_error" {
		t.Fatalf("custom translator ignored: %q", msg)
	}
	SetTranslator(nil)
	if msg := T("unknown_code", nil); msg != "unknown_code" {
		t.Fatalf("unknown code = %q", msg)
	}
}
