package i18n

import "sync"

// Translator retrieves localized headlines for diagnostic codes.
// data provides optional metadata to embed in the message (for example,
// "subject").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dict = map[string]map[string]string{
	"en": {
		"lex_error":            "unrecognised input",
		"parse_error":          "schema syntax error",
		"duplicate_definition": "duplicate definition",
		"unresolved_type":      "unresolved reference",
		"redirect_cycle":       "redirect cycle",
		"circular_dependency":  "circular dependency between domains",
		"pruned_dependency":    "required reference to a filtered-out type",
		"identifier_collision": "generated identifier collision",
		"config_error":         "invalid configuration",
		"stale_output":         "generated code is out of date",
	},
	"ja": {
		"lex_error":            "認識できない入力です",
		"parse_error":          "スキーマの構文エラーです",
		"duplicate_definition": "定義が重複しています",
		"unresolved_type":      "参照を解決できません",
		"redirect_cycle":       "リダイレクトが循環しています",
		"circular_dependency":  "ドメイン間に循環依存があります",
		"pruned_dependency":    "除外された型を必須で参照しています",
		"identifier_collision": "生成される識別子が衝突しています",
		"config_error":         "設定が不正です",
		"stale_output":         "生成コードが古くなっています",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dict[t.lang][code]
	if !ok {
		msg = code
	}
	if s := data["subject"]; s != "" {
		msg += ": " + s
	}
	return msg
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dict[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
