package i18n

import (
	"fmt"
	"sync"
)

// Translator retrieves localized messages for incompatibility codes.
// data carries optional values to embed in the message (for example "field"
// or "attr").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "kind_mismatch":
			return "スキーマの種類が一致しません"
		case "missing_default":
			if f := data["field"]; f != "" {
				return fmt.Sprintf("フィールド %s にはデフォルト値が必要です", f)
			}
			return "デフォルト値が必要です"
		case "symbol_set_mismatch":
			return "enum のシンボル集合が一致しません"
		case "union_arity_mismatch":
			return "union のメンバー数が一致しません"
		case "fixed_mismatch":
			if a := data["attr"]; a != "" {
				return fmt.Sprintf("fixed の %s が一致しません", a)
			}
			return "fixed が一致しません"
		case "primitive_mismatch":
			return "プリミティブ型が一致しません"
		case "too_deep":
			return "スキーマのネストが深すぎます"
		}
	default: // "en"
		switch code {
		case "kind_mismatch":
			return "schema kinds differ"
		case "missing_default":
			if f := data["field"]; f != "" {
				return fmt.Sprintf("field %s must have default value", f)
			}
			return "field must have default value"
		case "symbol_set_mismatch":
			return "enum symbols differ"
		case "union_arity_mismatch":
			return "union member count differs"
		case "fixed_mismatch":
			if a := data["attr"]; a != "" {
				return fmt.Sprintf("fixed %s differs", a)
			}
			return "fixed differs"
		case "primitive_mismatch":
			return "primitive types differ"
		case "too_deep":
			return "schema nesting exceeds the depth limit"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
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
