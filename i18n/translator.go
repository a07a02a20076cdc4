package i18n

import "sync"

// Translator retrieves localized category labels for issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":          "invalid type",
		"required":              "required property missing",
		"map_key":               "map key is not a string",
		"unregistered":          "type is not registered",
		"undescribable":         "type cannot be described",
		"recursion":             "maximum depth exceeded",
		"ref_unresolved":        "reference cannot be resolved",
		"read_only":             "field is read-only",
		"parse_error":           "parse error",
		"invalid_enum":          "invalid enum value",
		"discriminator_unknown": "unknown discriminator value",
		"allocation":            "allocation failed",
		"asset":                 "asset cannot be loaded",
	},
	"ja": {
		"invalid_type":          "型が不正です",
		"required":              "必須プロパティが不足しています",
		"map_key":               "マップのキーが文字列ではありません",
		"unregistered":          "型が登録されていません",
		"undescribable":         "型を記述できません",
		"recursion":             "最大深度を超えました",
		"ref_unresolved":        "参照を解決できません",
		"read_only":             "読み取り専用フィールドです",
		"parse_error":           "解析エラー",
		"invalid_enum":          "列挙値が不正です",
		"discriminator_unknown": "未知の判別値です",
		"allocation":            "割り当てに失敗しました",
		"asset":                 "アセットを読み込めません",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	if msg, ok := dictionaries[t.lang][code]; ok {
		return msg
	}
	return code
}

var (
	mu                           = sync.RWMutex{}
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
