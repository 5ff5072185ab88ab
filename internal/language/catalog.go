package language

import (
	"strings"

	"github.com/futig/survey-assistant/internal/entity"
)

var (
	English = entity.Language{Code: "en", Name: "English"}
	Spanish = entity.Language{Code: "es", Name: "Spanish"}
	Hindi   = entity.Language{Code: "hi", Name: "Hindi"}
	Chinese = entity.Language{Code: "zh", Name: "Chinese"}
	French  = entity.Language{Code: "fr", Name: "French"}
)

// aliases maps normalized names and autonyms to descriptors
var aliases = buildAliases([]alias{
	{"english", English},
	{"spanish", Spanish},
	{"español", Spanish},
	{"hindi", Hindi},
	{"हिंदी", Hindi},
	{"chinese", Chinese},
	{"中文", Chinese},
	{"french", French},
	{"français", French},
})

type alias struct {
	name     string
	language entity.Language
}

func buildAliases(list []alias) map[string]entity.Language {
	m := make(map[string]entity.Language, len(list))
	for _, a := range list {
		m[a.name] = a.language
	}
	return m
}

// affirmatives are the literal consent tokens accepted per language code
var affirmatives = map[string][]string{
	"en": {"yes"},
	"es": {"sí", "si"},
	"hi": {"हाँ", "हां"},
	"zh": {"是", "是的"},
	"fr": {"oui"},
}

// consentReplies are the quick-reply labels offered while consent is pending.
// The first label of each pair must satisfy IsAffirmative.
var consentReplies = map[string][2]string{
	"en": {"Yes", "No"},
	"es": {"Sí", "No"},
	"hi": {"हाँ", "नहीं"},
	"zh": {"是", "否"},
	"fr": {"Oui", "Non"},
}

// Normalize trims and lowercases user input before catalog lookups
func Normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Lookup resolves a language name or autonym. Matching is exact on the normalized input.
func Lookup(input string) (entity.Language, bool) {
	lang, ok := aliases[Normalize(input)]
	return lang, ok
}

// IsAffirmative reports whether input is a consent token of lang
func IsAffirmative(lang entity.Language, input string) bool {
	normalized := Normalize(input)
	for _, word := range affirmatives[lang.Code] {
		if normalized == word {
			return true
		}
	}
	return false
}

// AffirmativeWord returns the primary consent token of lang
func AffirmativeWord(lang entity.Language) string {
	words := affirmatives[lang.Code]
	if len(words) == 0 {
		return affirmatives[English.Code][0]
	}
	return words[0]
}

// ConsentOptions returns the affirmative and negative quick replies of lang
func ConsentOptions(lang entity.Language) []string {
	pair, ok := consentReplies[lang.Code]
	if !ok {
		pair = consentReplies[English.Code]
	}
	return []string{pair[0], pair[1]}
}

// Supported returns the catalog's descriptors with the label shown to users
func Supported() []Choice {
	return []Choice{
		{Language: English, Label: "English"},
		{Language: Spanish, Label: "Español"},
		{Language: Hindi, Label: "हिंदी"},
		{Language: Chinese, Label: "中文"},
		{Language: French, Label: "Français"},
	}
}

// Choice is a selectable language with its display label
type Choice struct {
	Language entity.Language
	Label    string
}
