package language

import (
	"testing"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		input string
		want  entity.Language
	}{
		{"English", English},
		{"  english ", English},
		{"SPANISH", Spanish},
		{"Español", Spanish},
		{"hindi", Hindi},
		{"हिंदी", Hindi},
		{"中文", Chinese},
		{"Chinese", Chinese},
		{"Français", French},
		{"french", French},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Lookup(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	for _, input := range []string{"klingon", "", "eng", "english please"} {
		_, ok := Lookup(input)
		assert.False(t, ok, input)
	}
}

func TestIsAffirmative(t *testing.T) {
	assert.True(t, IsAffirmative(English, "Yes"))
	assert.True(t, IsAffirmative(English, " YES "))
	assert.True(t, IsAffirmative(Spanish, "sí"))
	assert.True(t, IsAffirmative(Spanish, "si"))
	assert.True(t, IsAffirmative(Hindi, "हाँ"))
	assert.True(t, IsAffirmative(Chinese, "是"))
	assert.True(t, IsAffirmative(French, "Oui"))

	assert.False(t, IsAffirmative(English, "no"))
	assert.False(t, IsAffirmative(English, "yeah"))
	assert.False(t, IsAffirmative(French, "yes"))
	assert.False(t, IsAffirmative(entity.Language{Code: "xx"}, "yes"))
}

func TestConsentOptions(t *testing.T) {
	for _, choice := range Supported() {
		options := ConsentOptions(choice.Language)
		require.Len(t, options, 2)
		assert.True(t, IsAffirmative(choice.Language, options[0]), choice.Language.Code)
		assert.False(t, IsAffirmative(choice.Language, options[1]), choice.Language.Code)
	}

	assert.Equal(t, []string{"Yes", "No"}, ConsentOptions(entity.Language{Code: "xx"}))
}

func TestAffirmativeWord(t *testing.T) {
	assert.Equal(t, "yes", AffirmativeWord(English))
	assert.Equal(t, "sí", AffirmativeWord(Spanish))
	assert.Equal(t, "oui", AffirmativeWord(French))
	assert.Equal(t, "yes", AffirmativeWord(entity.Language{Code: "xx"}))
}

func TestSupported_AllResolvable(t *testing.T) {
	choices := Supported()
	require.Len(t, choices, 5)
	for _, c := range choices {
		got, ok := Lookup(c.Label)
		require.True(t, ok, c.Label)
		assert.Equal(t, c.Language, got)
	}
}

func TestRender(t *testing.T) {
	assert.Equal(t,
		"Thank you! Your survey responses have been successfully saved. We appreciate your participation in our healthcare survey.",
		Render(TextThankYou, &English))
	assert.Equal(t, Render(TextThankYou, &English), Render(TextThankYou, nil))
	assert.Equal(t, Render(TextRetry, &English), Render(TextRetry, &entity.Language{Code: "xx"}))
	assert.Contains(t, Render(TextThankYou, &Chinese), "谢谢")

	assert.Contains(t, Render(TextConsentReminder, &English), `"yes"`)
	assert.Contains(t, Render(TextConsentReminder, &French), "oui")
	assert.Contains(t, Render(TextConsentReminder, nil), "yes")
}

func TestPrompts(t *testing.T) {
	for _, c := range Supported() {
		assert.Contains(t, LanguagePrompt, c.Label)
		assert.Contains(t, InvalidLanguage, c.Label)
	}
}
