package nlu

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/futig/survey-assistant/internal/entity"
)

// Invalid is the interpretation returned when no canonical value fits
const Invalid = "INVALID"

const quoteRunes = "\"'`“”‘’«»"

// cleanToken strips whitespace, wrapping quotes and trailing punctuation
// that chat models like to add around one-word answers.
func cleanToken(s string) string {
	s = strings.TrimSpace(s)
	for {
		prev := s
		s = strings.TrimRightFunc(s, func(r rune) bool {
			return r == '.' || r == '!' || r == '?' || r == '。' || unicode.IsSpace(r)
		})
		s = strings.Trim(s, quoteRunes)
		s = strings.TrimSpace(s)
		if s == prev {
			return s
		}
	}
}

// parseBool accepts exactly "true" or "false"; ok is false for anything else
func parseBool(s string) (value bool, ok bool) {
	switch strings.ToLower(cleanToken(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// parseInterpretation maps a completion onto the question's canonical answer space
func parseInterpretation(q entity.Question, s string) string {
	token := cleanToken(s)
	if token == "" || strings.EqualFold(token, Invalid) {
		return Invalid
	}

	if canonical, ok := canonicalValue(q, token); ok {
		return canonical
	}

	return Invalid
}

// canonicalValue returns the canonical spelling of value when it already
// belongs to the question's answer space
func canonicalValue(q entity.Question, value string) (string, bool) {
	v := strings.TrimSpace(value)
	switch q.Kind() {
	case entity.ShapeEnumerated:
		return q.CanonicalOption(v)
	case entity.ShapeScale:
		n, err := strconv.Atoi(v)
		if err != nil || !q.InScale(n) {
			return "", false
		}
		return strconv.Itoa(n), true
	default:
		if v == "" {
			return "", false
		}
		return v, true
	}
}
