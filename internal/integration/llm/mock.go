package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers completions offline from the structured request hints.
// It understands a small multilingual vocabulary, digits and English number words.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Complete(ctx context.Context, req *entity.CompletionRequest) (string, error) {
	ctxzap.Info(ctx, "[MOCK] completion via LLM", zap.String("task", string(req.Task)))

	h := req.Hints
	switch req.Task {
	case entity.TaskValidate:
		if mockInterpret(h.Question, h.Response) != "" {
			return "true", nil
		}
		return "false", nil
	case entity.TaskInterpret:
		if value := mockInterpret(h.Question, h.Response); value != "" {
			return value, nil
		}
		return "INVALID", nil
	case entity.TaskOffTopic:
		offTopic := mockInterpret(h.Question, h.Response) == "" && strings.Contains(h.Response, "?")
		return strconv.FormatBool(offTopic), nil
	case entity.TaskCompose:
		return mockCompose(h), nil
	default:
		return "", fmt.Errorf("mock: unsupported task %q", req.Task)
	}
}

var synonyms = map[string][]string{
	"Yes":       {"yes", "yeah", "yep", "sure", "y", "sí", "si", "claro", "oui", "हाँ", "हां", "जी", "是", "是的", "对"},
	"No":        {"no", "nope", "nah", "n", "non", "नहीं", "不", "不是", "否", "没有"},
	"Never":     {"never", "nunca", "jamais", "कभी नहीं", "从不", "从来没有"},
	"Sometimes": {"sometimes", "a veces", "parfois", "कभी-कभी", "有时", "有时候"},
	"Usually":   {"usually", "mostly", "generalmente", "normalmente", "habituellement", "souvent", "आमतौर पर", "通常"},
	"Always":    {"always", "siempre", "toujours", "हमेशा", "总是", "一直"},
	"None":      {"none", "zero", "ninguna", "ninguno", "aucun", "aucune", "कोई नहीं", "没有"},
}

var numberWords = map[string]int{
	"zero": 0, "one": 1, "once": 1, "two": 2, "twice": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

var (
	digitsRe = regexp.MustCompile(`\d+`)
	wordRe   = regexp.MustCompile(`[\p{L}'-]+`)
	rangeRe  = regexp.MustCompile(`^(\d+)\s*(?:to|-)\s*(\d+)$`)
	orMoreRe = regexp.MustCompile(`^(\d+)\s*or more$`)
	timesRe  = regexp.MustCompile(`^(\d+)(?:\s*times?)?$`)
)

// mockInterpret returns the canonical answer for response, or "" when none fits
func mockInterpret(q entity.Question, response string) string {
	text := strings.ToLower(strings.TrimSpace(response))
	if text == "" {
		return ""
	}

	switch q.Kind() {
	case entity.ShapeOpen:
		return strings.TrimSpace(response)
	case entity.ShapeScale:
		if n, ok := firstNumber(text); ok && q.InScale(n) {
			return strconv.Itoa(n)
		}
		return ""
	}

	if canonical, ok := q.CanonicalOption(text); ok {
		return canonical
	}

	// longest match wins so that "不是" beats "是"
	best, bestLen := "", 0
	for _, option := range q.Shape.Options {
		for _, word := range synonyms[option] {
			if len(word) > bestLen && containsWord(text, word) {
				best, bestLen = option, len(word)
			}
		}
	}
	if best != "" {
		return best
	}

	if n, ok := firstNumber(text); ok {
		for _, option := range q.Shape.Options {
			if lo, hi, ok := optionRange(option); ok && n >= lo && n <= hi {
				return option
			}
		}
	}

	return ""
}

func containsWord(text, word string) bool {
	// Devanagari and CJK tokens are matched as substrings
	if strings.ContainsFunc(word, func(r rune) bool { return r >= 0x0900 }) || strings.Contains(word, " ") {
		return strings.Contains(text, word)
	}
	for _, w := range wordRe.FindAllString(text, -1) {
		if w == word {
			return true
		}
	}
	return false
}

func firstNumber(text string) (int, bool) {
	if d := digitsRe.FindString(text); d != "" {
		n, err := strconv.Atoi(d)
		return n, err == nil
	}
	for _, w := range wordRe.FindAllString(text, -1) {
		if n, ok := numberWords[w]; ok {
			return n, true
		}
	}
	return 0, false
}

// optionRange reads numeric buckets such as "None", "1 time", "5 to 9" and "10 or more"
func optionRange(option string) (int, int, bool) {
	o := strings.ToLower(strings.TrimSpace(option))
	if o == "none" {
		return 0, 0, true
	}
	if m := rangeRe.FindStringSubmatch(o); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return lo, hi, true
	}
	if m := orMoreRe.FindStringSubmatch(o); m != nil {
		lo, _ := strconv.Atoi(m[1])
		return lo, int(^uint(0) >> 1), true
	}
	if m := timesRe.FindStringSubmatch(o); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, n, true
	}
	return 0, 0, false
}

var composeLeads = map[string]map[string]string{
	"en": {"ask": "", "reask_invalid": "Please choose one of the valid options.", "redirect_offtopic": "Let's get back to the survey."},
	"es": {"ask": "", "reask_invalid": "Por favor, elija una de las opciones válidas.", "redirect_offtopic": "Volvamos a la encuesta."},
	"hi": {"ask": "", "reask_invalid": "कृपया मान्य विकल्पों में से एक चुनें।", "redirect_offtopic": "आइए सर्वेक्षण पर वापस चलें।"},
	"zh": {"ask": "", "reask_invalid": "请从有效选项中选择一个。", "redirect_offtopic": "让我们回到调查。"},
	"fr": {"ask": "", "reask_invalid": "Veuillez choisir l'une des options valides.", "redirect_offtopic": "Revenons au questionnaire."},
}

func mockCompose(h entity.NLUHints) string {
	leads, ok := composeLeads[h.Language.Code]
	if !ok {
		leads = composeLeads["en"]
	}

	var b strings.Builder
	if lead := leads[h.Mode]; lead != "" {
		b.WriteString(lead)
		b.WriteString(" ")
	}
	b.WriteString(h.Question.Text)
	if h.Question.Kind() != entity.ShapeOpen {
		b.WriteString("\n")
		b.WriteString(h.Question.Shape.Describe())
	}
	return b.String()
}
