package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// QuestionID identifies a question inside the questionnaire
type QuestionID int

// EndOfSurvey is the sentinel returned when no further question follows
const EndOfSurvey QuestionID = 0

// IsEnd reports whether the id is the end-of-survey sentinel
func (id QuestionID) IsEnd() bool {
	return id == EndOfSurvey
}

func (id QuestionID) String() string {
	if id.IsEnd() {
		return "END"
	}
	return "Q" + strconv.Itoa(int(id))
}

// ParseSkipTarget parses skip targets in the "Q3", "3" or "END" forms
func ParseSkipTarget(raw string) (QuestionID, error) {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, "end") {
		return EndOfSurvey, nil
	}

	s = strings.TrimPrefix(strings.TrimPrefix(s, "Q"), "q")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return EndOfSurvey, fmt.Errorf("%w: skip target %q", ErrInvalidFormat, raw)
	}

	return QuestionID(n), nil
}

// ShapeKind is the tag of an answer shape
type ShapeKind string

const (
	ShapeEnumerated ShapeKind = "enumerated"
	ShapeScale      ShapeKind = "scale"
	ShapeOpen       ShapeKind = "open"
)

// AnswerShape describes the answer space of a question.
// Only the fields belonging to Kind are meaningful.
type AnswerShape struct {
	Kind    ShapeKind `json:"kind"`
	Options []string  `json:"options,omitempty"`
	Min     int       `json:"min,omitempty"`
	Max     int       `json:"max,omitempty"`
}

// Enumerated builds an enumerated-options shape
func Enumerated(options ...string) AnswerShape {
	return AnswerShape{Kind: ShapeEnumerated, Options: options}
}

// Scale builds an inclusive numeric scale shape
func Scale(min, max int) AnswerShape {
	return AnswerShape{Kind: ShapeScale, Min: min, Max: max}
}

// Open builds an unconstrained shape
func Open() AnswerShape {
	return AnswerShape{Kind: ShapeOpen}
}

// Describe renders the answer space the way it is shown to the NLU collaborator
func (s AnswerShape) Describe() string {
	switch s.Kind {
	case ShapeEnumerated:
		quoted := make([]string, 0, len(s.Options))
		for _, o := range s.Options {
			quoted = append(quoted, strconv.Quote(o))
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	case ShapeScale:
		return fmt.Sprintf("integer from %d to %d inclusive", s.Min, s.Max)
	default:
		return "any response"
	}
}

// Question is a single survey question
type Question struct {
	ID    QuestionID            `json:"id"`
	Text  string                `json:"text"`
	Shape AnswerShape           `json:"shape"`
	Skip  map[string]QuestionID `json:"skip,omitempty"`
}

// Kind returns the shape tag of the question
func (q Question) Kind() ShapeKind {
	return q.Shape.Kind
}

// CanonicalOption returns the canonical spelling of an option, matching case-insensitively
func (q Question) CanonicalOption(value string) (string, bool) {
	if q.Shape.Kind != ShapeEnumerated {
		return "", false
	}
	v := strings.TrimSpace(value)
	for _, o := range q.Shape.Options {
		if strings.EqualFold(o, v) {
			return o, true
		}
	}
	return "", false
}

// InScale reports whether n lies within the question's inclusive scale
func (q Question) InScale(n int) bool {
	return q.Shape.Kind == ShapeScale && n >= q.Shape.Min && n <= q.Shape.Max
}

// IsCanonical reports whether value is a member of the question's canonical answer space
func (q Question) IsCanonical(value string) bool {
	switch q.Shape.Kind {
	case ShapeEnumerated:
		_, ok := q.CanonicalOption(value)
		return ok
	case ShapeScale:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		return err == nil && q.InScale(n)
	default:
		return strings.TrimSpace(value) != ""
	}
}

// ConsentPrompt is the yes/no question asked after the language is chosen
type ConsentPrompt struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// AsQuestion lets the composer phrase the consent prompt like any other question
func (c ConsentPrompt) AsQuestion() Question {
	return Question{
		Text:  c.Text,
		Shape: Enumerated(c.Options...),
	}
}

// Questionnaire is the immutable survey definition
type Questionnaire struct {
	Title     string        `json:"title"`
	Version   string        `json:"version"`
	Consent   ConsentPrompt `json:"consent"`
	Questions []Question    `json:"questions"`
}
