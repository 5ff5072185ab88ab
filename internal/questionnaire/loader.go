package questionnaire

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/futig/survey-assistant/internal/entity"
	"gopkg.in/yaml.v3"
)

//go:embed cahps.yaml
var defaultDefinition []byte

// definition mirrors the YAML layout of a questionnaire file
type definition struct {
	Title     string        `yaml:"title"`
	Version   string        `yaml:"version"`
	Consent   consentDef    `yaml:"consent"`
	Questions []questionDef `yaml:"questions"`
}

type consentDef struct {
	Text    string   `yaml:"text"`
	Options []string `yaml:"options"`
}

type scaleDef struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type questionDef struct {
	ID      int               `yaml:"id"`
	Text    string            `yaml:"text"`
	Options []string          `yaml:"options"`
	Scale   *scaleDef         `yaml:"scale"`
	Open    bool              `yaml:"open"`
	Skip    map[string]string `yaml:"skip"`
}

// LoadDefault loads the embedded CAHPS questionnaire
func LoadDefault() (*Store, error) {
	return Load(defaultDefinition)
}

// LoadFile loads a questionnaire definition from path, or the embedded one when path is empty
func LoadFile(path string) (*Store, error) {
	if path == "" {
		return LoadDefault()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read questionnaire file: %v", entity.ErrConfiguration, err)
	}

	return Load(data)
}

// Load parses and validates a YAML questionnaire definition.
// Every returned error wraps entity.ErrConfiguration.
func Load(data []byte) (*Store, error) {
	var def definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: parse questionnaire: %v", entity.ErrConfiguration, err)
	}

	q, err := build(&def)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrConfiguration, err)
	}

	return newStore(q), nil
}

func build(def *definition) (*entity.Questionnaire, error) {
	if len(def.Questions) == 0 {
		return nil, fmt.Errorf("questionnaire has no questions")
	}

	position := make(map[entity.QuestionID]int, len(def.Questions))
	questions := make([]entity.Question, 0, len(def.Questions))

	for i, qd := range def.Questions {
		if qd.ID <= 0 {
			return nil, fmt.Errorf("question #%d: identifier must be positive, got %d", i+1, qd.ID)
		}
		id := entity.QuestionID(qd.ID)
		if _, dup := position[id]; dup {
			return nil, fmt.Errorf("question %s: duplicate identifier", id)
		}
		if strings.TrimSpace(qd.Text) == "" {
			return nil, fmt.Errorf("question %s: empty text", id)
		}

		shape, err := buildShape(qd)
		if err != nil {
			return nil, fmt.Errorf("question %s: %w", id, err)
		}

		position[id] = i
		questions = append(questions, entity.Question{
			ID:    id,
			Text:  qd.Text,
			Shape: shape,
		})
	}

	// Skip edges are resolved after all identifiers are known
	for i, qd := range def.Questions {
		if len(qd.Skip) == 0 {
			continue
		}
		q := &questions[i]
		skip := make(map[string]entity.QuestionID, len(qd.Skip))

		for key, rawTarget := range qd.Skip {
			canonical, ok := canonicalKey(*q, key)
			if !ok {
				return nil, fmt.Errorf("question %s: skip key %q is not a valid answer", q.ID, key)
			}

			target, err := entity.ParseSkipTarget(rawTarget)
			if err != nil {
				return nil, fmt.Errorf("question %s: %w", q.ID, err)
			}

			if !target.IsEnd() {
				pos, exists := position[target]
				if !exists {
					return nil, fmt.Errorf("question %s: skip target %s does not exist", q.ID, target)
				}
				if pos <= i {
					return nil, fmt.Errorf("question %s: skip target %s must come later in the sequence", q.ID, target)
				}
			}

			skip[canonical] = target
		}
		q.Skip = skip
	}

	consent := entity.ConsentPrompt{
		Text:    def.Consent.Text,
		Options: def.Consent.Options,
	}
	if strings.TrimSpace(consent.Text) == "" {
		return nil, fmt.Errorf("consent prompt has no text")
	}
	if len(consent.Options) == 0 {
		consent.Options = []string{"Yes", "No"}
	}

	return &entity.Questionnaire{
		Title:     def.Title,
		Version:   def.Version,
		Consent:   consent,
		Questions: questions,
	}, nil
}

func buildShape(qd questionDef) (entity.AnswerShape, error) {
	shapes := 0
	if len(qd.Options) > 0 {
		shapes++
	}
	if qd.Scale != nil {
		shapes++
	}
	if qd.Open {
		shapes++
	}
	if shapes > 1 {
		return entity.AnswerShape{}, fmt.Errorf("options, scale and open are mutually exclusive")
	}

	switch {
	case len(qd.Options) > 0:
		seen := make(map[string]struct{}, len(qd.Options))
		for _, o := range qd.Options {
			key := strings.ToLower(strings.TrimSpace(o))
			if key == "" {
				return entity.AnswerShape{}, fmt.Errorf("empty option")
			}
			if _, dup := seen[key]; dup {
				return entity.AnswerShape{}, fmt.Errorf("duplicate option %q", o)
			}
			seen[key] = struct{}{}
		}
		return entity.Enumerated(qd.Options...), nil
	case qd.Scale != nil:
		if qd.Scale.Min > qd.Scale.Max {
			return entity.AnswerShape{}, fmt.Errorf("scale min %d is greater than max %d", qd.Scale.Min, qd.Scale.Max)
		}
		return entity.Scale(qd.Scale.Min, qd.Scale.Max), nil
	default:
		return entity.Open(), nil
	}
}

// canonicalKey maps a skip key onto the canonical spelling used for lookups
func canonicalKey(q entity.Question, key string) (string, bool) {
	switch q.Kind() {
	case entity.ShapeEnumerated:
		return q.CanonicalOption(key)
	case entity.ShapeScale:
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || !q.InScale(n) {
			return "", false
		}
		return strconv.Itoa(n), true
	default:
		return "", false
	}
}
