package survey

import (
	"context"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/futig/survey-assistant/internal/nlu"
)

type Interpreter interface {
	Validate(ctx context.Context, q entity.Question, raw string, lang entity.Language) (bool, error)
	Interpret(ctx context.Context, q entity.Question, raw string, lang entity.Language) (string, error)
	IsOffTopic(ctx context.Context, q entity.Question, raw string) (bool, error)
}

type Composer interface {
	Compose(ctx context.Context, q entity.Question, mode nlu.Mode, lang entity.Language) (string, error)
}

// Saver commits a completed answer set. Implementations must be idempotent per session.
type Saver interface {
	Save(ctx context.Context, result entity.SurveyResult) error
}
