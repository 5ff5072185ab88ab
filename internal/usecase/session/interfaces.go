package session

import (
	"context"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/futig/survey-assistant/internal/survey"
)

type Engine interface {
	Start(id string) entity.Session
	Advance(ctx context.Context, session entity.Session, input string) (survey.Turn, error)
}

// QuestionCatalog exposes the questionnaire for rendering options and answer sheets
type QuestionCatalog interface {
	Get(id entity.QuestionID) (entity.Question, bool)
	Consent() entity.ConsentPrompt
	Title() string
}

// AnswerArchive reads committed answer sets for sessions no longer held in the session store
type AnswerArchive interface {
	GetAnswers(ctx context.Context, sessionID string) ([]entity.Answer, error)
}

// TurnLocker serializes turns of one session. Lock returns the release function.
type TurnLocker interface {
	Lock(ctx context.Context, sessionID string) (func(), error)
}
