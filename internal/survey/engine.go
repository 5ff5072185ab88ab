package survey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/futig/survey-assistant/internal/language"
	"github.com/futig/survey-assistant/internal/questionnaire"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Turn is the outcome of one user utterance: the new session value and the
// assistant messages appended during the turn.
type Turn struct {
	Session entity.Session
	Replies []entity.Message
}

// Engine is the survey state machine. It holds no per-session state;
// sessions are passed in and returned as values.
type Engine struct {
	store        *questionnaire.Store
	resolver     *questionnaire.Resolver
	interpreter  Interpreter
	composer     Composer
	saver        Saver
	now          func() time.Time
	offTopicGate bool
}

type Option func(*Engine)

// WithOffTopicGate makes InProgress turns consult the off-topic check before validation
func WithOffTopicGate(enabled bool) Option {
	return func(e *Engine) {
		e.offTopicGate = enabled
	}
}

// WithClock overrides the transcript timestamp source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(
	store *questionnaire.Store,
	interpreter Interpreter,
	composer Composer,
	saver Saver,
	opts ...Option,
) *Engine {
	e := &Engine{
		store:       store,
		resolver:    questionnaire.NewResolver(store),
		interpreter: interpreter,
		composer:    composer,
		saver:       saver,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start creates a session awaiting language selection, with the language prompt as its first message
func (e *Engine) Start(id string) entity.Session {
	now := e.now()
	session := entity.Session{
		ID:        id,
		State:     entity.StateAwaitingLanguage,
		CreatedAt: now,
		UpdatedAt: now,
	}
	session.Append(entity.RoleAssistant, language.LanguagePrompt, now)
	return session
}

// Advance applies one user utterance to session and returns the resulting turn.
// The input session is never modified. Collaborator faults are absorbed into an
// apology turn; the returned error is non-nil only for completed sessions and
// corrupted state.
func (e *Engine) Advance(ctx context.Context, session entity.Session, input string) (Turn, error) {
	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(
		zap.String("session_id", session.ID),
		zap.String("state", string(session.State)),
	))

	if session.State == entity.StateCompleted {
		return Turn{Session: session}, &entity.LocalizedError{
			Err:     fmt.Errorf("%w: %s", entity.ErrSessionCompleted, session.ID),
			Message: language.Render(language.TextAlreadyCompleted, session.Language),
		}
	}

	next := e.withUserTurn(session, input)
	mark := len(next.Transcript)

	var err error
	switch session.State {
	case entity.StateAwaitingLanguage:
		err = e.selectLanguage(ctx, &next, input)
	case entity.StateAwaitingConsent:
		err = e.giveConsent(ctx, &next, input)
	case entity.StateInProgress:
		err = e.answer(ctx, &next, input)
	default:
		err = fmt.Errorf("%w: unknown state %q", entity.ErrInvalidState, session.State)
	}

	if err != nil {
		if !errors.Is(err, entity.ErrCollaborator) {
			return Turn{Session: session}, err
		}

		ctxzap.Warn(ctx, "collaborator failure absorbed", zap.Error(err))
		next = e.withUserTurn(session, input)
		mark = len(next.Transcript)
		e.reply(&next, language.Render(language.TextRetry, session.Language))
	}

	ctxzap.Info(ctx, "session advanced",
		zap.String("new_state", string(next.State)),
		zap.String("question_id", next.CurrentQuestion.String()),
		zap.Int("answered", next.Answers.Len()),
	)

	replies := make([]entity.Message, len(next.Transcript)-mark)
	copy(replies, next.Transcript[mark:])

	return Turn{Session: next, Replies: replies}, nil
}

func (e *Engine) withUserTurn(session entity.Session, input string) entity.Session {
	next := session.Clone()
	now := e.now()
	next.Append(entity.RoleUser, input, now)
	next.UpdatedAt = now
	return next
}

func (e *Engine) reply(session *entity.Session, text string) {
	now := e.now()
	session.Append(entity.RoleAssistant, text, now)
	session.UpdatedAt = now
}
