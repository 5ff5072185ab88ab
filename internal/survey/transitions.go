package survey

import (
	"context"
	"fmt"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/futig/survey-assistant/internal/language"
	"github.com/futig/survey-assistant/internal/nlu"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Every transition composes its outgoing text before touching session fields,
// so a collaborator error leaves nothing half-applied.

func (e *Engine) selectLanguage(ctx context.Context, s *entity.Session, input string) error {
	lang, ok := language.Lookup(input)
	if !ok {
		e.reply(s, language.InvalidLanguage)
		return nil
	}

	text, err := e.composer.Compose(ctx, e.store.Consent().AsQuestion(), nlu.ModeAsk, lang)
	if err != nil {
		return err
	}

	s.Language = &lang
	s.State = entity.StateAwaitingConsent
	e.reply(s, text)
	return nil
}

func (e *Engine) giveConsent(ctx context.Context, s *entity.Session, input string) error {
	if s.Language == nil {
		return fmt.Errorf("%w: consent without language", entity.ErrInvalidState)
	}
	lang := *s.Language

	if !language.IsAffirmative(lang, input) {
		e.reply(s, language.Render(language.TextConsentReminder, &lang))
		return nil
	}

	first := e.store.First()
	text, err := e.composer.Compose(ctx, first, nlu.ModeAsk, lang)
	if err != nil {
		return err
	}

	s.State = entity.StateInProgress
	s.Started = true
	s.CurrentQuestion = first.ID
	e.reply(s, text)
	return nil
}

func (e *Engine) answer(ctx context.Context, s *entity.Session, input string) error {
	if s.Language == nil {
		return fmt.Errorf("%w: survey without language", entity.ErrInvalidState)
	}
	lang := *s.Language

	q, ok := e.store.Get(s.CurrentQuestion)
	if !ok {
		return fmt.Errorf("%w: current %s", entity.ErrQuestionNotFound, s.CurrentQuestion)
	}

	if e.offTopicGate {
		offTopic, err := e.interpreter.IsOffTopic(ctx, q, input)
		if err != nil {
			return err
		}
		if offTopic {
			return e.ask(ctx, s, q, nlu.ModeRedirectOffTopic, lang)
		}
	}

	valid, err := e.interpreter.Validate(ctx, q, input, lang)
	if err != nil {
		return err
	}

	value := nlu.Invalid
	if valid {
		value, err = e.interpreter.Interpret(ctx, q, input, lang)
		if err != nil {
			return err
		}
	}

	if !valid || value == nlu.Invalid {
		if valid {
			ctxzap.Info(ctx, "validation and interpretation disagree", zap.String("question_id", q.ID.String()))
		}
		return e.ask(ctx, s, q, nlu.ModeReaskInvalid, lang)
	}

	nextID, err := e.resolver.Next(q.ID, value)
	if err != nil {
		return err
	}

	if !nextID.IsEnd() {
		nq, ok := e.store.Get(nextID)
		if !ok {
			return fmt.Errorf("%w: next %s", entity.ErrQuestionNotFound, nextID)
		}

		text, err := e.composer.Compose(ctx, nq, nlu.ModeAsk, lang)
		if err != nil {
			return err
		}

		s.Answers.Set(q.ID, value)
		s.CurrentQuestion = nextID
		e.reply(s, text)
		return nil
	}

	s.Answers.Set(q.ID, value)
	return e.finish(ctx, s, lang)
}

func (e *Engine) ask(ctx context.Context, s *entity.Session, q entity.Question, mode nlu.Mode, lang entity.Language) error {
	text, err := e.composer.Compose(ctx, q, mode, lang)
	if err != nil {
		return err
	}
	e.reply(s, text)
	return nil
}

// finish persists the answer set. A failed save keeps the session on the last
// question so the respondent can resend the answer.
func (e *Engine) finish(ctx context.Context, s *entity.Session, lang entity.Language) error {
	result := entity.SurveyResult{
		SessionID:    s.ID,
		LanguageCode: lang.Code,
		Answers:      s.Answers.List(),
		CompletedAt:  e.now(),
	}

	if err := e.saver.Save(ctx, result); err != nil {
		ctxzap.Error(ctx, "failed to save survey responses",
			zap.Int("answers", len(result.Answers)),
			zap.Error(err),
		)
		s.Persisted = false
		e.reply(s, language.Render(language.TextSaveFailed, &lang))
		return nil
	}

	s.Persisted = true
	s.Completed = true
	s.State = entity.StateCompleted
	s.CurrentQuestion = entity.EndOfSurvey
	e.reply(s, language.Render(language.TextThankYou, &lang))
	return nil
}
