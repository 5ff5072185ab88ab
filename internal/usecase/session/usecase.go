package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/futig/survey-assistant/internal/pkg/formatter"
	"github.com/futig/survey-assistant/internal/pkg/logger"
	"github.com/futig/survey-assistant/internal/pkg/validator"
	"github.com/futig/survey-assistant/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// SessionUsecase loads a session, advances it through the engine and stores the result.
// Turns of one session are serialized; different sessions run in parallel.
type SessionUsecase struct {
	engine     Engine
	store      repository.SessionStore
	archive    AnswerArchive
	catalog    QuestionCatalog
	validator  *validator.Validator
	formatters *formatter.Factory
	locks      *keyedMutex
	locker     TurnLocker
	logger     *zap.Logger
}

type Option func(*SessionUsecase)

// WithTurnLocker replaces the in-process lock, e.g. with one shared by all replicas
func WithTurnLocker(locker TurnLocker) Option {
	return func(uc *SessionUsecase) {
		uc.locker = locker
	}
}

// NewUsecase creates a new session use case. archive may be nil.
func NewUsecase(
	engine Engine,
	store repository.SessionStore,
	archive AnswerArchive,
	catalog QuestionCatalog,
	validator *validator.Validator,
	formatters *formatter.Factory,
	logger *zap.Logger,
	opts ...Option,
) *SessionUsecase {
	uc := &SessionUsecase{
		engine:     engine,
		store:      store,
		archive:    archive,
		catalog:    catalog,
		validator:  validator,
		formatters: formatters,
		locks:      newKeyedMutex(),
		logger:     logger,
	}
	uc.locker = uc.locks
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// StartSession creates a session awaiting language selection
func (uc *SessionUsecase) StartSession(ctx context.Context) (*entity.TurnDTO, error) {
	session := uc.engine.Start(uuid.New().String())

	ctx = logger.WithSession(ctx, session.ID)

	if err := uc.store.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	ctxzap.Info(ctx, "survey session started")

	return uc.turnToDTO(session, session.Transcript), nil
}

// SubmitMessage applies one user utterance to the session
func (uc *SessionUsecase) SubmitMessage(ctx context.Context, sessionID, text string) (*entity.TurnDTO, error) {
	if err := uc.validator.ValidateMessage(&entity.SubmitMessageRequest{Text: text}); err != nil {
		return nil, err
	}

	ctx = logger.WithSession(ctx, sessionID)

	unlock, err := uc.locker.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	turn, err := uc.engine.Advance(ctx, session, text)
	if err != nil {
		return nil, fmt.Errorf("advance session: %w", err)
	}

	if err := uc.store.Set(ctx, turn.Session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return uc.turnToDTO(turn.Session, turn.Replies), nil
}

func (uc *SessionUsecase) GetSession(ctx context.Context, sessionID string) (*entity.TurnDTO, error) {
	session, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var last []entity.Message
	if n := len(session.Transcript); n > 0 && session.Transcript[n-1].Role == entity.RoleAssistant {
		last = session.Transcript[n-1:]
	}

	return uc.turnToDTO(session, last), nil
}

func (uc *SessionUsecase) GetTranscript(ctx context.Context, sessionID string) (*entity.TranscriptDTO, error) {
	session, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	messages := session.Transcript
	if messages == nil {
		messages = []entity.Message{}
	}

	return &entity.TranscriptDTO{
		SessionID: session.ID,
		Messages:  messages,
	}, nil
}

// ExportAnswers renders the committed answers of a completed session.
// Sessions evicted from the store are read back from the archive when one is configured.
func (uc *SessionUsecase) ExportAnswers(ctx context.Context, sessionID string, rawFormat string) (*entity.ExportedFile, error) {
	format, err := uc.validator.ValidateFormat(rawFormat)
	if err != nil {
		return nil, err
	}

	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, fmt.Errorf("create formatter: %w", err)
	}

	ctx = logger.AddFields(ctx, zap.String("session_id", sessionID), zap.String("format", string(format)))

	sheet, err := uc.loadAnswerSheet(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	data, err := f.Format(sheet)
	if err != nil {
		return nil, fmt.Errorf("format answers: %w", err)
	}

	ctxzap.Debug(ctx, "answers exported", zap.Int("rows", len(sheet.Rows)), zap.Int("size", len(data)))

	return &entity.ExportedFile{
		Filename:    "survey-" + sessionID + f.FileExtension(),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}

func (uc *SessionUsecase) loadAnswerSheet(ctx context.Context, sessionID string) (formatter.AnswerSheet, error) {
	session, err := uc.store.Get(ctx, sessionID)
	switch {
	case err == nil:
		if !session.Completed || !session.Persisted {
			return formatter.AnswerSheet{}, fmt.Errorf("%w: session %s is %s", entity.ErrNoResult, sessionID, session.State)
		}
		return uc.answerSheet(session.ID, session.Language, session.UpdatedAt, session.Answers.List()), nil
	case errors.Is(err, entity.ErrSessionNotFound) && uc.archive != nil:
		answers, archiveErr := uc.archive.GetAnswers(ctx, sessionID)
		if errors.Is(archiveErr, entity.ErrNoResult) {
			return formatter.AnswerSheet{}, fmt.Errorf("get session: %w", err)
		}
		if archiveErr != nil {
			return formatter.AnswerSheet{}, fmt.Errorf("get archived answers: %w", archiveErr)
		}
		ctxzap.Info(ctx, "answers loaded from archive", zap.Int("answers", len(answers)))
		return uc.answerSheet(sessionID, nil, time.Time{}, answers), nil
	default:
		return formatter.AnswerSheet{}, fmt.Errorf("get session: %w", err)
	}
}

func (uc *SessionUsecase) DeleteSession(ctx context.Context, sessionID string) error {
	unlock, err := uc.locker.Lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := uc.store.Get(ctx, sessionID); err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	if err := uc.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	ctxzap.Info(logger.WithSession(ctx, sessionID), "survey session deleted")

	return nil
}
