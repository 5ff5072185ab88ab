package session

import (
	"context"

	"github.com/futig/survey-assistant/internal/entity"
)

type SessionUsecase interface {
	StartSession(ctx context.Context) (*entity.TurnDTO, error)
	SubmitMessage(ctx context.Context, sessionID, text string) (*entity.TurnDTO, error)
	GetSession(ctx context.Context, sessionID string) (*entity.TurnDTO, error)
	GetTranscript(ctx context.Context, sessionID string) (*entity.TranscriptDTO, error)
	ExportAnswers(ctx context.Context, sessionID, format string) (*entity.ExportedFile, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
