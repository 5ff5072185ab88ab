package handlers

import (
	"context"

	"github.com/futig/survey-assistant/internal/entity"
)

// SessionUsecase is the subset of survey session operations the bot drives
type SessionUsecase interface {
	StartSession(ctx context.Context) (*entity.TurnDTO, error)
	SubmitMessage(ctx context.Context, sessionID, text string) (*entity.TurnDTO, error)
	ExportAnswers(ctx context.Context, sessionID, format string) (*entity.ExportedFile, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
