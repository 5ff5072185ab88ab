package repository

import (
	"context"

	"github.com/futig/survey-assistant/internal/entity"
)

// SessionStore keeps in-flight conversations between turns.
// Get returns entity.ErrSessionNotFound for unknown or expired ids.
type SessionStore interface {
	Get(ctx context.Context, id string) (entity.Session, error)
	Set(ctx context.Context, session entity.Session) error
	Delete(ctx context.Context, id string) error
}
