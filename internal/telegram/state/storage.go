package state

import (
	"context"
	"errors"
	"time"
)

var ErrChatNotFound = errors.New("telegram chat session not found")

// ChatSession maps a Telegram user to the survey session they are talking to
type ChatSession struct {
	UserID    int64  `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	// PendingConfirmation names a destructive action awaiting a second tap ("cancel")
	PendingConfirmation string    `json:"pending_confirmation,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Storage persists user to session mappings
type Storage interface {
	Get(ctx context.Context, userID int64) (*ChatSession, error)
	Set(ctx context.Context, session *ChatSession) error
	Delete(ctx context.Context, userID int64) error
}
