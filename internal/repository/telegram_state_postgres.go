package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/survey-assistant/internal/telegram/state"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	selectTelegramChatQuery = `
SELECT user_id, session_id, pending_confirmation, created_at, updated_at
FROM telegram_chats
WHERE user_id = $1`

	upsertTelegramChatQuery = `
INSERT INTO telegram_chats (user_id, session_id, pending_confirmation, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE
SET session_id           = EXCLUDED.session_id,
    pending_confirmation = EXCLUDED.pending_confirmation,
    updated_at           = EXCLUDED.updated_at`

	deleteTelegramChatQuery = `DELETE FROM telegram_chats WHERE user_id = $1`
)

// TelegramStatePostgres keeps Telegram user to survey session mappings across bot restarts
type TelegramStatePostgres struct {
	db *pgxpool.Pool
}

func NewTelegramStatePostgres(db *pgxpool.Pool) *TelegramStatePostgres {
	return &TelegramStatePostgres{db: db}
}

func (r *TelegramStatePostgres) Get(ctx context.Context, userID int64) (*state.ChatSession, error) {
	var (
		session   state.ChatSession
		sessionID pgtype.Text
		pending   pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := r.db.QueryRow(ctx, selectTelegramChatQuery, userID).
		Scan(&session.UserID, &sessionID, &pending, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d", state.ErrChatNotFound, userID)
		}
		return nil, fmt.Errorf("query telegram chat: %w", err)
	}

	session.SessionID = sessionID.String
	session.PendingConfirmation = pending.String
	session.CreatedAt = createdAt.Time
	session.UpdatedAt = updatedAt.Time

	return &session, nil
}

func (r *TelegramStatePostgres) Set(ctx context.Context, session *state.ChatSession) error {
	_, err := r.db.Exec(ctx, upsertTelegramChatQuery,
		session.UserID,
		pgtype.Text{String: session.SessionID, Valid: session.SessionID != ""},
		pgtype.Text{String: session.PendingConfirmation, Valid: session.PendingConfirmation != ""},
		pgtype.Timestamptz{Time: session.CreatedAt, Valid: true},
		pgtype.Timestamptz{Time: session.UpdatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("upsert telegram chat: %w", err)
	}
	return nil
}

func (r *TelegramStatePostgres) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, deleteTelegramChatQuery, userID); err != nil {
		return fmt.Errorf("delete telegram chat: %w", err)
	}
	return nil
}
