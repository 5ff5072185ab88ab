package state

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Manager manages telegram chat sessions
type Manager struct {
	storage Storage
	now     func() time.Time
}

func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
		now:     time.Now,
	}
}

// SessionID returns the survey session bound to userID, or "" when there is none
func (m *Manager) SessionID(ctx context.Context, userID int64) (string, error) {
	session, err := m.storage.Get(ctx, userID)
	if errors.Is(err, ErrChatNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get chat session: %w", err)
	}
	return session.SessionID, nil
}

// Bind points userID at a new survey session, clearing any pending confirmation
func (m *Manager) Bind(ctx context.Context, userID int64, sessionID string) error {
	now := m.now()
	session, err := m.storage.Get(ctx, userID)
	if err != nil {
		session = &ChatSession{UserID: userID, CreatedAt: now}
	}
	session.SessionID = sessionID
	session.PendingConfirmation = ""
	session.UpdatedAt = now

	if err := m.storage.Set(ctx, session); err != nil {
		return fmt.Errorf("save chat session: %w", err)
	}
	return nil
}

// Unbind forgets the user's chat session
func (m *Manager) Unbind(ctx context.Context, userID int64) error {
	if err := m.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete chat session: %w", err)
	}
	return nil
}

// SetPending records (or clears, with "") the action awaiting confirmation
func (m *Manager) SetPending(ctx context.Context, userID int64, action string) error {
	session, err := m.storage.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("get chat session: %w", err)
	}
	session.PendingConfirmation = action
	session.UpdatedAt = m.now()

	if err := m.storage.Set(ctx, session); err != nil {
		return fmt.Errorf("save chat session: %w", err)
	}
	return nil
}

// Pending returns the action awaiting confirmation, or ""
func (m *Manager) Pending(ctx context.Context, userID int64) string {
	session, err := m.storage.Get(ctx, userID)
	if err != nil {
		return ""
	}
	return session.PendingConfirmation
}
