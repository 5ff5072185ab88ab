package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_BindAndUnbind(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewCacheStorage(time.Hour, time.Minute))

	id, err := m.SessionID(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, m.Bind(ctx, 42, "s1"))
	id, err = m.SessionID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "s1", id)

	require.NoError(t, m.SetPending(ctx, 42, "cancel"))
	assert.Equal(t, "cancel", m.Pending(ctx, 42))

	// rebinding starts clean
	require.NoError(t, m.Bind(ctx, 42, "s2"))
	assert.Empty(t, m.Pending(ctx, 42))
	id, _ = m.SessionID(ctx, 42)
	assert.Equal(t, "s2", id)

	require.NoError(t, m.Unbind(ctx, 42))
	id, err = m.SessionID(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestManager_SetPendingWithoutSession(t *testing.T) {
	m := NewManager(NewCacheStorage(time.Hour, time.Minute))
	err := m.SetPending(context.Background(), 7, "cancel")
	assert.ErrorIs(t, err, ErrChatNotFound)
	assert.Empty(t, m.Pending(context.Background(), 7))
}

func TestCacheStorage_Expires(t *testing.T) {
	ctx := context.Background()
	s := NewCacheStorage(20*time.Millisecond, time.Hour)

	require.NoError(t, s.Set(ctx, &ChatSession{UserID: 1, SessionID: "s"}))
	time.Sleep(40 * time.Millisecond)

	_, err := s.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrChatNotFound)
}
