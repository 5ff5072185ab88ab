package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/futig/survey-assistant/internal/telegram/state"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession(id string) entity.Session {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	lang := entity.Language{Code: "es", Name: "Spanish"}
	s := entity.Session{
		ID:              id,
		State:           entity.StateInProgress,
		Language:        &lang,
		CurrentQuestion: 3,
		Started:         true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.Append(entity.RoleAssistant, "Seleccione su idioma", now)
	s.Append(entity.RoleUser, "Español", now)
	s.Answers.Set(1, "No")
	return s
}

// exerciseStore runs the SessionStore contract against any implementation
func exerciseStore(t *testing.T, store SessionStore) {
	t.Helper()
	ctx := context.Background()
	id := uuid.NewString()

	_, err := store.Get(ctx, id)
	require.ErrorIs(t, err, entity.ErrSessionNotFound)

	s := sampleSession(id)
	require.NoError(t, store.Set(ctx, s))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, s.State, got.State)
	assert.Equal(t, *s.Language, *got.Language)
	assert.Equal(t, s.CurrentQuestion, got.CurrentQuestion)
	assert.Equal(t, s.Answers.List(), got.Answers.List())
	require.Len(t, got.Transcript, 2)
	assert.Equal(t, "Español", got.Transcript[1].Text)
	assert.True(t, s.CreatedAt.Equal(got.CreatedAt))

	got.Answers.Set(3, "Yes")
	again, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Answers.Len())

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestSessionCache(t *testing.T) {
	exerciseStore(t, NewSessionCache(time.Hour, time.Minute))
}

func TestSessionCache_Expires(t *testing.T) {
	store := NewSessionCache(20*time.Millisecond, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, sampleSession("short")))
	assert.Equal(t, 1, store.Count())

	time.Sleep(40 * time.Millisecond)
	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestSessionRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	exerciseStore(t, NewSessionRedis(client, "test:survey:session:", time.Minute))
}

func TestSessionLockRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	lock := NewSessionLockRedis(client, "test:survey:session:", time.Minute, 5*time.Millisecond)
	ctx := context.Background()
	id := uuid.New().String()

	release, err := lock.Lock(ctx, id)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = lock.Lock(waitCtx, id)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	acquired := make(chan func(), 1)
	go func() {
		next, err := lock.Lock(ctx, id)
		if assert.NoError(t, err) {
			acquired <- next
		}
	}()

	release()

	select {
	case next := <-acquired:
		next()
	case <-time.After(2 * time.Second):
		t.Fatal("lock was not handed over after release")
	}
}

func TestStubSaver(t *testing.T) {
	saver := NewStubSaver(10 * time.Millisecond)

	start := time.Now()
	err := saver.Save(context.Background(), entity.SurveyResult{SessionID: "s"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewStubSaver(time.Hour).Save(ctx, entity.SurveyResult{SessionID: "s"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResponsePostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	require.NoError(t, RunMigrations(dsn))
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewResponsePostgres(pool, "5.1")
	sessionID := uuid.NewString()

	_, err = repo.GetAnswers(ctx, sessionID)
	require.ErrorIs(t, err, entity.ErrNoResult)

	first := entity.SurveyResult{
		SessionID:    sessionID,
		LanguageCode: "en",
		Answers:      []entity.Answer{{QuestionID: 1, Value: "Yes"}, {QuestionID: 2, Value: "Always"}},
		CompletedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Save(ctx, first))

	second := first
	second.Answers = []entity.Answer{{QuestionID: 1, Value: "No"}, {QuestionID: 3, Value: "No"}, {QuestionID: 5, Value: "5 to 9"}}
	require.NoError(t, repo.Save(ctx, second))

	answers, err := repo.GetAnswers(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, second.Answers, answers)
}

func TestTelegramStatePostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	require.NoError(t, RunMigrations(dsn))
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewTelegramStatePostgres(pool)
	userID := time.Now().UnixNano()

	_, err = repo.Get(ctx, userID)
	require.ErrorIs(t, err, state.ErrChatNotFound)

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.Set(ctx, &state.ChatSession{UserID: userID, SessionID: "s1", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repo.Set(ctx, &state.ChatSession{UserID: userID, SessionID: "s1", PendingConfirmation: "cancel", CreatedAt: now, UpdatedAt: now}))

	got, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "cancel", got.PendingConfirmation)
	assert.True(t, now.Equal(got.CreatedAt))

	require.NoError(t, repo.Delete(ctx, userID))
	_, err = repo.Get(ctx, userID)
	require.ErrorIs(t, err, state.ErrChatNotFound)
}
