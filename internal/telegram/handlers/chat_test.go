package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/futig/survey-assistant/internal/entity"
	pkgRetry "github.com/futig/survey-assistant/internal/pkg/retry"
	"github.com/futig/survey-assistant/internal/telegram/keyboard"
	"github.com/futig/survey-assistant/internal/telegram/render"
	"github.com/futig/survey-assistant/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	text     string
	markup   any
	document string
}

type fakeBot struct {
	mu       sync.Mutex
	sent     []sent
	failures []error
	requests int
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.failures) > 0 {
		err := b.failures[0]
		b.failures = b.failures[1:]
		return tgbotapi.Message{}, err
	}

	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		b.sent = append(b.sent, sent{text: m.Text, markup: m.ReplyMarkup})
	case tgbotapi.DocumentConfig:
		b.sent = append(b.sent, sent{document: m.File.(tgbotapi.FileBytes).Name})
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, s := range b.sent {
		if s.text != "" {
			out = append(out, s.text)
		}
	}
	return out
}

func (b *fakeBot) last() sent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sent[len(b.sent)-1]
}

// fakeSessions completes a session on "done"; other text moves it along
type fakeSessions struct {
	next      int
	completed map[string]bool
	deleted   []string
}

func (f *fakeSessions) StartSession(ctx context.Context) (*entity.TurnDTO, error) {
	f.next++
	id := fmt.Sprintf("s%d", f.next)
	return &entity.TurnDTO{
		Session: entity.SessionDTO{ID: id, State: entity.StateAwaitingLanguage},
		Replies: []entity.Message{{Role: entity.RoleAssistant, Text: "Please select your language"}},
		Options: []string{"English", "Español"},
	}, nil
}

func (f *fakeSessions) SubmitMessage(ctx context.Context, id, text string) (*entity.TurnDTO, error) {
	if id == "gone" {
		return nil, fmt.Errorf("get session: %w", entity.ErrSessionNotFound)
	}
	if f.completed[id] {
		return nil, fmt.Errorf("advance session: %w", entity.ErrSessionCompleted)
	}
	turn := &entity.TurnDTO{Session: entity.SessionDTO{ID: id, State: entity.StateInProgress}}
	if text == "done" {
		if f.completed == nil {
			f.completed = map[string]bool{}
		}
		f.completed[id] = true
		turn.Session.State = entity.StateCompleted
		turn.Session.Completed = true
		turn.Replies = []entity.Message{{Role: entity.RoleAssistant, Text: "Thank you!"}}
		return turn, nil
	}
	turn.Replies = []entity.Message{
		{Role: entity.RoleAssistant, Text: "Got it: " + text},
		{Role: entity.RoleAssistant, Text: "Next question?"},
	}
	turn.Options = []string{"Yes", "No"}
	return turn, nil
}

func (f *fakeSessions) ExportAnswers(ctx context.Context, id, format string) (*entity.ExportedFile, error) {
	if !f.completed[id] {
		return nil, entity.ErrNoResult
	}
	return &entity.ExportedFile{Filename: "survey-" + id + ".md", Data: []byte("# Survey")}, nil
}

func (f *fakeSessions) DeleteSession(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestChat(t *testing.T) (*ChatHandler, *fakeBot, *fakeSessions, *state.Manager) {
	t.Helper()
	bot := &fakeBot{}
	sessions := &fakeSessions{}
	manager := state.NewManager(state.NewCacheStorage(time.Hour, time.Minute))
	sender := NewMessageSender(bot, &pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond})
	return NewChatHandler(bot, manager, sessions, keyboard.NewBuilder(), sender), bot, sessions, manager
}

func TestChatHandler_SurveyFlow(t *testing.T) {
	chat, bot, sessions, manager := newTestChat(t)
	ctx := context.Background()
	msg := &Message{ChatID: 10, UserID: 1}

	require.NoError(t, chat.Start(ctx, msg))
	id, err := manager.SessionID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "s1", id)
	assert.Equal(t, []string{"Please select your language"}, bot.texts())
	assert.NotNil(t, bot.last().markup, "language options are offered as buttons")

	require.NoError(t, chat.Answer(ctx, msg, "English"))
	assert.Equal(t, []string{"Please select your language", "Got it: English", "Next question?"}, bot.texts())
	assert.Greater(t, bot.requests, 0, "typing indicator")

	require.NoError(t, chat.Callback(ctx, &Message{ChatID: 10, UserID: 1, CallbackData: "ans:done"}))
	texts := bot.texts()
	assert.Equal(t, render.MsgCompleted, texts[len(texts)-1])

	require.NoError(t, chat.Callback(ctx, &Message{ChatID: 10, UserID: 1, CallbackData: "dl:markdown"}))
	assert.Equal(t, "survey-s1.md", bot.last().document)

	require.NoError(t, chat.Answer(ctx, msg, "more"))
	assert.Equal(t, render.ErrCompleted, bot.last().text)

	// starting over discards the previous session
	require.NoError(t, chat.Start(ctx, msg))
	assert.Equal(t, []string{"s1"}, sessions.deleted)
	id, _ = manager.SessionID(ctx, 1)
	assert.Equal(t, "s2", id)
}

func TestChatHandler_NoSession(t *testing.T) {
	chat, bot, _, _ := newTestChat(t)
	ctx := context.Background()

	require.NoError(t, chat.Answer(ctx, &Message{ChatID: 20, UserID: 2}, "hello"))
	assert.Equal(t, render.ErrNoSession, bot.last().text)

	require.NoError(t, chat.Cancel(ctx, &Message{ChatID: 20, UserID: 2}))
	assert.Equal(t, render.ErrNoSession, bot.last().text)
}

func TestChatHandler_ExpiredSession(t *testing.T) {
	chat, bot, _, manager := newTestChat(t)
	ctx := context.Background()

	require.NoError(t, manager.Bind(ctx, 3, "gone"))
	require.NoError(t, chat.Answer(ctx, &Message{ChatID: 30, UserID: 3}, "hello"))
	assert.Equal(t, render.ErrSessionNotFound, bot.last().text)

	id, err := manager.SessionID(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestChatHandler_Cancel(t *testing.T) {
	chat, bot, sessions, manager := newTestChat(t)
	ctx := context.Background()
	msg := &Message{ChatID: 40, UserID: 4}

	require.NoError(t, chat.Start(ctx, msg))

	require.NoError(t, chat.Cancel(ctx, msg))
	assert.Equal(t, render.MsgConfirmCancel, bot.last().text)

	require.NoError(t, chat.Callback(ctx, &Message{ChatID: 40, UserID: 4, CallbackData: "confirm:continue"}))
	assert.Equal(t, render.MsgContinue, bot.last().text)
	assert.Empty(t, manager.Pending(ctx, 4))

	require.NoError(t, chat.Cancel(ctx, msg))
	require.NoError(t, chat.Cancel(ctx, msg))
	assert.Equal(t, render.MsgSessionCancelled, bot.last().text)
	assert.Equal(t, []string{"s1"}, sessions.deleted)

	id, _ := manager.SessionID(ctx, 4)
	assert.Empty(t, id)
}

func TestChatHandler_ExportBeforeCompletion(t *testing.T) {
	chat, bot, _, _ := newTestChat(t)
	ctx := context.Background()
	msg := &Message{ChatID: 50, UserID: 5}

	require.NoError(t, chat.Start(ctx, msg))
	require.NoError(t, chat.Callback(ctx, &Message{ChatID: 50, UserID: 5, CallbackData: "dl:pdf"}))
	assert.Equal(t, render.ErrNotCompleted, bot.last().text)

	assert.Error(t, chat.Callback(ctx, &Message{ChatID: 50, UserID: 5, CallbackData: "zzz:1"}))
}

func TestMessageSender_Retry(t *testing.T) {
	bot := &fakeBot{failures: []error{errors.New("connection reset")}}
	sender := NewMessageSender(bot, &pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond})

	require.NoError(t, sender.Send(context.Background(), 1, "hi", nil))
	assert.Equal(t, []string{"hi"}, bot.texts())

	// client errors are not retried
	bot = &fakeBot{failures: []error{&tgbotapi.Error{Code: 400, Message: "chat not found"}}}
	sender = NewMessageSender(bot, &pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond})
	assert.Error(t, sender.Send(context.Background(), 1, "hi", nil))
	assert.Empty(t, bot.texts())
}

func TestClassifyHandlerError_Completed(t *testing.T) {
	plain := fmt.Errorf("advance session: %w", entity.ErrSessionCompleted)
	assert.Equal(t, render.ErrCompleted, classifyHandlerError(plain).UserMessage)

	localized := fmt.Errorf("advance session: %w", &entity.LocalizedError{
		Err:     entity.ErrSessionCompleted,
		Message: "Esta encuesta ya está completa.",
	})
	handlerErr := classifyHandlerError(localized)
	assert.Equal(t, SeverityWarning, handlerErr.Severity)
	assert.Equal(t, "✅ Esta encuesta ya está completa.\n\n"+render.HintRestart, handlerErr.UserMessage)
}
