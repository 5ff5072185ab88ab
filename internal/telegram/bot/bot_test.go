package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/futig/survey-assistant/internal/config"
	"github.com/futig/survey-assistant/internal/entity"
	pkgRetry "github.com/futig/survey-assistant/internal/pkg/retry"
	"github.com/futig/survey-assistant/internal/telegram/render"
	"github.com/futig/survey-assistant/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingAPI struct {
	mu        sync.Mutex
	texts     []string
	callbacks []string
}

func (a *recordingAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		a.texts = append(a.texts, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (a *recordingAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		a.callbacks = append(a.callbacks, cb.CallbackQueryID)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (a *recordingAPI) last() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.texts[len(a.texts)-1]
}

type echoSessions struct{}

func (echoSessions) StartSession(ctx context.Context) (*entity.TurnDTO, error) {
	return &entity.TurnDTO{
		Session: entity.SessionDTO{ID: "s1", State: entity.StateAwaitingLanguage},
		Replies: []entity.Message{{Role: entity.RoleAssistant, Text: "Please select your language"}},
	}, nil
}

func (echoSessions) SubmitMessage(ctx context.Context, id, text string) (*entity.TurnDTO, error) {
	return &entity.TurnDTO{
		Session: entity.SessionDTO{ID: id, State: entity.StateInProgress},
		Replies: []entity.Message{{Role: entity.RoleAssistant, Text: "echo: " + text}},
	}, nil
}

func (echoSessions) ExportAnswers(ctx context.Context, id, format string) (*entity.ExportedFile, error) {
	return nil, entity.ErrNoResult
}

func (echoSessions) DeleteSession(ctx context.Context, id string) error { return nil }

func newTestBot(t *testing.T) (*Bot, *recordingAPI) {
	t.Helper()
	api := &recordingAPI{}
	cfg := &config.TelegramConfig{
		RateLimitPerMinute: 60,
		RateLimitBurst:     20,
		ShutdownTimeout:    1,
		Retry:              pkgRetry.RetryConfig{Attempts: 1, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}
	b := newBot(api, cfg, state.NewManager(state.NewCacheStorage(time.Hour, time.Minute)), echoSessions{}, zap.NewNop())
	t.Cleanup(func() { _ = b.Stop() })
	return b, api
}

func command(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 1},
		Chat:     &tgbotapi.Chat{ID: 100},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func text(s string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 1},
		Chat: &tgbotapi.Chat{ID: 100},
		Text: s,
	}}
}

func TestBot_Routing(t *testing.T) {
	b, api := newTestBot(t)

	b.handleUpdateWithMiddleware(command("/start"))
	assert.Equal(t, render.MsgWelcome, api.last())

	b.handleUpdateWithMiddleware(command("/help"))
	assert.Equal(t, render.MsgHelp, api.last())

	b.handleUpdateWithMiddleware(command("/nope"))
	assert.Equal(t, render.ErrUnknownCommand, api.last())

	b.handleUpdateWithMiddleware(text("hello"))
	assert.Equal(t, render.ErrNoSession, api.last())

	b.handleUpdateWithMiddleware(command("/survey"))
	assert.Equal(t, "Please select your language", api.last())

	b.handleUpdateWithMiddleware(text("English"))
	assert.Equal(t, "echo: English", api.last())
}

func TestBot_Callbacks(t *testing.T) {
	b, api := newTestBot(t)

	b.handleUpdateWithMiddleware(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 1},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 100}},
		Data:    "action:start",
	}})
	assert.Equal(t, "Please select your language", api.last())

	b.handleUpdateWithMiddleware(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb2",
		From:    &tgbotapi.User{ID: 1},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 100}},
		Data:    "garbage",
	}})

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.callbacks, 2)
	assert.Equal(t, []string{"cb1", "cb2"}, api.callbacks)
}
