package telegram

import (
	"context"
	"fmt"

	"github.com/futig/survey-assistant/internal/config"
	"github.com/futig/survey-assistant/internal/telegram/bot"
	"github.com/futig/survey-assistant/internal/telegram/handlers"
	"github.com/futig/survey-assistant/internal/telegram/state"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot on top of the survey session usecase
func NewBot(
	cfg *config.TelegramConfig,
	storage state.Storage,
	sessionUC handlers.SessionUsecase,
	logger *zap.Logger,
) (Bot, error) {
	b, err := bot.New(cfg, state.NewManager(storage), sessionUC, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	logger.Info("telegram bot initialized successfully")

	return b, nil
}
