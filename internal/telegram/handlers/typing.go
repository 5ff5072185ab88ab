package handlers

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Telegram shows "typing" for 5 seconds per action
const typingInterval = 4 * time.Second

// startTyping shows the typing indicator until the returned stop function is called
func startTyping(ctx context.Context, bot BotAPI, chatID int64) (stop func()) {
	send := func() {
		if _, err := bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
			ctxzap.Debug(ctx, "failed to send typing action", zap.Error(err), zap.Int64("chat_id", chatID))
		}
	}
	send()

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				send()
			case <-ctx.Done():
				return
			}
		}
	}()

	return cancel
}
