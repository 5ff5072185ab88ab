package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	pkgRetry "github.com/futig/survey-assistant/internal/pkg/retry"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MessageSender delivers messages with retry. Client errors other than
// rate limiting are not retried.
type MessageSender struct {
	bot   BotAPI
	retry *pkgRetry.RetryConfig
}

func NewMessageSender(bot BotAPI, retryCfg *pkgRetry.RetryConfig) *MessageSender {
	if retryCfg == nil {
		retryCfg = pkgRetry.DefaultRetryConfig()
	}
	return &MessageSender{
		bot:   bot,
		retry: retryCfg,
	}
}

// Send sends a text message to the specified chat
func (s *MessageSender) Send(ctx context.Context, chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return s.deliver(ctx, chatID, msg)
}

// SendDocument uploads a file to the specified chat
func (s *MessageSender) SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	return s.deliver(ctx, chatID, doc)
}

func (s *MessageSender) deliver(ctx context.Context, chatID int64, c tgbotapi.Chattable) error {
	attempt := 0
	err := s.retry.Do(ctx, func() error {
		attempt++
		_, err := s.bot.Send(c)
		if err != nil && !isRetryable(err) {
			return retry.Unrecoverable(err)
		}
		return err
	}, retry.OnRetry(func(n uint, err error) {
		ctxzap.Warn(ctx, "failed to send message, retrying",
			zap.Error(err),
			zap.Uint("attempt", n+1),
			zap.Int64("chat_id", chatID),
		)
	}))
	if err != nil {
		ctxzap.Error(ctx, "failed to send message",
			zap.Error(err),
			zap.Int("attempts", attempt),
			zap.Int64("chat_id", chatID),
		)
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}
