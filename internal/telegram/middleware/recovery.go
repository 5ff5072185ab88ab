package middleware

import (
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a handler panic into a log entry and an apology
type RecoveryMiddleware struct {
	logger  *zap.Logger
	notify  Notify
	message string
}

func NewRecoveryMiddleware(logger *zap.Logger, notify Notify, message string) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		logger:  logger,
		notify:  notify,
		message: message,
	}
}

func (m *RecoveryMiddleware) Handle(update tgbotapi.Update, next Next) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		m.logger.Error("panic recovered in telegram handler",
			zap.Any("panic", r),
			zap.String("stack", string(debug.Stack())),
			zap.Int("update_id", update.UpdateID),
		)

		if _, chatID, _ := origin(update); chatID != 0 {
			m.notify(chatID, m.message)
		}
	}()

	next(update)
}
