package handlers

import (
	"context"
	"errors"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/futig/survey-assistant/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityWarning ErrorSeverity = iota
	SeverityError
)

// HandlerError represents a structured error with user message and logging info
type HandlerError struct {
	Err         error
	UserMessage string
	LogMessage  string
	Severity    ErrorSeverity
}

// classifyHandlerError analyzes an error and returns a HandlerError with appropriate severity and messages
func classifyHandlerError(err error) *HandlerError {
	warn := func(user, log string) *HandlerError {
		return &HandlerError{Err: err, UserMessage: user, LogMessage: log, Severity: SeverityWarning}
	}

	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		return warn(render.ErrSessionNotFound, "session not found")
	case errors.Is(err, entity.ErrSessionCompleted):
		return warn(completedMessage(err), "session already completed")
	case errors.Is(err, entity.ErrNoResult):
		return warn(render.ErrNotCompleted, "answers not available yet")
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrInvalidFormat):
		return warn(render.ErrInvalidInput, "invalid input")
	}

	return &HandlerError{
		Err:         err,
		UserMessage: render.ClassifyError(err),
		LogMessage:  "handler error",
		Severity:    SeverityError,
	}
}

// completedMessage prefers the reply in the session language when the engine supplied one
func completedMessage(err error) string {
	if msg := entity.UserMessage(err, ""); msg != "" {
		return "✅ " + msg + "\n\n" + render.HintRestart
	}
	return render.ErrCompleted
}

// HandleError logs err with its severity and tells the user what happened
func (h *BaseHandler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	handlerErr := classifyHandlerError(err)

	fields := []zap.Field{zap.Error(handlerErr.Err), zap.Int64("chat_id", chatID)}
	if handlerErr.Severity == SeverityError {
		ctxzap.Error(ctx, handlerErr.LogMessage, fields...)
	} else {
		ctxzap.Warn(ctx, handlerErr.LogMessage, fields...)
	}

	_ = h.messageSender.Send(ctx, chatID, handlerErr.UserMessage, nil)
}
