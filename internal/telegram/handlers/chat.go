package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/futig/survey-assistant/internal/pkg/logger"
	"github.com/futig/survey-assistant/internal/telegram/keyboard"
	"github.com/futig/survey-assistant/internal/telegram/render"
	"github.com/futig/survey-assistant/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const pendingCancel = "cancel"

// ChatHandler runs the survey conversation for Telegram users
type ChatHandler struct {
	BaseHandler
	bot          BotAPI
	stateManager *state.Manager
	sessionUC    SessionUsecase
	keyboard     *keyboard.Builder
}

func NewChatHandler(
	bot BotAPI,
	stateManager *state.Manager,
	sessionUC SessionUsecase,
	keyboard *keyboard.Builder,
	messageSender *MessageSender,
) *ChatHandler {
	return &ChatHandler{
		BaseHandler:  BaseHandler{messageSender: messageSender},
		bot:          bot,
		stateManager: stateManager,
		sessionUC:    sessionUC,
		keyboard:     keyboard,
	}
}

// Welcome greets the user with the start button
func (h *ChatHandler) Welcome(ctx context.Context, msg *Message) error {
	return h.messageSender.Send(ctx, msg.ChatID, render.MsgWelcome, h.keyboard.StartKeyboard())
}

func (h *ChatHandler) Help(ctx context.Context, msg *Message) error {
	return h.messageSender.Send(ctx, msg.ChatID, render.MsgHelp, nil)
}

// Start abandons any running survey of the user and begins a new one
func (h *ChatHandler) Start(ctx context.Context, msg *Message) error {
	ctx = logger.AddFields(ctx, zap.Int64("user_id", msg.UserID), zap.String("action", "StartSurvey"))

	previous, err := h.stateManager.SessionID(ctx, msg.UserID)
	if err != nil {
		return err
	}
	if previous != "" {
		h.discard(ctx, previous)
	}

	turn, err := h.sessionUC.StartSession(ctx)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	if err := h.stateManager.Bind(ctx, msg.UserID, turn.Session.ID); err != nil {
		return err
	}

	ctxzap.Info(ctx, "survey started from telegram", zap.String("session_id", turn.Session.ID))

	return h.deliver(ctx, msg.ChatID, turn)
}

// Answer submits user text (typed or tapped) to the bound survey session
func (h *ChatHandler) Answer(ctx context.Context, msg *Message, text string) error {
	sessionID, err := h.stateManager.SessionID(ctx, msg.UserID)
	if err != nil {
		return err
	}
	if sessionID == "" {
		return h.messageSender.Send(ctx, msg.ChatID, render.ErrNoSession, h.keyboard.StartKeyboard())
	}

	ctx = logger.AddFields(ctx, zap.String("session_id", sessionID), zap.String("action", "SubmitAnswer"))

	stopTyping := startTyping(ctx, h.bot, msg.ChatID)
	turn, err := h.sessionUC.SubmitMessage(ctx, sessionID, text)
	stopTyping()

	if err != nil {
		if errors.Is(err, entity.ErrSessionNotFound) {
			_ = h.stateManager.Unbind(ctx, msg.UserID)
		}
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	return h.deliver(ctx, msg.ChatID, turn)
}

// Cancel asks for confirmation first; a second /cancel or the confirm button stops the survey
func (h *ChatHandler) Cancel(ctx context.Context, msg *Message) error {
	sessionID, err := h.stateManager.SessionID(ctx, msg.UserID)
	if err != nil {
		return err
	}
	if sessionID == "" {
		return h.messageSender.Send(ctx, msg.ChatID, render.ErrNoSession, nil)
	}

	if h.stateManager.Pending(ctx, msg.UserID) != pendingCancel {
		if err := h.stateManager.SetPending(ctx, msg.UserID, pendingCancel); err != nil {
			return err
		}
		return h.messageSender.Send(ctx, msg.ChatID, render.MsgConfirmCancel, h.keyboard.ConfirmCancelKeyboard())
	}

	return h.performCancel(ctx, msg, sessionID)
}

// Callback routes inline button presses
func (h *ChatHandler) Callback(ctx context.Context, msg *Message) error {
	cb, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return err
	}

	switch cb.Action {
	case keyboard.ActionStart:
		return h.Start(ctx, msg)
	case keyboard.ActionAnswer:
		return h.Answer(ctx, msg, cb.Value)
	case keyboard.ActionConfirm:
		return h.confirm(ctx, msg, cb.Value)
	case keyboard.ActionExport:
		return h.export(ctx, msg, cb.Value)
	default:
		return fmt.Errorf("unknown callback action %q", cb.Action)
	}
}

func (h *ChatHandler) confirm(ctx context.Context, msg *Message, value string) error {
	sessionID, err := h.stateManager.SessionID(ctx, msg.UserID)
	if err != nil {
		return err
	}
	if sessionID == "" {
		return h.messageSender.Send(ctx, msg.ChatID, render.ErrNoSession, nil)
	}

	if value == pendingCancel {
		return h.performCancel(ctx, msg, sessionID)
	}

	if err := h.stateManager.SetPending(ctx, msg.UserID, ""); err != nil {
		return err
	}
	return h.messageSender.Send(ctx, msg.ChatID, render.MsgContinue, nil)
}

func (h *ChatHandler) performCancel(ctx context.Context, msg *Message, sessionID string) error {
	h.discard(ctx, sessionID)

	if err := h.stateManager.Unbind(ctx, msg.UserID); err != nil {
		return err
	}

	ctxzap.Info(ctx, "survey cancelled from telegram", zap.String("session_id", sessionID))

	return h.messageSender.Send(ctx, msg.ChatID, render.MsgSessionCancelled, nil)
}

func (h *ChatHandler) export(ctx context.Context, msg *Message, format string) error {
	sessionID, err := h.stateManager.SessionID(ctx, msg.UserID)
	if err != nil {
		return err
	}
	if sessionID == "" {
		return h.messageSender.Send(ctx, msg.ChatID, render.ErrNoSession, nil)
	}

	ctx = logger.AddFields(ctx, zap.String("session_id", sessionID), zap.String("format", format))

	file, err := h.sessionUC.ExportAnswers(ctx, sessionID, format)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	return h.messageSender.SendDocument(ctx, msg.ChatID, file.Filename, file.Data)
}

// deliver sends each reply; the last one carries the quick-reply keyboard
func (h *ChatHandler) deliver(ctx context.Context, chatID int64, turn *entity.TurnDTO) error {
	for i, reply := range turn.Replies {
		var markup any
		if i == len(turn.Replies)-1 {
			if kb := h.keyboard.OptionsKeyboard(turn.Options); kb != nil {
				markup = kb
			}
		}
		if err := h.messageSender.Send(ctx, chatID, reply.Text, markup); err != nil {
			return err
		}
	}

	if turn.Session.Completed {
		return h.messageSender.Send(ctx, chatID, render.MsgCompleted, h.keyboard.ExportKeyboard())
	}
	return nil
}

func (h *ChatHandler) discard(ctx context.Context, sessionID string) {
	if err := h.sessionUC.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, entity.ErrSessionNotFound) {
		ctxzap.Warn(ctx, "failed to delete survey session", zap.Error(err), zap.String("session_id", sessionID))
	}
}
