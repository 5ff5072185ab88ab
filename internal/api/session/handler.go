package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/futig/survey-assistant/internal/pkg/logger"
	"github.com/futig/survey-assistant/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase SessionUsecase
}

func NewHandler(usecase SessionUsecase) *Handler {
	return &Handler{
		usecase: usecase,
	}
}

// StartSession handles POST /survey-session - Start new survey session
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	turn, err := h.usecase.StartSession(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "survey session created", zap.String("session_id", turn.Session.ID))

	h.write(ctx, w, response.Created(w, turn))
}

// GetSession handles GET /survey-session/{id} - Get session state and the pending prompt
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetSession"),
	)

	ctxzap.Debug(ctx, "fetching session")

	turn, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.write(ctx, w, response.Success(w, turn))
}

// SubmitMessage handles POST /survey-session/{id}/messages - Submit one user utterance
func (h *Handler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "SubmitMessage"),
	)

	var req entity.SubmitMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctxzap.Info(ctx, "submitting message", zap.Int("text_length", len(req.Text)))

	turn, err := h.usecase.SubmitMessage(ctx, sessionID, req.Text)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "message processed",
		zap.String("state", string(turn.Session.State)),
		zap.Int("replies", len(turn.Replies)),
	)

	h.write(ctx, w, response.Success(w, turn))
}

// GetTranscript handles GET /survey-session/{id}/transcript - Full conversation history
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetTranscript"),
	)

	transcript, err := h.usecase.GetTranscript(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.write(ctx, w, response.Success(w, transcript))
}

// ExportAnswers handles GET /survey-session/{id}/answers?format= - Download the answer sheet
func (h *Handler) ExportAnswers(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("format", format),
		zap.String("action", "ExportAnswers"),
	)

	file, err := h.usecase.ExportAnswers(ctx, sessionID, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if err := response.Attachment(w, file); err != nil {
		ctxzap.Warn(ctx, "failed to write answer sheet", zap.Error(err))
	}
}

// DeleteSession handles DELETE /survey-session/{id} - Discard a session
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "DeleteSession"),
	)

	if err := h.usecase.DeleteSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session deleted")
	response.NoContent(w)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}
	if err := response.Error(w, status, message); err != nil {
		ctxzap.Warn(ctx, "failed to write error response", zap.Error(err))
	}
}

func (h *Handler) write(ctx context.Context, w http.ResponseWriter, err error) {
	if err != nil {
		ctxzap.Warn(ctx, "failed to write response", zap.Error(err))
	}
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	status, message := classifyError(err)
	h.respondError(ctx, w, status, message, err)
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrInvalidFormat):
		return http.StatusBadRequest, "invalid parameter: " + err.Error()
	case errors.Is(err, entity.ErrSessionCompleted):
		return http.StatusConflict, entity.UserMessage(err, "survey already completed")
	case errors.Is(err, entity.ErrNoResult):
		return http.StatusConflict, "survey is not completed yet"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
