package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/futig/survey-assistant/internal/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

const (
	frameConnected = "connected"
	frameMessage   = "message"
	frameError     = "error"
)

// wsFrame is one outbound frame. Message frames carry a single assistant reply;
// the last frame of a turn also carries the state and quick-reply options.
type wsFrame struct {
	Type      string              `json:"type"`
	SessionID string              `json:"session_id"`
	State     entity.SessionState `json:"state,omitempty"`
	Text      string              `json:"text,omitempty"`
	Options   []string            `json:"options,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// WSHandler serves the chat over a websocket: one JSON frame in per user
// utterance, one JSON frame out per assistant reply.
type WSHandler struct {
	usecase  SessionUsecase
	upgrader websocket.Upgrader
}

func NewWSHandler(usecase SessionUsecase, allowedOrigins []string) *WSHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &WSHandler{
		usecase: usecase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
	}
}

// ServeHTTP handles GET /survey-session/ws?session_id= - resumes a session or starts a new one
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SurveyWebSocket")

	var (
		turn *entity.TurnDTO
		err  error
	)
	if sessionID := r.URL.Query().Get("session_id"); sessionID != "" {
		turn, err = h.usecase.GetSession(ctx, sessionID)
	} else {
		turn, err = h.usecase.StartSession(ctx)
	}
	if err != nil {
		status, message := classifyError(err)
		ctxzap.Warn(ctx, "websocket session unavailable", zap.Error(err))
		http.Error(w, message, status)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctxzap.Warn(ctx, "websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sessionID := turn.Session.ID
	ctx = logger.WithSession(ctx, sessionID)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctxzap.Info(ctx, "websocket connected")

	// pings and replies both write to conn; gorilla allows one concurrent writer
	writes := make(chan wsFrame, 16)
	go h.writePump(ctx, cancel, conn, writes)

	writes <- wsFrame{Type: frameConnected, SessionID: sessionID, State: turn.Session.State}
	for _, frame := range replyFrames(turn) {
		writes <- frame
	}

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ctxzap.Warn(ctx, "websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var in entity.SubmitMessageRequest
		if err := json.Unmarshal(payload, &in); err != nil {
			if !send(ctx, writes, wsFrame{Type: frameError, SessionID: sessionID, Error: "invalid frame"}) {
				return
			}
			continue
		}

		turn, err := h.usecase.SubmitMessage(ctx, sessionID, in.Text)
		if err != nil {
			_, message := classifyError(err)
			ctxzap.Warn(ctx, "websocket message rejected", zap.Error(err))
			if !send(ctx, writes, wsFrame{Type: frameError, SessionID: sessionID, Error: message}) {
				return
			}
			continue
		}

		for _, frame := range replyFrames(turn) {
			if !send(ctx, writes, frame) {
				return
			}
		}
	}
}

func (h *WSHandler) writePump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, writes <-chan wsFrame) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case frame := <-writes:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				ctxzap.Warn(ctx, "websocket write failed", zap.Error(err))
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

func send(ctx context.Context, writes chan<- wsFrame, frame wsFrame) bool {
	select {
	case writes <- frame:
		return true
	case <-ctx.Done():
		return false
	}
}

func replyFrames(turn *entity.TurnDTO) []wsFrame {
	frames := make([]wsFrame, 0, len(turn.Replies))
	for _, reply := range turn.Replies {
		frames = append(frames, wsFrame{
			Type:      frameMessage,
			SessionID: turn.Session.ID,
			Text:      reply.Text,
		})
	}
	if n := len(frames); n > 0 {
		frames[n-1].State = turn.Session.State
		frames[n-1].Options = turn.Options
	}
	return frames
}
