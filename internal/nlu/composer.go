package nlu

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Mode selects how the composer phrases a question
type Mode string

const (
	ModeAsk              Mode = "ask"
	ModeReaskInvalid     Mode = "reask_invalid"
	ModeRedirectOffTopic Mode = "redirect_offtopic"
)

// Composer phrases questions as chat messages in the session language
type Composer struct {
	completer Completer
}

func NewComposer(completer Completer) *Composer {
	return &Composer{completer: completer}
}

// Compose renders q for mode, entirely in lang
func (c *Composer) Compose(ctx context.Context, q entity.Question, mode Mode, lang entity.Language) (string, error) {
	out, err := c.completer.Complete(ctx, &entity.CompletionRequest{
		Task:        entity.TaskCompose,
		Messages:    composePrompt(q, mode, lang),
		Temperature: composeTemperature,
		Hints:       entity.NLUHints{Question: q, Language: lang, Mode: string(mode)},
	})
	if err != nil {
		return "", fmt.Errorf("%w: compose %s: %w", entity.ErrCollaborator, mode, err)
	}

	text := strings.TrimSpace(out)
	if text == "" {
		return "", fmt.Errorf("%w: compose %s: %w", entity.ErrCollaborator, mode, entity.ErrUnparseableOutput)
	}

	ctxzap.Debug(ctx, "message composed",
		zap.String("mode", string(mode)),
		zap.String("language", lang.Code),
		zap.Int("length", len(text)),
	)

	return text, nil
}
