package nlu

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Completer is the NLU collaborator: a role-tagged prompt in, free text out
type Completer interface {
	Complete(ctx context.Context, req *entity.CompletionRequest) (string, error)
}

// Interpreter validates and normalizes free-text answers.
// Collaborator faults yield the conservative value together with an error
// wrapping entity.ErrCollaborator.
type Interpreter struct {
	completer Completer
}

func NewInterpreter(completer Completer) *Interpreter {
	return &Interpreter{completer: completer}
}

// Validate reports whether raw, read in lang, expresses a valid answer to q
func (i *Interpreter) Validate(ctx context.Context, q entity.Question, raw string, lang entity.Language) (bool, error) {
	if strings.TrimSpace(raw) == "" {
		return false, nil
	}
	if _, ok := canonicalValue(q, raw); ok {
		return true, nil
	}

	out, err := i.completer.Complete(ctx, &entity.CompletionRequest{
		Task:        entity.TaskValidate,
		Messages:    validatePrompt(q, raw, lang),
		Temperature: judgeTemperature,
		Hints:       entity.NLUHints{Question: q, Response: raw, Language: lang},
	})
	if err != nil {
		return false, fmt.Errorf("%w: validate %s: %w", entity.ErrCollaborator, q.ID, err)
	}

	valid, ok := parseBool(out)
	if !ok {
		ctxzap.Warn(ctx, "unparseable validation output",
			zap.String("question_id", q.ID.String()),
			zap.String("output", out),
			zap.Error(entity.ErrUnparseableOutput),
		)
		return false, nil
	}

	return valid, nil
}

// Interpret maps raw onto q's canonical answer, or Invalid.
// Input that is already canonical is returned in canonical spelling without a collaborator call.
func (i *Interpreter) Interpret(ctx context.Context, q entity.Question, raw string, lang entity.Language) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return Invalid, nil
	}
	if canonical, ok := canonicalValue(q, raw); ok {
		return canonical, nil
	}

	out, err := i.completer.Complete(ctx, &entity.CompletionRequest{
		Task:        entity.TaskInterpret,
		Messages:    interpretPrompt(q, raw, lang),
		Temperature: judgeTemperature,
		Hints:       entity.NLUHints{Question: q, Response: raw, Language: lang},
	})
	if err != nil {
		return Invalid, fmt.Errorf("%w: interpret %s: %w", entity.ErrCollaborator, q.ID, err)
	}

	value := parseInterpretation(q, out)
	if value == Invalid && !strings.EqualFold(cleanToken(out), Invalid) {
		ctxzap.Warn(ctx, "interpretation outside answer space",
			zap.String("question_id", q.ID.String()),
			zap.String("output", out),
		)
	}

	return value, nil
}

// IsOffTopic reports whether raw is unrelated to q. It is advisory only.
func (i *Interpreter) IsOffTopic(ctx context.Context, q entity.Question, raw string) (bool, error) {
	if _, ok := canonicalValue(q, raw); ok && q.Kind() != entity.ShapeOpen {
		return false, nil
	}

	out, err := i.completer.Complete(ctx, &entity.CompletionRequest{
		Task:        entity.TaskOffTopic,
		Messages:    offTopicPrompt(q, raw),
		Temperature: judgeTemperature,
		Hints:       entity.NLUHints{Question: q, Response: raw},
	})
	if err != nil {
		return false, fmt.Errorf("%w: off-topic %s: %w", entity.ErrCollaborator, q.ID, err)
	}

	offTopic, ok := parseBool(out)
	if !ok {
		ctxzap.Warn(ctx, "unparseable off-topic output",
			zap.String("question_id", q.ID.String()),
			zap.String("output", out),
			zap.Error(entity.ErrUnparseableOutput),
		)
		return false, nil
	}

	return offTopic, nil
}
