package repository

import (
	"context"
	"time"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// StubSaver accepts every answer set after a fixed delay without storing it
type StubSaver struct {
	delay time.Duration
}

func NewStubSaver(delay time.Duration) *StubSaver {
	return &StubSaver{delay: delay}
}

func (s *StubSaver) Save(ctx context.Context, result entity.SurveyResult) error {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	ctxzap.Info(ctx, "[STUB] survey responses saved",
		zap.String("session_id", result.SessionID),
		zap.Int("answers", len(result.Answers)),
	)
	return nil
}
