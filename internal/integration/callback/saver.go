package callback

import (
	"context"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Saver interface {
	Save(ctx context.Context, result entity.SurveyResult) error
}

type Notifier interface {
	SendCompleted(ctx context.Context, result entity.SurveyResult) error
}

// NotifyingSaver announces every committed answer set to a webhook.
// A failed notification is logged and does not undo the commit.
type NotifyingSaver struct {
	next     Saver
	notifier Notifier
}

func NewNotifyingSaver(next Saver, notifier Notifier) *NotifyingSaver {
	return &NotifyingSaver{
		next:     next,
		notifier: notifier,
	}
}

func (s *NotifyingSaver) Save(ctx context.Context, result entity.SurveyResult) error {
	if err := s.next.Save(ctx, result); err != nil {
		return err
	}

	if err := s.notifier.SendCompleted(ctx, result); err != nil {
		ctxzap.Warn(ctx, "survey completion callback failed",
			zap.Error(err),
			zap.String("session_id", result.SessionID),
		)
	}
	return nil
}
