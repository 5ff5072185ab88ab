package callback

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/survey-assistant/internal/config"
	"github.com/futig/survey-assistant/internal/entity"
	pkgRetry "github.com/futig/survey-assistant/internal/pkg/retry"
	pkghttp "github.com/futig/survey-assistant/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector posts survey events to a configured webhook
type Connector struct {
	config    config.CallbackConnectorConfig
	connector *pkghttp.Connector
	retry     *pkgRetry.RetryConfig
	logger    *zap.Logger
}

func NewConnector(
	cfg config.CallbackConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: pkghttp.NewConnector(
			&pkghttp.ConnectorConfig{
				Logger:  logger,
				BaseURL: cfg.URL,
			},
			pkghttp.WithRequestTimeout(cfg.Timeout),
			pkghttp.WithRequestLogging(),
			pkghttp.WithAuthToken(cfg.Token),
		),
		config: cfg,
		retry:  &cfg.Retry,
		logger: logger,
	}
}

// SendCompleted announces a committed answer set
func (c *Connector) SendCompleted(ctx context.Context, result entity.SurveyResult) error {
	return c.Send(ctx, result.SessionID, &entity.CallbackEvent{
		Event: entity.CallbackEventSurveyCompleted,
		Data:  result,
	})
}

// Send posts event, retrying transient failures
func (c *Connector) Send(ctx context.Context, requestID string, event *entity.CallbackEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	ctxzap.Debug(ctx, "sending callback event",
		zap.String("event_type", string(event.Event)),
		zap.String("request_id", requestID),
		zap.String("timestamp", event.Timestamp),
	)

	err := c.retry.Do(ctx, func() error {
		err := c.connector.DoRequest(ctx, http.MethodPost, "", event, nil, pkghttp.WithHeader("X-Request-ID", requestID))
		if err != nil && !pkghttp.IsTransient(err) {
			return retry.Unrecoverable(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("send callback, event_type: %s: %w", event.Event, err)
	}

	ctxzap.Info(ctx, "callback sent successfully",
		zap.String("event_type", string(event.Event)),
		zap.String("request_id", requestID),
	)
	return nil
}
