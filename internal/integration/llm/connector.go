package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/survey-assistant/internal/config"
	"github.com/futig/survey-assistant/internal/entity"
	pkghttp "github.com/futig/survey-assistant/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector talks to an OpenAI-compatible chat completions API
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: newBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

func newBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger) *pkghttp.Connector {
	return pkghttp.NewConnector(
		&pkghttp.ConnectorConfig{
			Logger:  logger,
			BaseURL: cfg.Url,
		},
		pkghttp.WithRequestTimeout(cfg.RequestTimeout),
		pkghttp.WithConnClientTimeout(cfg.ConnTimeout),
		pkghttp.WithClientKeepAlive(cfg.KeepAlive),
		pkghttp.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkghttp.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkghttp.WithRequestLogging(),
		pkghttp.WithAuthToken(cfg.Token),
	)
}

// Complete sends the prompt and returns the first choice's content
func (c *Connector) Complete(ctx context.Context, req *entity.CompletionRequest) (string, error) {
	ctxzap.Debug(ctx, "requesting completion via LLM service",
		zap.String("task", string(req.Task)),
		zap.String("model", c.config.Model),
	)

	body := entity.LLMChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
	}

	var resp entity.LLMChatCompletionResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.CompletionsEndpoint, body, &resp)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("invalid completion response: no choices")
	}

	content := resp.Choices[0].Message.Content
	ctxzap.Debug(ctx, "completion received",
		zap.String("task", string(req.Task)),
		zap.String("finish_reason", resp.Choices[0].FinishReason),
		zap.Int("content_length", len(content)),
	)

	return content, nil
}
