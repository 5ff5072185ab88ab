package builder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/survey-assistant/internal/telegram"
	"go.uber.org/zap"
)

// App is the HTTP survey backend
type App struct {
	server          *http.Server
	resources       *resources
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// Run serves HTTP until ctx is cancelled or the listener fails
func (a *App) Run(ctx context.Context) error {
	defer a.release()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		serveErr <- a.server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		a.logger.Error("Server error", zap.Error(err))
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
		a.logger.Info("Shutdown requested", zap.NamedError("cause", context.Cause(ctx)))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.logger.Info("Draining HTTP connections", zap.Duration("timeout", a.shutdownTimeout))
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

func (a *App) release() {
	a.logger.Info("Closing storage connections")
	a.resources.close()
	a.logger.Info("Application stopped")
	_ = a.logger.Sync()
}

// BotApp is the Telegram front end together with the storage it was built on
type BotApp struct {
	bot       telegram.Bot
	resources *resources
	logger    *zap.Logger
}

// Run polls Telegram until ctx is cancelled, then stops the bot and closes storage
func (b *BotApp) Run(ctx context.Context) error {
	defer func() {
		b.resources.close()
		b.logger.Info("Telegram bot released storage connections")
		_ = b.logger.Sync()
	}()

	if err := b.bot.Start(ctx); err != nil {
		return fmt.Errorf("start telegram bot: %w", err)
	}

	<-ctx.Done()
	b.logger.Info("Shutdown requested, stopping survey bot")

	if err := b.bot.Stop(); err != nil {
		return fmt.Errorf("stop telegram bot: %w", err)
	}
	return nil
}
