// Package progresstracker собирает HTTP-приложение трекера прогресса:
// подключение к redis, сервисы, маршруты и graceful-остановку сервера.
package progresstracker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/progress-tracker/internal/config"
	"github.com/magabrotheeeer/progress-tracker/internal/lib/jwt"
	actionsservice "github.com/magabrotheeeer/progress-tracker/internal/services/actions"
	completionservice "github.com/magabrotheeeer/progress-tracker/internal/services/completion"
	flagsservice "github.com/magabrotheeeer/progress-tracker/internal/services/flags"
	promptsservice "github.com/magabrotheeeer/progress-tracker/internal/services/prompts"
	"github.com/magabrotheeeer/progress-tracker/internal/storage"
)

// App инкапсулирует HTTP-сервер трекера и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
}

// New создает приложение: проверяет соединение с redis, собирает сервисы
// и маршруты, настраивает HTTP-сервер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	tokenMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	completionService := completionservice.NewCompletionService(db, logger, cfg.ResetHourUTC)
	actionsService := actionsservice.NewActionsService(db, logger)
	promptsService := promptsservice.NewPromptsService(db, logger, cfg.PromptTTL, cfg.ExpiryCheckDisabled)
	flagsService := flagsservice.NewFlagsService(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, tokenMaker,
		completionService, actionsService, promptsService, flagsService)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до ошибки сервера либо отмены
// контекста, после чего останавливает сервер gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.Db.Close(); closeErr != nil {
			a.logger.Error("failed to close redis connection")
		}
		return err
	}
}
