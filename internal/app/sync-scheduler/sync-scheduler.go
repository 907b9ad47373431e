// Package syncscheduler содержит фоновый планировщик синхронизации:
// публикацию несинхронизированных действий по карточкам и отчётов
// об удалении протухших подсказок в RabbitMQ.
package syncscheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/progress-tracker/internal/config"
	"github.com/magabrotheeeer/progress-tracker/internal/lib/rabbitmq"
	syncservice "github.com/magabrotheeeer/progress-tracker/internal/services/sync"
	"github.com/magabrotheeeer/progress-tracker/internal/storage"
)

const (
	brokerRetries    = 10
	brokerRetryDelay = 3 * time.Second
)

// App представляет приложение планировщика синхронизации.
type App struct {
	syncService *syncservice.SyncService
	cfg         *config.Config
	conn        *amqp.Connection
	ch          *amqp.Channel
	db          *storage.Storage
	logger      *slog.Logger
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, brokerRetries, brokerRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := storage.New(ctx, cfg.RedisConnection)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	syncService := syncservice.NewSyncService(db, &rabbitmq.Publisher{Ch: ch}, logger)

	return &App{
		syncService: syncService,
		cfg:         cfg,
		conn:        conn,
		ch:          ch,
		db:          db,
		logger:      logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает циклы синхронизации и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	go a.syncService.RunActionSync(ctx, a.cfg.SyncInterval)
	go a.syncService.RunDeletionReports(ctx, a.cfg.ExpiryInterval, a.cfg.PromptTTL)

	<-ctx.Done()

	a.logger.Info("shutting down sync scheduler")

	closeResources(a.ch, a.conn, a.logger)
	if err := a.db.Db.Close(); err != nil {
		a.logger.Error("failed to close redis connection", "error", err)
	}

	return nil
}
