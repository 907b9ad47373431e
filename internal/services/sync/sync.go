// Package services содержит фоновую синхронизацию локальных записей с бэкендом:
// публикацию несинхронизированных действий по карточкам и отчётов об удалении
// протухших подсказок в RabbitMQ.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/progress-tracker/internal/keyspace"
	"github.com/magabrotheeeer/progress-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/progress-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/progress-tracker/internal/models"
)

// Store определяет методы бэкенда персистентности, нужные синхронизации.
// Scan работает по всему пространству ключей: фоновые проходы обслуживают
// всех владельцев сразу, а не одного.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Scan(ctx context.Context, match string) ([]string, error)
}

// Publisher описывает публикацию сообщения в брокер.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// SyncService публикует несинхронизированные записи и помечает их
// отправленными только после успешной публикации. Частично выполненный
// проход безопасен: оставшиеся записи подберёт следующий тик.
type SyncService struct {
	store     Store
	publisher Publisher
	log       *slog.Logger
}

// NewSyncService создает новый экземпляр SyncService.
func NewSyncService(store Store, publisher Publisher, log *slog.Logger) *SyncService {
	return &SyncService{
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// RunActionSync публикует несинхронизированные действия раз в interval до отмены контекста.
func (s *SyncService) RunActionSync(ctx context.Context, interval time.Duration) {
	s.runActionSync(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runActionSync(ctx)
		}
	}
}

func (s *SyncService) runActionSync(ctx context.Context) {
	s.log.Info("starting sync pass for card actions")
	published, err := s.PublishUnsyncedActions(ctx)
	if err != nil {
		s.log.Error("action sync pass failed", sl.Err(err))
		return
	}
	if published == 0 {
		s.log.Info("no unsynced card actions found")
		return
	}
	s.log.Info("published card actions", slog.Int("count", published))
}

// RunDeletionReports раз в interval помечает протухшие подсказки всех
// владельцев и публикует отчёты об их удалении, до отмены контекста.
func (s *SyncService) RunDeletionReports(ctx context.Context, interval, promptTTL time.Duration) {
	s.runDeletionReports(ctx, promptTTL)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runDeletionReports(ctx, promptTTL)
		}
	}
}

func (s *SyncService) runDeletionReports(ctx context.Context, promptTTL time.Duration) {
	s.log.Info("starting deletion report pass")
	marked, err := s.SweepExpiredPrompts(ctx, promptTTL)
	if err != nil {
		s.log.Error("expiry sweep failed", sl.Err(err))
		return
	}
	if marked > 0 {
		s.log.Info("expired prompts marked", slog.Int("count", marked))
	}
	published, err := s.PublishDeletionReports(ctx)
	if err != nil {
		s.log.Error("deletion report pass failed", sl.Err(err))
		return
	}
	if published == 0 {
		s.log.Info("no pending deletion reports found")
		return
	}
	s.log.Info("published deletion reports", slog.Int("count", published))
}

// PublishUnsyncedActions находит подробные записи с synced = false у всех
// владельцев, публикует их и помечает synced = true по одной, по мере успеха.
// Возвращает количество опубликованных записей.
func (s *SyncService) PublishUnsyncedActions(ctx context.Context) (int, error) {
	const op = "sync.PublishUnsyncedActions"

	keys, err := s.store.Scan(ctx, "*"+keyspace.ActionDetailRoot+"*")
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	published := 0
	for _, key := range keys {
		val, ok, err := s.store.Get(ctx, key)
		if err != nil {
			return published, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			continue
		}
		var detail models.ActionDetail
		if err := json.Unmarshal([]byte(val), &detail); err != nil {
			s.log.Warn("malformed action detail skipped", slog.String("key", key))
			continue
		}
		if detail.Synced {
			continue
		}

		if err := s.publisher.Publish(rabbitmq.Exchange, rabbitmq.RoutingActions, detail); err != nil {
			return published, fmt.Errorf("%s: %w", op, err)
		}

		detail.Synced = true
		body, err := json.Marshal(detail)
		if err != nil {
			return published, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.store.Set(ctx, key, string(body)); err != nil {
			return published, fmt.Errorf("%s: %w", op, err)
		}
		published++
	}
	return published, nil
}

// SweepExpiredPrompts помечает протухшими просмотренные подсказки всех
// владельцев, чей первый показ был ttl назад и раньше. Уже помеченные
// подсказки пропускаются, так что проход идемпотентен.
func (s *SyncService) SweepExpiredPrompts(ctx context.Context, ttl time.Duration) (int, error) {
	const op = "sync.SweepExpiredPrompts"

	keys, err := s.store.Scan(ctx, "*"+keyspace.ViewedRoot+"*")
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	nowMs := time.Now().UnixMilli()
	marked := 0
	for _, key := range keys {
		val, ok, err := s.store.Get(ctx, key)
		if err != nil {
			return marked, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			continue
		}
		ts, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			s.log.Warn("malformed view timestamp skipped", slog.String("key", key))
			continue
		}
		if nowMs-ts < ttl.Milliseconds() {
			continue
		}

		expiredKey := strings.Replace(key, keyspace.ViewedRoot, keyspace.ExpiredRoot, 1)
		_, already, err := s.store.Get(ctx, expiredKey)
		if err != nil {
			return marked, fmt.Errorf("%s: %w", op, err)
		}
		if already {
			continue
		}
		if err := s.store.Set(ctx, expiredKey, "true"); err != nil {
			return marked, fmt.Errorf("%s: %w", op, err)
		}
		marked++
	}
	return marked, nil
}

// PublishDeletionReports находит протухшие подсказки всех владельцев,
// об удалении которых бэкенд ещё не уведомлён, публикует отчёты и ставит
// отметку prompt-deletion-reported, исключая повторные отправки.
func (s *SyncService) PublishDeletionReports(ctx context.Context) (int, error) {
	const op = "sync.PublishDeletionReports"

	keys, err := s.store.Scan(ctx, "*"+keyspace.ExpiredRoot+"*")
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	published := 0
	for _, key := range keys {
		// отметка об отправке отличается от ключа протухания только корнем
		reportedKey := strings.Replace(key, keyspace.ExpiredRoot, keyspace.ReportedRoot, 1)
		_, reported, err := s.store.Get(ctx, reportedKey)
		if err != nil {
			return published, fmt.Errorf("%s: %w", op, err)
		}
		if reported {
			continue
		}

		root := strings.Index(key, keyspace.ExpiredRoot)
		category, title, idx, ok := keyspace.ParseCardSuffix(key[root+len(keyspace.ExpiredRoot):])
		if !ok {
			s.log.Warn("unparsable expired key skipped", slog.String("key", key))
			continue
		}
		ref := models.CardRef{Category: category, Title: title, CardIndex: idx}

		if err := s.publisher.Publish(rabbitmq.Exchange, rabbitmq.RoutingDeleted, ref); err != nil {
			return published, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.store.Set(ctx, reportedKey, "true"); err != nil {
			return published, fmt.Errorf("%s: %w", op, err)
		}
		published++
	}
	return published, nil
}
