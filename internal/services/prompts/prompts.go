// Package services содержит бизнес-логику жизненного цикла подсказок:
// отметка первого просмотра, протухание через сутки и отчёты об удалении.
//
// Состояния одной карточки строго последовательны:
// не просмотрена -> просмотрена -> протухла -> удаление отправлено.
// Обратных переходов нет: протухшая подсказка не «отпротухает».
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/progress-tracker/internal/keyspace"
	"github.com/magabrotheeeer/progress-tracker/internal/models"
)

// Store определяет методы бэкенда персистентности, нужные жизненному циклу подсказок.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// PromptsService реализует учёт просмотров и протухания подсказок.
type PromptsService struct {
	store Store
	log   *slog.Logger
	// ttl — срок жизни подсказки с момента первого просмотра.
	ttl time.Duration
	// checkDisabled — продуктовый переключатель: чтение признака протухания
	// всегда отвечает «не протухла». Механизм записи состояний продолжает работать.
	checkDisabled bool
	now           func() time.Time
}

// NewPromptsService создает новый экземпляр PromptsService.
func NewPromptsService(store Store, log *slog.Logger, ttl time.Duration, checkDisabled bool) *PromptsService {
	return &PromptsService{
		store:         store,
		log:           log,
		ttl:           ttl,
		checkDisabled: checkDisabled,
		now:           time.Now,
	}
}

// RecordViewedIfAbsent записывает отметку первого просмотра, если её ещё нет.
// Повторный просмотр отметку не обновляет. Возвращает true, если просмотр
// был первым — событие «первый просмотр» эмитит вызывающая сторона,
// сам сервис событий не порождает.
func (s *PromptsService) RecordViewedIfAbsent(ctx context.Context, owner string, ref models.CardRef) (bool, error) {
	const op = "prompts.RecordViewedIfAbsent"

	key := keyspace.Physical(owner, keyspace.ViewedKey(ref.Category, ref.Title, ref.CardIndex))
	_, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if ok {
		return false, nil
	}

	ts := strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.store.Set(ctx, key, ts); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("recorded first prompt view",
		slog.String("category", ref.Category), slog.Int("index", ref.CardIndex))
	return true, nil
}

// IsExpired сообщает, протухла ли подсказка. При включённом переключателе
// checkDisabled всегда возвращает false, не заглядывая в хранилище.
func (s *PromptsService) IsExpired(ctx context.Context, owner string, ref models.CardRef) (bool, error) {
	const op = "prompts.IsExpired"

	if s.checkDisabled {
		return false, nil
	}
	key := keyspace.Physical(owner, keyspace.ExpiredKey(ref.Category, ref.Title, ref.CardIndex))
	val, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok && val == "true", nil
}

// MarkExpired помечает подсказку как протухшую. Повторная пометка — no-op.
func (s *PromptsService) MarkExpired(ctx context.Context, owner string, ref models.CardRef) error {
	const op = "prompts.MarkExpired"
	key := keyspace.Physical(owner, keyspace.ExpiredKey(ref.Category, ref.Title, ref.CardIndex))
	if err := s.store.Set(ctx, key, "true"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SweepExpirations помечает протухшими все подсказки владельца, просмотренные
// не позже чем ttl назад. Идемпотентна, безопасна для повторных запусков.
// Возвращает количество помеченных на этом проходе.
func (s *PromptsService) SweepExpirations(ctx context.Context, owner string) (int, error) {
	const op = "prompts.SweepExpirations"

	viewedPrefix := keyspace.Physical(owner, keyspace.ViewedRoot)
	keys, err := s.store.Keys(ctx, viewedPrefix)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	nowMs := s.now().UnixMilli()
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
		if nowMs-ts < s.ttl.Milliseconds() {
			continue
		}
		// физический ключ признака протухания отличается только корнем
		suffix := strings.TrimPrefix(key, viewedPrefix)
		expiredKey := keyspace.Physical(owner, keyspace.ExpiredRoot+suffix)
		if err := s.store.Set(ctx, expiredKey, "true"); err != nil {
			return marked, fmt.Errorf("%s: %w", op, err)
		}
		marked++
	}

	if marked > 0 {
		s.log.Info("expired prompts marked", slog.Int("count", marked))
	}
	return marked, nil
}

// GetPendingDeletionReports возвращает протухшие подсказки, об удалении
// которых бэкенд ещё не уведомлён. Нечитаемые ключи пропускаются.
func (s *PromptsService) GetPendingDeletionReports(ctx context.Context, owner string) ([]models.CardRef, error) {
	const op = "prompts.GetPendingDeletionReports"

	expiredPrefix := keyspace.Physical(owner, keyspace.ExpiredRoot)
	keys, err := s.store.Keys(ctx, expiredPrefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pending := make([]models.CardRef, 0, len(keys))
	for _, key := range keys {
		category, title, idx, ok := keyspace.ParseCardSuffix(strings.TrimPrefix(key, expiredPrefix))
		if !ok {
			s.log.Warn("unparsable expired key skipped", slog.String("key", key))
			continue
		}
		reportedKey := keyspace.Physical(owner, keyspace.ReportedKey(category, title, idx))
		_, reported, err := s.store.Get(ctx, reportedKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if reported {
			continue
		}
		pending = append(pending, models.CardRef{Category: category, Title: title, CardIndex: idx})
	}
	return pending, nil
}

// MarkDeletionReported исключает подсказку из будущих списков на удаление.
func (s *PromptsService) MarkDeletionReported(ctx context.Context, owner string, ref models.CardRef) error {
	const op = "prompts.MarkDeletionReported"
	key := keyspace.Physical(owner, keyspace.ReportedKey(ref.Category, ref.Title, ref.CardIndex))
	if err := s.store.Set(ctx, key, "true"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
