// Package services содержит бизнес-логику учёта завершения подкатегорий
// и двух независимых механизмов суточного сброса прогресса.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/magabrotheeeer/progress-tracker/internal/keyspace"
)

// Store определяет методы бэкенда персистентности, нужные учёту прогресса.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	MultiRemove(ctx context.Context, keys []string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// CompletionService реализует учёт завершения подкатегорий.
//
// Суточный сброс существует в двух независимых вариантах, унаследованных от
// продукта: проход по переданной карте категорий с защёлкой done-control-time
// и порогом по часу UTC, и полное удаление флагов с защёлкой
// last_daily_progress_reset_date. Каждый механизм закрыт собственным
// контрольным ключом, поэтому в пределах одного дня они не сбрасывают дважды.
type CompletionService struct {
	store        Store
	log          *slog.Logger
	resetHourUTC int
	now          func() time.Time
}

// NewCompletionService создает новый экземпляр CompletionService.
// resetHourUTC — час по UTC, до которого суточный сброс не запускается.
func NewCompletionService(store Store, log *slog.Logger, resetHourUTC int) *CompletionService {
	return &CompletionService{
		store:        store,
		log:          log,
		resetHourUTC: resetHourUTC,
		now:          time.Now,
	}
}

// SetDone отмечает подкатегорию как полностью пройденную. Идемпотентна.
func (s *CompletionService) SetDone(ctx context.Context, owner, category string, subCategoryIndex int) error {
	const op = "completion.SetDone"
	key := keyspace.Physical(owner, keyspace.DoneKey(category, subCategoryIndex))
	if err := s.store.Set(ctx, key, "true"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("marked subcategory done",
		slog.String("category", category), slog.Int("index", subCategoryIndex))
	return nil
}

// GetDone возвращает сырое значение флага завершения: "true", "false"
// либо отсутствие, без интерпретации. Отсутствие читается как "false"
// на стороне потребителя.
func (s *CompletionService) GetDone(ctx context.Context, owner, category string, subCategoryIndex int) (string, bool, error) {
	const op = "completion.GetDone"
	key := keyspace.Physical(owner, keyspace.DoneKey(category, subCategoryIndex))
	val, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, ok, nil
}

// ResetIfNewDay сбрасывает флаги завершения всех пар (категория, подкатегория)
// из переданной карты, если с последнего сброса сменился день месяца по UTC
// и текущий час UTC достиг порога. Карта задаёт количество подкатегорий
// на категорию; флаги выставляются в "false", не удаляются.
//
// Возвращает true, если проход состоялся.
func (s *CompletionService) ResetIfNewDay(ctx context.Context, owner string, categories map[string]int) (bool, error) {
	const op = "completion.ResetIfNewDay"

	nowUTC := s.now().UTC()
	today := strconv.Itoa(nowUTC.Day())
	controlKey := keyspace.Physical(owner, keyspace.DoneControlTime)

	last, ok, err := s.store.Get(ctx, controlKey)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		// Первый запуск: запоминаем день, флаги не трогаем
		if err := s.store.Set(ctx, controlKey, today); err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		return false, nil
	}
	if last == today {
		return false, nil
	}
	if nowUTC.Hour() < s.resetHourUTC {
		return false, nil
	}

	for category, count := range categories {
		for i := 0; i < count; i++ {
			key := keyspace.Physical(owner, keyspace.DoneKey(category, i))
			if err := s.store.Set(ctx, key, "false"); err != nil {
				return false, fmt.Errorf("%s: %w", op, err)
			}
		}
	}
	if err := s.store.Set(ctx, controlKey, today); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("daily progress reset completed", slog.Int("categories", len(categories)))
	return true, nil
}

// ResetDailyProgress — второй, независимый путь суточного сброса,
// запускаемый из приложения. Защёлкивается полной ISO-датой; force
// обходит защёлку для явного запуска пользователем.
//
// Возвращает true, если сброс состоялся.
func (s *CompletionService) ResetDailyProgress(ctx context.Context, owner string, force bool) (bool, error) {
	const op = "completion.ResetDailyProgress"

	today := s.now().UTC().Format("2006-01-02")
	controlKey := keyspace.Physical(owner, keyspace.LastDailyProgressReset)

	if !force {
		last, ok, err := s.store.Get(ctx, controlKey)
		if err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		if ok && last == today {
			return false, nil
		}
	}

	removed, err := s.ResetAllSubCategoryProgress(ctx, owner)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Set(ctx, controlKey, today); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("bulk progress reset completed", slog.Int("removed", removed))
	return true, nil
}

// ResetAllSubCategoryProgress удаляет все флаги завершения текущего владельца.
// Флаг распознаётся по форме логического ключа {category}.{int}; ключ другой
// природы с совпадающей формой будет удалён тоже — известный риск схемы ключей.
// Массовое удаление не атомарно: сбой посередине оставляет часть флагов.
func (s *CompletionService) ResetAllSubCategoryProgress(ctx context.Context, owner string) (int, error) {
	const op = "completion.ResetAllSubCategoryProgress"

	keys, err := s.store.Keys(ctx, keyspace.OwnerPrefix(owner))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var doomed []string
	for _, key := range keys {
		logical, ok := keyspace.Logical(owner, key)
		if !ok {
			continue
		}
		if keyspace.IsDoneKey(logical) {
			doomed = append(doomed, key)
		}
	}
	if err := s.store.MultiRemove(ctx, doomed); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return len(doomed), nil
}
