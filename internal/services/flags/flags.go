// Package services содержит бизнес-логику прикладных флагов приложения:
// тип подписки, показ просьбы об отзыве, каденция ограниченных предложений,
// признак нового контента в категории и индекс категорий по типу контента.
// Здесь же живёт полная очистка записей владельца при выходе из аккаунта.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/progress-tracker/internal/keyspace"
)

// Store определяет методы бэкенда персистентности, нужные флагам.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	MultiRemove(ctx context.Context, keys []string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// FlagsService реализует чтение и запись прикладных флагов.
// Флаги независимы друг от друга; единственный общий инвариант —
// неймспейсинг по владельцу.
type FlagsService struct {
	store Store
	log   *slog.Logger
}

// NewFlagsService создает новый экземпляр FlagsService.
func NewFlagsService(store Store, log *slog.Logger) *FlagsService {
	return &FlagsService{store: store, log: log}
}

var knownFlags = map[string]struct{}{
	keyspace.SubscriptionType: {},
	keyspace.ReviewShown:      {},
	keyspace.CampaignLastDate: {},
	keyspace.OfferLastShown:   {},
}

// KnownFlag сообщает, допустимо ли имя флага: фиксированный набор
// плюс флаги нового контента вида new-content:{category}.
func KnownFlag(name string) bool {
	if _, ok := knownFlags[name]; ok {
		return true
	}
	return strings.HasPrefix(name, keyspace.NewContentRoot) && len(name) > len(keyspace.NewContentRoot)
}

// GetFlag возвращает значение флага, если оно записано.
func (s *FlagsService) GetFlag(ctx context.Context, owner, name string) (string, bool, error) {
	const op = "flags.GetFlag"
	if !KnownFlag(name) {
		return "", false, fmt.Errorf("%s: unknown flag %q", op, name)
	}
	val, ok, err := s.store.Get(ctx, keyspace.Physical(owner, name))
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, ok, nil
}

// SetFlag записывает значение флага. Значения хранятся свободным текстом,
// интерпретация — на стороне потребителя.
func (s *FlagsService) SetFlag(ctx context.Context, owner, name, value string) error {
	const op = "flags.SetFlag"
	if !KnownFlag(name) {
		return fmt.Errorf("%s: unknown flag %q", op, name)
	}
	if err := s.store.Set(ctx, keyspace.Physical(owner, name), value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("flag updated", slog.String("flag", name))
	return nil
}

// StoreCategories сохраняет список категорий типа контента как JSON-массив.
// Пустой список не записывается: имеющееся значение остаётся нетронутым.
func (s *FlagsService) StoreCategories(ctx context.Context, owner, contentType string, categories []string) error {
	const op = "flags.StoreCategories"

	if len(categories) == 0 {
		return nil
	}
	body, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	key := keyspace.Physical(owner, keyspace.CategoriesKey(contentType))
	if err := s.store.Set(ctx, key, string(body)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetCategories возвращает список категорий типа контента.
// Отсутствующее или нечитаемое значение читается как пустой список.
func (s *FlagsService) GetCategories(ctx context.Context, owner, contentType string) ([]string, error) {
	const op = "flags.GetCategories"

	key := keyspace.Physical(owner, keyspace.CategoriesKey(contentType))
	val, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return []string{}, nil
	}
	var categories []string
	if err := json.Unmarshal([]byte(val), &categories); err != nil {
		s.log.Warn("malformed category index, treated as empty", slog.String("key", key))
		return []string{}, nil
	}
	return categories, nil
}

// ClearOwner удаляет все записи владельца одним multiRemove — очистка при
// выходе из аккаунта. Записи других владельцев не затрагиваются.
// Атомарности между ключами нет: сбой посередине оставляет частичную очистку.
func (s *FlagsService) ClearOwner(ctx context.Context, owner string) (int, error) {
	const op = "flags.ClearOwner"

	keys, err := s.store.Keys(ctx, keyspace.OwnerPrefix(owner))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.MultiRemove(ctx, keys); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("owner namespace cleared", slog.Int("removed", len(keys)))
	return len(keys), nil
}
