// Package services содержит бизнес-логику учёта действий пользователя по карточкам.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/progress-tracker/internal/keyspace"
	"github.com/magabrotheeeer/progress-tracker/internal/models"
)

// Store определяет методы бэкенда персистентности, нужные учёту действий.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	MultiRemove(ctx context.Context, keys []string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ActionsService хранит решения пользователя по карточкам в двух формах:
// компактной ("like"|"dislike"|"maybe") и подробной (JSON-запись с временем
// и признаком синхронизации). Обе формы пишутся в рамках одной логической
// операции и никогда не расходятся по полю action.
type ActionsService struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// NewActionsService создает новый экземпляр ActionsService.
func NewActionsService(store Store, log *slog.Logger) *ActionsService {
	return &ActionsService{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// SetAction записывает действие по карточке: компактный ключ и подробную
// запись с timestamp = now и synced = false. Прежнее действие по той же
// карточке перезаписывается, история не ведётся.
func (s *ActionsService) SetAction(ctx context.Context, owner string, ref models.CardRef, action models.Action) error {
	const op = "actions.SetAction"

	if !action.Valid() {
		return fmt.Errorf("%s: unknown action %q", op, action)
	}

	compactKey := keyspace.Physical(owner, keyspace.ActionKey(ref.Category, ref.Title, ref.CardIndex))
	if err := s.store.Set(ctx, compactKey, string(action)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	detail := models.ActionDetail{
		Category:  ref.Category,
		Title:     ref.Title,
		CardIndex: ref.CardIndex,
		Action:    action,
		Timestamp: s.now().UnixMilli(),
		Synced:    false,
	}
	body, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	detailKey := keyspace.Physical(owner, keyspace.ActionDetailKey(ref.Category, ref.Title, ref.CardIndex))
	if err := s.store.Set(ctx, detailKey, string(body)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("recorded card action",
		slog.String("category", ref.Category), slog.Int("index", ref.CardIndex),
		slog.String("action", string(action)))
	return nil
}

// GetAction возвращает компактное действие по карточке, если оно записано.
func (s *ActionsService) GetAction(ctx context.Context, owner string, ref models.CardRef) (models.Action, bool, error) {
	const op = "actions.GetAction"
	key := keyspace.Physical(owner, keyspace.ActionKey(ref.Category, ref.Title, ref.CardIndex))
	val, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return "", false, nil
	}
	action := models.Action(val)
	if !action.Valid() {
		return "", false, nil
	}
	return action, true, nil
}

// GetActionDetails возвращает подробную запись действия.
// Отсутствующая или некорректная запись читается как отсутствие (nil),
// не как ошибка: компактная форма остаётся авторитетной.
func (s *ActionsService) GetActionDetails(ctx context.Context, owner string, ref models.CardRef) (*models.ActionDetail, error) {
	const op = "actions.GetActionDetails"
	key := keyspace.Physical(owner, keyspace.ActionDetailKey(ref.Category, ref.Title, ref.CardIndex))
	val, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, nil
	}
	var detail models.ActionDetail
	if err := json.Unmarshal([]byte(val), &detail); err != nil {
		s.log.Warn("malformed action detail, treated as absent", slog.String("key", key))
		return nil, nil
	}
	return &detail, nil
}

// GetAllActions перечисляет действия по всем карточкам пары (категория, title).
// Значения вне множества допустимых действий отфильтровываются.
// Стоимость — скан ключей по префиксу, приемлема на текущем объёме данных.
func (s *ActionsService) GetAllActions(ctx context.Context, owner, category, title string) (map[int]models.Action, error) {
	const op = "actions.GetAllActions"

	prefix := keyspace.Physical(owner, keyspace.ActionPrefix(category, title))
	keys, err := s.store.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make(map[int]models.Action, len(keys))
	for _, key := range keys {
		idx, err := strconv.Atoi(strings.TrimPrefix(key, prefix))
		if err != nil {
			continue
		}
		val, ok, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		action := models.Action(val)
		if !ok || !action.Valid() {
			continue
		}
		result[idx] = action
	}
	return result, nil
}

// GetAllForOwner возвращает все подробные записи владельца,
// отсортированные по timestamp по убыванию. Используется для экспорта.
func (s *ActionsService) GetAllForOwner(ctx context.Context, owner string) ([]models.ActionDetail, error) {
	const op = "actions.GetAllForOwner"

	prefix := keyspace.Physical(owner, keyspace.ActionDetailRoot)
	keys, err := s.store.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	details := make([]models.ActionDetail, 0, len(keys))
	for _, key := range keys {
		val, ok, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			continue
		}
		var detail models.ActionDetail
		if err := json.Unmarshal([]byte(val), &detail); err != nil {
			s.log.Warn("malformed action detail skipped", slog.String("key", key))
			continue
		}
		details = append(details, detail)
	}

	sort.Slice(details, func(i, j int) bool {
		return details[i].Timestamp > details[j].Timestamp
	})
	return details, nil
}

// GetUnsynced возвращает записи, ещё не подтверждённые бэкендом.
func (s *ActionsService) GetUnsynced(ctx context.Context, owner string) ([]models.ActionDetail, error) {
	const op = "actions.GetUnsynced"

	all, err := s.GetAllForOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	unsynced := make([]models.ActionDetail, 0, len(all))
	for _, detail := range all {
		if !detail.Synced {
			unsynced = append(unsynced, detail)
		}
	}
	return unsynced, nil
}

// MarkSynced выставляет synced = true в подробной записи, не меняя остальных
// полей. Отсутствие записи — no-op, возвращается false.
func (s *ActionsService) MarkSynced(ctx context.Context, owner string, ref models.CardRef) (bool, error) {
	const op = "actions.MarkSynced"

	detail, err := s.GetActionDetails(ctx, owner, ref)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if detail == nil {
		return false, nil
	}
	detail.Synced = true

	body, err := json.Marshal(detail)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	key := keyspace.Physical(owner, keyspace.ActionDetailKey(ref.Category, ref.Title, ref.CardIndex))
	if err := s.store.Set(ctx, key, string(body)); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// ClearActions удаляет компактные и подробные записи по всем карточкам пары
// (категория, title). Удаление не атомарно между ключами.
func (s *ActionsService) ClearActions(ctx context.Context, owner, category, title string) (int, error) {
	const op = "actions.ClearActions"

	var doomed []string
	for _, prefix := range []string{
		keyspace.Physical(owner, keyspace.ActionPrefix(category, title)),
		keyspace.Physical(owner, keyspace.ActionDetailPrefix(category, title)),
	} {
		keys, err := s.store.Keys(ctx, prefix)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		doomed = append(doomed, keys...)
	}

	if err := s.store.MultiRemove(ctx, doomed); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("cleared card actions",
		slog.String("category", category), slog.Int("removed", len(doomed)))
	return len(doomed), nil
}
