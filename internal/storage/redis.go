// Package storage реализует бэкенд персистентности на основе Redis.
//
// Контракт намеренно узкий: плоские строковые пары ключ-значение с операциями
// get/set/remove/multiRemove и перечислением ключей по префиксу. Никаких
// транзакций и гарантий порядка между разными ключами нет — потребители
// обязаны переживать частично применённые массовые операции.
package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/progress-tracker/internal/config"
)

// Storage инкапсулирует соединение с Redis.
type Storage struct {
	Db *redis.Client
}

// New создаёт подключение к Redis и проверяет его доступность.
func New(ctx context.Context, cfg config.RedisConnection) (*Storage, error) {
	const op = "storage.New"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{Db: db}, nil
}

// Get возвращает значение ключа. Отсутствие ключа — не ошибка:
// второе значение false и nil.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "storage.Get"
	val, err := s.Db.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, true, nil
}

// Set записывает значение ключа без срока жизни: записи прогресса
// живут до явного удаления или выхода пользователя из аккаунта.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	const op = "storage.Set"
	if err := s.Db.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Remove удаляет один ключ. Удаление отсутствующего ключа — no-op.
func (s *Storage) Remove(ctx context.Context, key string) error {
	const op = "storage.Remove"
	if err := s.Db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MultiRemove удаляет набор ключей одной командой.
// Атомарности между ключами не гарантирует.
func (s *Storage) MultiRemove(ctx context.Context, keys []string) error {
	const op = "storage.MultiRemove"
	if len(keys) == 0 {
		return nil
	}
	if err := s.Db.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Keys перечисляет все ключи с заданным префиксом.
func (s *Storage) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.Scan(ctx, prefix+"*")
}

// Scan перечисляет ключи по glob-шаблону через SCAN,
// чтобы не блокировать Redis командой KEYS на большом пространстве ключей.
func (s *Storage) Scan(ctx context.Context, match string) ([]string, error) {
	const op = "storage.Scan"
	var keys []string
	iter := s.Db.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return keys, nil
}
