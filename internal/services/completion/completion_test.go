package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/progress-tracker/internal/config"
	"github.com/magabrotheeeer/progress-tracker/internal/storage"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func setupService(t *testing.T) (*CompletionService, *storage.Storage) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	st, err := storage.New(context.Background(), config.RedisConnection{Address: mr.Addr()})
	require.NoError(t, err)

	return NewCompletionService(st, newNoopLogger(), 6), st
}

func at(day, hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, time.March, day, hour, 30, 0, 0, time.UTC)
	}
}

func TestSetDoneAndGetDone(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetDone(ctx, "u1", "money", 2))

	val, ok, err := svc.GetDone(ctx, "u1", "money", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", val)

	// соседняя подкатегория не затронута
	_, ok, err = svc.GetDone(ctx, "u1", "money", 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetDone_OwnerIsolation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetDone(ctx, "u1", "money", 0))

	_, ok, err := svc.GetDone(ctx, "u2", "money", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = svc.GetDone(ctx, "", "money", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResetIfNewDay_FirstRunInitializesOnly(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	svc.now = at(10, 12)

	require.NoError(t, svc.SetDone(ctx, "u1", "money", 0))

	swept, err := svc.ResetIfNewDay(ctx, "u1", map[string]int{"money": 2})
	require.NoError(t, err)
	assert.False(t, swept)

	// первый запуск только запоминает день, флаги не трогает
	val, ok, err := svc.GetDone(ctx, "u1", "money", 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", val)
}

func TestResetIfNewDay_SweepsOnNewDayAfterThreshold(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	svc.now = at(10, 12)
	_, err := svc.ResetIfNewDay(ctx, "u1", map[string]int{"money": 2})
	require.NoError(t, err)
	require.NoError(t, svc.SetDone(ctx, "u1", "money", 1))

	// новый день, но до порогового часа — no-op
	svc.now = at(11, 5)
	swept, err := svc.ResetIfNewDay(ctx, "u1", map[string]int{"money": 2})
	require.NoError(t, err)
	assert.False(t, swept)

	val, _, err := svc.GetDone(ctx, "u1", "money", 1)
	require.NoError(t, err)
	assert.Equal(t, "true", val)

	// новый день после порога — проход выставляет "false"
	svc.now = at(11, 7)
	swept, err = svc.ResetIfNewDay(ctx, "u1", map[string]int{"money": 2})
	require.NoError(t, err)
	assert.True(t, swept)

	val, ok, err := svc.GetDone(ctx, "u1", "money", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "false", val)
}

func TestResetIfNewDay_SecondCallSameDayIsNoop(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	svc.now = at(10, 12)
	_, err := svc.ResetIfNewDay(ctx, "u1", map[string]int{"money": 1})
	require.NoError(t, err)

	svc.now = at(11, 12)
	swept, err := svc.ResetIfNewDay(ctx, "u1", map[string]int{"money": 1})
	require.NoError(t, err)
	require.True(t, swept)

	// флаг снова выставлен между вызовами — день, а не значения флагов,
	// решает, можно ли сбрасывать повторно
	require.NoError(t, svc.SetDone(ctx, "u1", "money", 0))

	swept, err = svc.ResetIfNewDay(ctx, "u1", map[string]int{"money": 1})
	require.NoError(t, err)
	assert.False(t, swept)

	val, _, err := svc.GetDone(ctx, "u1", "money", 0)
	require.NoError(t, err)
	assert.Equal(t, "true", val)
}

func TestResetAllSubCategoryProgress_PatternSafety(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetDone(ctx, "u1", "money", 0))
	require.NoError(t, svc.SetDone(ctx, "u1", "health", 3))
	require.NoError(t, st.Set(ctx, "u1_card-action:money:t1:0", "like"))
	require.NoError(t, st.Set(ctx, "u1_done-control-time", "10"))
	require.NoError(t, st.Set(ctx, "u1_content_type_categories_hacks", `["money"]`))
	require.NoError(t, svc.SetDone(ctx, "u2", "money", 0))

	removed, err := svc.ResetAllSubCategoryProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// флаги удалены, а не выставлены в false
	_, ok, err := svc.GetDone(ctx, "u1", "money", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	// служебные и чужие ключи пережили проход
	_, ok, err = st.Get(ctx, "u1_card-action:money:t1:0")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = st.Get(ctx, "u1_done-control-time")
	require.NoError(t, err)
	assert.True(t, ok)
	val, _, err := svc.GetDone(ctx, "u2", "money", 0)
	require.NoError(t, err)
	assert.Equal(t, "true", val)
}

func TestResetDailyProgress_DateLatch(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	svc.now = at(10, 12)

	require.NoError(t, svc.SetDone(ctx, "u1", "money", 0))

	swept, err := svc.ResetDailyProgress(ctx, "u1", false)
	require.NoError(t, err)
	assert.True(t, swept)

	// повторный вызов в тот же день — no-op, даже если флаг выставлен заново
	require.NoError(t, svc.SetDone(ctx, "u1", "money", 0))
	swept, err = svc.ResetDailyProgress(ctx, "u1", false)
	require.NoError(t, err)
	assert.False(t, swept)

	val, _, err := svc.GetDone(ctx, "u1", "money", 0)
	require.NoError(t, err)
	assert.Equal(t, "true", val)

	// force обходит защёлку
	swept, err = svc.ResetDailyProgress(ctx, "u1", true)
	require.NoError(t, err)
	assert.True(t, swept)

	// на следующий день защёлка открывается сама
	require.NoError(t, svc.SetDone(ctx, "u1", "money", 0))
	svc.now = at(11, 12)
	swept, err = svc.ResetDailyProgress(ctx, "u1", false)
	require.NoError(t, err)
	assert.True(t, swept)
}

func TestBothResetMechanisms_NoDoubleResetSameDay(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	// день 10: инициализация done-control-time
	svc.now = at(10, 12)
	_, err := svc.ResetIfNewDay(ctx, "u1", map[string]int{"money": 1})
	require.NoError(t, err)

	// день 11: оба механизма запускаются по одному разу
	svc.now = at(11, 12)
	swept, err := svc.ResetIfNewDay(ctx, "u1", map[string]int{"money": 1})
	require.NoError(t, err)
	require.True(t, swept)
	swept, err = svc.ResetDailyProgress(ctx, "u1", false)
	require.NoError(t, err)
	require.True(t, swept)

	// прогресс, заработанный после обоих сбросов, в тот же день не теряется
	require.NoError(t, svc.SetDone(ctx, "u1", "money", 0))

	swept, err = svc.ResetIfNewDay(ctx, "u1", map[string]int{"money": 1})
	require.NoError(t, err)
	assert.False(t, swept)
	swept, err = svc.ResetDailyProgress(ctx, "u1", false)
	require.NoError(t, err)
	assert.False(t, swept)

	val, _, err := svc.GetDone(ctx, "u1", "money", 0)
	require.NoError(t, err)
	assert.Equal(t, "true", val)
}
