package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/progress-tracker/internal/config"
	"github.com/magabrotheeeer/progress-tracker/internal/keyspace"
	"github.com/magabrotheeeer/progress-tracker/internal/models"
	"github.com/magabrotheeeer/progress-tracker/internal/storage"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func setupService(t *testing.T) (*FlagsService, *storage.Storage) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	st, err := storage.New(context.Background(), config.RedisConnection{Address: mr.Addr()})
	require.NoError(t, err)

	return NewFlagsService(st, newNoopLogger()), st
}

func TestKnownFlag(t *testing.T) {
	assert.True(t, KnownFlag(keyspace.SubscriptionType))
	assert.True(t, KnownFlag(keyspace.ReviewShown))
	assert.True(t, KnownFlag(keyspace.CampaignLastDate))
	assert.True(t, KnownFlag(keyspace.OfferLastShown))
	assert.True(t, KnownFlag("new-content:money"))
	assert.False(t, KnownFlag("new-content:"))
	assert.False(t, KnownFlag("random-flag"))
}

func TestSetAndGetFlag(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetFlag(ctx, "u1", keyspace.SubscriptionType, models.SubscriptionTrial))

	val, ok, err := svc.GetFlag(ctx, "u1", keyspace.SubscriptionType)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "trial", val)

	// другой владелец флага не видит
	_, ok, err = svc.GetFlag(ctx, "u2", keyspace.SubscriptionType)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFlag_UnknownName(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	err := svc.SetFlag(ctx, "u1", "random-flag", "x")
	assert.Error(t, err)

	_, _, err = svc.GetFlag(ctx, "u1", "random-flag")
	assert.Error(t, err)
}

func TestStoreCategories_WriteIfNonempty(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.StoreCategories(ctx, "u1", "hacks", []string{"money", "health"}))

	categories, err := svc.GetCategories(ctx, "u1", "hacks")
	require.NoError(t, err)
	assert.Equal(t, []string{"money", "health"}, categories)

	// пустой список не затирает сохранённый
	require.NoError(t, svc.StoreCategories(ctx, "u1", "hacks", nil))

	categories, err = svc.GetCategories(ctx, "u1", "hacks")
	require.NoError(t, err)
	assert.Equal(t, []string{"money", "health"}, categories)
}

func TestGetCategories_AbsentAndMalformed(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	categories, err := svc.GetCategories(ctx, "u1", "hacks")
	require.NoError(t, err)
	assert.Empty(t, categories)

	require.NoError(t, st.Set(ctx, "u1_content_type_categories_hacks", "{broken"))

	categories, err = svc.GetCategories(ctx, "u1", "hacks")
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestClearOwner(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	// 5 ключей владельца u1 разных видов
	require.NoError(t, st.Set(ctx, "u1_money.0", "true"))
	require.NoError(t, st.Set(ctx, "u1_card-action:money:t1:0", "like"))
	require.NoError(t, st.Set(ctx, "u1_prompt-viewed:money:t1:0", "123"))
	require.NoError(t, st.Set(ctx, "u1_subscription-type", "weekly"))
	require.NoError(t, st.Set(ctx, "u1_done-control-time", "10"))
	// гостевые записи должны пережить очистку
	require.NoError(t, st.Set(ctx, "guest_money.0", "true"))

	removed, err := svc.ClearOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, removed)

	keys, err := st.Keys(ctx, "u1_")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, ok, err := st.Get(ctx, "guest_money.0")
	require.NoError(t, err)
	assert.True(t, ok)
}
