package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/progress-tracker/internal/config"
	"github.com/magabrotheeeer/progress-tracker/internal/models"
	"github.com/magabrotheeeer/progress-tracker/internal/storage"
)

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(exchange, routingKey string, message any) error {
	return m.Called(exchange, routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func setupStorage(t *testing.T) *storage.Storage {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	st, err := storage.New(context.Background(), config.RedisConnection{Address: mr.Addr()})
	require.NoError(t, err)
	return st
}

func TestPublishUnsyncedActions(t *testing.T) {
	st := setupStorage(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "u1_card-action-detail:money:t1:0",
		`{"category":"money","title":"t1","cardIndex":0,"action":"like","timestamp":100,"synced":false}`))
	require.NoError(t, st.Set(ctx, "u2_card-action-detail:money:t1:1",
		`{"category":"money","title":"t1","cardIndex":1,"action":"maybe","timestamp":200,"synced":true}`))
	require.NoError(t, st.Set(ctx, "guest_card-action-detail:health:t2:0", "not-json"))

	pub := new(PublisherMock)
	pub.On("Publish", "sync", "actions.pending", mock.MatchedBy(func(d models.ActionDetail) bool {
		return d.Category == "money" && d.CardIndex == 0 && d.Action == models.ActionLike && !d.Synced
	})).Return(nil).Once()

	svc := NewSyncService(st, pub, newNoopLogger())

	published, err := svc.PublishUnsyncedActions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, published)
	pub.AssertExpectations(t)

	// запись помечена synced, второй проход ничего не публикует
	published, err = svc.PublishUnsyncedActions(ctx)
	require.NoError(t, err)
	assert.Zero(t, published)
}

func TestPublishUnsyncedActions_PublishErrorKeepsRecordUnsynced(t *testing.T) {
	st := setupStorage(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "u1_card-action-detail:money:t1:0",
		`{"category":"money","title":"t1","cardIndex":0,"action":"like","timestamp":100,"synced":false}`))

	pub := new(PublisherMock)
	pub.On("Publish", "sync", "actions.pending", mock.Anything).Return(errors.New("broker down")).Once()

	svc := NewSyncService(st, pub, newNoopLogger())

	published, err := svc.PublishUnsyncedActions(ctx)
	assert.Error(t, err)
	assert.Zero(t, published)

	// запись осталась несинхронизированной, её подберёт следующий тик
	val, ok, err := st.Get(ctx, "u1_card-action-detail:money:t1:0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, val, `"synced":false`)
}

func TestSweepExpiredPrompts(t *testing.T) {
	st := setupStorage(t)
	ctx := context.Background()

	old := time.Now().Add(-25 * time.Hour).UnixMilli()
	fresh := time.Now().Add(-time.Hour).UnixMilli()
	require.NoError(t, st.Set(ctx, "u1_prompt-viewed:money:t1:0", strconv.FormatInt(old, 10)))
	require.NoError(t, st.Set(ctx, "u2_prompt-viewed:money:t1:1", strconv.FormatInt(fresh, 10)))
	require.NoError(t, st.Set(ctx, "guest_prompt-viewed:health:t2:0", "not-a-timestamp"))

	svc := NewSyncService(st, new(PublisherMock), newNoopLogger())

	marked, err := svc.SweepExpiredPrompts(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	_, ok, err := st.Get(ctx, "u1_prompt-expired:money:t1:0")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = st.Get(ctx, "u2_prompt-expired:money:t1:1")
	require.NoError(t, err)
	assert.False(t, ok)

	// повторный проход уже помеченные не считает
	marked, err = svc.SweepExpiredPrompts(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestPublishDeletionReports(t *testing.T) {
	st := setupStorage(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "u1_prompt-expired:money:t1:0", "true"))
	require.NoError(t, st.Set(ctx, "u1_prompt-expired:money:t1:1", "true"))
	require.NoError(t, st.Set(ctx, "u1_prompt-deletion-reported:money:t1:1", "true"))

	pub := new(PublisherMock)
	pub.On("Publish", "sync", "prompts.deleted", models.CardRef{
		Category: "money", Title: "t1", CardIndex: 0,
	}).Return(nil).Once()

	svc := NewSyncService(st, pub, newNoopLogger())

	published, err := svc.PublishDeletionReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, published)
	pub.AssertExpectations(t)

	// повторный проход не шлёт дублей
	published, err = svc.PublishDeletionReports(ctx)
	require.NoError(t, err)
	assert.Zero(t, published)
}
