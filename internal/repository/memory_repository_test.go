package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioforge/studio/internal/domain"
	"github.com/audioforge/studio/internal/repository"
)

func TestMemoryUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := repository.NewMemoryStore().Users()

	user := &domain.User{Name: "A", Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	err := users.Create(ctx, &domain.User{Name: "B", Email: "a@x.com", PasswordHash: "hash"})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	byEmail, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", byID.Name)

	_, err = users.GetByEmail(ctx, "missing@x.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = users.GetByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	history := repository.NewMemoryStore().History()

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		require.NoError(t, history.Create(ctx, &domain.HistoryItem{
			UserID:  "u1",
			Service: domain.ServiceSoundEffect,
			Title:   title,
		}))
	}
	require.NoError(t, history.Create(ctx, &domain.HistoryItem{UserID: "u2", Service: domain.ServiceSoundEffect, Title: "other user"}))
	require.NoError(t, history.Create(ctx, &domain.HistoryItem{UserID: "u1", Service: domain.ServiceMelodyMaker, Title: "other service"}))

	items, err := history.ListByUserAndService(ctx, "u1", domain.ServiceSoundEffect)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "third", items[0].Title)
	assert.Equal(t, "first", items[2].Title)

	_, err = history.GetByID(ctx, "u2", items[0].ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, history.Delete(ctx, "u2", items[0].ID), repository.ErrNotFound)

	require.NoError(t, history.Delete(ctx, "u1", items[0].ID))
	require.ErrorIs(t, history.Delete(ctx, "u1", items[0].ID), repository.ErrNotFound)

	items, err = history.ListByUserAndService(ctx, "u1", domain.ServiceSoundEffect)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	empty, err := history.ListByUserAndService(ctx, "nobody", domain.ServiceSoundEffect)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
