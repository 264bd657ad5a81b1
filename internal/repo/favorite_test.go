package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/repo"
)

func TestFavoriteRepo_Toggle(t *testing.T) {
	tx := newTestTx(t)
	favs := repo.NewFavoriteRepo(tx)
	ctx := context.Background()
	u := mustCreateUser(t, repo.NewUserRepo(tx), "asha@example.com")
	p := mustCreateProperty(t, repo.NewPropertyRepo(tx), propertyFixture("villa"))

	added, err := favs.Toggle(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, added)

	list, err := favs.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
	assert.Equal(t, "villa", list[0].Slug)

	added, err = favs.Toggle(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, added, "second toggle removes")

	list, err = favs.List(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestFavoriteRepo_Toggle_UnknownProperty(t *testing.T) {
	tx := newTestTx(t)
	u := mustCreateUser(t, repo.NewUserRepo(tx), "asha@example.com")

	_, err := repo.NewFavoriteRepo(tx).Toggle(context.Background(), u.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFavoriteRepo_Clear(t *testing.T) {
	tx := newTestTx(t)
	favs := repo.NewFavoriteRepo(tx)
	ctx := context.Background()
	u := mustCreateUser(t, repo.NewUserRepo(tx), "asha@example.com")
	props := repo.NewPropertyRepo(tx)
	for _, s := range []string{"a", "b"} {
		p := mustCreateProperty(t, props, propertyFixture(s))
		_, err := favs.Toggle(ctx, u.ID, p.ID)
		require.NoError(t, err)
	}

	require.NoError(t, favs.Clear(ctx, u.ID))
	require.NoError(t, favs.Clear(ctx, u.ID), "clearing twice is fine")

	list, err := favs.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
