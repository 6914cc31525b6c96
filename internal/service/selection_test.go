package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestSelections(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	author := testhelpers.CreateUser(t, s.db, "alice")
	reader := testhelpers.CreateUser(t, s.db, "bob")
	tag := testhelpers.CreateTag(t, s.db, "dinner")
	rice := testhelpers.CreateIngredient(t, s.db, "rice", "g")
	recipe := s.createRecipe(t, author, "Rice", []uint{tag.ID}, []service.IngredientLine{{IngredientID: rice.ID, Amount: 100}})
	viewer := service.Viewer{UserID: reader.ID}

	for _, set := range []*service.SelectionService{s.favorites, s.cart} {
		t.Run(string(set.Kind()), func(t *testing.T) {
			added, err := set.Add(ctx, reader.ID, recipe.ID)
			require.NoError(t, err)
			assert.Equal(t, "Rice", added.Name)

			in, err := set.Contains(ctx, viewer, recipe.ID)
			require.NoError(t, err)
			assert.True(t, in)

			_, err = set.Add(ctx, reader.ID, recipe.ID)
			assert.ErrorIs(t, err, service.ErrAlreadyExists)

			require.NoError(t, set.Remove(ctx, reader.ID, recipe.ID))
			err = set.Remove(ctx, reader.ID, recipe.ID)
			assert.ErrorIs(t, err, service.ErrEntryNotFound)

			_, err = set.Add(ctx, reader.ID, recipe.ID)
			require.NoError(t, err)

			_, err = set.Add(ctx, reader.ID, 9999)
			assert.ErrorIs(t, err, service.ErrNotFound)
			assert.ErrorIs(t, set.Remove(ctx, reader.ID, 9999), service.ErrNotFound)
		})
	}
}

func TestSelectionsAreIndependent(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	author := testhelpers.CreateUser(t, s.db, "alice")
	tag := testhelpers.CreateTag(t, s.db, "dinner")
	rice := testhelpers.CreateIngredient(t, s.db, "rice", "g")
	recipe := s.createRecipe(t, author, "Rice", []uint{tag.ID}, []service.IngredientLine{{IngredientID: rice.ID, Amount: 100}})

	_, err := s.favorites.Add(ctx, author.ID, recipe.ID)
	require.NoError(t, err)

	inCart, err := s.cart.Contains(ctx, service.Viewer{UserID: author.ID}, recipe.ID)
	require.NoError(t, err)
	assert.False(t, inCart)

	anonymous, err := s.favorites.Contains(ctx, service.Anonymous(), recipe.ID)
	require.NoError(t, err)
	assert.False(t, anonymous)
}
