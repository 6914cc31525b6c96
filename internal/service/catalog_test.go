package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

func TestCatalog(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	inserted, err := s.catalog.ImportIngredients(ctx, []models.Ingredient{
		{Name: "Sugar", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "sour cream", MeasurementUnit: "g"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, inserted)

	again, err := s.catalog.ImportIngredients(ctx, []models.Ingredient{
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "pepper", MeasurementUnit: "g"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, again)

	found, err := s.catalog.SearchIngredients(ctx, "s")
	require.NoError(t, err)
	names := make([]string, len(found))
	for i, ing := range found {
		names[i] = ing.Name
	}
	assert.ElementsMatch(t, []string{"Sugar", "salt", "sour cream"}, names)

	ingredient, err := s.catalog.GetIngredient(ctx, found[0].ID)
	require.NoError(t, err)
	assert.Equal(t, found[0].Name, ingredient.Name)
	_, err = s.catalog.GetIngredient(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = s.catalog.ImportTags(ctx, []models.Tag{{Name: "Lunch", Slug: "lunch"}, {Name: "Dinner", Slug: "dinner"}})
	require.NoError(t, err)
	tags, err := s.catalog.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	tag, err := s.catalog.GetTag(ctx, tags[0].ID)
	require.NoError(t, err)
	assert.Equal(t, tags[0].Slug, tag.Slug)
	_, err = s.catalog.GetTag(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSearchIngredientsTreatsWildcardsLiterally(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	_, err := s.catalog.ImportIngredients(ctx, []models.Ingredient{
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "sour cream", MeasurementUnit: "g"},
		{Name: "100% juice", MeasurementUnit: "ml"},
		{Name: "s_pice", MeasurementUnit: "g"},
	})
	require.NoError(t, err)

	tests := []struct {
		prefix string
		want   []string
	}{
		{"%", nil},
		{"100%", []string{"100% juice"}},
		{"s_", []string{"s_pice"}},
		{"_", nil},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			found, err := s.catalog.SearchIngredients(ctx, tt.prefix)
			require.NoError(t, err)
			var names []string
			for _, ing := range found {
				names = append(names, ing.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
