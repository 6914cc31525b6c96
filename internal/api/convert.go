package api

import (
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func toUser(u *models.User, subscribed bool) types.User {
	return types.User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
		Avatar:       u.Avatar,
	}
}

func toTag(t models.Tag) types.Tag {
	return types.Tag{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func toIngredient(i models.Ingredient) types.Ingredient {
	return types.Ingredient{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func toRecipeBrief(r models.Recipe) types.RecipeBrief {
	return types.RecipeBrief{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

func toRecipe(v service.RecipeView) types.Recipe {
	tags := make([]types.Tag, len(v.Tags))
	for i, t := range v.Tags {
		tags[i] = toTag(t)
	}
	lines := make([]types.RecipeIngredient, len(v.Ingredients))
	for i, line := range v.Ingredients {
		lines[i] = types.RecipeIngredient{
			ID:              line.Ingredient.ID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		}
	}
	return types.Recipe{
		ID:               v.ID,
		Tags:             tags,
		Author:           toUser(&v.Author, v.AuthorSubscribed),
		Ingredients:      lines,
		IsFavorited:      v.IsFavorited,
		IsInShoppingCart: v.IsInShoppingCart,
		Name:             v.Name,
		Image:            v.Image,
		Text:             v.Text,
		CookingTime:      v.CookingTime,
	}
}

func toSubscription(s service.Subscription) types.UserWithRecipes {
	recipes := make([]types.RecipeBrief, len(s.Recipes))
	for i, r := range s.Recipes {
		recipes[i] = toRecipeBrief(r)
	}
	return types.UserWithRecipes{
		User:         toUser(&s.User, true),
		Recipes:      recipes,
		RecipesCount: s.RecipesCount,
	}
}
