package models

import (
	"time"
)

// SelectionKind names one of the per-user recipe sets.
type SelectionKind string

const (
	SelectionFavorite     SelectionKind = "favorite"
	SelectionShoppingCart SelectionKind = "shopping_cart"
)

// Selection marks a recipe as a member of one of a user's sets. Favorites and
// the shopping cart share this table and are told apart by Kind.
type Selection struct {
	ID        uint          `gorm:"primarykey"`
	Kind      SelectionKind `gorm:"size:20;not null;uniqueIndex:idx_selection_kind_user_recipe"`
	UserID    uint          `gorm:"not null;uniqueIndex:idx_selection_kind_user_recipe"`
	RecipeID  uint          `gorm:"not null;uniqueIndex:idx_selection_kind_user_recipe;index"`
	User      User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe    Recipe        `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (Selection) TableName() string {
	return "recipe_selections"
}
