package service

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SelectionService manages one per-user set of recipes. Favorites and the
// shopping cart are two instances of it.
type SelectionService struct {
	db     *gorm.DB
	kind   models.SelectionKind
	label  string
	logger *zap.Logger
}

func NewFavoritesService(db *gorm.DB, logger *zap.Logger) *SelectionService {
	return newSelectionService(db, models.SelectionFavorite, "favorites", logger)
}

func NewShoppingCartService(db *gorm.DB, logger *zap.Logger) *SelectionService {
	return newSelectionService(db, models.SelectionShoppingCart, "the shopping cart", logger)
}

func newSelectionService(db *gorm.DB, kind models.SelectionKind, label string, logger *zap.Logger) *SelectionService {
	return &SelectionService{
		db:     db,
		kind:   kind,
		label:  label,
		logger: logger.With(zap.String("selection", string(kind))),
	}
}

func (s *SelectionService) Kind() models.SelectionKind {
	return s.kind
}

// Add puts a recipe into the user's set and returns the recipe.
func (s *SelectionService) Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := findRecipe(ctx, s.db, recipeID)
	if err != nil {
		return nil, err
	}

	entry := models.Selection{Kind: s.kind, UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&entry).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, withDetail(ErrAlreadyExists, "", fmt.Sprintf("recipe is already in %s", s.label))
		}
		return nil, fmt.Errorf("add to %s: %w", s.kind, err)
	}

	s.logger.Debug("recipe added", zap.Uint("user_id", userID), zap.Uint("recipe_id", recipeID))
	return recipe, nil
}

// Remove takes a recipe out of the user's set. Removing a recipe that is not
// in the set is an error.
func (s *SelectionService) Remove(ctx context.Context, userID, recipeID uint) error {
	if _, err := findRecipe(ctx, s.db, recipeID); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("kind = ? AND user_id = ? AND recipe_id = ?", s.kind, userID, recipeID).
		Delete(&models.Selection{})
	if res.Error != nil {
		return fmt.Errorf("remove from %s: %w", s.kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return withDetail(ErrEntryNotFound, "", fmt.Sprintf("recipe is not in %s", s.label))
	}

	s.logger.Debug("recipe removed", zap.Uint("user_id", userID), zap.Uint("recipe_id", recipeID))
	return nil
}

// Contains reports membership. Anonymous viewers never have members.
func (s *SelectionService) Contains(ctx context.Context, viewer Viewer, recipeID uint) (bool, error) {
	if !viewer.IsAuthenticated() {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Selection{}).
		Where("kind = ? AND user_id = ? AND recipe_id = ?", s.kind, viewer.UserID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check %s: %w", s.kind, err)
	}
	return count > 0, nil
}

// ContainsAny resolves membership for a batch of recipes in one query.
func (s *SelectionService) ContainsAny(ctx context.Context, viewer Viewer, recipeIDs []uint) (map[uint]bool, error) {
	members := make(map[uint]bool, len(recipeIDs))
	if !viewer.IsAuthenticated() || len(recipeIDs) == 0 {
		return members, nil
	}
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Selection{}).
		Where("kind = ? AND user_id = ? AND recipe_id IN ?", s.kind, viewer.UserID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", s.kind, err)
	}
	for _, id := range ids {
		members[id] = true
	}
	return members, nil
}

// memberIDs is a subquery selecting the recipe ids in the user's set.
func (s *SelectionService) memberIDs(userID uint) *gorm.DB {
	return s.db.Model(&models.Selection{}).
		Select("recipe_id").
		Where("kind = ? AND user_id = ?", s.kind, userID)
}
