package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientLine is one (ingredient, amount) pair of a recipe payload.
type IngredientLine struct {
	IngredientID uint
	Amount       int
}

// RecipeInput carries every field required to create a recipe. Image is a
// base64 data URI.
type RecipeInput struct {
	Name        string
	Image       string
	Text        string
	CookingTime int
	TagIDs      []uint
	Ingredients []IngredientLine
}

// RecipePatch carries the fields supplied on update. Nil pointers and nil
// slices are left untouched; a non-nil slice replaces the whole set.
type RecipePatch struct {
	Name        *string
	Image       *string
	Text        *string
	CookingTime *int
	TagIDs      []uint
	Ingredients []IngredientLine
}

// RecipeFilter narrows recipe listings. The selection flags only apply to
// authenticated viewers.
type RecipeFilter struct {
	TagSlugs         []string
	AuthorID         uint
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeView is a recipe with the viewer-specific flags resolved.
type RecipeView struct {
	models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

// RecipeService builds and maintains recipe aggregates: the recipe row, its
// tag set and its ingredient lines.
type RecipeService struct {
	db        *gorm.DB
	images    ImageStore
	favorites *SelectionService
	cart      *SelectionService
	follows   *FollowService
	logger    *zap.Logger
}

func NewRecipeService(
	db *gorm.DB,
	images ImageStore,
	favorites, cart *SelectionService,
	follows *FollowService,
	logger *zap.Logger,
) *RecipeService {
	return &RecipeService{
		db:        db,
		images:    images,
		favorites: favorites,
		cart:      cart,
		follows:   follows,
		logger:    logger,
	}
}

// Create validates the payload, stores the image and inserts the aggregate in
// one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uint, in RecipeInput) (*RecipeView, error) {
	if err := validateRecipeInput(in); err != nil {
		return nil, err
	}
	if err := s.ensureReferences(ctx, in.TagIDs, in.Ingredients); err != nil {
		return nil, err
	}

	image, err := s.images.Save(ctx, in.Image, RecipeImageFolder)
	if err != nil {
		return nil, withField(err, "image")
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(in.Name),
		Image:       image,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return storageError(err, "insert recipe")
		}
		if err := replaceTags(tx, recipe.ID, in.TagIDs); err != nil {
			return err
		}
		return replaceIngredients(tx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		s.discardImage(ctx, image)
		return nil, err
	}

	s.logger.Info("recipe created",
		zap.Uint("recipe_id", recipe.ID),
		zap.Uint("author_id", authorID),
		zap.Int("tags", len(in.TagIDs)),
		zap.Int("ingredients", len(in.Ingredients)))

	return s.Get(ctx, recipe.ID, Viewer{UserID: authorID})
}

// Update applies a patch. Only the author may edit a recipe.
func (s *RecipeService) Update(ctx context.Context, recipeID, editorID uint, patch RecipePatch) (*RecipeView, error) {
	recipe, err := findRecipe(ctx, s.db, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != editorID {
		return nil, ErrNotAuthorized
	}
	if err := validateRecipePatch(patch); err != nil {
		return nil, err
	}
	if err := s.ensureReferences(ctx, patch.TagIDs, patch.Ingredients); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Text != nil {
		updates["text"] = *patch.Text
	}
	if patch.CookingTime != nil {
		updates["cooking_time"] = *patch.CookingTime
	}

	var newImage string
	if patch.Image != nil {
		newImage, err = s.images.Save(ctx, *patch.Image, RecipeImageFolder)
		if err != nil {
			return nil, withField(err, "image")
		}
		updates["image"] = newImage
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(updates).Error; err != nil {
				return storageError(err, "update recipe")
			}
		}
		if patch.TagIDs != nil {
			if err := replaceTags(tx, recipeID, patch.TagIDs); err != nil {
				return err
			}
		}
		if patch.Ingredients != nil {
			return replaceIngredients(tx, recipeID, patch.Ingredients)
		}
		return nil
	})
	if err != nil {
		if newImage != "" {
			s.discardImage(ctx, newImage)
		}
		return nil, err
	}

	if newImage != "" {
		s.discardImage(ctx, recipe.Image)
	}

	s.logger.Info("recipe updated", zap.Uint("recipe_id", recipeID), zap.Uint("editor_id", editorID))
	return s.Get(ctx, recipeID, Viewer{UserID: editorID})
}

// Delete removes the recipe together with its lines, tags and selections.
func (s *RecipeService) Delete(ctx context.Context, recipeID, editorID uint) error {
	recipe, err := findRecipe(ctx, s.db, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != editorID {
		return ErrNotAuthorized
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Selection{}).Error; err != nil {
			return fmt.Errorf("delete selections: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("delete recipe tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("delete recipe ingredients: %w", err)
		}
		if err := tx.Delete(&models.Recipe{}, recipeID).Error; err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discardImage(ctx, recipe.Image)
	s.logger.Info("recipe deleted", zap.Uint("recipe_id", recipeID), zap.Uint("author_id", editorID))
	return nil
}

// Exists returns ErrNotFound when the recipe does not exist.
func (s *RecipeService) Exists(ctx context.Context, recipeID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return fmt.Errorf("check recipe: %w", err)
	}
	if count == 0 {
		return withDetail(ErrNotFound, "", "recipe not found")
	}
	return nil
}

// Get loads one aggregate with the viewer's flags.
func (s *RecipeService) Get(ctx context.Context, recipeID uint, viewer Viewer) (*RecipeView, error) {
	var recipe models.Recipe
	if err := s.withAggregate(s.db.WithContext(ctx)).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, withDetail(ErrNotFound, "", "recipe not found")
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	views, err := s.decorate(ctx, viewer, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns recipes newest first, narrowed by filter.
func (s *RecipeService) List(ctx context.Context, viewer Viewer, filter RecipeFilter) ([]RecipeView, error) {
	q := s.withAggregate(s.db.WithContext(ctx).Model(&models.Recipe{}))

	if len(filter.TagSlugs) > 0 {
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if filter.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if viewer.IsAuthenticated() {
		if filter.IsFavorited {
			q = q.Where("recipes.id IN (?)", s.favorites.memberIDs(viewer.UserID))
		}
		if filter.IsInShoppingCart {
			q = q.Where("recipes.id IN (?)", s.cart.memberIDs(viewer.UserID))
		}
	}

	var recipes []models.Recipe
	if err := q.Order("recipes.created_at DESC").Order("recipes.id DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return s.decorate(ctx, viewer, recipes)
}

func (s *RecipeService) withAggregate(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func (s *RecipeService) decorate(ctx context.Context, viewer Viewer, recipes []models.Recipe) ([]RecipeView, error) {
	views := make([]RecipeView, len(recipes))
	for i := range recipes {
		views[i].Recipe = recipes[i]
	}
	if !viewer.IsAuthenticated() || len(recipes) == 0 {
		return views, nil
	}

	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs[i] = r.AuthorID
	}

	favorited, err := s.favorites.ContainsAny(ctx, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.cart.ContainsAny(ctx, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.follows.FollowsAny(ctx, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	for i := range views {
		views[i].IsFavorited = favorited[views[i].ID]
		views[i].IsInShoppingCart = inCart[views[i].ID]
		views[i].AuthorSubscribed = subscribed[views[i].AuthorID]
	}
	return views, nil
}

// ensureReferences checks that every tag and ingredient id exists.
func (s *RecipeService) ensureReferences(ctx context.Context, tagIDs []uint, lines []IngredientLine) error {
	db := s.db.WithContext(ctx)
	if len(tagIDs) > 0 {
		var count int64
		if err := db.Model(&models.Tag{}).Where("id IN ?", tagIDs).Count(&count).Error; err != nil {
			return fmt.Errorf("check tags: %w", err)
		}
		if int(count) != len(tagIDs) {
			return withDetail(ErrInvalidValue, "tags", "unknown tag")
		}
	}
	if len(lines) > 0 {
		ids := make([]uint, len(lines))
		for i, line := range lines {
			ids[i] = line.IngredientID
		}
		var count int64
		if err := db.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return fmt.Errorf("check ingredients: %w", err)
		}
		if int(count) != len(ids) {
			return withDetail(ErrInvalidValue, "ingredients", "unknown ingredient")
		}
	}
	return nil
}

func (s *RecipeService) discardImage(ctx context.Context, ref string) {
	if err := s.images.Delete(ctx, ref); err != nil {
		s.logger.Warn("failed to remove image", zap.String("image", ref), zap.Error(err))
	}
}

func replaceTags(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return fmt.Errorf("clear recipe tags: %w", err)
	}
	rows := make([]models.RecipeTag, len(tagIDs))
	for i, id := range tagIDs {
		rows[i] = models.RecipeTag{RecipeID: recipeID, TagID: id}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return storageError(err, "insert recipe tags")
	}
	return nil
}

func replaceIngredients(tx *gorm.DB, recipeID uint, lines []IngredientLine) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("clear recipe ingredients: %w", err)
	}
	rows := make([]models.RecipeIngredient, len(lines))
	for i, line := range lines {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		}
	}
	if err := tx.Omit(clause.Associations).CreateInBatches(&rows, 100).Error; err != nil {
		return storageError(err, "insert recipe ingredients")
	}
	return nil
}

func findRecipe(ctx context.Context, db *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, withDetail(ErrNotFound, "", "recipe not found")
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return &recipe, nil
}
