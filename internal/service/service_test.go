package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

const mediaBaseURL = "http://localhost:8080/media"

type services struct {
	db        *gorm.DB
	mediaRoot string
	images    *service.LocalImageStore
	auth      *service.AuthService
	users     *service.UserService
	catalog   *service.CatalogService
	favorites *service.SelectionService
	cart      *service.SelectionService
	follows   *service.FollowService
	recipes   *service.RecipeService
	shopping  *service.ShoppingListService
}

func setupServices(t *testing.T) *services {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	log := zap.NewNop()
	root := t.TempDir()
	images := service.NewLocalImageStore(root, mediaBaseURL, log)
	favorites := service.NewFavoritesService(db, log)
	cart := service.NewShoppingCartService(db, log)
	follows := service.NewFollowService(db, log)

	return &services{
		db:        db,
		mediaRoot: root,
		images:    images,
		auth:      service.NewAuthService(db, "test-secret", time.Hour, newMemoryDenyList(), log),
		users:     service.NewUserService(db, images, log),
		catalog:   service.NewCatalogService(db, log),
		favorites: favorites,
		cart:      cart,
		follows:   follows,
		recipes:   service.NewRecipeService(db, images, favorites, cart, follows, log),
		shopping:  service.NewShoppingListService(db, log),
	}
}

// createRecipe inserts a valid recipe authored by author.
func (s *services) createRecipe(t *testing.T, author *models.User, name string, tags []uint, lines []service.IngredientLine) *service.RecipeView {
	t.Helper()
	view, err := s.recipes.Create(context.Background(), author.ID, service.RecipeInput{
		Name:        name,
		Image:       testhelpers.PNGDataURI,
		Text:        "Mix everything and cook.",
		CookingTime: 15,
		TagIDs:      tags,
		Ingredients: lines,
	})
	if err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	return view
}

type memoryDenyList struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMemoryDenyList() *memoryDenyList {
	return &memoryDenyList{revoked: map[string]time.Duration{}}
}

func (d *memoryDenyList) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = ttl
	return nil
}

func (d *memoryDenyList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[tokenID]
	return ok, nil
}
