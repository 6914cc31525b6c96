package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeHandler serves recipes, the favorite and cart selections and the
// shopping list export
type RecipeHandler struct {
	recipes   *service.RecipeService
	favorites *service.SelectionService
	cart      *service.SelectionService
	shopping  *service.ShoppingListService
	users     *service.UserService
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	favorites, cart *service.SelectionService,
	shopping *service.ShoppingListService,
	users *service.UserService,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		favorites: favorites,
		cart:      cart,
		shopping:  shopping,
		users:     users,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, guards Guards) {
	create := []gin.HandlerFunc{guards.Required}
	if guards.CreateRecipe != nil {
		create = append(create, guards.CreateRecipe)
	}
	create = append(create, h.Create)

	recipes := router.Group("/recipes")
	{
		recipes.GET("/", guards.Optional, h.List)
		recipes.POST("/", create...)
		recipes.GET("/download_shopping_cart/", guards.Required, h.DownloadShoppingCart)
		recipes.GET("/:id/", guards.Optional, h.Get)
		recipes.PATCH("/:id/", guards.Required, h.Update)
		recipes.DELETE("/:id/", guards.Required, h.Delete)
		recipes.GET("/:id/get-link/", h.GetLink)
		recipes.POST("/:id/favorite/", guards.Required, h.selectionAdd(h.favorites))
		recipes.DELETE("/:id/favorite/", guards.Required, h.selectionRemove(h.favorites))
		recipes.POST("/:id/shopping_cart/", guards.Required, h.selectionAdd(h.cart))
		recipes.DELETE("/:id/shopping_cart/", guards.Required, h.selectionRemove(h.cart))
	}
}

// RegisterShortLinks mounts the short link redirect outside the API prefix.
func (h *RecipeHandler) RegisterShortLinks(router gin.IRoutes) {
	router.GET("/s/:id/", h.FollowShortLink)
}

func (h *RecipeHandler) List(c *gin.Context) {
	filter, err := recipeFilter(c)
	if err != nil {
		fail(c, err)
		return
	}

	views, err := h.recipes.List(c.Request.Context(), viewerOf(c), filter)
	if err != nil {
		fail(c, err)
		return
	}

	page, err := paginate(c, views)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPage(page, toRecipe))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.recipes.Get(c.Request.Context(), id, viewerOf(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipe(*view))
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var req types.CreateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.recipes.Create(c.Request.Context(), viewerOf(c).UserID, service.RecipeInput{
		Name:        req.Name,
		Image:       req.Image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Ingredients: ingredientLines(req.Ingredients),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipe(*view))
}

func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req types.UpdateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	patch := service.RecipePatch{
		Name:        req.Name,
		Image:       req.Image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
	}
	if req.Ingredients != nil {
		patch.Ingredients = ingredientLines(req.Ingredients)
	}

	view, err := h.recipes.Update(c.Request.Context(), id, viewerOf(c).UserID, patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipe(*view))
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), id, viewerOf(c).UserID); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

func (h *RecipeHandler) selectionAdd(set *service.SelectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		recipe, err := set.Add(c.Request.Context(), viewerOf(c).UserID, id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, toRecipeBrief(*recipe))
	}
}

func (h *RecipeHandler) selectionRemove(set *service.SelectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := set.Remove(c.Request.Context(), viewerOf(c).UserID, id); err != nil {
			fail(c, err)
			return
		}
		noContent(c)
	}
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.users.Get(ctx, viewerOf(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}

	text, err := h.shopping.Export(ctx, user)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.recipes.Exists(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ShortLink{
		ShortLink: fmt.Sprintf("%s/s/%d/", baseURL(c), id),
	})
}

func (h *RecipeHandler) FollowShortLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.recipes.Exists(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/api/recipes/%d/", id))
}

func recipeFilter(c *gin.Context) (service.RecipeFilter, error) {
	filter := service.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryFlag(c.Query("is_favorited")),
		IsInShoppingCart: queryFlag(c.Query("is_in_shopping_cart")),
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, &service.Error{
				Kind:    service.KindValidation,
				Code:    service.CodeInvalidValue,
				Field:   "author",
				Message: "author must be a user id",
			}
		}
		filter.AuthorID = uint(author)
	}
	return filter, nil
}

func queryFlag(raw string) bool {
	switch raw {
	case "1", "true", "True":
		return true
	}
	return false
}

func ingredientLines(in []types.IngredientAmount) []service.IngredientLine {
	lines := make([]service.IngredientLine, len(in))
	for i, item := range in {
		lines[i] = service.IngredientLine{IngredientID: item.ID, Amount: item.Amount}
	}
	return lines
}
