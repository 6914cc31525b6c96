package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// Options carries everything the router mounts
type Options struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	Validator      middleware.TokenValidator
	// RateLimiter throttles recipe creation. Nil disables throttling.
	RateLimiter *middleware.RateLimiter
	// MediaURL and MediaRoot serve locally stored images. Empty disables it.
	MediaURL  string
	MediaRoot string

	Auth    *api.AuthHandler
	Users   *api.UserHandler
	Catalog *api.CatalogHandler
	Recipes *api.RecipeHandler
}

// SetupRouter configures the application routes
func SetupRouter(opts Options) (*gin.Engine, error) {
	if err := api.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(
		middleware.RequestLogger(opts.Logger),
		middleware.ErrorHandler(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	guards := api.Guards{
		Required: middleware.AuthMiddleware(opts.Validator),
		Optional: middleware.OptionalAuth(opts.Validator),
	}
	if opts.RateLimiter != nil {
		guards.CreateRecipe = opts.RateLimiter.RateLimitMiddleware()
	}

	v1 := router.Group("/api")
	opts.Auth.RegisterRoutes(v1, guards)
	opts.Users.RegisterRoutes(v1, guards)
	opts.Catalog.RegisterRoutes(v1)
	opts.Recipes.RegisterRoutes(v1, guards)
	opts.Recipes.RegisterShortLinks(router)

	if opts.MediaURL != "" && opts.MediaRoot != "" {
		router.Static(opts.MediaURL, opts.MediaRoot)
	}

	return router, nil
}
