package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Dependencies are the external resources the server is built on
type Dependencies struct {
	DB *gorm.DB
	// Redis is optional. Without it tokens are not revoked on logout and
	// recipe creation is not throttled.
	Redis  *redis.Client
	Images service.ImageStore
	Logger *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	logger *zap.Logger
}

// New wires services, handlers and routes
func New(cfg *config.Config, deps Dependencies) (*Server, error) {
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log := deps.Logger
	db := deps.DB

	var revoked service.TokenDenyList
	var limiter *middleware.RateLimiter
	if deps.Redis != nil {
		revoked = service.NewRedisTokenDenyList(deps.Redis)
		limiter = middleware.NewRecipeCreationRateLimiter(deps.Redis, cfg.RecipeCreateLimit, log)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, revoked, log)
	userService := service.NewUserService(db, deps.Images, log)
	catalogService := service.NewCatalogService(db, log)
	favorites := service.NewFavoritesService(db, log)
	cart := service.NewShoppingCartService(db, log)
	follows := service.NewFollowService(db, log)
	recipes := service.NewRecipeService(db, deps.Images, favorites, cart, follows, log)
	shopping := service.NewShoppingListService(db, log)

	opts := router.Options{
		Logger:         log,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Validator:      authService,
		RateLimiter:    limiter,
		Auth:           api.NewAuthHandler(authService),
		Users:          api.NewUserHandler(authService, userService, follows),
		Catalog:        api.NewCatalogHandler(catalogService),
		Recipes:        api.NewRecipeHandler(recipes, favorites, cart, shopping, userService),
	}
	if !cfg.S3Enabled() {
		opts.MediaURL = cfg.MediaURL
		opts.MediaRoot = cfg.MediaRoot
	}

	engine, err := router.SetupRouter(opts)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: engine,
		db:     db,
		logger: log,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	engine.GET("/health", s.health)
	return s, nil
}

// NewImageStore picks S3 when a bucket is configured and the local media
// root otherwise
func NewImageStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.ImageStore, error) {
	if cfg.S3Enabled() {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return service.NewS3ImageStore(s3cfg.Client, s3cfg.BucketName, s3cfg.PublicURL(), logger), nil
	}
	return service.NewLocalImageStore(cfg.MediaRoot, cfg.PublicURL+cfg.MediaURL, logger), nil
}

// Router exposes the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	if err := database.HealthCheck(c.Request.Context(), s.db); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
