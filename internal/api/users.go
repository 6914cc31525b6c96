package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves accounts and subscriptions
type UserHandler struct {
	auth    *service.AuthService
	users   *service.UserService
	follows *service.FollowService
}

func NewUserHandler(auth *service.AuthService, users *service.UserService, follows *service.FollowService) *UserHandler {
	return &UserHandler{auth: auth, users: users, follows: follows}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, guards Guards) {
	users := router.Group("/users")
	{
		users.POST("/", h.Register)
		users.GET("/", guards.Optional, h.List)
		users.GET("/me/", guards.Required, h.Me)
		users.PUT("/me/avatar/", guards.Required, h.SetAvatar)
		users.DELETE("/me/avatar/", guards.Required, h.DeleteAvatar)
		users.POST("/set_password/", guards.Required, h.SetPassword)
		users.GET("/subscriptions/", guards.Required, h.Subscriptions)
		users.GET("/:id/", guards.Optional, h.Get)
		users.POST("/:id/subscribe/", guards.Required, h.Subscribe)
		users.DELETE("/:id/subscribe/", guards.Required, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.RegisteredUser{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *UserHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	users, err := h.users.List(ctx)
	if err != nil {
		fail(c, err)
		return
	}

	page, err := paginate(c, users)
	if err != nil {
		fail(c, err)
		return
	}

	ids := make([]uint, len(page.Results))
	for i, u := range page.Results {
		ids[i] = u.ID
	}
	subscribed, err := h.follows.FollowsAny(ctx, viewerOf(c), ids)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, mapPage(page, func(u models.User) types.User {
		return toUser(&u, subscribed[u.ID])
	}))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h.respondUser(c, id)
}

func (h *UserHandler) Me(c *gin.Context) {
	h.respondUser(c, viewerOf(c).UserID)
}

func (h *UserHandler) respondUser(c *gin.Context, id uint) {
	ctx := c.Request.Context()
	user, err := h.users.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	subscribed, err := h.follows.IsFollowing(ctx, viewerOf(c), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUser(user, subscribed))
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req types.AvatarRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.SetAvatar(c.Request.Context(), viewerOf(c).UserID, req.Avatar)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AvatarResponse{Avatar: *user.Avatar})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if err := h.users.DeleteAvatar(c.Request.Context(), viewerOf(c).UserID); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.users.SetPassword(c.Request.Context(), viewerOf(c).UserID, req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	subs, err := h.follows.ListFollowing(c.Request.Context(), viewerOf(c).UserID, service.ParseRecipesLimit(c.Query("recipes_limit")))
	if err != nil {
		fail(c, err)
		return
	}

	page, err := paginate(c, subs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPage(page, toSubscription))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	sub, err := h.follows.Follow(c.Request.Context(), viewerOf(c).UserID, id, service.ParseRecipesLimit(c.Query("recipes_limit")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSubscription(*sub))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.follows.Unfollow(c.Request.Context(), viewerOf(c).UserID, id); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}
