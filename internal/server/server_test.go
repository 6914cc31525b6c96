package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type testServer struct {
	*Server
	db *gorm.DB
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDatabase(t)

	cfg := &config.Config{
		Environment:        config.Test,
		ServerHost:         "localhost",
		ServerPort:         "8080",
		PublicURL:          "http://localhost:8080",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		MediaRoot:          t.TempDir(),
		MediaURL:           "/media",
	}
	log := zap.NewNop()

	srv, err := New(cfg, Dependencies{
		DB:     db,
		Images: service.NewLocalImageStore(cfg.MediaRoot, cfg.PublicURL+cfg.MediaURL, log),
		Logger: log,
	})
	require.NoError(t, err)
	return &testServer{Server: srv, db: db}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) signUp(t *testing.T, username string) (uint, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/users/", "", map[string]string{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Test",
		"last_name":  username,
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[types.RegisteredUser](t, w)

	w = s.do(t, http.MethodPost, "/api/auth/token/login/", "", map[string]string{
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return user.ID, decode[types.TokenResponse](t, w).AuthToken
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserEndpoints(t *testing.T) {
	s := setupTestServer(t)
	aliceID, aliceToken := s.signUp(t, "alice")
	bobID, bobToken := s.signUp(t, "bob")

	t.Run("reserved username", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/users/", "", map[string]string{
			"email": "me@example.com", "username": "me", "first_name": "M", "last_name": "E", "password": "password123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, service.CodeRestrictedUsername, decode[types.ErrorResponse](t, w).Error)
	})

	t.Run("invalid registration payload", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/users/", "", map[string]string{"email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("me requires a token", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users/me/", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users/me/", aliceToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		me := decode[types.User](t, w)
		assert.Equal(t, aliceID, me.ID)
		assert.False(t, me.IsSubscribed)
	})

	t.Run("subscribe", func(t *testing.T) {
		path := fmt.Sprintf("/api/users/%d/subscribe/", aliceID)
		w := s.do(t, http.MethodPost, path, bobToken, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		sub := decode[types.UserWithRecipes](t, w)
		assert.True(t, sub.IsSubscribed)
		assert.NotNil(t, sub.Recipes)

		w = s.do(t, http.MethodPost, path, bobToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, service.CodeAlreadyExists, decode[types.ErrorResponse](t, w).Error)

		w = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe/", bobID), bobToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, service.CodeSelfFollow, decode[types.ErrorResponse](t, w).Error)

		w = s.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/", aliceID), bobToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[types.User](t, w).IsSubscribed)

		w = s.do(t, http.MethodGet, "/api/users/subscriptions/", bobToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[types.Page[types.UserWithRecipes]](t, w)
		assert.Equal(t, 1, page.Count)

		w = s.do(t, http.MethodDelete, path, bobToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = s.do(t, http.MethodDelete, path, bobToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users/9999/", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = s.do(t, http.MethodGet, "/api/users/abc/", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users/?limit=1", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[types.Page[types.User]](t, w)
		assert.Equal(t, 2, page.Count)
		assert.Len(t, page.Results, 1)
		assert.NotNil(t, page.Next)
	})

	t.Run("avatar", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/users/me/avatar/", aliceToken, map[string]string{"avatar": testhelpers.PNGDataURI})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		avatar := decode[types.AvatarResponse](t, w).Avatar
		assert.True(t, strings.HasPrefix(avatar, "http://localhost:8080/media/users/"))

		w = s.do(t, http.MethodDelete, "/api/users/me/avatar/", aliceToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("set password", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/users/set_password/", aliceToken, map[string]string{
			"current_password": "wrong-password", "new_password": "another-pass",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodPost, "/api/users/set_password/", aliceToken, map[string]string{
			"current_password": "password123", "new_password": "another-pass",
		})
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestRecipeEndpoints(t *testing.T) {
	s := setupTestServer(t)
	_, aliceToken := s.signUp(t, "alice")
	_, bobToken := s.signUp(t, "bob")
	tag := testhelpers.CreateTag(t, s.db, "dinner")
	rice := testhelpers.CreateIngredient(t, s.db, "rice", "g")
	salt := testhelpers.CreateIngredient(t, s.db, "salt", "g")

	payload := map[string]interface{}{
		"name":         "Rice",
		"image":        testhelpers.PNGDataURI,
		"text":         "Boil the rice.",
		"cooking_time": 20,
		"tags":         []uint{tag.ID},
		"ingredients": []map[string]interface{}{
			{"id": rice.ID, "amount": 200},
			{"id": salt.ID, "amount": 2},
		},
	}

	w := s.do(t, http.MethodPost, "/api/recipes/", "", payload)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/recipes/", aliceToken, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipe := decode[types.Recipe](t, w)
	assert.Equal(t, "Rice", recipe.Name)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "rice", recipe.Ingredients[0].Name)
	assert.Equal(t, 200, recipe.Ingredients[0].Amount)
	recipePath := fmt.Sprintf("/api/recipes/%d/", recipe.ID)

	t.Run("validation errors name the field", func(t *testing.T) {
		invalid := map[string]interface{}{}
		for k, v := range payload {
			invalid[k] = v
		}
		invalid["tags"] = []uint{}
		w := s.do(t, http.MethodPost, "/api/recipes/", aliceToken, invalid)
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode[types.ErrorResponse](t, w)
		assert.Equal(t, service.CodeEmptyOrDuplicate, body.Error)
		assert.Equal(t, "tags", body.Field)
	})

	t.Run("only the author may edit", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, recipePath, bobToken, map[string]interface{}{"name": "Mine"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(t, http.MethodPatch, recipePath, aliceToken, map[string]interface{}{"cooking_time": 25})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 25, decode[types.Recipe](t, w).CookingTime)
	})

	t.Run("favorites and cart", func(t *testing.T) {
		w := s.do(t, http.MethodPost, recipePath+"favorite/", bobToken, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, recipe.ID, decode[types.RecipeBrief](t, w).ID)

		w = s.do(t, http.MethodPost, recipePath+"favorite/", bobToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodPost, recipePath+"shopping_cart/", bobToken, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		w = s.do(t, http.MethodGet, "/api/recipes/?is_favorited=1", bobToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[types.Page[types.Recipe]](t, w)
		require.Equal(t, 1, page.Count)
		assert.True(t, page.Results[0].IsFavorited)
		assert.True(t, page.Results[0].IsInShoppingCart)

		w = s.do(t, http.MethodGet, recipePath, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, decode[types.Recipe](t, w).IsFavorited)

		w = s.do(t, http.MethodDelete, recipePath+"favorite/", bobToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = s.do(t, http.MethodDelete, recipePath+"favorite/", bobToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, service.CodeEntryNotFound, decode[types.ErrorResponse](t, w).Error)
	})

	t.Run("download shopping cart", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart/", bobToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
		assert.Contains(t, w.Body.String(), "☐ rice (g)")
	})

	t.Run("short link", func(t *testing.T) {
		w := s.do(t, http.MethodGet, recipePath+"get-link/", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		link := decode[types.ShortLink](t, w).ShortLink
		assert.True(t, strings.HasSuffix(link, fmt.Sprintf("/s/%d/", recipe.ID)))

		w = s.do(t, http.MethodGet, fmt.Sprintf("/s/%d/", recipe.ID), "", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, recipePath, w.Header().Get("Location"))

		w = s.do(t, http.MethodGet, "/s/9999/", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("catalog", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/ingredients/?name=ri", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		ingredients := decode[[]types.Ingredient](t, w)
		require.Len(t, ingredients, 1)
		assert.Equal(t, "rice", ingredients[0].Name)

		w = s.do(t, http.MethodGet, "/api/tags/", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]types.Tag](t, w), 1)
	})

	t.Run("delete", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, recipePath, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		w = s.do(t, http.MethodDelete, recipePath, aliceToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = s.do(t, http.MethodGet, recipePath, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLogoutWithoutDenyList(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.signUp(t, "alice")

	w := s.do(t, http.MethodPost, "/api/auth/token/logout/", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/token/logout/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
