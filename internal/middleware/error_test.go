package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func setupErrorRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(zap.NewNop()))
	router.GET("/", handler)
	return router
}

func perform(router *gin.Engine) (*httptest.ResponseRecorder, types.ErrorResponse) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(rr, req)

	var body types.ErrorResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	return rr, body
}

func TestErrorHandlerMapsDomainKinds(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", service.ErrSelfFollow, http.StatusBadRequest, service.CodeSelfFollow},
		{"already exists", service.ErrAlreadyExists, http.StatusBadRequest, service.CodeAlreadyExists},
		{"missing entry", service.ErrEntryNotFound, http.StatusBadRequest, service.CodeEntryNotFound},
		{"not found", service.ErrNotFound, http.StatusNotFound, service.CodeNotFound},
		{"not authorized", service.ErrNotAuthorized, http.StatusForbidden, service.CodeNotAuthorized},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized, service.CodeInvalidToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupErrorRouter(func(c *gin.Context) {
				_ = c.Error(tc.err)
			})

			rr, body := perform(router)
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.code, body.Error)
		})
	}
}

func TestErrorHandlerKeepsField(t *testing.T) {
	router := setupErrorRouter(func(c *gin.Context) {
		_ = c.Error(&service.Error{
			Kind:    service.KindValidation,
			Code:    service.CodeInvalidValue,
			Field:   "cooking_time",
			Message: "must be at least 1",
		})
	})

	rr, body := perform(router)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "cooking_time", body.Field)
	assert.Equal(t, "must be at least 1", body.Detail)
}

func TestErrorHandlerBindErrors(t *testing.T) {
	router := setupErrorRouter(func(c *gin.Context) {
		_ = c.Error(errors.New("Key: 'email' failed")).SetType(gin.ErrorTypeBind)
	})

	rr, body := perform(router)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_request", body.Error)
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	router := setupErrorRouter(func(c *gin.Context) {
		_ = c.Error(errors.New("connection refused"))
	})

	rr, body := perform(router)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal_error", body.Error)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	router := setupErrorRouter(func(c *gin.Context) {
		panic("boom")
	})

	rr, body := perform(router)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal_error", body.Error)
}

func TestErrorHandlerLeavesWrittenResponses(t *testing.T) {
	router := setupErrorRouter(func(c *gin.Context) {
		c.Status(http.StatusNoContent)
		c.Writer.WriteHeaderNow()
		_ = c.Error(service.ErrNotFound)
	})

	rr, _ := perform(router)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
