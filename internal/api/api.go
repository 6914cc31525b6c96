// Package api holds the gin handlers of the Foodgram HTTP API.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Guards are the per-route middlewares handlers attach when registering.
type Guards struct {
	// Required rejects anonymous requests.
	Required gin.HandlerFunc
	// Optional identifies the caller when a token is sent.
	Optional gin.HandlerFunc
	// CreateRecipe throttles recipe creation. Nil disables throttling.
	CreateRecipe gin.HandlerFunc
}

func viewerOf(c *gin.Context) service.Viewer {
	return service.Viewer{UserID: middleware.UserID(c)}
}

// pathID parses the :id parameter. Malformed ids are reported as not found.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		_ = c.Error(&service.Error{Kind: service.KindNotFound, Code: service.CodeNotFound, Message: "not found"})
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// baseURL is the scheme and host the request was addressed to.
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
