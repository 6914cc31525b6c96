package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

var kindStatus = map[service.ErrorKind]int{
	service.KindValidation:      http.StatusBadRequest,
	service.KindNotFound:        http.StatusNotFound,
	service.KindNotAuthorized:   http.StatusForbidden,
	service.KindUnauthenticated: http.StatusUnauthorized,
}

// ErrorHandler renders the last error pushed with c.Error as a JSON response
// and recovers from panics.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered", zap.Any("panic", rec), zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{
					Error:  "internal_error",
					Detail: "Internal Server Error",
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last()
		status, body := renderError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err.Err))
		}
		c.JSON(status, body)
	}
}

func renderError(err *gin.Error) (int, types.ErrorResponse) {
	var domainErr *service.Error
	if errors.As(err.Err, &domainErr) {
		status, ok := kindStatus[domainErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		return status, types.ErrorResponse{
			Error:  domainErr.Code,
			Field:  domainErr.Field,
			Detail: domainErr.Message,
		}
	}

	if err.IsType(gin.ErrorTypeBind) {
		return http.StatusBadRequest, types.ErrorResponse{
			Error:  "invalid_request",
			Detail: err.Error(),
		}
	}

	return http.StatusInternalServerError, types.ErrorResponse{
		Error:  "internal_error",
		Detail: "Internal Server Error",
	}
}
