package middleware

import (
	"errors"
	"net/http"

	"go-athlete-backend/internal/delivery/http/response"
	"go-athlete-backend/pkg/apperror"
	"go-athlete-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler converts errors appended to the gin context into the standard
// response envelope. AppError carries its own status code and failure kind;
// anything else is hidden behind a generic message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				response.Error(c, appErr.Code, appErr.Message, gin.H{"kind": appErr.Kind})
			} else {
				logger.Log.Error("unhandled error", "path", c.FullPath(), "error", err)
				response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			}
		}
	}
}
