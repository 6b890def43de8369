package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "InternalError",
					Message: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, kind string, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: kind, Message: message})
}

// AbortWithError classifies err, logs it and writes the JSON error body.
// Internal failures never leak their message to the client.
func AbortWithError(c *gin.Context, logger *zap.Logger, err error) {
	status := StatusFor(err)
	kind, ok := KindOf(err)

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("path", c.FullPath()),
	}

	switch {
	case !ok:
		logger.Error("request failed", fields...)
		JSONError(c, status, "InternalError", "internal server error")
		return
	case kind == KindInvalidState:
		logger.Error("booking state inconsistency", fields...)
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", fields...)
	default:
		logger.Warn("request rejected", fields...)
	}

	msg := err.Error()
	var appErr *AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	JSONError(c, status, string(kind), msg)
}
