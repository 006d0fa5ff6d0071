// Package handlers provides HTTP handler implementations for the game API.
//
// This file defines the response helpers shared by every endpoint. Failures
// always use ErrorResponse with a stable code; successes are plain JSON
// documents.
//
// Example error response:
//
//	HTTP/1.1 409 Conflict
//	Retry-After: 39600
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "cooldown_active",
//	  "message": "work is on cooldown",
//	  "details": {"hours_remaining": 11}
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message, safe to relay to the player
	Message string `json:"message" example:"pet not found"`
	// Structured extras, e.g. hours_remaining or the adoption reason
	Details map[string]any `json:"details,omitempty" swaggertype:"object"`
}

// fail aborts the request with a structured error. 5xx responses are logged
// with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, code, msg, nil)
}

func failWith(c *gin.Context, status int, code, msg string, details map[string]any) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
		Details:   details,
	}
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
