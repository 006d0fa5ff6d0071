// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller. The chat bot front end authenticates
// players itself and forwards their chat id in X-User-ID (and display name
// in X-User-Name). When a bot token is configured, only requests carrying
// it in X-Bot-Token are accepted at all.
package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
	HeaderBotToken = "X-Bot-Token"

	ctxKeyUserID  = "userID"
	ctxKeyNewUser = "newUser"
	ctxKeyLogger  = "logger"
)

// UserRegistrar creates a player on first contact.
type UserRegistrar interface {
	GetOrCreate(ctx context.Context, id int64, displayName string) (*domain.User, bool, error)
}

// BotAuth rejects requests whose X-Bot-Token differs from token. An empty
// token disables the check.
func BotAuth(token string) gin.HandlerFunc {
	want := []byte(token)
	return func(c *gin.Context) {
		if len(want) == 0 {
			c.Next()
			return
		}
		got := []byte(c.GetHeader(HeaderBotToken))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing or invalid bot token")
			return
		}
		c.Next()
	}
}

// Identify requires a positive integer X-User-ID and stores it in the
// context. The request-scoped logger, if any, gains a user_id field.
func Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "X-User-ID must be a positive integer")
			return
		}
		c.Set(ctxKeyUserID, id)
		withUserLogger(c, id)
		c.Next()
	}
}

// EnsureUser registers the caller on first contact, keeping the display name
// in sync with X-User-Name. Run it after Identify.
func EnsureUser(reg UserRegistrar) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := UserIDFrom(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "unknown caller")
			return
		}
		name := strings.TrimSpace(c.GetHeader(HeaderUserName))
		if _, created, err := reg.GetOrCreate(c.Request.Context(), id, name); err != nil {
			LoggerFrom(c).Error().Err(err).Msg("register user")
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		} else if created {
			c.Set(ctxKeyNewUser, true)
			LoggerFrom(c).Info().Msg("new player")
		}
		c.Next()
	}
}

// UserIDFrom returns the caller id stored by Identify.
func UserIDFrom(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// IsNewUser reports whether EnsureUser created the caller on this request.
func IsNewUser(c *gin.Context) bool {
	return c.GetBool(ctxKeyNewUser)
}

func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
