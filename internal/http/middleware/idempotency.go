// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key replay for unsafe methods. Chat
// platforms redeliver button callbacks, so a retried "work" or "buy" must
// answer with the first result instead of applying twice.
//
// The first successful (2xx) response for (user, method + path, key) is
// stored and replayed verbatim with Idempotency-Replayed: true. Requests
// with the same user and a key are serialized so that a retry racing the
// original waits for it and then replays.
package middleware

import (
	"bytes"
	"context"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-backend/internal/services"
)

const (
	// HeaderIdempotencyKey carries the client's deduplication key.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotencyReplayed is set on responses served from the store.
	HeaderIdempotencyReplayed = "Idempotency-Replayed"

	defaultIdemKeyMaxLen = 200
)

var defaultIdemKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotencyStore persists completed responses. Lookup returns found=false
// for missing or expired records.
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID int64, scope, key string) (status int, body []byte, found bool, err error)
	Save(ctx context.Context, userID int64, scope, key string, status int, body []byte) error
}

// IdempotencyOptions configures key validation.
type IdempotencyOptions struct {
	// MaxLen caps the key length. Values <= 0 mean 200.
	MaxLen int
	// Pattern restricts allowed characters. Nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// Idempotency replays stored responses for repeated keys. Run it after
// Identify. Store failures are logged and the request proceeds normally.
func Idempotency(store IdempotencyStore, opts IdempotencyOptions) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultIdemKeyMaxLen
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemKeyPattern
	}
	var locks services.UserLocks

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || !unsafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			abortJSON(c, http.StatusBadRequest, "bad_idempotency_key", "invalid Idempotency-Key")
			return
		}
		uid, ok := UserIDFrom(c)
		if !ok {
			c.Next()
			return
		}

		unlock := locks.Lock(uid)
		defer unlock()

		ctx := c.Request.Context()
		scope := c.Request.Method + " " + c.Request.URL.Path

		status, body, found, err := store.Lookup(ctx, uid, scope, key)
		if err != nil {
			LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup")
		}
		if found {
			idemReplays.Inc()
			c.Header(HeaderIdempotencyReplayed, "true")
			c.Data(status, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		if st := cw.Status(); st >= 200 && st < 300 {
			if err := store.Save(ctx, uid, scope, key, st, cw.buf.Bytes()); err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("idempotency save")
			}
		}
	}
}

func unsafeMethod(m string) bool {
	switch m {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// captureWriter tees the response body into buf.
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
