// Package handlers defines the HTTP error codes of the game API and the
// translation of service errors into responses.
//
// Codes are lowercase snake_case. Chat front ends branch on them to pick the
// reply text, so they are part of the contract and must not change.
package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-backend/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Game outcomes
	ErrCodeCooldown          = "cooldown_active"
	ErrCodeInsufficientFunds = "insufficient_funds"
	ErrCodeInsufficientItems = "insufficient_items"
	ErrCodeAdoptionDenied    = "adoption_denied"
)

// failService writes the response for a service error.
//
//	not found            404 not_found
//	cooldown             409 cooldown_active, Retry-After, details.hours_remaining
//	not enough coins     402 insufficient_funds
//	not enough items     409 insufficient_items
//	adoption denied      409 adoption_denied, details.reason
//	invalid input        400 bad_request
//	anything else        500 internal_error
func failService(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case services.KindCooldown:
		var ce *services.CooldownError
		if !errors.As(err, &ce) {
			fail(c, http.StatusConflict, ErrCodeCooldown, err.Error())
			return
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(ce.Remaining.Seconds()))))
		failWith(c, http.StatusConflict, ErrCodeCooldown, ce.Action+" is on cooldown",
			map[string]any{"action": ce.Action, "hours_remaining": ce.HoursRemaining()})
	case services.KindInsufficientFunds:
		fail(c, http.StatusPaymentRequired, ErrCodeInsufficientFunds, err.Error())
	case services.KindInsufficientItems:
		fail(c, http.StatusConflict, ErrCodeInsufficientItems, err.Error())
	case services.KindAdoptionDenied:
		var ae *services.AdoptionDeniedError
		reason := ""
		if errors.As(err, &ae) {
			reason = ae.Reason
		}
		failWith(c, http.StatusConflict, ErrCodeAdoptionDenied, "adoption denied",
			map[string]any{"reason": reason})
	case services.KindInvalid:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}
