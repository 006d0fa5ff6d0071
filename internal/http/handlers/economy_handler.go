// Economy endpoints: POST /work and POST /daily.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Work godoc
// @ID          work
// @Summary     Work a shift
// @Description Pays coins and experience scaled by the caller's level. Available once per cooldown window (12h by default).
// @Tags        Economy
// @Produce     json
// @Param       X-User-ID        header  int     true   "Chat user id"
// @Param       Idempotency-Key  header  string  false  "Replay key"
// @Success     200  {object}  services.Payout
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "cooldown_active with Retry-After"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /work [post]
func (h *Handlers) Work(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	p, err := h.economy.Work(c.Request.Context(), uid)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// ClaimDaily godoc
// @ID          claimDaily
// @Summary     Claim the daily bonus
// @Tags        Economy
// @Produce     json
// @Param       X-User-ID        header  int     true   "Chat user id"
// @Param       Idempotency-Key  header  string  false  "Replay key"
// @Success     200  {object}  services.Payout
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "cooldown_active with Retry-After"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /daily [post]
func (h *Handlers) ClaimDaily(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	p, err := h.economy.ClaimDaily(c.Request.Context(), uid)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}
