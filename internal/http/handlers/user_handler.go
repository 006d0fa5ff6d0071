// Player endpoints.
//
//   - POST /me   register or refresh the caller
//   - GET  /me   profile with inventory and level progress
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-backend/internal/domain"
	"github.com/tbourn/go-pet-backend/internal/http/middleware"
)

// RegisterRequest optionally overrides the display name sent in X-User-Name.
type RegisterRequest struct {
	DisplayName string `json:"display_name" binding:"max=128" example:"Ann"`
}

// RegisterResponse is the caller's row and whether this call created it.
type RegisterResponse struct {
	User    *domain.User `json:"user"`
	Created bool         `json:"created"`
}

// Register godoc
// @ID          register
// @Summary     Register the caller
// @Description Creates the player on first contact (level 1, no coins) and keeps the display name current. Repeating the call is harmless.
// @Tags        Players
// @Accept      json
// @Produce     json
// @Param       X-User-ID    header  int     true   "Chat user id"
// @Param       X-User-Name  header  string  false  "Display name"
// @Param       body         body    handlers.RegisterRequest  false  "Optional display name"
// @Success     200  {object}  handlers.RegisterResponse  "Existing player"
// @Success     201  {object}  handlers.RegisterResponse  "New player"
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /me [post]
func (h *Handlers) Register(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	var req RegisterRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name = strings.TrimSpace(c.GetHeader(middleware.HeaderUserName))
	}

	u, created, err := h.users.GetOrCreate(c.Request.Context(), uid, name)
	if err != nil {
		failService(c, err)
		return
	}
	created = created || middleware.IsNewUser(c)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ok(c, status, RegisterResponse{User: u, Created: created})
}

// Me godoc
// @ID          getProfile
// @Summary     Caller profile
// @Description Level, experience, coins, inventory, pet count, and the experience needed for the next level (0 at the cap).
// @Tags        Players
// @Produce     json
// @Param       X-User-ID  header  int  true  "Chat user id"
// @Success     200  {object}  services.Profile
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /me [get]
func (h *Handlers) Me(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	p, err := h.users.Profile(c.Request.Context(), uid)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}
