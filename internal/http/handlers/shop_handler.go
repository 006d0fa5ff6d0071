// Shop endpoints.
//
//   - GET  /shop            catalog, or ?q= free-text search
//   - POST /shop/{id}/buy   buy one unit
//   - GET  /inventory       caller's inventory
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-backend/internal/utils"
)

const maxSearchLimit = 15

// ListShop godoc
// @ID          listShop
// @Summary     Shop catalog
// @Description Without q, every item ordered by id. With q (e.g. "buy fish"), the best matches first.
// @Tags        Shop
// @Produce     json
// @Param       q      query  string  false  "Free-text search"
// @Param       limit  query  int     false  "Max search results (1..15, default 5)"
// @Success     200  {array}  domain.ShopItem
// @Router      /shop [get]
func (h *Handlers) ListShop(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		ok(c, http.StatusOK, h.shop.List(c.Request.Context()))
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 0)
	if limit != 0 {
		limit = utils.Clamp(limit, 1, maxSearchLimit)
	}
	ok(c, http.StatusOK, h.shop.Search(c.Request.Context(), q, limit))
}

// BuyItem godoc
// @ID          buyItem
// @Summary     Buy one unit of an item
// @Tags        Shop
// @Produce     json
// @Param       X-User-ID        header  int     true   "Chat user id"
// @Param       Idempotency-Key  header  string  false  "Replay key"
// @Param       id               path    int     true   "Shop item id"
// @Success     200  {object}  services.Purchase
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     402  {object}  handlers.ErrorResponse  "insufficient_funds"
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /shop/{id}/buy [post]
func (h *Handlers) BuyItem(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	itemID, okID := pathID(c)
	if !okID {
		return
	}
	p, err := h.shop.Buy(c.Request.Context(), uid, itemID)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// Inventory godoc
// @ID          inventory
// @Summary     Caller's inventory
// @Tags        Shop
// @Produce     json
// @Param       X-User-ID  header  int  true  "Chat user id"
// @Success     200  {array}   domain.InventoryEntry
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /inventory [get]
func (h *Handlers) Inventory(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	inv, err := h.shop.Inventory(c.Request.Context(), uid)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, inv)
}
