// Pet endpoints.
//
//   - GET    /pets            list (decay applied)
//   - GET    /pets/{id}       one pet with its stage name
//   - POST   /pets            adopt in one step
//   - POST   /pets/{id}/feed  feed one unit of an inventory entry
//   - POST   /adoption        choose a species, name it later
//   - GET    /adoption        the pending choice
//   - POST   /adoption/name   name the pending species and adopt
//   - DELETE /adoption        drop the pending choice
//   - GET    /species         species and their stages
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

// AdoptRequest adopts a pet in one call.
type AdoptRequest struct {
	Species string `json:"species" binding:"required" example:"cat"`
	Name    string `json:"name" binding:"required" example:"Whiskers"`
}

// BeginAdoptionRequest picks the species to adopt.
type BeginAdoptionRequest struct {
	Species string `json:"species" binding:"required" example:"fox"`
}

// NameRequest names the pending species.
type NameRequest struct {
	Name string `json:"name" binding:"required" example:"Rusty"`
}

// FeedRequest selects the inventory stack to feed from. The id is the
// inventory entry id, not the shop item id.
type FeedRequest struct {
	InventoryEntryID int64 `json:"inventory_entry_id" binding:"required,gt=0" example:"3"`
}

// ListPets godoc
// @ID          listPets
// @Summary     List the caller's pets
// @Description Hunger decay is applied and persisted before the list is returned.
// @Tags        Pets
// @Produce     json
// @Param       X-User-ID  header  int  true  "Chat user id"
// @Success     200  {array}   services.PetView
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /pets [get]
func (h *Handlers) ListPets(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	pets, err := h.pets.List(c.Request.Context(), uid)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, pets)
}

// GetPet godoc
// @ID          getPet
// @Summary     Pet details
// @Tags        Pets
// @Produce     json
// @Param       X-User-ID  header  int  true  "Chat user id"
// @Param       id         path    int  true  "Pet id"
// @Success     200  {object}  services.PetView
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse  "No such pet, or not the caller's"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /pets/{id} [get]
func (h *Handlers) GetPet(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	petID, okID := pathID(c)
	if !okID {
		return
	}
	pv, err := h.pets.Get(c.Request.Context(), uid, petID)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, pv)
}

// AdoptPet godoc
// @ID          adoptPet
// @Summary     Adopt a pet
// @Description A second pet needs the first to be mature; at most two pets per player.
// @Tags        Pets
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  int     true   "Chat user id"
// @Param       Idempotency-Key  header  string  false  "Replay key"
// @Param       body             body    handlers.AdoptRequest  true  "Species and name"
// @Success     201  {object}  services.PetView
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown species or invalid name"
// @Failure     409  {object}  handlers.ErrorResponse  "adoption_denied with details.reason"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /pets [post]
func (h *Handlers) AdoptPet(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	var req AdoptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "species and name are required")
		return
	}
	pv, err := h.pets.Adopt(c.Request.Context(), uid, domain.Species(req.Species), req.Name)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, pv)
}

// FeedPet godoc
// @ID          feedPet
// @Summary     Feed a pet
// @Description Consumes one unit of the inventory entry. Restores hunger (capped at 100), grants pet and owner experience, cures sickness, and may advance the evolution stage.
// @Tags        Pets
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  int     true   "Chat user id"
// @Param       Idempotency-Key  header  string  false  "Replay key"
// @Param       id               path    int     true   "Pet id"
// @Param       body             body    handlers.FeedRequest  true  "Inventory entry"
// @Success     200  {object}  services.FeedOutcome
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "insufficient_items"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /pets/{id}/feed [post]
func (h *Handlers) FeedPet(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	petID, okID := pathID(c)
	if !okID {
		return
	}
	var req FeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "inventory_entry_id must be a positive integer")
		return
	}
	out, err := h.pets.Feed(c.Request.Context(), uid, petID, req.InventoryEntryID)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// BeginAdoption godoc
// @ID          beginAdoption
// @Summary     Choose a species to adopt
// @Description Stores the choice until a name arrives or it expires. The adoption gate is checked now.
// @Tags        Adoption
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  int  true  "Chat user id"
// @Param       body       body    handlers.BeginAdoptionRequest  true  "Species"
// @Success     201  {object}  services.PendingChoice
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /adoption [post]
func (h *Handlers) BeginAdoption(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	var req BeginAdoptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "species is required")
		return
	}
	pc, err := h.pets.BeginAdoption(c.Request.Context(), uid, domain.Species(req.Species))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, pc)
}

// PendingAdoption godoc
// @ID          getPendingAdoption
// @Summary     Pending species choice
// @Tags        Adoption
// @Produce     json
// @Param       X-User-ID  header  int  true  "Chat user id"
// @Success     200  {object}  services.PendingChoice
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /adoption [get]
func (h *Handlers) PendingAdoption(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	pc, err := h.pets.PendingChoice(c.Request.Context(), uid)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, pc)
}

// NameAdoption godoc
// @ID          nameAdoption
// @Summary     Name the pending species
// @Description Adopts the pending species under the given name. An invalid name keeps the choice so the player can try again.
// @Tags        Adoption
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  int     true   "Chat user id"
// @Param       Idempotency-Key  header  string  false  "Replay key"
// @Param       body             body    handlers.NameRequest  true  "Pet name"
// @Success     201  {object}  services.PetView
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse  "No pending choice"
// @Failure     409  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /adoption/name [post]
func (h *Handlers) NameAdoption(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name is required")
		return
	}
	pv, err := h.pets.CompleteAdoption(c.Request.Context(), uid, req.Name)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, pv)
}

// CancelAdoption godoc
// @ID          cancelAdoption
// @Summary     Drop the pending species choice
// @Tags        Adoption
// @Param       X-User-ID  header  int  true  "Chat user id"
// @Success     204
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /adoption [delete]
func (h *Handlers) CancelAdoption(c *gin.Context) {
	uid, okID := callerID(c)
	if !okID {
		return
	}
	if err := h.pets.CancelAdoption(c.Request.Context(), uid); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// ListSpecies godoc
// @ID          listSpecies
// @Summary     Adoptable species
// @Tags        Adoption
// @Produce     json
// @Success     200  {array}  services.SpeciesInfo
// @Router      /species [get]
func (h *Handlers) ListSpecies(c *gin.Context) {
	ok(c, http.StatusOK, h.pets.Species())
}
