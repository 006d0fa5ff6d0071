// Package handlers exposes the game over HTTP. Handlers are transport-thin:
// they read the caller id set by middleware.Identify, bind input, call a
// service, and translate the outcome into JSON.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-backend/internal/domain"
	"github.com/tbourn/go-pet-backend/internal/http/middleware"
	"github.com/tbourn/go-pet-backend/internal/services"
	"github.com/tbourn/go-pet-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// UserService registers players and reports their profile.
type UserService interface {
	GetOrCreate(ctx context.Context, id int64, displayName string) (*domain.User, bool, error)
	Profile(ctx context.Context, id int64) (*services.Profile, error)
}

// PetService covers adoption, viewing and feeding.
type PetService interface {
	List(ctx context.Context, userID int64) ([]services.PetView, error)
	Get(ctx context.Context, userID, petID int64) (*services.PetView, error)
	Adopt(ctx context.Context, userID int64, species domain.Species, name string) (*services.PetView, error)
	BeginAdoption(ctx context.Context, userID int64, species domain.Species) (*services.PendingChoice, error)
	PendingChoice(ctx context.Context, userID int64) (*services.PendingChoice, error)
	CompleteAdoption(ctx context.Context, userID int64, name string) (*services.PetView, error)
	CancelAdoption(ctx context.Context, userID int64) error
	Feed(ctx context.Context, userID, petID, entryID int64) (*services.FeedOutcome, error)
	Species() []services.SpeciesInfo
}

// EconomyService pays out the time-gated rewards.
type EconomyService interface {
	Work(ctx context.Context, userID int64) (*services.Payout, error)
	ClaimDaily(ctx context.Context, userID int64) (*services.Payout, error)
}

// ShopService sells catalog items.
type ShopService interface {
	List(ctx context.Context) []domain.ShopItem
	Search(ctx context.Context, query string, limit int) []domain.ShopItem
	Buy(ctx context.Context, userID, itemID int64) (*services.Purchase, error)
	Inventory(ctx context.Context, userID int64) ([]domain.InventoryEntry, error)
}

// Handlers groups the game endpoints.
type Handlers struct {
	users   UserService
	pets    PetService
	economy EconomyService
	shop    ShopService
}

// New binds handlers to their services.
func New(users UserService, pets PetService, economy EconomyService, shop ShopService) *Handlers {
	return &Handlers{users: users, pets: pets, economy: economy, shop: shop}
}

// callerID returns the id stored by middleware.Identify. Routes are mounted
// behind Identify, so a missing id is answered as unauthorized.
func callerID(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserIDFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "unknown caller")
	}
	return id, ok
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (int64, bool) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return 0, false
	}
	return id, true
}
