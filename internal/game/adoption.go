package game

import (
	"time"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

// Adoption denial reasons.
const (
	ReasonLimitReached     = "limit_reached"
	ReasonFirstPetImmature = "first_pet_immature"
)

// CanAdopt applies the pet cap to a user's current pets. A user may hold at
// most MaxPets, and may only add another once every pet they have is
// mature.
func (r Rules) CanAdopt(existing []domain.Pet) (bool, string) {
	if len(existing) >= r.MaxPets {
		return false, ReasonLimitReached
	}
	for _, p := range existing {
		if !p.Mature {
			return false, ReasonFirstPetImmature
		}
	}
	return true, ""
}

// NewPet returns a freshly adopted, unsaved pet.
func NewPet(userID int64, species domain.Species, name string, now time.Time) domain.Pet {
	return domain.Pet{
		UserID:    userID,
		Species:   species,
		Name:      name,
		Stage:     0,
		Level:     1,
		Exp:       0,
		Hunger:    MaxHunger,
		LastFedAt: now,
	}
}
