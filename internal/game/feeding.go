package game

import (
	"time"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

// FeedResult describes what one feeding changed.
type FeedResult struct {
	HungerBefore int  `json:"hunger_before"`
	HungerAfter  int  `json:"hunger_after"`
	ExpGained    int  `json:"exp_gained"`
	PetLevelUp   bool `json:"pet_level_up"`
	Cured        bool `json:"cured"`
	OwnerExp     int  `json:"owner_exp"`
	OwnerLevelUp bool `json:"owner_level_up"`
}

// PetLevelForExperience is a pet's level according to its own experience.
// Pets do not use the user progression table.
func PetLevelForExperience(exp int) int {
	if exp < 0 {
		exp = 0
	}
	return 1 + exp/10
}

// Feed applies item to p and credits owner. Ownership and stock checks, the
// inventory decrement, and the evolution check that follows belong to the
// caller, which must run them in the same transaction.
func (r Rules) Feed(p *domain.Pet, item domain.ShopItem, owner *domain.User, now time.Time) FeedResult {
	res := FeedResult{HungerBefore: p.Hunger}

	p.Hunger = clampHunger(p.Hunger + item.HungerRestore)
	if item.ExpBonus > 0 {
		p.Exp += item.ExpBonus
		res.ExpGained = item.ExpBonus
	}
	if lvl := PetLevelForExperience(p.Exp); lvl > p.Level {
		p.Level = lvl
		res.PetLevelUp = true
	}
	if p.Hunger > MinHunger {
		if p.Sick {
			p.Sick = false
			res.Cured = true
		}
		p.HungerZeroSince = nil
	}
	p.LastFedAt = now
	res.HungerAfter = p.Hunger

	if owner != nil {
		res.OwnerExp = r.FeedOwnerExp
		res.OwnerLevelUp = GrantUserExp(owner, r.FeedOwnerExp)
	}
	return res
}
