package game

import (
	"time"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

const (
	MinHunger = 0
	MaxHunger = 100
)

// ApplyDecay brings p up to date with the time elapsed since LastFedAt and
// reports whether anything changed. Call it before showing or acting on a
// pet.
//
// Hunger drops by one per whole hour and LastFedAt moves to now, so partial
// hours are dropped and a second call within the hour changes nothing.
// Sickness sets once hunger has sat at zero for SickAfter, and clears as
// soon as hunger is positive again. The clock starts at HungerZeroSince, the
// instant hunger reached zero, not at LastFedAt: a pet left at hunger 10 for
// 30h has only been starving for 20h and is not sick yet.
func (r Rules) ApplyDecay(p *domain.Pet, now time.Time) bool {
	changed := false

	if hours := int(now.Sub(p.LastFedAt) / time.Hour); hours >= 1 {
		before := p.Hunger
		p.Hunger = clampHunger(before - hours)
		if p.Hunger == MinHunger && p.HungerZeroSince == nil {
			zero := p.LastFedAt
			if before > 0 {
				zero = p.LastFedAt.Add(time.Duration(before) * time.Hour)
			}
			p.HungerZeroSince = &zero
		}
		p.LastFedAt = now
		changed = true
	}

	if p.Hunger > MinHunger {
		p.HungerZeroSince = nil
		if p.Sick {
			p.Sick = false
			changed = true
		}
		return changed
	}

	if !p.Sick && p.HungerZeroSince != nil && now.Sub(*p.HungerZeroSince) >= r.SickAfter {
		p.Sick = true
		changed = true
	}
	return changed
}

func clampHunger(h int) int {
	return max(MinHunger, min(MaxHunger, h))
}
