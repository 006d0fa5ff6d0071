package game

import (
	"sort"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

// ResolveEvolution advances p by at most one stage using its species' stage
// table. It picks the lowest stage above the current one whose required
// level p already meets. Reaching the table's last stage marks p mature for
// good. Stages for other species are ignored.
func ResolveEvolution(p *domain.Pet, stages []domain.EvolutionStage) (newStage int, evolved bool) {
	own := make([]domain.EvolutionStage, 0, len(stages))
	for _, s := range stages {
		if s.Species == p.Species {
			own = append(own, s)
		}
	}
	if len(own) == 0 {
		return p.Stage, false
	}
	sort.Slice(own, func(i, j int) bool { return own[i].Stage < own[j].Stage })
	final := own[len(own)-1].Stage

	if p.Stage >= final {
		return p.Stage, false
	}

	for _, s := range own {
		if s.Stage <= p.Stage {
			continue
		}
		if p.Level >= s.LevelRequired {
			p.Stage = s.Stage
			if p.Stage == final {
				p.Mature = true
			}
			return p.Stage, true
		}
	}
	return p.Stage, false
}

// StageName returns the display name of p's current stage, or "" when the
// table has no row for it.
func StageName(p *domain.Pet, stages []domain.EvolutionStage) string {
	for _, s := range stages {
		if s.Species == p.Species && s.Stage == p.Stage {
			return s.Name
		}
	}
	return ""
}
