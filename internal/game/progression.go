package game

import "github.com/tbourn/go-pet-backend/internal/domain"

// levelThresholds[i] is the minimum cumulative experience for level i+1.
var levelThresholds = [...]int{0, 15, 30, 50, 80, 130, 190, 260, 340, 440, 560, 700}

// MaxUserLevel is the highest level the progression table defines.
const MaxUserLevel = len(levelThresholds)

// LevelForExperience returns the highest level whose threshold is <= exp.
// Experience past the last threshold stays at MaxUserLevel.
func LevelForExperience(exp int) int {
	level := 1
	for i, need := range levelThresholds {
		if exp < need {
			break
		}
		level = i + 1
	}
	return level
}

// GrantUserExp adds n experience to u and re-derives its level. It is the
// only way the engine changes a user's experience, so Level cannot drift.
// Returns true if the level changed.
func GrantUserExp(u *domain.User, n int) bool {
	if n > 0 {
		u.Exp += n
	}
	lvl := LevelForExperience(u.Exp)
	if lvl == u.Level {
		return false
	}
	u.Level = lvl
	return true
}

// WorkReward draws the coins paid for one work shift at the given level.
func WorkReward(level int, r Rand) int {
	switch {
	case level >= 8:
		return between(r, 87, 120)
	case level >= 5:
		return between(r, 45, 87)
	default:
		return between(r, 1, 45)
	}
}

// WorkExpGain is the experience paid for one work shift at the given level.
func WorkExpGain(level int) int {
	if level < 1 {
		level = 1
	}
	return 2 + 2*(level-1)
}

// NextLevelThreshold is the cumulative experience needed for the level after
// level, or 0 when level is already MaxUserLevel.
func NextLevelThreshold(level int) int {
	if level < 1 {
		level = 1
	}
	if level >= MaxUserLevel {
		return 0
	}
	return levelThresholds[level]
}
