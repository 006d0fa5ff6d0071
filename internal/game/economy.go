package game

import (
	"time"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

// Reward is what a work shift or daily bonus paid out.
type Reward struct {
	Coins   int  `json:"coins"`
	Exp     int  `json:"exp"`
	LevelUp bool `json:"level_up"`
}

// Work pays u for one shift if the work cooldown has passed. Otherwise it
// returns the remaining wait and leaves u untouched. Rewards are computed
// from the level before the shift's experience is added.
func (r Rules) Work(u *domain.User, now time.Time, rnd Rand) (Reward, time.Duration) {
	if wait := CooldownRemaining(u.LastWorkAt, r.WorkCooldown, now); wait > 0 {
		return Reward{}, wait
	}
	rw := Reward{
		Coins: WorkReward(u.Level, rnd),
		Exp:   WorkExpGain(u.Level),
	}
	u.Coins += rw.Coins
	rw.LevelUp = GrantUserExp(u, rw.Exp)
	t := now
	u.LastWorkAt = &t
	return rw, 0
}

// ClaimDaily pays the flat daily bonus if the daily cooldown has passed.
func (r Rules) ClaimDaily(u *domain.User, now time.Time) (Reward, time.Duration) {
	if wait := CooldownRemaining(u.LastDailyAt, r.DailyCooldown, now); wait > 0 {
		return Reward{}, wait
	}
	rw := Reward{Coins: r.DailyCoins, Exp: r.DailyExp}
	u.Coins += rw.Coins
	rw.LevelUp = GrantUserExp(u, rw.Exp)
	t := now
	u.LastDailyAt = &t
	return rw, 0
}
