// Package game is the pet simulation engine: progression, hunger decay and
// sickness, evolution, feeding, the adoption gate, and the work and daily
// reward economy. Everything here is pure; callers own persistence,
// locking, and the clock.
package game

import "time"

// Rules holds gameplay balance configuration.
type Rules struct {
	WorkCooldown  time.Duration
	DailyCooldown time.Duration
	DailyCoins    int
	DailyExp      int
	FeedOwnerExp  int
	MaxPets       int
	SickAfter     time.Duration
}

// DefaultRules returns the default balance configuration.
func DefaultRules() Rules {
	return Rules{
		WorkCooldown:  12 * time.Hour,
		DailyCooldown: 24 * time.Hour,
		DailyCoins:    50,
		DailyExp:      10,
		FeedOwnerExp:  3,
		MaxPets:       2,
		SickAfter:     24 * time.Hour,
	}
}

// CooldownRemaining returns how long until an action last performed at
// last may run again, or 0 if it may run now. A nil last means never.
func CooldownRemaining(last *time.Time, period time.Duration, now time.Time) time.Duration {
	if last == nil {
		return 0
	}
	elapsed := now.Sub(*last)
	if elapsed >= period {
		return 0
	}
	return period - elapsed
}
