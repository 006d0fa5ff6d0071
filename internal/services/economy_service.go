// Package services – EconomyService
//
// EconomyService pays the time-gated rewards. Cooldowns are plain timestamp
// comparisons against the user's last claim, checked and stamped inside the
// same transaction that credits the coins.
package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-pet-backend/internal/domain"
	"github.com/tbourn/go-pet-backend/internal/game"
	"github.com/tbourn/go-pet-backend/internal/repo"
)

// EconomyService pays out the time-gated rewards: work shifts and the daily
// bonus.
type EconomyService struct {
	DB    *gorm.DB
	Rules game.Rules
	Clock game.Clock
	Locks *UserLocks

	// Rand draws work pay. Nil means a source seeded from crypto/rand on
	// first use.
	Rand game.Rand

	randOnce sync.Once
	rnd      game.Rand
	randErr  error
}

// Payout is a reward and the user it was paid to.
type Payout struct {
	Reward game.Reward `json:"reward"`
	User   domain.User `json:"user"`
}

func (s *EconomyService) rules() game.Rules {
	if s.Rules == (game.Rules{}) {
		return game.DefaultRules()
	}
	return s.Rules
}

func (s *EconomyService) source() (game.Rand, error) {
	if s.Rand != nil {
		return s.Rand, nil
	}
	s.randOnce.Do(func() {
		s.rnd, s.randErr = game.NewSeededRand()
	})
	return s.rnd, s.randErr
}

// Work pays one work shift. Within the cooldown it returns a *CooldownError
// and changes nothing.
func (s *EconomyService) Work(ctx context.Context, userID int64) (*Payout, error) {
	tr := otel.Tracer("services/EconomyService")
	ctx, span := tr.Start(ctx, "Work",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	rnd, err := s.source()
	if err != nil {
		return nil, observe("work", err)
	}
	p, err := s.pay(ctx, userID, "work", func(r game.Rules, u *domain.User, now time.Time) (game.Reward, time.Duration) {
		return r.Work(u, now, rnd)
	})
	return p, observe("work", err)
}

// ClaimDaily pays the daily bonus. Within the cooldown it returns a
// *CooldownError and changes nothing.
func (s *EconomyService) ClaimDaily(ctx context.Context, userID int64) (*Payout, error) {
	tr := otel.Tracer("services/EconomyService")
	ctx, span := tr.Start(ctx, "ClaimDaily",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	p, err := s.pay(ctx, userID, "daily", game.Rules.ClaimDaily)
	return p, observe("daily", err)
}

type payFunc func(r game.Rules, u *domain.User, now time.Time) (game.Reward, time.Duration)

func (s *EconomyService) pay(ctx context.Context, userID int64, action string, fn payFunc) (*Payout, error) {
	unlock := locksOr(s.Locks).Lock(userID)
	defer unlock()

	var out Payout
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := loadUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		rw, wait := fn(s.rules(), u, clockOr(s.Clock).Now())
		if wait > 0 {
			return &CooldownError{Action: action, Remaining: wait}
		}
		if err := repo.SaveUser(ctx, tx, u); err != nil {
			return err
		}
		out = Payout{Reward: rw, User: *u}
		return nil
	})
	if err != nil {
		return nil, err
	}
	coinsIssued.WithLabelValues(action).Add(float64(out.Reward.Coins))
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("reward.coins", out.Reward.Coins))
	return &out, nil
}
