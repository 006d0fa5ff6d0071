// Package services – UserService
//
// UserService registers chat users on first contact with an idempotent
// upsert and builds the profile view (wallet, progression, inventory).
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-pet-backend/internal/domain"
	"github.com/tbourn/go-pet-backend/internal/game"
	"github.com/tbourn/go-pet-backend/internal/repo"
)

// UserService registers players on first contact and reports their profile.
type UserService struct {
	DB    *gorm.DB
	Locks *UserLocks
	Clock game.Clock
}

// Profile is a user with everything the profile screen shows.
type Profile struct {
	User         domain.User             `json:"user"`
	Inventory    []domain.InventoryEntry `json:"inventory"`
	PetCount     int                     `json:"pet_count"`
	NextLevelExp int                     `json:"next_level_exp"`
}

// GetOrCreate returns the user with the given external id, creating it at
// level 1 on first contact. A non-empty displayName that differs from the
// stored one replaces it. created reports whether the row is new.
func (s *UserService) GetOrCreate(ctx context.Context, id int64, displayName string) (u *domain.User, created bool, err error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "GetOrCreate",
		trace.WithAttributes(attribute.Int64("user.id", id)),
	)
	defer span.End()

	if id <= 0 {
		return nil, false, ErrInvalidUserID
	}
	displayName = strings.TrimSpace(displayName)

	unlock := locksOr(s.Locks).Lock(id)
	defer unlock()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		got, isNew, err := repo.GetOrCreateUser(ctx, tx, id, displayName, clockOr(s.Clock).Now())
		if err != nil {
			return err
		}
		if !isNew && displayName != "" && got.DisplayName != displayName {
			if err := repo.UpdateDisplayName(ctx, tx, id, displayName); err != nil {
				return err
			}
			got.DisplayName = displayName
		}
		u, created = got, isNew
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	span.SetAttributes(attribute.Bool("user.created", created))
	return u, created, nil
}

// Profile loads the user's stats and inventory.
func (s *UserService) Profile(ctx context.Context, id int64) (*Profile, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Profile",
		trace.WithAttributes(attribute.Int64("user.id", id)),
	)
	defer span.End()

	u, err := loadUser(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	inv, err := repo.ListInventory(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	var pets int64
	if err := s.DB.WithContext(ctx).Model(&domain.Pet{}).Where("user_id = ?", id).Count(&pets).Error; err != nil {
		return nil, err
	}
	return &Profile{
		User:         *u,
		Inventory:    inv,
		PetCount:     int(pets),
		NextLevelExp: game.NextLevelThreshold(u.Level),
	}, nil
}

// loadUser maps a missing row to ErrUserNotFound.
func loadUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	u, err := repo.GetUser(ctx, db, id)
	if repo.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	return u, err
}
