// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: persistence and query composition only, no game rules.
//
// Error semantics:
//   - When a user is not found, functions return ErrNotFound.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetOrCreateUser inserts a level-1 user with the given id if none exists and
// returns the stored row. The insert uses ON CONFLICT DO NOTHING on the
// primary key, so concurrent first contacts converge on one row.
func GetOrCreateUser(ctx context.Context, db *gorm.DB, id int64, displayName string, now time.Time) (*domain.User, bool, error) {
	u := &domain.User{
		ID:          id,
		DisplayName: displayName,
		Level:       1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(u)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected == 1
	if created {
		return u, true, nil
	}
	got, err := GetUser(ctx, db, id)
	return got, false, err
}

// GetUser fetches a user by id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveUser writes every column of u.
func SaveUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(u).Error
}

// UpdateDisplayName changes the stored display name.
func UpdateDisplayName(ctx context.Context, db *gorm.DB, id int64, name string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("display_name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
