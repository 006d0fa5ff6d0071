// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file stores the short-lived "species chosen, waiting
// for a name" adoption state.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

// PutPendingAdoption stores or replaces the user's pending adoption.
func PutPendingAdoption(ctx context.Context, db *gorm.DB, p domain.PendingAdoption) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"species", "expires_at"}),
		}).
		Create(&p).Error
}

// GetPendingAdoption returns the user's unexpired pending adoption, or
// ErrNotFound.
func GetPendingAdoption(ctx context.Context, db *gorm.DB, userID int64, now time.Time) (*domain.PendingAdoption, error) {
	var p domain.PendingAdoption
	err := db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePendingAdoption removes the user's pending adoption, expired or not.
func DeletePendingAdoption(ctx context.Context, db *gorm.DB, userID int64) error {
	return db.WithContext(ctx).Delete(&domain.PendingAdoption{}, "user_id = ?", userID).Error
}

// PurgeExpiredPendingAdoptions deletes rows past their expiry.
func PurgeExpiredPendingAdoptions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.PendingAdoption{})
	return res.RowsAffected, res.Error
}
