// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Pet model.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

// ListPets returns the user's pets in adoption order.
func ListPets(ctx context.Context, db *gorm.DB, userID int64) ([]domain.Pet, error) {
	var out []domain.Pet
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// GetPet fetches a pet by id scoped to its owner. A pet owned by someone else
// is reported as ErrNotFound.
func GetPet(ctx context.Context, db *gorm.DB, id, userID int64) (*domain.Pet, error) {
	var p domain.Pet
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePet inserts p and fills its generated id.
func CreatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

// SavePet writes every column of p.
func SavePet(ctx context.Context, db *gorm.DB, p *domain.Pet) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}
