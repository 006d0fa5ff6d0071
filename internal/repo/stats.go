// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries over the whole
// game world, exported as gauges by the janitor.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

// WorldStats is a snapshot of population counts.
type WorldStats struct {
	Users      int64
	Pets       int64
	MaturePets int64
	SickPets   int64
	Coins      int64
}

// LoadWorldStats runs a handful of COUNT/SUM queries. Sick counts reflect
// the last time each pet was read, since decay is applied on read.
func LoadWorldStats(ctx context.Context, db *gorm.DB) (WorldStats, error) {
	var s WorldStats
	q := db.WithContext(ctx)

	if err := q.Model(&domain.User{}).Count(&s.Users).Error; err != nil {
		return s, err
	}
	if err := q.Model(&domain.Pet{}).Count(&s.Pets).Error; err != nil {
		return s, err
	}
	if err := q.Model(&domain.Pet{}).Where("mature = ?", true).Count(&s.MaturePets).Error; err != nil {
		return s, err
	}
	if err := q.Model(&domain.Pet{}).Where("sick = ?", true).Count(&s.SickPets).Error; err != nil {
		return s, err
	}
	if s.Users > 0 {
		var row struct{ Total int64 }
		if err := q.Model(&domain.User{}).Select("COALESCE(SUM(coins), 0) AS total").Scan(&row).Error; err != nil {
			return s, err
		}
		s.Coins = row.Total
	}
	return s, nil
}
