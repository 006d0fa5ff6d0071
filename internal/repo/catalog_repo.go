// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file reads and seeds the read-only catalog: shop
// items and per-species evolution stage tables.
package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

// ListShopItems returns the shop in id order.
func ListShopItems(ctx context.Context, db *gorm.DB) ([]domain.ShopItem, error) {
	var out []domain.ShopItem
	err := db.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

// ListEvolutionStages returns every species' stage rows ordered by species
// then stage.
func ListEvolutionStages(ctx context.Context, db *gorm.DB) ([]domain.EvolutionStage, error) {
	var out []domain.EvolutionStage
	err := db.WithContext(ctx).Order("species asc, stage asc").Find(&out).Error
	return out, err
}

// SeedCatalog inserts the default shop and stage tables into empty tables.
// Tables that already hold rows are left alone, so it is safe on every
// start. Returns how many rows were inserted.
func SeedCatalog(ctx context.Context, db *gorm.DB) (items, stages int, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.ShopItem{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			rows := DefaultShopItems()
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("seed shop items: %w", err)
			}
			items = len(rows)
		}

		if err := tx.Model(&domain.EvolutionStage{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			rows := DefaultEvolutionStages()
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("seed evolution stages: %w", err)
			}
			stages = len(rows)
		}
		return nil
	})
	return items, stages, err
}

// DefaultShopItems is the shop shipped with the game.
func DefaultShopItems() []domain.ShopItem {
	food := func(id int64, name, desc string, price int) domain.ShopItem {
		return domain.ShopItem{
			ID:            id,
			Name:          name,
			Description:   desc,
			Price:         price,
			HungerRestore: price,
			ExpBonus:      price / 2,
		}
	}
	return []domain.ShopItem{
		food(1, "Carrot", "Crunchy and fresh.", 10),
		food(2, "Fish", "A whole fresh fish.", 15),
		food(3, "Seeds", "A handful of mixed seeds.", 8),
		food(4, "Meat", "A juicy piece of meat.", 25),
		food(5, "Bamboo", "Tender bamboo shoots.", 20),
		food(6, "Honey", "A jar of sweet honey.", 18),
		food(7, "Grass", "A bunch of green grass.", 5),
		food(8, "Berries", "Ripe forest berries.", 12),
		food(9, "Nuts", "Roasted nuts.", 22),
		food(10, "Sunflower seeds", "Striped sunflower seeds.", 7),
		food(11, "Acorn", "A shiny oak acorn.", 9),
		food(12, "Worm", "A wriggly earthworm.", 6),
		food(13, "Milk", "A bowl of warm milk.", 14),
		food(14, "Cheese", "A wedge of cheese.", 16),
		food(15, "Fruit mix", "Chopped seasonal fruit.", 30),
	}
}

// DefaultEvolutionStages gives every species the same three-stage table.
func DefaultEvolutionStages() []domain.EvolutionStage {
	tiers := []struct {
		stage, level int
		name         string
	}{
		{0, 1, "Baby"},
		{1, 6, "Teen"},
		{2, 13, "Adult"},
	}
	out := make([]domain.EvolutionStage, 0, len(domain.AllSpecies)*len(tiers))
	for _, sp := range domain.AllSpecies {
		for _, t := range tiers {
			out = append(out, domain.EvolutionStage{
				Species:       sp,
				Stage:         t.stage,
				LevelRequired: t.level,
				Name:          t.name,
			})
		}
	}
	return out
}
