// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for inventory
// stacks.
//
// Invariant: no row with quantity < 1 is ever left behind. Adding goes
// through a single upsert; consuming the last unit deletes the row.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

// ListInventory returns the user's stacks with their catalog item, ordered by
// item id.
func ListInventory(ctx context.Context, db *gorm.DB, userID int64) ([]domain.InventoryEntry, error) {
	var out []domain.InventoryEntry
	err := db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ?", userID).
		Order("item_id asc").
		Find(&out).Error
	return out, err
}

// GetInventoryEntry fetches one stack scoped to its owner, with its item.
func GetInventoryEntry(ctx context.Context, db *gorm.DB, id, userID int64) (*domain.InventoryEntry, error) {
	var e domain.InventoryEntry
	err := db.WithContext(ctx).
		Preload("Item").
		Where("id = ? AND user_id = ?", id, userID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// AddInventory adds qty units of itemID to the user's stack, creating the
// stack if needed, and returns the stored row.
func AddInventory(ctx context.Context, db *gorm.DB, userID, itemID int64, qty int) (*domain.InventoryEntry, error) {
	e := &domain.InventoryEntry{UserID: userID, ItemID: itemID, Quantity: qty}
	err := db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("inventory.quantity + ?", qty)}),
		}).
		Create(e).Error
	if err != nil {
		return nil, err
	}
	var out domain.InventoryEntry
	err = db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ? AND item_id = ?", userID, itemID).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ConsumeInventory removes one unit from e, deleting the row when it was the
// last one. e.Quantity is updated to the remaining amount.
func ConsumeInventory(ctx context.Context, db *gorm.DB, e *domain.InventoryEntry) error {
	if e.Quantity <= 1 {
		res := db.WithContext(ctx).Delete(&domain.InventoryEntry{}, "id = ?", e.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		e.Quantity = 0
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.InventoryEntry{}).
		Where("id = ? AND quantity > 1", e.ID).
		Update("quantity", gorm.Expr("quantity - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	e.Quantity--
	return nil
}
