// Package domain defines the persistence models for players, pets,
// inventory, and the read-only catalog. These types are mapped with GORM and
// form the core data layer of the pet game.
package domain

import (
	"time"
)

// User is a player identified by the chat platform's numeric id.
//
// Fields:
//   - ID: externally assigned chat user id (not auto-incremented).
//   - DisplayName: last known display name from the chat client.
//   - Level: cached value of the progression table for Exp. Never set directly.
//   - Exp: cumulative experience, never decreases.
//   - Coins: spendable balance, never negative.
//   - LastWorkAt / LastDailyAt: cooldown anchors, nil until first use.
type User struct {
	ID          int64      `json:"id"            gorm:"primaryKey;autoIncrement:false"`
	DisplayName string     `json:"display_name"  gorm:"type:varchar(128);not null;default:''"`
	Level       int        `json:"level"         gorm:"not null;default:1;check:level >= 1"`
	Exp         int        `json:"exp"           gorm:"not null;default:0;check:exp >= 0"`
	Coins       int        `json:"coins"         gorm:"not null;default:0;check:coins >= 0"`
	LastWorkAt  *time.Time `json:"last_work_at,omitempty"`
	LastDailyAt *time.Time `json:"last_daily_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Pet is a creature owned by exactly one user. Pets are cascade-deleted
// with their owner.
//
// Hunger decays in whole hours from LastFedAt. HungerZeroSince records the
// instant hunger reached 0 and drives the sickness check.
type Pet struct {
	ID              int64      `json:"id"          gorm:"primaryKey"`
	UserID          int64      `json:"user_id"     gorm:"not null;index:idx_user_pets"`
	Species         Species    `json:"species"     gorm:"type:varchar(32);not null"`
	Name            string     `json:"name"        gorm:"type:varchar(128);not null"`
	Stage           int        `json:"stage"       gorm:"not null;default:0;check:stage >= 0"`
	Level           int        `json:"level"       gorm:"not null;default:1;check:level >= 1"`
	Exp             int        `json:"exp"         gorm:"not null;default:0;check:exp >= 0"`
	Hunger          int        `json:"hunger"      gorm:"not null;check:hunger BETWEEN 0 AND 100"`
	Sick            bool       `json:"sick"        gorm:"not null;default:false"`
	Mature          bool       `json:"mature"      gorm:"not null;default:false"`
	LastFedAt       time.Time  `json:"last_fed_at" gorm:"not null"`
	HungerZeroSince *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Pet.
func (Pet) TableName() string { return "pets" }

// ShopItem is a purchasable food. Catalog data, read-only at runtime.
type ShopItem struct {
	ID            int64  `json:"id"             gorm:"primaryKey;autoIncrement:false"`
	Name          string `json:"name"           gorm:"type:varchar(64);not null;uniqueIndex"`
	Description   string `json:"description"    gorm:"type:text;not null;default:''"`
	Price         int    `json:"price"          gorm:"not null;check:price >= 0"`
	HungerRestore int    `json:"hunger_restore" gorm:"not null;default:0"`
	ExpBonus      int    `json:"exp_bonus"      gorm:"not null;default:0"`
}

// TableName returns the database table name for ShopItem.
func (ShopItem) TableName() string { return "shop_items" }

// InventoryEntry is a stack of one shop item held by one user. Rows with
// zero quantity are deleted rather than stored.
type InventoryEntry struct {
	ID       int64 `json:"id"       gorm:"primaryKey"`
	UserID   int64 `json:"user_id"  gorm:"not null;uniqueIndex:ux_inventory_user_item,priority:1"`
	ItemID   int64 `json:"item_id"  gorm:"not null;uniqueIndex:ux_inventory_user_item,priority:2"`
	Quantity int   `json:"quantity" gorm:"not null;check:quantity >= 1"`

	User User     `json:"-"    gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Item ShopItem `json:"item" gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for InventoryEntry.
func (InventoryEntry) TableName() string { return "inventory" }

// EvolutionStage is one row of a species' stage table. Catalog data.
type EvolutionStage struct {
	ID            int64   `json:"-"              gorm:"primaryKey"`
	Species       Species `json:"species"        gorm:"type:varchar(32);not null;uniqueIndex:ux_species_stage,priority:1"`
	Stage         int     `json:"stage"          gorm:"not null;uniqueIndex:ux_species_stage,priority:2"`
	LevelRequired int     `json:"level_required" gorm:"not null;check:level_required >= 1"`
	Name          string  `json:"name"           gorm:"type:varchar(64);not null"`
}

// TableName returns the database table name for EvolutionStage.
func (EvolutionStage) TableName() string { return "evolution_stages" }

// PendingAdoption holds the species a user picked while the chat client
// waits for the pet's name. One per user; stale rows are ignored past
// ExpiresAt and purged by the janitor.
type PendingAdoption struct {
	UserID    int64     `json:"user_id"    gorm:"primaryKey;autoIncrement:false"`
	Species   Species   `json:"species"    gorm:"type:varchar(32);not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
}

// TableName returns the database table name for PendingAdoption.
func (PendingAdoption) TableName() string { return "pending_adoptions" }
