// Package services – ShopService
//
// ShopService sells catalog items for coins. A purchase debits the wallet
// and increments (or creates) the inventory row in one transaction under the
// buyer's lock.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-pet-backend/internal/domain"
	"github.com/tbourn/go-pet-backend/internal/repo"
)

const defaultSearchLimit = 5

// ShopService sells catalog items for coins and reports inventories.
type ShopService struct {
	DB      *gorm.DB
	Catalog *Catalog
	Locks   *UserLocks
}

// Purchase is the result of one buy.
type Purchase struct {
	Item  domain.ShopItem       `json:"item"`
	Entry domain.InventoryEntry `json:"entry"`
	Coins int                   `json:"coins"`
}

// List returns the shop ordered by item id.
func (s *ShopService) List(ctx context.Context) []domain.ShopItem {
	return s.Catalog.Items()
}

// Search matches free text such as "buy fish" against item names and
// descriptions. An empty query lists the whole shop.
func (s *ShopService) Search(ctx context.Context, query string, limit int) []domain.ShopItem {
	tr := otel.Tracer("services/ShopService")
	_, span := tr.Start(ctx, "Search",
		trace.WithAttributes(attribute.String("query", query)),
	)
	defer span.End()

	if strings.TrimSpace(query) == "" {
		return s.Catalog.Items()
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	out := s.Catalog.Search(query, limit)
	span.SetAttributes(attribute.Int("results", len(out)))
	return out
}

// Buy debits the item's price and adds one unit to the user's inventory.
func (s *ShopService) Buy(ctx context.Context, userID, itemID int64) (*Purchase, error) {
	tr := otel.Tracer("services/ShopService")
	ctx, span := tr.Start(ctx, "Buy",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int64("item.id", itemID),
		),
	)
	defer span.End()

	item, ok := s.Catalog.Item(itemID)
	if !ok {
		return nil, observe("buy", ErrItemNotFound)
	}

	unlock := locksOr(s.Locks).Lock(userID)
	defer unlock()

	var out Purchase
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := loadUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if u.Coins < item.Price {
			return ErrInsufficientFunds
		}
		u.Coins -= item.Price
		if err := repo.SaveUser(ctx, tx, u); err != nil {
			return err
		}
		e, err := repo.AddInventory(ctx, tx, userID, item.ID, 1)
		if err != nil {
			return err
		}
		out = Purchase{Item: item, Entry: *e, Coins: u.Coins}
		return nil
	})
	if err != nil {
		return nil, observe("buy", err)
	}
	coinsSpent.Add(float64(item.Price))
	return &out, observe("buy", nil)
}

// Inventory lists the user's stacks ordered by item id.
func (s *ShopService) Inventory(ctx context.Context, userID int64) ([]domain.InventoryEntry, error) {
	tr := otel.Tracer("services/ShopService")
	ctx, span := tr.Start(ctx, "Inventory",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	if _, err := loadUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	return repo.ListInventory(ctx, s.DB, userID)
}
