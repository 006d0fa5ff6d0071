package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-pet-backend/internal/domain"
	"github.com/tbourn/go-pet-backend/internal/game"
	"github.com/tbourn/go-pet-backend/internal/repo"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fixture wires every service against one in-memory database and a shared
// fake clock.
type fixture struct {
	db      *gorm.DB
	clock   *game.FakeClock
	catalog *Catalog
	locks   *UserLocks

	users   *UserService
	pets    *PetService
	economy *EconomyService
	shop    *ShopService
}

type fixedRand int

func (r fixedRand) IntN(n int) int {
	if int(r) >= n {
		return n - 1
	}
	return int(r)
}

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite("file:svc_"+uuid.NewString()+"?mode=memory&cache=shared", repo.WithMaxOpenConns(1))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if _, _, err := repo.SeedCatalog(context.Background(), db); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newServiceDB(t)
	cat, err := LoadCatalog(context.Background(), db)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	f := &fixture{
		db:      db,
		clock:   game.NewFakeClock(testNow),
		catalog: cat,
		locks:   &UserLocks{},
	}
	f.users = &UserService{DB: db, Locks: f.locks, Clock: f.clock}
	f.pets = &PetService{
		DB:      db,
		Catalog: cat,
		Clock:   f.clock,
		Locks:   f.locks,
		Pending: &DBPendingStore{DB: db, Clock: f.clock},
	}
	f.economy = &EconomyService{DB: db, Clock: f.clock, Locks: f.locks, Rand: fixedRand(0)}
	f.shop = &ShopService{DB: db, Catalog: cat, Locks: f.locks}
	return f
}

func (f *fixture) user(t *testing.T, id int64) *domain.User {
	t.Helper()
	u, _, err := f.users.GetOrCreate(context.Background(), id, "player")
	if err != nil {
		t.Fatalf("get or create user %d: %v", id, err)
	}
	return u
}

func (f *fixture) setCoins(t *testing.T, userID int64, coins int) {
	t.Helper()
	if err := f.db.Model(&domain.User{}).Where("id = ?", userID).Update("coins", coins).Error; err != nil {
		t.Fatalf("set coins: %v", err)
	}
}

func (f *fixture) give(t *testing.T, userID, itemID int64, qty int) *domain.InventoryEntry {
	t.Helper()
	e, err := repo.AddInventory(context.Background(), f.db, userID, itemID, qty)
	if err != nil {
		t.Fatalf("add inventory: %v", err)
	}
	return e
}

func (f *fixture) adopt(t *testing.T, userID int64, sp domain.Species, name string) *PetView {
	t.Helper()
	pv, err := f.pets.Adopt(context.Background(), userID, sp, name)
	if err != nil {
		t.Fatalf("adopt: %v", err)
	}
	return pv
}

func (f *fixture) updatePet(t *testing.T, petID int64, fields map[string]any) {
	t.Helper()
	if err := f.db.Model(&domain.Pet{}).Where("id = ?", petID).Updates(fields).Error; err != nil {
		t.Fatalf("update pet: %v", err)
	}
}

func (f *fixture) storedPet(t *testing.T, petID, userID int64) *domain.Pet {
	t.Helper()
	p, err := repo.GetPet(context.Background(), f.db, petID, userID)
	if err != nil {
		t.Fatalf("get pet: %v", err)
	}
	return p
}
