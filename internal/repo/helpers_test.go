package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

// newTestDB opens a unique in-memory database per test, migrated and with a
// single connection so shared-cache table locks never bite.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite("file:"+uuid.NewString()+"?mode=memory&cache=shared", WithMaxOpenConns(1))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id int64) *domain.User {
	t.Helper()
	u := &domain.User{ID: id, DisplayName: "player", Level: 1}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedItems(t *testing.T, db *gorm.DB) {
	t.Helper()
	if _, _, err := SeedCatalog(context.Background(), db); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
