package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-pet-backend/internal/domain"
	"github.com/tbourn/go-pet-backend/internal/game"
	"github.com/tbourn/go-pet-backend/internal/repo"
)

// PendingStore keeps the species a user picked while the chat client asks
// for a name. Entries expire after the ttl given to Put.
type PendingStore interface {
	Put(ctx context.Context, userID int64, species domain.Species, ttl time.Duration) error
	// Get returns ok=false when there is no live entry.
	Get(ctx context.Context, userID int64) (species domain.Species, expiresAt time.Time, ok bool, err error)
	Delete(ctx context.Context, userID int64) error
}

// DBPendingStore is the SQL-backed PendingStore.
type DBPendingStore struct {
	DB    *gorm.DB
	Clock game.Clock
}

func (s *DBPendingStore) now() time.Time { return clockOr(s.Clock).Now() }

func (s *DBPendingStore) Put(ctx context.Context, userID int64, species domain.Species, ttl time.Duration) error {
	return repo.PutPendingAdoption(ctx, s.DB, domain.PendingAdoption{
		UserID:    userID,
		Species:   species,
		ExpiresAt: s.now().Add(ttl),
	})
}

func (s *DBPendingStore) Get(ctx context.Context, userID int64) (domain.Species, time.Time, bool, error) {
	p, err := repo.GetPendingAdoption(ctx, s.DB, userID, s.now())
	if errors.Is(err, repo.ErrNotFound) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		return "", time.Time{}, false, err
	}
	return p.Species, p.ExpiresAt, true, nil
}

func (s *DBPendingStore) Delete(ctx context.Context, userID int64) error {
	return repo.DeletePendingAdoption(ctx, s.DB, userID)
}

// Purge removes expired rows. Used by the janitor.
func (s *DBPendingStore) Purge(ctx context.Context) (int64, error) {
	return repo.PurgeExpiredPendingAdoptions(ctx, s.DB, s.now())
}

func clockOr(c game.Clock) game.Clock {
	if c != nil {
		return c
	}
	return game.RealClock{}
}
