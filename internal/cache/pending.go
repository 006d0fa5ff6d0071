// Package cache holds Redis-backed ephemeral state. Currently that is the
// pending adoption choice, which lives only until its key expires.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/go-pet-backend/internal/config"
	"github.com/tbourn/go-pet-backend/internal/domain"
)

const pendingKeyPrefix = "pet:pending:"

// NewClient builds a client from config and checks the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// PendingStore keeps one key per user holding the chosen species, with the
// adoption window as its TTL.
type PendingStore struct {
	RDB *redis.Client
	Now func() time.Time
}

func pendingKey(userID int64) string {
	return pendingKeyPrefix + strconv.FormatInt(userID, 10)
}

func (s *PendingStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *PendingStore) Put(ctx context.Context, userID int64, species domain.Species, ttl time.Duration) error {
	return s.RDB.Set(ctx, pendingKey(userID), string(species), ttl).Err()
}

// Get reads the species and the key's remaining TTL in one round trip.
func (s *PendingStore) Get(ctx context.Context, userID int64) (domain.Species, time.Time, bool, error) {
	key := pendingKey(userID)
	var (
		get *redis.StringCmd
		ttl *redis.DurationCmd
	)
	_, err := s.RDB.Pipelined(ctx, func(p redis.Pipeliner) error {
		get = p.Get(ctx, key)
		ttl = p.PTTL(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", time.Time{}, false, err
	}
	val, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		return "", time.Time{}, false, err
	}
	sp, err := decodeSpecies(val)
	if err != nil {
		return "", time.Time{}, false, err
	}
	return sp, expiry(s.now(), ttl.Val()), true, nil
}

func (s *PendingStore) Delete(ctx context.Context, userID int64) error {
	return s.RDB.Del(ctx, pendingKey(userID)).Err()
}

func decodeSpecies(v string) (domain.Species, error) {
	sp := domain.Species(v)
	if !sp.Valid() {
		return "", fmt.Errorf("pending adoption holds unknown species %q", v)
	}
	return sp, nil
}

// expiry turns a PTTL reply into an absolute time. Negative replies mean the
// key has no TTL (-1) or is already gone (-2); both report now.
func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl < 0 {
		return now
	}
	return now.Add(ttl)
}
