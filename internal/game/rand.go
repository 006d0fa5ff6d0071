package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Rand is the randomness the engine needs. IntN returns a value in [0, n).
type Rand interface {
	IntN(n int) int
}

// LockedRand is a *rand.Rand safe for concurrent use.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a PCG-backed source seeded with the given values.
func NewRand(seed1, seed2 uint64) *LockedRand {
	return &LockedRand{r: rand.New(rand.NewPCG(seed1, seed2))}
}

// NewSeededRand seeds a source from crypto/rand.
func NewSeededRand() (*LockedRand, error) {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return NewRand(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])), nil
}

func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// between draws uniformly from [lo, hi], both inclusive.
func between(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}
