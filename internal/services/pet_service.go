// Package services – PetService
//
// PetService owns the pet lifecycle: adoption (direct or in two steps through
// a pending choice), viewing, and feeding. Hunger decay is applied lazily:
// every path that reads a pet for display or action first brings it up to
// date and persists the result.
//
// Mutations take the owner's UserLocks entry and then run in one
// transaction, so feeding can never interleave with another action of the
// same user.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-pet-backend/internal/domain"
	"github.com/tbourn/go-pet-backend/internal/game"
	"github.com/tbourn/go-pet-backend/internal/repo"
)

const defaultPendingTTL = 10 * time.Minute

// PetService coordinates pets, their decay, and feeding.
type PetService struct {
	DB      *gorm.DB
	Catalog *Catalog
	Rules   game.Rules
	Clock   game.Clock
	Locks   *UserLocks
	Pending PendingStore
	Names   NamePolicy

	// PendingTTL bounds how long a chosen species waits for a name.
	PendingTTL time.Duration
}

// PetView is a pet together with its current stage's display name.
type PetView struct {
	domain.Pet
	StageName string `json:"stage_name"`
}

// FeedOutcome is everything one feeding changed.
type FeedOutcome struct {
	Pet    PetView         `json:"pet"`
	Owner  domain.User     `json:"owner"`
	Item   domain.ShopItem `json:"item"`
	Result game.FeedResult `json:"result"`

	Evolved bool `json:"evolved"`
	// Remaining is the stack size after feeding; 0 means the entry is gone.
	Remaining int `json:"remaining"`
}

// SpeciesInfo describes one adoptable species and its stage table.
type SpeciesInfo struct {
	Species     domain.Species          `json:"species"`
	DisplayName string                  `json:"display_name"`
	Stages      []domain.EvolutionStage `json:"stages"`
}

// PendingChoice is a species awaiting a name.
type PendingChoice struct {
	Species   domain.Species `json:"species"`
	ExpiresAt time.Time      `json:"expires_at"`
}

func (s *PetService) rules() game.Rules {
	if s.Rules == (game.Rules{}) {
		return game.DefaultRules()
	}
	return s.Rules
}

func (s *PetService) pendingTTL() time.Duration {
	if s.PendingTTL > 0 {
		return s.PendingTTL
	}
	return defaultPendingTTL
}

func (s *PetService) view(p domain.Pet) PetView {
	return PetView{Pet: p, StageName: game.StageName(&p, s.Catalog.Stages(p.Species))}
}

// List returns the user's pets, oldest first, with decay applied.
func (s *PetService) List(ctx context.Context, userID int64) ([]PetView, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	unlock := locksOr(s.Locks).Lock(userID)
	defer unlock()

	var out []PetView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadUser(ctx, tx, userID); err != nil {
			return err
		}
		pets, err := repo.ListPets(ctx, tx, userID)
		if err != nil {
			return err
		}
		now := clockOr(s.Clock).Now()
		out = make([]PetView, 0, len(pets))
		for i := range pets {
			if err := s.decay(ctx, tx, &pets[i], now); err != nil {
				return err
			}
			out = append(out, s.view(pets[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("pets.count", len(out)))
	return out, nil
}

// Get returns one of the user's pets with decay applied.
func (s *PetService) Get(ctx context.Context, userID, petID int64) (*PetView, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int64("pet.id", petID),
		),
	)
	defer span.End()

	unlock := locksOr(s.Locks).Lock(userID)
	defer unlock()

	var out PetView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := loadPet(ctx, tx, petID, userID)
		if err != nil {
			return err
		}
		if err := s.decay(ctx, tx, p, clockOr(s.Clock).Now()); err != nil {
			return err
		}
		out = s.view(*p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Adopt creates a pet for the user if the adoption gate allows it.
func (s *PetService) Adopt(ctx context.Context, userID int64, species domain.Species, name string) (*PetView, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "Adopt",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.String("pet.species", string(species)),
		),
	)
	defer span.End()

	unlock := locksOr(s.Locks).Lock(userID)
	defer unlock()

	pv, err := s.adopt(ctx, userID, species, name)
	return pv, observe("adopt", err)
}

// adopt runs the gate and insert. The caller holds the user's lock.
func (s *PetService) adopt(ctx context.Context, userID int64, species domain.Species, name string) (*PetView, error) {
	if !species.Valid() {
		return nil, ErrUnknownSpecies
	}
	clean, err := s.Names.Normalize(name)
	if err != nil {
		return nil, err
	}

	var out PetView
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.gate(ctx, tx, userID); err != nil {
			return err
		}
		p := game.NewPet(userID, species, clean, clockOr(s.Clock).Now())
		if err := repo.CreatePet(ctx, tx, &p); err != nil {
			return err
		}
		out = s.view(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PetService) gate(ctx context.Context, tx *gorm.DB, userID int64) error {
	pets, err := repo.ListPets(ctx, tx, userID)
	if err != nil {
		return err
	}
	if ok, reason := s.rules().CanAdopt(pets); !ok {
		return &AdoptionDeniedError{Reason: reason}
	}
	return nil
}

// BeginAdoption records the user's species choice until a name arrives. The
// adoption gate is checked up front so the user is not asked for a name
// that can never be used.
func (s *PetService) BeginAdoption(ctx context.Context, userID int64, species domain.Species) (*PendingChoice, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "BeginAdoption",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.String("pet.species", string(species)),
		),
	)
	defer span.End()

	if !species.Valid() {
		return nil, observe("begin_adoption", ErrUnknownSpecies)
	}
	unlock := locksOr(s.Locks).Lock(userID)
	defer unlock()

	if _, err := loadUser(ctx, s.DB, userID); err != nil {
		return nil, observe("begin_adoption", err)
	}
	if err := s.gate(ctx, s.DB, userID); err != nil {
		return nil, observe("begin_adoption", err)
	}
	ttl := s.pendingTTL()
	if err := s.Pending.Put(ctx, userID, species, ttl); err != nil {
		return nil, observe("begin_adoption", err)
	}
	return &PendingChoice{Species: species, ExpiresAt: clockOr(s.Clock).Now().Add(ttl)}, observe("begin_adoption", nil)
}

// CompleteAdoption names and adopts the pending species. The pending choice
// survives an invalid name so the user can retry, and is dropped once the
// pet exists or the gate refuses it.
func (s *PetService) CompleteAdoption(ctx context.Context, userID int64, name string) (*PetView, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "CompleteAdoption",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	unlock := locksOr(s.Locks).Lock(userID)
	defer unlock()

	species, _, ok, err := s.Pending.Get(ctx, userID)
	if err != nil {
		return nil, observe("adopt", err)
	}
	if !ok {
		return nil, observe("adopt", ErrNoPendingAdoption)
	}
	pv, err := s.adopt(ctx, userID, species, name)
	if err == nil || errors.Is(err, ErrAdoptionDenied) {
		if derr := s.Pending.Delete(ctx, userID); derr != nil && err == nil {
			err = derr
		}
	}
	return pv, observe("adopt", err)
}

// PendingChoice reports the user's pending species choice, if any.
func (s *PetService) PendingChoice(ctx context.Context, userID int64) (*PendingChoice, error) {
	species, exp, ok, err := s.Pending.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoPendingAdoption
	}
	return &PendingChoice{Species: species, ExpiresAt: exp}, nil
}

// CancelAdoption drops the pending species choice.
func (s *PetService) CancelAdoption(ctx context.Context, userID int64) error {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "CancelAdoption",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	unlock := locksOr(s.Locks).Lock(userID)
	defer unlock()

	_, _, ok, err := s.Pending.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoPendingAdoption
	}
	return s.Pending.Delete(ctx, userID)
}

// Feed gives one unit of an inventory entry to a pet. Decay, the feeding
// itself, the inventory decrement, the evolution check and both saves
// commit together or not at all.
func (s *PetService) Feed(ctx context.Context, userID, petID, entryID int64) (*FeedOutcome, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "Feed",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int64("pet.id", petID),
			attribute.Int64("inventory.id", entryID),
		),
	)
	defer span.End()

	unlock := locksOr(s.Locks).Lock(userID)
	defer unlock()

	var out FeedOutcome
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := loadUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		pet, err := loadPet(ctx, tx, petID, userID)
		if err != nil {
			return err
		}
		entry, err := repo.GetInventoryEntry(ctx, tx, entryID, userID)
		if repo.IsNotFound(err) {
			return ErrInventoryEntryNotFound
		}
		if err != nil {
			return err
		}
		if entry.Quantity < 1 {
			return ErrInsufficientItems
		}
		item, ok := s.Catalog.Item(entry.ItemID)
		if !ok {
			item = entry.Item
		}

		rules := s.rules()
		now := clockOr(s.Clock).Now()
		rules.ApplyDecay(pet, now)
		res := rules.Feed(pet, item, owner, now)

		if err := repo.ConsumeInventory(ctx, tx, entry); err != nil {
			if repo.IsNotFound(err) {
				return ErrInsufficientItems
			}
			return err
		}
		stage, evolved := game.ResolveEvolution(pet, s.Catalog.Stages(pet.Species))
		if err := repo.SavePet(ctx, tx, pet); err != nil {
			return err
		}
		if err := repo.SaveUser(ctx, tx, owner); err != nil {
			return err
		}
		if evolved {
			recordEvolution(pet.Species, stage)
		}
		out = FeedOutcome{
			Pet:       s.view(*pet),
			Owner:     *owner,
			Item:      item,
			Result:    res,
			Evolved:   evolved,
			Remaining: entry.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, observe("feed", err)
	}
	return &out, observe("feed", nil)
}

// Species lists every adoptable species with its stage table.
func (s *PetService) Species() []SpeciesInfo {
	out := make([]SpeciesInfo, 0, len(domain.AllSpecies))
	for _, sp := range domain.AllSpecies {
		out = append(out, SpeciesInfo{
			Species:     sp,
			DisplayName: sp.DisplayName(),
			Stages:      s.Catalog.Stages(sp),
		})
	}
	return out
}

// decay applies hunger decay to p and persists it if anything changed.
func (s *PetService) decay(ctx context.Context, tx *gorm.DB, p *domain.Pet, now time.Time) error {
	if !s.rules().ApplyDecay(p, now) {
		return nil
	}
	return repo.SavePet(ctx, tx, p)
}

func loadPet(ctx context.Context, db *gorm.DB, petID, userID int64) (*domain.Pet, error) {
	p, err := repo.GetPet(ctx, db, petID, userID)
	if repo.IsNotFound(err) {
		return nil, ErrPetNotFound
	}
	return p, err
}
