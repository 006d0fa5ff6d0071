// Package services defines the game use-cases: players, pets, the economy,
// and the shop. This file centralizes the service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer, usually via KindOf.
package services

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Not-found errors. The thing does not exist or does not belong to the caller.
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrPetNotFound            = errors.New("pet not found")
	ErrItemNotFound           = errors.New("item not found")
	ErrInventoryEntryNotFound = errors.New("inventory entry not found")
	ErrNoPendingAdoption      = errors.New("no pending adoption")
)

// Insufficient-resource errors.
var (
	ErrInsufficientFunds = errors.New("not enough coins")
	ErrInsufficientItems = errors.New("not enough items")
)

// Input errors.
var (
	ErrInvalidUserID  = errors.New("invalid user id")
	ErrUnknownSpecies = errors.New("unknown species")
	ErrInvalidPetName = errors.New("invalid pet name")
)

// Gate errors. Match with errors.Is; unwrap with errors.As for details.
var (
	ErrCooldownActive = errors.New("cooldown active")
	ErrAdoptionDenied = errors.New("adoption denied")
)

// CooldownError reports a time-gated action attempted too early.
type CooldownError struct {
	Action    string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s on cooldown for %s", e.Action, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Is(target error) bool { return target == ErrCooldownActive }

// HoursRemaining is Remaining in hours, truncated to two decimals so a
// running cooldown never reports the full period.
func (e *CooldownError) HoursRemaining() float64 {
	return math.Floor(e.Remaining.Hours()*100) / 100
}

// AdoptionDeniedError carries the adoption gate's reason code.
type AdoptionDeniedError struct {
	Reason string
}

func (e *AdoptionDeniedError) Error() string { return "adoption denied: " + e.Reason }

func (e *AdoptionDeniedError) Is(target error) bool { return target == ErrAdoptionDenied }

// Kind classifies service errors for transports.
type Kind string

const (
	KindNone              Kind = ""
	KindNotFound          Kind = "not_found"
	KindCooldown          Kind = "cooldown_active"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindInsufficientItems Kind = "insufficient_items"
	KindAdoptionDenied    Kind = "adoption_denied"
	KindInvalid           Kind = "bad_request"
	KindInternal          Kind = "internal_error"
)

// KindOf maps err to its Kind. Unknown errors (store failures) are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrPetNotFound),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrInventoryEntryNotFound),
		errors.Is(err, ErrNoPendingAdoption):
		return KindNotFound
	case errors.Is(err, ErrCooldownActive):
		return KindCooldown
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrInsufficientItems):
		return KindInsufficientItems
	case errors.Is(err, ErrAdoptionDenied):
		return KindAdoptionDenied
	case errors.Is(err, ErrInvalidUserID),
		errors.Is(err, ErrUnknownSpecies),
		errors.Is(err, ErrInvalidPetName):
		return KindInvalid
	default:
		return KindInternal
	}
}
