package domain

import (
	"context"
	"errors"
)

// Decision is the engine's view of a (user, feature) slot set after an
// operation. AllocatedSlots is sorted for stable output.
type Decision struct {
	Allowed        bool     `json:"allowed"`
	CurrentUsage   int64    `json:"currentUsage"`
	Remaining      int64    `json:"remaining"`
	Limit          int64    `json:"limit"`
	AllocatedSlots []string `json:"allocatedSlots"`
}

type Service interface {
	// Check reports whether one more slot would fit. Read-only.
	Check(ctx context.Context, userID, featureKey string) (*Decision, error)
	// Allocate inserts slotID atomically with respect to other operations
	// on the same (user, feature) key. Re-allocating a held slot fails:
	// callers that lose track of their slots should hear about it.
	Allocate(ctx context.Context, userID, featureKey, slotID string, metadata map[string]any) (*Decision, error)
	// Deallocate releases slotID; releasing an unknown slot fails.
	Deallocate(ctx context.Context, userID, featureKey, slotID string) (*Decision, error)
}

var (
	ErrQuotaExceeded        = errors.New("quota_exceeded")
	ErrQuotaTypeMismatch    = errors.New("quota_type_mismatch")
	ErrSlotAlreadyAllocated = errors.New("slot_already_allocated")
	ErrSlotNotFound         = errors.New("slot_not_found")
	ErrInvalidSlotID        = errors.New("invalid_slot_id")
	ErrInvalidUser          = errors.New("invalid_user")
)
