package domain

import (
	"context"
	"errors"
	"time"
)

// Decision is the engine's view of a (user, feature) counter after an
// operation. Allowed reports whether the evaluated operation fits the
// limit; CurrentUsage is post-mutation for Record, pre-request for Check.
type Decision struct {
	Allowed      bool      `json:"allowed"`
	CurrentUsage int64     `json:"currentUsage"`
	Remaining    int64     `json:"remaining"`
	Limit        int64     `json:"limit"`
	ResetsAt     time.Time `json:"resetsAt"`
}

type Service interface {
	// Check evaluates whether requested units would fit the current
	// window without consuming them. The only persisted side effect is
	// the passive reset.
	Check(ctx context.Context, userID, featureKey string, requested int64) (*Decision, error)
	// Record consumes amount units atomically with respect to other
	// operations on the same (user, feature) key.
	Record(ctx context.Context, userID, featureKey string, amount int64) (*Decision, error)
}

var (
	ErrQuotaExceeded     = errors.New("quota_exceeded")
	ErrQuotaTypeMismatch = errors.New("quota_type_mismatch")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidUser       = errors.New("invalid_user")
)
