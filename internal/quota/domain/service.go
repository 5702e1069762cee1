// Package domain defines the single entry point the HTTP layer talks to:
// it routes usage operations to the engine matching the feature's quota
// type and aggregates per-user views.
package domain

import (
	"context"
	"errors"
	"time"
)

type CheckResult struct {
	Allowed        bool       `json:"allowed"`
	CurrentUsage   int64      `json:"currentUsage"`
	Remaining      int64      `json:"remaining"`
	Limit          int64      `json:"limit"`
	ResetsAt       *time.Time `json:"resetsAt,omitempty"`
	AllocatedSlots []string   `json:"allocatedSlots,omitempty"`
}

type RecordResult struct {
	Success      bool  `json:"success"`
	CurrentUsage int64 `json:"currentUsage"`
	Remaining    int64 `json:"remaining"`
	Limit        int64 `json:"limit"`
}

type SlotResult struct {
	Success        bool     `json:"success"`
	CurrentUsage   int64    `json:"currentUsage"`
	Remaining      int64    `json:"remaining"`
	Limit          int64    `json:"limit"`
	AllocatedSlots []string `json:"allocatedSlots"`
}

type FeatureUsage struct {
	FeatureKey     string     `json:"featureKey"`
	CurrentUsage   int64      `json:"currentUsage"`
	Limit          int64      `json:"limit"`
	Remaining      int64      `json:"remaining"`
	ResetsAt       *time.Time `json:"resetsAt,omitempty"`
	AllocatedSlots []string   `json:"allocatedSlots,omitempty"`
}

type UserUsage struct {
	UserID string         `json:"userId"`
	Usage  []FeatureUsage `json:"usage"`
}

type Service interface {
	// CheckUsage routes to the feature's engine. Slot-based features
	// treat the call as a one-slot capacity probe and ignore
	// requestedAmount.
	CheckUsage(ctx context.Context, userID, featureKey string, requestedAmount int64) (*CheckResult, error)
	// RecordUsage consumes units on a consumable feature; slot-based
	// features reject it in favor of allocate/deallocate.
	RecordUsage(ctx context.Context, userID, featureKey string, amount int64) (*RecordResult, error)
	AllocateSlot(ctx context.Context, userID, featureKey, slotID string, metadata map[string]any) (*SlotResult, error)
	DeallocateSlot(ctx context.Context, userID, featureKey, slotID string) (*SlotResult, error)
	// GetUsageForFeature returns the user's snapshot for one feature,
	// reporting zero usage when no record exists yet.
	GetUsageForFeature(ctx context.Context, userID, featureKey string) (*FeatureUsage, error)
	// GetAllUsageForUser returns a snapshot for every registered feature
	// in registration order.
	GetAllUsageForUser(ctx context.Context, userID string) (*UserUsage, error)
}

var ErrUnsupportedOperation = errors.New("unsupported_operation")
