package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Find(ctx context.Context, db *gorm.DB, userID, featureKey string) (*SlotAllocation, error)
	Create(ctx context.Context, db *gorm.DB, allocation *SlotAllocation) error
	Save(ctx context.Context, db *gorm.DB, allocation *SlotAllocation) error
}
