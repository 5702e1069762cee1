package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Find(ctx context.Context, db *gorm.DB, userID, featureKey string) (*UsageCounter, error)
	Create(ctx context.Context, db *gorm.DB, counter *UsageCounter) error
	Save(ctx context.Context, db *gorm.DB, counter *UsageCounter) error
}
