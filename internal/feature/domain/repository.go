package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, feature *Feature) error
	FindByKey(ctx context.Context, db *gorm.DB, key string) (*Feature, error)
	List(ctx context.Context, db *gorm.DB) ([]Feature, error)
	Update(ctx context.Context, db *gorm.DB, feature *Feature) error
}
