package repository

import (
	"context"

	"github.com/quotahub/quotad/internal/slot/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, userID, featureKey string) (*domain.SlotAllocation, error) {
	var a domain.SlotAllocation
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, feature_key, slots, created_at, updated_at
		 FROM slot_allocations WHERE user_id = ? AND feature_key = ?`,
		userID,
		featureKey,
	).Scan(&a).Error
	if err != nil {
		return nil, err
	}
	if a.ID == 0 {
		return nil, nil
	}
	return &a, nil
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, allocation *domain.SlotAllocation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO slot_allocations (
			id, user_id, feature_key, slots, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		allocation.ID,
		allocation.UserID,
		allocation.FeatureKey,
		allocation.Slots,
		allocation.CreatedAt,
		allocation.UpdatedAt,
	).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, allocation *domain.SlotAllocation) error {
	if allocation == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE slot_allocations
		 SET slots = ?, updated_at = ?
		 WHERE id = ?`,
		allocation.Slots,
		allocation.UpdatedAt,
		allocation.ID,
	).Error
}
