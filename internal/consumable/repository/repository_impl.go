package repository

import (
	"context"

	"github.com/quotahub/quotad/internal/consumable/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, userID, featureKey string) (*domain.UsageCounter, error) {
	var c domain.UsageCounter
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, feature_key, current_usage, window_start, resets_at, created_at, updated_at
		 FROM usage_counters WHERE user_id = ? AND feature_key = ?`,
		userID,
		featureKey,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, counter *domain.UsageCounter) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO usage_counters (
			id, user_id, feature_key, current_usage, window_start, resets_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		counter.ID,
		counter.UserID,
		counter.FeatureKey,
		counter.CurrentUsage,
		counter.WindowStart,
		counter.ResetsAt,
		counter.CreatedAt,
		counter.UpdatedAt,
	).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, counter *domain.UsageCounter) error {
	if counter == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE usage_counters
		 SET current_usage = ?, window_start = ?, resets_at = ?, updated_at = ?
		 WHERE id = ?`,
		counter.CurrentUsage,
		counter.WindowStart,
		counter.ResetsAt,
		counter.UpdatedAt,
		counter.ID,
	).Error
}
