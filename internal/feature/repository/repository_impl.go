package repository

import (
	"context"

	"github.com/quotahub/quotad/internal/feature/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, feature *domain.Feature) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO features (
			id, feature_key, quota_type, quota_limit, reset_period, description, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		feature.ID,
		feature.Key,
		feature.Type,
		feature.Limit,
		feature.ResetPeriod,
		feature.Description,
		feature.CreatedAt,
		feature.UpdatedAt,
	).Error
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, key string) (*domain.Feature, error) {
	var f domain.Feature
	err := db.WithContext(ctx).Raw(
		`SELECT id, feature_key, quota_type, quota_limit, reset_period, description, created_at, updated_at
		 FROM features WHERE feature_key = ?`,
		key,
	).Scan(&f).Error
	if err != nil {
		return nil, err
	}
	if f.ID == 0 {
		return nil, nil
	}
	return &f, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Feature, error) {
	var items []domain.Feature
	err := db.WithContext(ctx).Raw(
		`SELECT id, feature_key, quota_type, quota_limit, reset_period, description, created_at, updated_at
		 FROM features ORDER BY created_at ASC, id ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, feature *domain.Feature) error {
	if feature == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE features
		 SET quota_limit = ?, description = ?, updated_at = ?
		 WHERE feature_key = ?`,
		feature.Limit,
		feature.Description,
		feature.UpdatedAt,
		feature.Key,
	).Error
}
