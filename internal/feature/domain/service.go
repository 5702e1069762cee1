package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Resolve(ctx context.Context, key string) (*Response, error)
	List(ctx context.Context) ([]Response, error)
}

type RegisterRequest struct {
	Key         string       `json:"featureKey"`
	QuotaType   QuotaType    `json:"quotaType"`
	Limit       int64        `json:"limit"`
	ResetPeriod *ResetPeriod `json:"resetPeriod,omitempty"`
	Description *string      `json:"description,omitempty"`
}

type UpdateRequest struct {
	Key         string  `json:"-"`
	Limit       *int64  `json:"limit,omitempty"`
	Description *string `json:"description,omitempty"`
}

type Response struct {
	FeatureKey  string       `json:"featureKey"`
	QuotaType   QuotaType    `json:"quotaType"`
	Limit       int64        `json:"limit"`
	ResetPeriod *ResetPeriod `json:"resetPeriod,omitempty"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

var (
	ErrDuplicateKey      = errors.New("duplicate_key")
	ErrInvalidDefinition = errors.New("invalid_definition")
	ErrImmutableField    = errors.New("immutable_field")
	ErrNotFound          = errors.New("feature_not_found")
)
