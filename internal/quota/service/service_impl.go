package service

import (
	"context"
	"strings"

	consumabledomain "github.com/quotahub/quotad/internal/consumable/domain"
	featuredomain "github.com/quotahub/quotad/internal/feature/domain"
	"github.com/quotahub/quotad/internal/quota/domain"
	slotdomain "github.com/quotahub/quotad/internal/slot/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Features   featuredomain.Service
	Consumable consumabledomain.Service
	Slots      slotdomain.Service
}

type Service struct {
	log        *zap.Logger
	features   featuredomain.Service
	consumable consumabledomain.Service
	slots      slotdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("quota.service"),
		features:   p.Features,
		consumable: p.Consumable,
		slots:      p.Slots,
	}
}

func (s *Service) CheckUsage(ctx context.Context, userID, featureKey string, requestedAmount int64) (*domain.CheckResult, error) {
	feature, err := s.features.Resolve(ctx, featureKey)
	if err != nil {
		return nil, err
	}

	switch feature.QuotaType {
	case featuredomain.QuotaTypeSlotBased:
		decision, err := s.slots.Check(ctx, userID, featureKey)
		if err != nil {
			return nil, err
		}
		return &domain.CheckResult{
			Allowed:        decision.Allowed,
			CurrentUsage:   decision.CurrentUsage,
			Remaining:      decision.Remaining,
			Limit:          decision.Limit,
			AllocatedSlots: decision.AllocatedSlots,
		}, nil
	default:
		decision, err := s.consumable.Check(ctx, userID, featureKey, requestedAmount)
		if err != nil {
			return nil, err
		}
		resetsAt := decision.ResetsAt
		return &domain.CheckResult{
			Allowed:      decision.Allowed,
			CurrentUsage: decision.CurrentUsage,
			Remaining:    decision.Remaining,
			Limit:        decision.Limit,
			ResetsAt:     &resetsAt,
		}, nil
	}
}

func (s *Service) RecordUsage(ctx context.Context, userID, featureKey string, amount int64) (*domain.RecordResult, error) {
	feature, err := s.features.Resolve(ctx, featureKey)
	if err != nil {
		return nil, err
	}
	if feature.QuotaType == featuredomain.QuotaTypeSlotBased {
		return nil, domain.ErrUnsupportedOperation
	}

	decision, err := s.consumable.Record(ctx, userID, featureKey, amount)
	if err != nil {
		return nil, err
	}
	return &domain.RecordResult{
		Success:      true,
		CurrentUsage: decision.CurrentUsage,
		Remaining:    decision.Remaining,
		Limit:        decision.Limit,
	}, nil
}

func (s *Service) AllocateSlot(ctx context.Context, userID, featureKey, slotID string, metadata map[string]any) (*domain.SlotResult, error) {
	decision, err := s.slots.Allocate(ctx, userID, featureKey, slotID, metadata)
	if err != nil {
		return nil, err
	}
	return toSlotResult(decision), nil
}

func (s *Service) DeallocateSlot(ctx context.Context, userID, featureKey, slotID string) (*domain.SlotResult, error) {
	decision, err := s.slots.Deallocate(ctx, userID, featureKey, slotID)
	if err != nil {
		return nil, err
	}
	return toSlotResult(decision), nil
}

func (s *Service) GetUsageForFeature(ctx context.Context, userID, featureKey string) (*domain.FeatureUsage, error) {
	feature, err := s.features.Resolve(ctx, featureKey)
	if err != nil {
		return nil, err
	}
	return s.featureUsage(ctx, userID, feature)
}

func (s *Service) GetAllUsageForUser(ctx context.Context, userID string) (*domain.UserUsage, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, consumabledomain.ErrInvalidUser
	}

	features, err := s.features.List(ctx)
	if err != nil {
		return nil, err
	}

	usage := make([]domain.FeatureUsage, 0, len(features))
	for i := range features {
		entry, err := s.featureUsage(ctx, userID, &features[i])
		if err != nil {
			return nil, err
		}
		usage = append(usage, *entry)
	}

	return &domain.UserUsage{UserID: userID, Usage: usage}, nil
}

func (s *Service) featureUsage(ctx context.Context, userID string, feature *featuredomain.Response) (*domain.FeatureUsage, error) {
	switch feature.QuotaType {
	case featuredomain.QuotaTypeSlotBased:
		decision, err := s.slots.Check(ctx, userID, feature.FeatureKey)
		if err != nil {
			return nil, err
		}
		return &domain.FeatureUsage{
			FeatureKey:     feature.FeatureKey,
			CurrentUsage:   decision.CurrentUsage,
			Limit:          decision.Limit,
			Remaining:      decision.Remaining,
			AllocatedSlots: decision.AllocatedSlots,
		}, nil
	default:
		decision, err := s.consumable.Check(ctx, userID, feature.FeatureKey, 0)
		if err != nil {
			return nil, err
		}
		resetsAt := decision.ResetsAt
		return &domain.FeatureUsage{
			FeatureKey:   feature.FeatureKey,
			CurrentUsage: decision.CurrentUsage,
			Limit:        decision.Limit,
			Remaining:    decision.Remaining,
			ResetsAt:     &resetsAt,
		}, nil
	}
}

func toSlotResult(decision *slotdomain.Decision) *domain.SlotResult {
	return &domain.SlotResult{
		Success:        true,
		CurrentUsage:   decision.CurrentUsage,
		Remaining:      decision.Remaining,
		Limit:          decision.Limit,
		AllocatedSlots: decision.AllocatedSlots,
	}
}
