package service

import (
	"context"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/quotahub/quotad/internal/clock"
	featuredomain "github.com/quotahub/quotad/internal/feature/domain"
	"github.com/quotahub/quotad/internal/keylock"
	"github.com/quotahub/quotad/internal/metrics"
	"github.com/quotahub/quotad/internal/slot/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const engineName = "slot"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Features featuredomain.Service
	Repo     domain.Repository
	Locks    *keylock.Guard
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	features featuredomain.Service
	repo     domain.Repository
	locks    *keylock.Guard
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("slot.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		features: p.Features,
		repo:     p.Repo,
		locks:    p.Locks,
		metrics:  p.Metrics,
	}
}

func (s *Service) Check(ctx context.Context, userID, featureKey string) (*domain.Decision, error) {
	feature, err := s.resolveFeature(ctx, userID, featureKey)
	if err != nil {
		return nil, err
	}

	allocation, err := s.repo.Find(ctx, s.db, userID, feature.FeatureKey)
	if err != nil {
		return nil, err
	}

	decision := toDecision(feature, allocation)
	s.metrics.ObserveDecision(engineName, feature.FeatureKey, outcome(decision.Allowed))
	return decision, nil
}

func (s *Service) Allocate(ctx context.Context, userID, featureKey, slotID string, metadata map[string]any) (*domain.Decision, error) {
	feature, err := s.resolveFeature(ctx, userID, featureKey)
	if err != nil {
		return nil, err
	}
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return nil, domain.ErrInvalidSlotID
	}

	release, err := s.locks.Acquire(ctx, keylock.Key(userID, featureKey))
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.clock.Now()
	allocation, err := s.repo.Find(ctx, s.db, userID, feature.FeatureKey)
	if err != nil {
		return nil, err
	}

	created := false
	if allocation == nil {
		created = true
		allocation = &domain.SlotAllocation{
			ID:         s.genID.Generate(),
			UserID:     userID,
			FeatureKey: feature.FeatureKey,
			Slots:      datatypes.JSONMap{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}
	if allocation.Slots == nil {
		allocation.Slots = datatypes.JSONMap{}
	}

	if _, held := allocation.Slots[slotID]; held {
		s.metrics.ObserveDecision(engineName, feature.FeatureKey, "rejected")
		return nil, domain.ErrSlotAlreadyAllocated
	}
	if int64(len(allocation.Slots)) >= feature.Limit {
		s.metrics.ObserveDecision(engineName, feature.FeatureKey, "denied")
		return nil, domain.ErrQuotaExceeded
	}

	var slotValue any
	if metadata != nil {
		slotValue = metadata
	}
	allocation.Slots[slotID] = slotValue
	allocation.UpdatedAt = now

	if created {
		err = s.repo.Create(ctx, s.db, allocation)
	} else {
		err = s.repo.Save(ctx, s.db, allocation)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDecision(engineName, feature.FeatureKey, "allowed")
	return toDecision(feature, allocation), nil
}

func (s *Service) Deallocate(ctx context.Context, userID, featureKey, slotID string) (*domain.Decision, error) {
	feature, err := s.resolveFeature(ctx, userID, featureKey)
	if err != nil {
		return nil, err
	}
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return nil, domain.ErrInvalidSlotID
	}

	release, err := s.locks.Acquire(ctx, keylock.Key(userID, featureKey))
	if err != nil {
		return nil, err
	}
	defer release()

	allocation, err := s.repo.Find(ctx, s.db, userID, feature.FeatureKey)
	if err != nil {
		return nil, err
	}
	if allocation == nil {
		return nil, domain.ErrSlotNotFound
	}
	if _, held := allocation.Slots[slotID]; !held {
		return nil, domain.ErrSlotNotFound
	}

	delete(allocation.Slots, slotID)
	allocation.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, s.db, allocation); err != nil {
		return nil, err
	}

	return toDecision(feature, allocation), nil
}

func (s *Service) resolveFeature(ctx context.Context, userID, featureKey string) (*featuredomain.Response, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidUser
	}
	feature, err := s.features.Resolve(ctx, featureKey)
	if err != nil {
		return nil, err
	}
	if feature.QuotaType != featuredomain.QuotaTypeSlotBased {
		return nil, domain.ErrQuotaTypeMismatch
	}
	return feature, nil
}

func toDecision(feature *featuredomain.Response, allocation *domain.SlotAllocation) *domain.Decision {
	slots := make([]string, 0)
	if allocation != nil {
		for slotID := range allocation.Slots {
			slots = append(slots, slotID)
		}
		sort.Strings(slots)
	}
	used := int64(len(slots))

	return &domain.Decision{
		Allowed:        used < feature.Limit,
		CurrentUsage:   used,
		Remaining:      feature.Limit - used,
		Limit:          feature.Limit,
		AllocatedSlots: slots,
	}
}

func outcome(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}
