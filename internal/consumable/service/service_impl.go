package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/quotahub/quotad/internal/clock"
	"github.com/quotahub/quotad/internal/consumable/domain"
	featuredomain "github.com/quotahub/quotad/internal/feature/domain"
	"github.com/quotahub/quotad/internal/keylock"
	"github.com/quotahub/quotad/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const engineName = "consumable"

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
		log:      p.Log.Named("consumable.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		features: p.Features,
		repo:     p.Repo,
		locks:    p.Locks,
		metrics:  p.Metrics,
	}
}

func (s *Service) Check(ctx context.Context, userID, featureKey string, requested int64) (*domain.Decision, error) {
	feature, err := s.resolveFeature(ctx, userID, featureKey)
	if err != nil {
		return nil, err
	}
	if requested < 0 {
		return nil, domain.ErrInvalidAmount
	}

	release, err := s.locks.Acquire(ctx, keylock.Key(userID, featureKey))
	if err != nil {
		return nil, err
	}
	defer release()

	counter, err := s.currentCounter(ctx, userID, feature)
	if err != nil {
		return nil, err
	}

	allowed := counter.CurrentUsage+requested <= feature.Limit
	s.metrics.ObserveDecision(engineName, feature.FeatureKey, outcome(allowed))

	return &domain.Decision{
		Allowed:      allowed,
		CurrentUsage: counter.CurrentUsage,
		Remaining:    feature.Limit - counter.CurrentUsage,
		Limit:        feature.Limit,
		ResetsAt:     counter.ResetsAt,
	}, nil
}

func (s *Service) Record(ctx context.Context, userID, featureKey string, amount int64) (*domain.Decision, error) {
	feature, err := s.resolveFeature(ctx, userID, featureKey)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	release, err := s.locks.Acquire(ctx, keylock.Key(userID, featureKey))
	if err != nil {
		return nil, err
	}
	defer release()

	counter, err := s.currentCounter(ctx, userID, feature)
	if err != nil {
		return nil, err
	}

	if counter.CurrentUsage+amount > feature.Limit {
		s.metrics.ObserveDecision(engineName, feature.FeatureKey, "denied")
		return nil, domain.ErrQuotaExceeded
	}

	counter.CurrentUsage += amount
	counter.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, s.db, counter); err != nil {
		return nil, err
	}

	s.metrics.ObserveDecision(engineName, feature.FeatureKey, "allowed")
	return &domain.Decision{
		Allowed:      true,
		CurrentUsage: counter.CurrentUsage,
		Remaining:    feature.Limit - counter.CurrentUsage,
		Limit:        feature.Limit,
		ResetsAt:     counter.ResetsAt,
	}, nil
}

func (s *Service) resolveFeature(ctx context.Context, userID, featureKey string) (*featuredomain.Response, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidUser
	}
	feature, err := s.features.Resolve(ctx, featureKey)
	if err != nil {
		return nil, err
	}
	if feature.QuotaType != featuredomain.QuotaTypeConsumable {
		return nil, domain.ErrQuotaTypeMismatch
	}
	return feature, nil
}

// currentCounter loads or lazily creates the counter and applies the
// passive reset. Must be called with the key lock held.
func (s *Service) currentCounter(ctx context.Context, userID string, feature *featuredomain.Response) (*domain.UsageCounter, error) {
	now := s.clock.Now()

	counter, err := s.repo.Find(ctx, s.db, userID, feature.FeatureKey)
	if err != nil {
		return nil, err
	}
	if counter == nil {
		counter = &domain.UsageCounter{
			ID:          s.genID.Generate(),
			UserID:      userID,
			FeatureKey:  feature.FeatureKey,
			WindowStart: now,
			ResetsAt:    NextBoundary(*feature.ResetPeriod, now),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Create(ctx, s.db, counter); err != nil {
			return nil, err
		}
		return counter, nil
	}

	if !now.Before(counter.ResetsAt) {
		for !now.Before(counter.ResetsAt) {
			counter.WindowStart = counter.ResetsAt
			counter.ResetsAt = NextBoundary(*feature.ResetPeriod, counter.WindowStart)
		}
		counter.CurrentUsage = 0
		counter.UpdatedAt = now
		if err := s.repo.Save(ctx, s.db, counter); err != nil {
			return nil, err
		}
		s.log.Debug("passive reset applied",
			zap.String("user_id", userID),
			zap.String("feature_key", feature.FeatureKey),
			zap.Time("resets_at", counter.ResetsAt),
		)
	}

	return counter, nil
}

func outcome(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}
