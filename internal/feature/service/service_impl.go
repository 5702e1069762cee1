package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quotahub/quotad/internal/feature/domain"
	"github.com/quotahub/quotad/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node

	// Resolve is on every usage hot path; registry writes are rare.
	// Entries hold *domain.Response and are replaced wholesale, so
	// readers see either the old or the new definition, never a mix.
	// Each entry carries the write generation current when its row was
	// read: a resolve that loaded the row before an update committed
	// carries an older generation and loses the store, so it cannot
	// shadow the update's entry.
	cache sync.Map
	gen   atomic.Uint64

	// writeMu serializes registry writes so generation order matches
	// commit order. Writes are rare; Resolve never takes it.
	writeMu sync.Mutex
}

type cacheEntry struct {
	gen  uint64
	resp *domain.Response
}

// cachePut installs resp for key unless a newer-generation entry is
// already present, and returns whichever entry won.
func (s *Service) cachePut(key string, gen uint64, resp *domain.Response) *domain.Response {
	entry := cacheEntry{gen: gen, resp: resp}
	for {
		current, loaded := s.cache.LoadOrStore(key, entry)
		if !loaded {
			return resp
		}
		existing := current.(cacheEntry)
		if existing.gen >= gen {
			return existing.resp
		}
		if s.cache.CompareAndSwap(key, current, entry) {
			return resp
		}
	}
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("feature.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Response, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return nil, domain.ErrInvalidDefinition
	}
	if req.Limit <= 0 {
		return nil, domain.ErrInvalidDefinition
	}

	quotaType, err := normalizeQuotaType(req.QuotaType)
	if err != nil {
		return nil, err
	}

	resetPeriod, err := normalizeResetPeriod(quotaType, req.ResetPeriod)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateKey
	}

	description := strings.TrimSpace(ptrToString(req.Description))
	var descriptionPtr *string
	if description != "" {
		descriptionPtr = &description
	}

	now := time.Now().UTC()
	record := &domain.Feature{
		ID:          s.genID.Generate(),
		Key:         key,
		Type:        quotaType,
		Limit:       req.Limit,
		ResetPeriod: resetPeriod,
		Description: descriptionPtr,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, s.db, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, err
	}

	resp := toResponse(record)
	s.cachePut(key, s.gen.Add(1), resp)
	s.log.Info("feature registered",
		zap.String("feature_key", key),
		zap.String("quota_type", string(quotaType)),
		zap.Int64("limit", req.Limit),
	)
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return nil, domain.ErrNotFound
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	item, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Limit != nil {
		if *req.Limit <= 0 {
			return nil, domain.ErrInvalidDefinition
		}
		item.Limit = *req.Limit
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			item.Description = nil
		} else {
			item.Description = &description
		}
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	s.cachePut(key, s.gen.Add(1), resp)
	return resp, nil
}

func (s *Service) Resolve(ctx context.Context, key string) (*domain.Response, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrNotFound
	}

	if cached, ok := s.cache.Load(key); ok {
		return cached.(cacheEntry).resp, nil
	}

	// Snapshot the generation before the read: a write committing after
	// this point bumps it, so the entry stored below can never replace
	// that write's entry.
	gen := s.gen.Load()
	item, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	return s.cachePut(key, gen, toResponse(item)), nil
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}
	return resp, nil
}

func toResponse(f *domain.Feature) *domain.Response {
	resp := &domain.Response{
		FeatureKey: f.Key,
		QuotaType:  f.Type,
		Limit:      f.Limit,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
	if f.ResetPeriod != nil {
		period := *f.ResetPeriod
		resp.ResetPeriod = &period
	}
	if f.Description != nil {
		resp.Description = *f.Description
	}
	return resp
}

func normalizeQuotaType(value domain.QuotaType) (domain.QuotaType, error) {
	switch strings.ToLower(strings.TrimSpace(string(value))) {
	case string(domain.QuotaTypeConsumable):
		return domain.QuotaTypeConsumable, nil
	case string(domain.QuotaTypeSlotBased):
		return domain.QuotaTypeSlotBased, nil
	default:
		return "", domain.ErrInvalidDefinition
	}
}

func normalizeResetPeriod(quotaType domain.QuotaType, value *domain.ResetPeriod) (*domain.ResetPeriod, error) {
	if quotaType == domain.QuotaTypeSlotBased {
		if value != nil && strings.TrimSpace(string(*value)) != "" {
			return nil, domain.ErrInvalidDefinition
		}
		return nil, nil
	}

	if value == nil {
		return nil, domain.ErrInvalidDefinition
	}
	switch strings.ToLower(strings.TrimSpace(string(*value))) {
	case string(domain.ResetPeriodDaily):
		period := domain.ResetPeriodDaily
		return &period, nil
	case string(domain.ResetPeriodWeekly):
		period := domain.ResetPeriodWeekly
		return &period, nil
	case string(domain.ResetPeriodMonthly):
		period := domain.ResetPeriodMonthly
		return &period, nil
	default:
		return nil, domain.ErrInvalidDefinition
	}
}

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
