package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quotahub/quotad/internal/clock"
	featuredomain "github.com/quotahub/quotad/internal/feature/domain"
	"github.com/quotahub/quotad/internal/keylock"
	"github.com/quotahub/quotad/internal/slot/domain"
	"github.com/quotahub/quotad/internal/slot/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type featureStub struct {
	features map[string]*featuredomain.Response
}

func (f *featureStub) Register(ctx context.Context, req featuredomain.RegisterRequest) (*featuredomain.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *featureStub) Update(ctx context.Context, req featuredomain.UpdateRequest) (*featuredomain.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *featureStub) Resolve(ctx context.Context, key string) (*featuredomain.Response, error) {
	feature, ok := f.features[key]
	if !ok {
		return nil, featuredomain.ErrNotFound
	}
	return feature, nil
}

func (f *featureStub) List(ctx context.Context) ([]featuredomain.Response, error) {
	resp := make([]featuredomain.Response, 0, len(f.features))
	for _, feature := range f.features {
		resp = append(resp, *feature)
	}
	return resp, nil
}

func slotFeature(key string, limit int64) *featuredomain.Response {
	return &featuredomain.Response{
		FeatureKey: key,
		QuotaType:  featuredomain.QuotaTypeSlotBased,
		Limit:      limit,
	}
}

func setupService(t *testing.T, features *featureStub) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if err := db.AutoMigrate(&domain.SlotAllocation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	return New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)),
		Features: features,
		Repo:     repository.Provide(),
		Locks:    keylock.NewGuard(keylock.NewKeyMutex(16), nil),
	})
}

func TestAllocateUpToCapacity(t *testing.T) {
	features := &featureStub{features: map[string]*featuredomain.Response{
		"premium_seats": slotFeature("premium_seats", 2),
	}}
	svc := setupService(t, features)
	ctx := context.Background()

	first, err := svc.Allocate(ctx, "userA", "premium_seats", "seat1", nil)
	if err != nil {
		t.Fatalf("allocate seat1: %v", err)
	}
	if first.CurrentUsage != 1 || first.Remaining != 1 {
		t.Fatalf("expected 1/1, got %d/%d", first.CurrentUsage, first.Remaining)
	}

	second, err := svc.Allocate(ctx, "userA", "premium_seats", "seat2", nil)
	if err != nil {
		t.Fatalf("allocate seat2: %v", err)
	}
	if !reflect.DeepEqual(second.AllocatedSlots, []string{"seat1", "seat2"}) {
		t.Fatalf("unexpected slot set: %v", second.AllocatedSlots)
	}

	if _, err := svc.Allocate(ctx, "userA", "premium_seats", "seat3", nil); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected quota exceeded, got %v", err)
	}
}

func TestAllocateDuplicateSlot(t *testing.T) {
	features := &featureStub{features: map[string]*featuredomain.Response{
		"premium_seats": slotFeature("premium_seats", 5),
	}}
	svc := setupService(t, features)
	ctx := context.Background()

	if _, err := svc.Allocate(ctx, "userA", "premium_seats", "seat1", nil); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if _, err := svc.Allocate(ctx, "userA", "premium_seats", "seat1", nil); !errors.Is(err, domain.ErrSlotAlreadyAllocated) {
		t.Fatalf("expected slot already allocated, got %v", err)
	}

	check, err := svc.Check(ctx, "userA", "premium_seats")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if check.CurrentUsage != 1 {
		t.Fatalf("rejected allocate must not mutate the set, got %d slots", check.CurrentUsage)
	}
}

func TestDeallocate(t *testing.T) {
	features := &featureStub{features: map[string]*featuredomain.Response{
		"premium_seats": slotFeature("premium_seats", 3),
	}}
	svc := setupService(t, features)
	ctx := context.Background()

	for _, seat := range []string{"seat1", "seat2"} {
		if _, err := svc.Allocate(ctx, "userA", "premium_seats", seat, nil); err != nil {
			t.Fatalf("allocate %s: %v", seat, err)
		}
	}

	decision, err := svc.Deallocate(ctx, "userA", "premium_seats", "seat1")
	if err != nil {
		t.Fatalf("deallocate: %v", err)
	}
	if !reflect.DeepEqual(decision.AllocatedSlots, []string{"seat2"}) {
		t.Fatalf("unexpected slot set: %v", decision.AllocatedSlots)
	}

	if _, err := svc.Deallocate(ctx, "userA", "premium_seats", "seat1"); !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("expected slot not found, got %v", err)
	}
	if _, err := svc.Deallocate(ctx, "userB", "premium_seats", "seat1"); !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("unknown user: expected slot not found, got %v", err)
	}
}

func TestAllocateDeallocateRoundTrip(t *testing.T) {
	features := &featureStub{features: map[string]*featuredomain.Response{
		"premium_seats": slotFeature("premium_seats", 5),
	}}
	svc := setupService(t, features)
	ctx := context.Background()

	for _, seat := range []string{"seat1", "seat2"} {
		if _, err := svc.Allocate(ctx, "userA", "premium_seats", seat, nil); err != nil {
			t.Fatalf("allocate %s: %v", seat, err)
		}
	}

	if _, err := svc.Allocate(ctx, "userA", "premium_seats", "temp", map[string]any{"reason": "trial"}); err != nil {
		t.Fatalf("allocate temp: %v", err)
	}
	decision, err := svc.Deallocate(ctx, "userA", "premium_seats", "temp")
	if err != nil {
		t.Fatalf("deallocate temp: %v", err)
	}

	if !reflect.DeepEqual(decision.AllocatedSlots, []string{"seat1", "seat2"}) {
		t.Fatalf("round trip did not restore the set: %v", decision.AllocatedSlots)
	}
}

func TestCheckEmptyState(t *testing.T) {
	features := &featureStub{features: map[string]*featuredomain.Response{
		"premium_seats": slotFeature("premium_seats", 2),
	}}
	svc := setupService(t, features)

	decision, err := svc.Check(context.Background(), "userA", "premium_seats")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !decision.Allowed || decision.CurrentUsage != 0 || decision.Remaining != 2 {
		t.Fatalf("unexpected empty-state decision: %+v", decision)
	}
	if len(decision.AllocatedSlots) != 0 {
		t.Fatalf("expected empty slot set, got %v", decision.AllocatedSlots)
	}
}

func TestQuotaTypeMismatch(t *testing.T) {
	period := featuredomain.ResetPeriodDaily
	features := &featureStub{features: map[string]*featuredomain.Response{
		"api_calls": {
			FeatureKey:  "api_calls",
			QuotaType:   featuredomain.QuotaTypeConsumable,
			Limit:       100,
			ResetPeriod: &period,
		},
	}}
	svc := setupService(t, features)

	if _, err := svc.Allocate(context.Background(), "userA", "api_calls", "seat1", nil); !errors.Is(err, domain.ErrQuotaTypeMismatch) {
		t.Fatalf("expected quota type mismatch, got %v", err)
	}
}

func TestAllocateConcurrentBounded(t *testing.T) {
	const capacity = 3
	const workers = 6

	features := &featureStub{features: map[string]*featuredomain.Response{
		"premium_seats": slotFeature("premium_seats", capacity),
	}}
	svc := setupService(t, features)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		seat := fmt.Sprintf("seat%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Allocate(ctx, "userA", "premium_seats", seat, nil)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, denied int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrQuotaExceeded):
			denied++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != capacity || denied != workers-capacity {
		t.Fatalf("expected %d successes and %d denials, got %d/%d", capacity, workers-capacity, succeeded, denied)
	}

	final, err := svc.Check(ctx, "userA", "premium_seats")
	if err != nil {
		t.Fatalf("final check: %v", err)
	}
	if final.CurrentUsage != capacity {
		t.Fatalf("slot set exceeded capacity: %d", final.CurrentUsage)
	}
}
