package usage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreConsumeWithinLimit(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	u, err := svc.Consume(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if u.Used != 1 {
		t.Fatalf("expected used=1, got %d", u.Used)
	}
	if u.Plan != "free" || u.Limit != 20 {
		t.Fatalf("unexpected defaults: %+v", u)
	}
}

func TestMemoryStoreConsumeHitsLimit(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if _, err := svc.Consume(ctx, "user-2", 1); err != nil {
			t.Fatalf("Consume %d: %v", i, err)
		}
	}
	if _, err := svc.Consume(ctx, "user-2", 1); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
}

func TestMemoryStoreRecordTokensAccumulates(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if err := svc.RecordTokens(ctx, "user-3", 500, 0.0012); err != nil {
		t.Fatalf("RecordTokens: %v", err)
	}
	if err := svc.RecordTokens(ctx, "user-3", 250, 0.0008); err != nil {
		t.Fatalf("RecordTokens: %v", err)
	}

	u, err := svc.Get(ctx, "user-3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.TotalTokens != 750 {
		t.Fatalf("expected 750 total tokens, got %d", u.TotalTokens)
	}
	if u.TotalCost < 0.0019 || u.TotalCost > 0.0021 {
		t.Fatalf("expected accumulated cost near 0.002, got %v", u.TotalCost)
	}
}

func TestMemoryStoreResetClearsUsed(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "user-4", 5); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	u, err := svc.Reset(ctx, "user-4")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("expected used=0 after reset, got %d", u.Used)
	}
	if !u.ResetsAt.After(time.Now().UTC().Add(6 * 24 * time.Hour)) {
		t.Fatalf("expected reset window of a week, got %s", u.ResetsAt)
	}
}

func TestMemoryStoreExpiredWindowResets(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()

	store.data["user-5"] = Usage{
		Plan:     "free",
		Limit:    20,
		Used:     20,
		ResetsAt: time.Now().UTC().Add(-time.Hour),
	}

	u, err := store.EnsurePeriod(ctx, "user-5")
	if err != nil {
		t.Fatalf("EnsurePeriod: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("expected expired window to reset used, got %d", u.Used)
	}
}
