package memory

import (
	"context"
	"errors"
	"testing"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

func TestStabilityStateStore_GetBeforePut(t *testing.T) {
	s := NewStabilityStateStore()

	_, err := s.Get(context.Background())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStabilityStateStore_PutReplaces(t *testing.T) {
	s := NewStabilityStateStore()
	ctx := context.Background()

	first := &domain.AntiDumpState{
		DailyOpenPrice: domain.Tokens(1),
		CurrentPrice:   domain.Tokens(1),
		WindowStart:    100,
		UpdatedAt:      100,
	}
	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	second := first.Clone()
	second.DropBps = 3500
	second.ActiveTier = 2
	second.UpdatedAt = 200
	if err := s.Put(ctx, second); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.DropBps != 3500 || got.ActiveTier != 2 || got.UpdatedAt != 200 {
		t.Errorf("state: got drop=%d tier=%d updated=%d", got.DropBps, got.ActiveTier, got.UpdatedAt)
	}
}

func TestStabilityStateStore_CloneIsolation(t *testing.T) {
	s := NewStabilityStateStore()
	ctx := context.Background()

	state := &domain.AntiDumpState{
		DailyOpenPrice: domain.Tokens(1),
		CurrentPrice:   domain.Tokens(1),
		WindowStart:    100,
	}
	if err := s.Put(ctx, state); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	state.CurrentPrice.SetInt64(0)

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.CurrentPrice.Cmp(domain.Tokens(1)) != 0 {
		t.Errorf("stored price changed: got %s", got.CurrentPrice)
	}
}

func TestStabilityStateStore_RejectsNil(t *testing.T) {
	s := NewStabilityStateStore()

	if err := s.Put(context.Background(), nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Put(nil): got %v", err)
	}
}
