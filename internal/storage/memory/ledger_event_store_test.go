package memory

import (
	"context"
	"errors"
	"testing"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

func TestLedgerEventStore_AppendAssignsIDs(t *testing.T) {
	s := NewLedgerEventStore()
	ctx := context.Background()

	first := &domain.LedgerEvent{Address: "0xaaa", Kind: domain.EventDeposit, Amount: domain.Tokens(100), Timestamp: 10}
	second := &domain.LedgerEvent{Address: "0xaaa", Kind: domain.EventAccrue, Amount: domain.Tokens(5), Timestamp: 20}
	if err := s.Append(ctx, first); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Append(ctx, second); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Errorf("ids: got %d, %d, want 1, 2", first.ID, second.ID)
	}
}

func TestLedgerEventStore_GetByAddress(t *testing.T) {
	s := NewLedgerEventStore()
	ctx := context.Background()

	events := []*domain.LedgerEvent{
		{Address: "0xaaa", Kind: domain.EventAccrue, Amount: domain.Tokens(5), Timestamp: 30},
		{Address: "0xbbb", Kind: domain.EventDeposit, Amount: domain.Tokens(100), Timestamp: 10},
		{Address: "0xaaa", Kind: domain.EventDeposit, Amount: domain.Tokens(100), Timestamp: 10},
	}
	for _, e := range events {
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := s.GetByAddress(ctx, "0xaaa")
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("events: got %d, want 2", len(got))
	}
	if got[0].Kind != domain.EventDeposit || got[1].Kind != domain.EventAccrue {
		t.Errorf("order: got %s, %s", got[0].Kind, got[1].Kind)
	}
}

func TestLedgerEventStore_GetByTimeRangeInclusive(t *testing.T) {
	s := NewLedgerEventStore()
	ctx := context.Background()

	for _, ts := range []int64{10, 20, 30, 40} {
		e := &domain.LedgerEvent{Address: "0xaaa", Kind: domain.EventAccrue, Amount: domain.Tokens(1), Timestamp: ts}
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := s.GetByTimeRange(ctx, 20, 30)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("events: got %d, want 2", len(got))
	}
	if got[0].Timestamp != 20 || got[1].Timestamp != 30 {
		t.Errorf("bounds: got %d, %d", got[0].Timestamp, got[1].Timestamp)
	}
}

func TestLedgerEventStore_CloneIsolation(t *testing.T) {
	s := NewLedgerEventStore()
	ctx := context.Background()

	e := &domain.LedgerEvent{Address: "0xaaa", Kind: domain.EventDeposit, Amount: domain.Tokens(100), Timestamp: 10}
	if err := s.Append(ctx, e); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	e.Amount.SetInt64(0)

	got, err := s.GetByAddress(ctx, "0xaaa")
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if got[0].Amount.Cmp(domain.Tokens(100)) != 0 {
		t.Errorf("stored amount changed: got %s", got[0].Amount)
	}
}

func TestLedgerEventStore_RejectsInvalidInput(t *testing.T) {
	s := NewLedgerEventStore()
	ctx := context.Background()

	if err := s.Append(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Append(nil): got %v", err)
	}
	if err := s.Append(ctx, &domain.LedgerEvent{Kind: domain.EventDeposit}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Append without address: got %v", err)
	}
	if _, err := s.GetByAddress(ctx, ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("GetByAddress empty: got %v", err)
	}
}
