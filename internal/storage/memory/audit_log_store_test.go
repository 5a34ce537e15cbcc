package memory

import (
	"context"
	"errors"
	"testing"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

func TestAuditLogStore_AppendList(t *testing.T) {
	s := NewAuditLogStore()
	ctx := context.Background()

	records := []*domain.AuditRecord{
		{Operator: "0xop", Action: "SetDailyCap", Detail: "400 bps", Version: 2, Timestamp: 200},
		{Operator: "0xop", Action: "SetClaimTax", Detail: "150 bps", Version: 3, Timestamp: 100},
	}
	for _, r := range records {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records: got %d, want 2", len(got))
	}
	// Ordered by timestamp, not insertion.
	if got[0].Action != "SetClaimTax" || got[1].Action != "SetDailyCap" {
		t.Errorf("order: got %s, %s", got[0].Action, got[1].Action)
	}
	if got[0].ID == 0 || got[1].ID == 0 {
		t.Errorf("ids not assigned: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestAuditLogStore_RejectsInvalidInput(t *testing.T) {
	s := NewAuditLogStore()
	ctx := context.Background()

	if err := s.Append(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Append(nil): got %v", err)
	}
	if err := s.Append(ctx, &domain.AuditRecord{Operator: "0xop"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Append without action: got %v", err)
	}
}
