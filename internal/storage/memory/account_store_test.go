package memory

import (
	"context"
	"errors"
	"testing"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

func TestAccountStore_PutGet(t *testing.T) {
	s := NewAccountStore()
	ctx := context.Background()

	acct := domain.NewAccount("0xaaa", 100)
	acct.StakedAmount.Set(domain.Tokens(1000))
	acct.Tier = domain.TierL1
	if err := s.Put(ctx, acct); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(ctx, "0xaaa")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.StakedAmount.Cmp(domain.Tokens(1000)) != 0 {
		t.Errorf("staked: got %s, want 1000 tokens", got.StakedAmount)
	}
	if got.Tier != domain.TierL1 {
		t.Errorf("tier: got %d, want %d", got.Tier, domain.TierL1)
	}
}

func TestAccountStore_GetNotFound(t *testing.T) {
	s := NewAccountStore()

	_, err := s.Get(context.Background(), "0xmissing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountStore_CloneIsolation(t *testing.T) {
	s := NewAccountStore()
	ctx := context.Background()

	acct := domain.NewAccount("0xaaa", 100)
	acct.StakedAmount.Set(domain.Tokens(1000))
	if err := s.Put(ctx, acct); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Mutating the caller's copy after Put must not leak into the store.
	acct.StakedAmount.SetInt64(0)

	got, err := s.Get(ctx, "0xaaa")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.StakedAmount.Cmp(domain.Tokens(1000)) != 0 {
		t.Errorf("stored staked changed: got %s", got.StakedAmount)
	}

	// Mutating a returned copy must not leak either.
	got.StakedAmount.SetInt64(7)
	again, _ := s.Get(ctx, "0xaaa")
	if again.StakedAmount.Cmp(domain.Tokens(1000)) != 0 {
		t.Errorf("stored staked changed via returned copy: got %s", again.StakedAmount)
	}
}

func TestAccountStore_ListOrdered(t *testing.T) {
	s := NewAccountStore()
	ctx := context.Background()

	for _, addr := range []string{"0xccc", "0xaaa", "0xbbb"} {
		if err := s.Put(ctx, domain.NewAccount(addr, 0)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	accounts, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"0xaaa", "0xbbb", "0xccc"}
	if len(accounts) != len(want) {
		t.Fatalf("accounts: got %d, want %d", len(accounts), len(want))
	}
	for i, addr := range want {
		if accounts[i].Address != addr {
			t.Errorf("index %d: got %s, want %s", i, accounts[i].Address, addr)
		}
	}
}

func TestAccountStore_TopByStake(t *testing.T) {
	s := NewAccountStore()
	ctx := context.Background()

	stakes := map[string]int64{"0xaaa": 500, "0xbbb": 2000, "0xccc": 2000, "0xddd": 0}
	for addr, tokens := range stakes {
		acct := domain.NewAccount(addr, 0)
		acct.StakedAmount.Set(domain.Tokens(tokens))
		if err := s.Put(ctx, acct); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	top, err := s.TopByStake(ctx, 2)
	if err != nil {
		t.Fatalf("TopByStake failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("top: got %d, want 2", len(top))
	}
	// Equal stakes tie-break by address ascending.
	if top[0].Address != "0xbbb" || top[1].Address != "0xccc" {
		t.Errorf("top order: got %s, %s", top[0].Address, top[1].Address)
	}

	if _, err := s.TopByStake(ctx, 0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero limit, got %v", err)
	}
}

func TestAccountStore_RejectsInvalidInput(t *testing.T) {
	s := NewAccountStore()
	ctx := context.Background()

	if err := s.Put(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Put(nil): got %v", err)
	}
	if _, err := s.Get(ctx, ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Get empty address: got %v", err)
	}
}
