package memory

import (
	"context"
	"sort"
	"sync"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// AccountStore is an in-memory implementation of storage.AccountStore.
type AccountStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Account // keyed by address
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		data: make(map[string]*domain.Account),
	}
}

// Get retrieves an account by address. Returns ErrNotFound if not exists.
func (s *AccountStore) Get(_ context.Context, address string) (*domain.Account, error) {
	if address == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.data[address]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return acct.Clone(), nil
}

// Put inserts or replaces an account record.
func (s *AccountStore) Put(_ context.Context, account *domain.Account) error {
	if account == nil || account.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[account.Address] = account.Clone()
	return nil
}

// List retrieves all accounts, ordered by address ASC.
func (s *AccountStore) List(_ context.Context) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Account, 0, len(s.data))
	for _, acct := range s.data {
		result = append(result, acct.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})

	return result, nil
}

// TopByStake retrieves up to limit accounts with a positive stake, ordered
// by StakedAmount DESC then address ASC.
func (s *AccountStore) TopByStake(_ context.Context, limit int) ([]*domain.Account, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Account
	for _, acct := range s.data {
		if acct.StakedAmount.Sign() > 0 {
			result = append(result, acct.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if c := result[i].StakedAmount.Cmp(result[j].StakedAmount); c != 0 {
			return c > 0
		}
		return result[i].Address < result[j].Address
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

var _ storage.AccountStore = (*AccountStore)(nil)
