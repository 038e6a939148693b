package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rocketrun/rocketrun-server/internal/account"
)

// MemoryStore implements Store in process memory. It backs tests and
// development runs without a database; nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*account.Account // by ID
	byNick   map[string]string           // nickname -> ID
	runs     []*account.Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*account.Account),
		byNick:   make(map[string]string),
	}
}

// FindByNickname looks up an account by nickname.
func (s *MemoryStore) FindByNickname(_ context.Context, nickname string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNick[nickname]
	if !ok {
		return nil, nil
	}
	acc := *s.accounts[id]
	return &acc, nil
}

// FindByID looks up an account by internal ID.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *acc
	return &copied, nil
}

// CreateAccount inserts a new account.
func (s *MemoryStore) CreateAccount(_ context.Context, acc *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byNick[acc.Nickname]; exists {
		return fmt.Errorf("nickname %q already taken", acc.Nickname)
	}
	copied := *acc
	s.accounts[acc.ID] = &copied
	s.byNick[acc.Nickname] = acc.ID
	return nil
}

// UpdateLastSeen updates the last seen timestamp.
func (s *MemoryStore) UpdateLastSeen(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[id]; ok {
		acc.LastSeenAt = time.Now()
	}
	return nil
}

// RecordRun inserts a finished run.
func (s *MemoryStore) RecordRun(_ context.Context, run *account.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *run
	if acc, ok := s.accounts[run.AccountID]; ok {
		copied.Nickname = acc.Nickname
	}
	s.runs = append(s.runs, &copied)
	return nil
}

// BestScore returns the account's best run score, 0 if none.
func (s *MemoryStore) BestScore(_ context.Context, accountID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best := 0
	for _, run := range s.runs {
		if run.AccountID == accountID && run.Score > best {
			best = run.Score
		}
	}
	return best, nil
}

// TopRuns returns the best runs across all accounts, highest score first.
func (s *MemoryStore) TopRuns(_ context.Context, limit int) ([]*account.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*account.Run, len(s.runs))
	for i, run := range s.runs {
		copied := *run
		runs[i] = &copied
	}
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Score != runs[j].Score {
			return runs[i].Score > runs[j].Score
		}
		return runs[i].EndedAt.Before(runs[j].EndedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
