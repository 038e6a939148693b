package store

import (
	"context"

	"github.com/rocketrun/rocketrun-server/internal/account"
)

// Store defines the interface for persistent accounts and run results.
type Store interface {
	// FindByNickname looks up an account by nickname.
	FindByNickname(ctx context.Context, nickname string) (*account.Account, error)
	// FindByID looks up an account by internal ID.
	FindByID(ctx context.Context, id string) (*account.Account, error)
	// CreateAccount inserts a new account.
	CreateAccount(ctx context.Context, acc *account.Account) error
	// UpdateLastSeen updates the last seen timestamp.
	UpdateLastSeen(ctx context.Context, id string) error
	// RecordRun inserts a finished run.
	RecordRun(ctx context.Context, run *account.Run) error
	// BestScore returns the account's best run score, 0 if none.
	BestScore(ctx context.Context, accountID string) (int, error)
	// TopRuns returns the best runs across all accounts, highest score first.
	TopRuns(ctx context.Context, limit int) ([]*account.Run, error)
	// Close releases resources.
	Close() error
}
