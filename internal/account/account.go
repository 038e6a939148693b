package account

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a persistent player account, keyed by nickname.
type Account struct {
	ID         string    `json:"id"`
	Nickname   string    `json:"nickname"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// New creates a fresh account for a nickname.
func New(nickname string) *Account {
	now := time.Now()
	return &Account{
		ID:         uuid.New().String(),
		Nickname:   nickname,
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

// Run is one finished run recorded for an account.
type Run struct {
	ID        string        `json:"id"`
	AccountID string        `json:"account_id"`
	Nickname  string        `json:"nickname,omitempty"`
	Score     int           `json:"score"`
	Level     string        `json:"level"`
	Duration  time.Duration `json:"duration"`
	EndedAt   time.Time     `json:"ended_at"`
}

// NewRun records a finished run.
func NewRun(accountID string, score int, level string, duration time.Duration) *Run {
	return &Run{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Score:     score,
		Level:     level,
		Duration:  duration,
		EndedAt:   time.Now(),
	}
}
