package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rocketrun/rocketrun-server/internal/account"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    nickname TEXT UNIQUE NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    account_id TEXT NOT NULL REFERENCES accounts(id),
    score INTEGER NOT NULL,
    level TEXT NOT NULL,
    duration_ms BIGINT NOT NULL,
    ended_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_runs_score ON runs(score DESC);
CREATE INDEX IF NOT EXISTS idx_runs_account_id ON runs(account_id);
`

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and initializes the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// FindByNickname looks up an account by nickname.
func (s *PostgresStore) FindByNickname(ctx context.Context, nickname string) (*account.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, nickname, created_at, last_seen_at
		 FROM accounts WHERE nickname = $1`, nickname)

	acc, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return acc, err
}

// FindByID looks up an account by internal ID.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*account.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, nickname, created_at, last_seen_at
		 FROM accounts WHERE id = $1`, id)

	acc, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return acc, err
}

// CreateAccount inserts a new account.
func (s *PostgresStore) CreateAccount(ctx context.Context, acc *account.Account) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (id, nickname, created_at, last_seen_at)
		 VALUES ($1, $2, $3, $4)`,
		acc.ID, acc.Nickname, acc.CreatedAt, acc.LastSeenAt)
	return err
}

// UpdateLastSeen updates the last seen timestamp.
func (s *PostgresStore) UpdateLastSeen(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE accounts SET last_seen_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}

// RecordRun inserts a finished run.
func (s *PostgresStore) RecordRun(ctx context.Context, run *account.Run) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, account_id, score, level, duration_ms, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.AccountID, run.Score, run.Level, run.Duration.Milliseconds(), run.EndedAt)
	return err
}

// BestScore returns the account's best run score, 0 if none.
func (s *PostgresStore) BestScore(ctx context.Context, accountID string) (int, error) {
	var best int
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(score), 0) FROM runs WHERE account_id = $1`, accountID).Scan(&best)
	return best, err
}

// TopRuns returns the best runs across all accounts, highest score first.
func (s *PostgresStore) TopRuns(ctx context.Context, limit int) ([]*account.Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.id, r.account_id, a.nickname, r.score, r.level, r.duration_ms, r.ended_at
		 FROM runs r JOIN accounts a ON a.id = r.account_id
		 ORDER BY r.score DESC, r.ended_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*account.Run
	for rows.Next() {
		var run account.Run
		var durationMS int64
		if err := rows.Scan(&run.ID, &run.AccountID, &run.Nickname, &run.Score, &run.Level, &durationMS, &run.EndedAt); err != nil {
			return nil, err
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// Close releases database resources.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(&acc.ID, &acc.Nickname, &acc.CreatedAt, &acc.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}
