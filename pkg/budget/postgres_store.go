package budget

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStorage implements Storage using PostgreSQL, upserting one row
// per task.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (s *PostgresStorage) Get(ctx context.Context, task string) (*Ledger, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT task_id, token_cap, time_cap_millis, request_cap, tokens_used, time_used_millis, requests_used, last_updated
		 FROM budget_ledgers WHERE task_id = $1`, task)

	var l Ledger
	err := row.Scan(&l.TaskID, &l.TokenCap, &l.TimeCapMillis, &l.RequestCap, &l.TokensUsed, &l.TimeUsedMillis, &l.RequestsUsed, &l.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("budget: get ledger: %w", err)
	}
	return &l, nil
}

func (s *PostgresStorage) Set(ctx context.Context, l *Ledger) error {
	query := `
		INSERT INTO budget_ledgers (task_id, token_cap, time_cap_millis, request_cap, tokens_used, time_used_millis, requests_used, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (task_id) DO UPDATE SET
			token_cap = EXCLUDED.token_cap,
			time_cap_millis = EXCLUDED.time_cap_millis,
			request_cap = EXCLUDED.request_cap,
			tokens_used = EXCLUDED.tokens_used,
			time_used_millis = EXCLUDED.time_used_millis,
			requests_used = EXCLUDED.requests_used,
			last_updated = EXCLUDED.last_updated
	`
	_, err := s.db.ExecContext(ctx, query, l.TaskID, l.TokenCap, l.TimeCapMillis, l.RequestCap, l.TokensUsed, l.TimeUsedMillis, l.RequestsUsed, l.LastUpdated)
	if err != nil {
		return fmt.Errorf("budget: persist ledger: %w", err)
	}
	return nil
}
