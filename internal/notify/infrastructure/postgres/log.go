package postgres

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/restroline/order-gateway/internal/notify/application"
	"github.com/restroline/order-gateway/internal/notify/domain"
)

// Log stores per-subscriber notifications in the notification_log table,
// trimming beyond the cap inside the same transaction as the insert.
type Log struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewLog(log *slog.Logger, pool *pgxpool.Pool) *Log {
	return &Log{log: log, pool: pool}
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS notification_log (
		seq BIGSERIAL PRIMARY KEY,
		subscriber TEXT NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS notification_log_subscriber_idx
		ON notification_log (subscriber, seq DESC)`)
	return err
}

func (l *Log) Append(ctx context.Context, key string, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `INSERT INTO notification_log (subscriber, payload) VALUES ($1,$2)`, key, payload); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM notification_log
		WHERE subscriber=$1 AND seq NOT IN (
			SELECT seq FROM notification_log WHERE subscriber=$1 ORDER BY seq DESC LIMIT $2
		)`, key, application.LogCap)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (l *Log) Recent(ctx context.Context, key string) ([]domain.Notification, error) {
	rows, err := l.pool.Query(ctx, `SELECT payload FROM notification_log
		WHERE subscriber=$1 ORDER BY seq DESC LIMIT $2`, key, application.LogCap)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var n domain.Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			l.log.Error("malformed notification log row skipped", "subscriber", key, "err", err)
			continue
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
