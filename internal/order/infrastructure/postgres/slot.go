package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const changeChannel = "slot_changed"

// Slot keeps the serialized order set in a single row of the slots table.
// Writes NOTIFY on slot_changed with the slot name as payload; Run LISTENs
// on a dedicated connection and forwards matching notifications.
type Slot struct {
	log     *slog.Logger
	pool    *pgxpool.Pool
	name    string
	changes chan struct{}
}

func NewSlot(log *slog.Logger, pool *pgxpool.Pool, name string) *Slot {
	return &Slot{
		log:     log,
		pool:    pool,
		name:    name,
		changes: make(chan struct{}, 1),
	}
}

// Migrate creates the slots table if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS slots (
		name TEXT PRIMARY KEY,
		payload BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM slots WHERE name=$1`, s.name).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *Slot) Store(ctx context.Context, payload []byte) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO slots (name, payload, updated_at) VALUES ($1,$2,now())
		ON CONFLICT (name) DO UPDATE SET payload=$2, updated_at=now()`, s.name, payload)
	if err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `SELECT pg_notify($1, $2)`, changeChannel, s.name); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Slot) Changes() <-chan struct{} {
	return s.changes
}

// Run holds a pooled connection in LISTEN mode until ctx is cancelled,
// reacquiring after connection loss.
func (s *Slot) Run(ctx context.Context) {
	for {
		if err := s.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Error("slot listener lost, reconnecting", "slot", s.name, "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}
}

func (s *Slot) listen(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `LISTEN `+changeChannel); err != nil {
		return err
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		if n.Payload != s.name {
			continue
		}
		select {
		case s.changes <- struct{}{}:
		default:
		}
	}
}
