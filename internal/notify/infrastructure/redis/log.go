package redis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/restroline/order-gateway/internal/notify/application"
	"github.com/restroline/order-gateway/internal/notify/domain"
)

// Log stores each subscriber's notifications as a redis list, newest
// first, trimmed to the cap on every append.
type Log struct {
	log    *slog.Logger
	rdb    *redis.Client
	prefix string
}

func NewLog(log *slog.Logger, rdb *redis.Client, prefix string) *Log {
	return &Log{log: log, rdb: rdb, prefix: prefix}
}

func (l *Log) key(subscriber string) string {
	return l.prefix + ":" + subscriber
}

func (l *Log) Append(ctx context.Context, key string, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	pipe := l.rdb.TxPipeline()
	pipe.LPush(ctx, l.key(key), payload)
	pipe.LTrim(ctx, l.key(key), 0, application.LogCap-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (l *Log) Recent(ctx context.Context, key string) ([]domain.Notification, error) {
	raw, err := l.rdb.LRange(ctx, l.key(key), 0, application.LogCap-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(raw))
	for _, entry := range raw {
		var n domain.Notification
		if err := json.Unmarshal([]byte(entry), &n); err != nil {
			l.log.Error("malformed notification log entry skipped", "subscriber", key, "err", err)
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
