package redis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Slot keeps the serialized order set under one redis key and broadcasts
// writes on a pub/sub channel so every other process can resync.
type Slot struct {
	log     *slog.Logger
	rdb     *redis.Client
	key     string
	channel string
	changes chan struct{}
}

func NewSlot(log *slog.Logger, rdb *redis.Client, key string) *Slot {
	return &Slot{
		log:     log,
		rdb:     rdb,
		key:     key,
		channel: key + ":changed",
		changes: make(chan struct{}, 1),
	}
}

func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	payload, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return payload, err
}

func (s *Slot) Store(ctx context.Context, payload []byte) error {
	if err := s.rdb.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return err
	}
	// Broadcast after the write lands. A lost publish only delays resync
	// until the next write; the payload itself is already durable.
	if err := s.rdb.Publish(ctx, s.channel, "changed").Err(); err != nil {
		s.log.Error("slot change publish failed", "key", s.key, "err", err)
	}
	return nil
}

func (s *Slot) Changes() <-chan struct{} {
	return s.changes
}

// Run subscribes to the change channel and forwards signals until ctx is
// cancelled. One pending signal is enough; extra ones coalesce.
func (s *Slot) Run(ctx context.Context) {
	sub := s.rdb.Subscribe(ctx, s.channel)
	defer sub.Close()

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-msgs:
			if !ok {
				return
			}
			select {
			case s.changes <- struct{}{}:
			default:
			}
		}
	}
}
