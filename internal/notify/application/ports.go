package application

import (
	"context"

	"github.com/restroline/order-gateway/internal/notify/domain"
)

// LogCap bounds each subscriber's durable notification log; the oldest
// entry is evicted first.
const LogCap = 50

// Log is the durable per-subscriber notification journal. Append keeps at
// most LogCap entries per key; Recent returns them newest first.
type Log interface {
	Append(ctx context.Context, key string, n domain.Notification) error
	Recent(ctx context.Context, key string) ([]domain.Notification, error)
}
