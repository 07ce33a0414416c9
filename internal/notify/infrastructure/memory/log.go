package memory

import (
	"context"
	"sync"

	"github.com/restroline/order-gateway/internal/notify/application"
	"github.com/restroline/order-gateway/internal/notify/domain"
)

// Log keeps one fixed-capacity ring per subscriber, so appends stay O(1)
// instead of trimming a growing slice.
type Log struct {
	mu    sync.Mutex
	rings map[string]*ring
}

func NewLog() *Log {
	return &Log{rings: make(map[string]*ring)}
}

func (l *Log) Append(ctx context.Context, key string, n domain.Notification) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rings[key]
	if !ok {
		r = newRing(application.LogCap)
		l.rings[key] = r
	}
	r.push(n)
	return nil
}

func (l *Log) Recent(ctx context.Context, key string) ([]domain.Notification, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rings[key]
	if !ok {
		return nil, nil
	}
	return r.newestFirst(), nil
}

type ring struct {
	buf  []domain.Notification
	next int
	size int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]domain.Notification, capacity)}
}

func (r *ring) push(n domain.Notification) {
	r.buf[r.next] = n
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

func (r *ring) newestFirst() []domain.Notification {
	out := make([]domain.Notification, 0, r.size)
	for i := 1; i <= r.size; i++ {
		out = append(out, r.buf[(r.next-i+len(r.buf))%len(r.buf)])
	}
	return out
}
