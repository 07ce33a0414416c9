package memory

import (
	"context"
	"sync"
)

// Hub is the in-process stand-in for the shared persisted store: one
// payload, many attached slots, every write fanned out to all of them
// (the writer included). Used for single-process deployments and tests.
type Hub struct {
	mu      sync.Mutex
	payload []byte
	slots   []*Slot
}

func NewHub() *Hub {
	return &Hub{}
}

// Slot attaches a new view onto the hub with its own change channel.
func (h *Hub) Slot() *Slot {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := &Slot{hub: h, changes: make(chan struct{}, 1)}
	h.slots = append(h.slots, s)
	return s
}

type Slot struct {
	hub     *Hub
	changes chan struct{}
}

func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if s.hub.payload == nil {
		return nil, nil
	}
	out := make([]byte, len(s.hub.payload))
	copy(out, s.hub.payload)
	return out, nil
}

func (s *Slot) Store(ctx context.Context, payload []byte) error {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.payload = make([]byte, len(payload))
	copy(s.hub.payload, payload)
	for _, sub := range s.hub.slots {
		select {
		case sub.changes <- struct{}{}:
		default:
		}
	}
	return nil
}

func (s *Slot) Changes() <-chan struct{} {
	return s.changes
}
