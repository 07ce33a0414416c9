package application

import (
	"sync"

	"github.com/restroline/order-gateway/internal/notify/domain"
)

// KeyAllUsers is the wildcard subscriber key; its listener receives every
// notification regardless of owner.
const KeyAllUsers = "*"

type Listener func(domain.Notification)

// Registry maps subscriber keys to a single live callback each. Registering
// under an existing key replaces the previous callback; there is no queuing
// and no multi-cast to old subscribers.
type Registry struct {
	mu        sync.Mutex
	listeners map[string]Listener
}

func NewRegistry() *Registry {
	return &Registry{listeners: make(map[string]Listener)}
}

func (r *Registry) Register(key string, fn Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[key] = fn
}

func (r *Registry) Unregister(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.listeners, key)
}

// deliver invokes the owner's listener and the wildcard listener, if
// registered. Callbacks run outside the lock so they may re-enter the
// registry.
func (r *Registry) deliver(key string, n domain.Notification) {
	r.mu.Lock()
	owner := r.listeners[key]
	wildcard := r.listeners[KeyAllUsers]
	r.mu.Unlock()

	if owner != nil {
		owner(n)
	}
	if wildcard != nil && key != KeyAllUsers {
		wildcard(n)
	}
}
