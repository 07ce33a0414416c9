package application

import "context"

// Slot is one named key in the shared persisted store. Store must make the
// payload visible to every other process before returning, and every write
// must be followed by a change broadcast. Changes carries one signal per
// observed write, including this process's own writes reflected back.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Store(ctx context.Context, payload []byte) error
	Changes() <-chan struct{}
}
