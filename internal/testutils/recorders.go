package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/cache"
)

// RecordingCache wraps a cache.Gateway, counting calls and optionally
// failing them.
type RecordingCache struct {
	cache.Gateway

	mu        sync.Mutex
	GetErr    error
	SetErr    error
	RemoveErr error
	gets      int
	sets      int
	removals  []uuid.UUID
	prefixes  []string
}

var _ cache.Gateway = (*RecordingCache)(nil)

// NewRecordingCache wraps a fresh in-memory gateway.
func NewRecordingCache() *RecordingCache {
	return &RecordingCache{Gateway: cache.NewMemoryGateway(time.Minute)}
}

// Get implements cache.Gateway.
func (c *RecordingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	c.gets++
	err := c.GetErr
	c.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	return c.Gateway.Get(ctx, key)
}

// Set implements cache.Gateway.
func (c *RecordingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.sets++
	err := c.SetErr
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.Gateway.Set(ctx, key, value, ttl)
}

// RemoveByOwner implements cache.Gateway.
func (c *RecordingCache) RemoveByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	c.mu.Lock()
	c.removals = append(c.removals, ownerID)
	err := c.RemoveErr
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return c.Gateway.RemoveByOwner(ctx, ownerID)
}

// RemovePrefix implements cache.Gateway. It shares RemoveErr with RemoveByOwner.
func (c *RecordingCache) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	c.mu.Lock()
	c.prefixes = append(c.prefixes, prefix)
	err := c.RemoveErr
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return c.Gateway.RemovePrefix(ctx, prefix)
}

// PrefixRemovals returns the prefixes passed to RemovePrefix, in call order.
func (c *RecordingCache) PrefixRemovals() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prefixes...)
}

// Removals returns the owners passed to RemoveByOwner, in call order.
func (c *RecordingCache) Removals() []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uuid.UUID(nil), c.removals...)
}

// Gets returns the number of Get calls.
func (c *RecordingCache) Gets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets
}

// Sets returns the number of Set calls.
func (c *RecordingCache) Sets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

// Push is one recorded SendNotification call.
type Push struct {
	OwnerID uuid.UUID
	Message string
}

// RecordingNotifier records pushes and returns Err for each of them.
type RecordingNotifier struct {
	mu    sync.Mutex
	Err   error
	Panic bool
	calls []Push
}

// SendNotification implements realtime.Notifier.
func (n *RecordingNotifier) SendNotification(_ context.Context, ownerID uuid.UUID, message string) error {
	n.mu.Lock()
	n.calls = append(n.calls, Push{OwnerID: ownerID, Message: message})
	err, panicking := n.Err, n.Panic
	n.mu.Unlock()

	if panicking {
		// ALLOW-PANIC: exercises panic recovery in background jobs
		panic("notifier exploded")
	}
	return err
}

// Calls returns the recorded pushes, in call order.
func (n *RecordingNotifier) Calls() []Push {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Push(nil), n.calls...)
}
