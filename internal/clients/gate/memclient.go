package gate

import (
	"context"
	"sync"
)

// MemClient is an in-process gate for tests and local mode.
type MemClient struct {
	mu         sync.Mutex
	authorized map[string]bool
	paused     bool
}

var _ Client = (*MemClient)(nil)

func NewMemClient(authorized ...string) *MemClient {
	c := &MemClient{authorized: make(map[string]bool)}
	for _, addr := range authorized {
		c.authorized[addr] = true
	}
	return c
}

func (c *MemClient) Authorize(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authorized[addr] = true
}

func (c *MemClient) SetPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = paused
}

func (c *MemClient) IsAuthorized(_ context.Context, caller string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authorized[caller], nil
}

func (c *MemClient) IsPaused(_ context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused, nil
}
