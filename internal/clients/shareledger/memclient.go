package shareledger

import (
	"context"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
)

// MemClient is an in-process share ledger for tests and local mode.
type MemClient struct {
	mu         sync.Mutex
	balances   map[string]sdkmath.Int
	allowances map[string]map[string]sdkmath.Int
	supply     sdkmath.Int
}

var _ Client = (*MemClient)(nil)

func NewMemClient() *MemClient {
	return &MemClient{
		balances:   make(map[string]sdkmath.Int),
		allowances: make(map[string]map[string]sdkmath.Int),
		supply:     sdkmath.ZeroInt(),
	}
}

func (c *MemClient) balance(addr string) sdkmath.Int {
	if b, ok := c.balances[addr]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

// Approve grants spender an allowance over owner's shares. Test helper.
func (c *MemClient) Approve(owner, spender string, amount sdkmath.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.allowances[owner]; !ok {
		c.allowances[owner] = make(map[string]sdkmath.Int)
	}
	c.allowances[owner][spender] = amount
}

func (c *MemClient) Mint(_ context.Context, to string, amount sdkmath.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[to] = c.balance(to).Add(amount)
	c.supply = c.supply.Add(amount)
	return nil
}

func (c *MemClient) Burn(_ context.Context, from string, amount sdkmath.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	bal := c.balance(from)
	if bal.LT(amount) {
		return fmt.Errorf("burn amount %s exceeds balance %s of %s", amount, bal, from)
	}
	c.balances[from] = bal.Sub(amount)
	c.supply = c.supply.Sub(amount)
	return nil
}

func (c *MemClient) SpendAllowance(_ context.Context, owner, spender string, amount sdkmath.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	allowed := sdkmath.ZeroInt()
	if m, ok := c.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			allowed = a
		}
	}
	if allowed.LT(amount) {
		return fmt.Errorf("allowance %s of %s for %s below %s", allowed, owner, spender, amount)
	}
	c.allowances[owner][spender] = allowed.Sub(amount)
	return nil
}

func (c *MemClient) RestoreAllowance(_ context.Context, owner, spender string, amount sdkmath.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.allowances[owner]; !ok {
		c.allowances[owner] = make(map[string]sdkmath.Int)
	}
	allowed := sdkmath.ZeroInt()
	if a, ok := c.allowances[owner][spender]; ok {
		allowed = a
	}
	c.allowances[owner][spender] = allowed.Add(amount)
	return nil
}

func (c *MemClient) BalanceOf(_ context.Context, addr string) (sdkmath.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance(addr), nil
}

func (c *MemClient) TotalSupply(_ context.Context) (sdkmath.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.supply, nil
}
