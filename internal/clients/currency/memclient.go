package currency

import (
	"context"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
)

// MemClient is an in-process currency ledger. It backs tests and local
// mode; production deployments point the engine at a real token bridge.
type MemClient struct {
	mu         sync.Mutex
	custody    string
	balances   map[string]sdkmath.Int
	allowances map[string]map[string]sdkmath.Int
}

var _ Client = (*MemClient)(nil)

// NewMemClient creates an empty ledger. custody is the vault's account:
// Transfer debits it, TransferFrom credits it.
func NewMemClient(custody string) *MemClient {
	return &MemClient{
		custody:    custody,
		balances:   make(map[string]sdkmath.Int),
		allowances: make(map[string]map[string]sdkmath.Int),
	}
}

func (c *MemClient) balance(addr string) sdkmath.Int {
	if b, ok := c.balances[addr]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

func (c *MemClient) allowance(owner, spender string) sdkmath.Int {
	if m, ok := c.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return a
		}
	}
	return sdkmath.ZeroInt()
}

// SetBalance seeds an account. Test helper.
func (c *MemClient) SetBalance(addr string, amount sdkmath.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[addr] = amount
}

// Approve grants spender an allowance over owner's balance.
func (c *MemClient) Approve(owner, spender string, amount sdkmath.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.allowances[owner]; !ok {
		c.allowances[owner] = make(map[string]sdkmath.Int)
	}
	c.allowances[owner][spender] = amount
}

func (c *MemClient) Transfer(_ context.Context, to string, amount sdkmath.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.move(c.custody, to, amount)
}

func (c *MemClient) TransferFrom(_ context.Context, from, to string, amount sdkmath.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	allowed := c.allowance(from, c.custody)
	if allowed.LT(amount) {
		return &InsufficientAllowanceError{
			Owner:   from,
			Spender: c.custody,
			Message: fmt.Sprintf("allowance %s below transfer amount %s", allowed, amount),
		}
	}
	if err := c.move(from, to, amount); err != nil {
		return err
	}
	c.allowances[from][c.custody] = allowed.Sub(amount)
	return nil
}

func (c *MemClient) move(from, to string, amount sdkmath.Int) error {
	bal := c.balance(from)
	if bal.LT(amount) {
		return &InsufficientBalanceError{
			Addr:    from,
			Message: fmt.Sprintf("balance %s below transfer amount %s", bal, amount),
		}
	}
	c.balances[from] = bal.Sub(amount)
	c.balances[to] = c.balance(to).Add(amount)
	return nil
}

func (c *MemClient) BalanceOf(_ context.Context, addr string) (sdkmath.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance(addr), nil
}

func (c *MemClient) Allowance(_ context.Context, owner, spender string) (sdkmath.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allowance(owner, spender), nil
}
